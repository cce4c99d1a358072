package translate

import (
	"reflect"
	"strings"
)

// Normalize coerces an arbitrary translation result into a plain string.
// Remote services and their wrappers have been observed returning plain
// strings, objects with a text attribute, dict-like exports, lists and
// tuples of any of those, and occasionally bare numbers. Anything that
// cannot be reduced to text falls back to the original input, and the
// function never panics.
func Normalize(result any, original string) (out string) {
	defer func() {
		if recover() != nil {
			out = original
		}
	}()

	s, ok := normalizeValue(reflect.ValueOf(result))
	if !ok {
		return original
	}
	return s
}

func normalizeValue(v reflect.Value) (string, bool) {
	if !v.IsValid() {
		return "", false
	}

	switch v.Kind() {
	case reflect.String:
		return v.String(), true

	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return "", false
		}
		return normalizeValue(v.Elem())

	case reflect.Struct:
		// An object with a text attribute: try the common field names.
		for _, name := range []string{"Text", "TranslatedText", "Content"} {
			f := v.FieldByName(name)
			if f.IsValid() && f.Kind() == reflect.String {
				return f.String(), true
			}
		}
		return "", false

	case reflect.Map:
		for _, key := range []string{"text", "translatedText", "translated_text", "content"} {
			mv := v.MapIndex(reflect.ValueOf(key))
			if mv.IsValid() {
				if s, ok := normalizeValue(mv); ok {
					return s, true
				}
			}
		}
		return "", false

	case reflect.Slice, reflect.Array:
		// Lists and tuples: join the normalizable elements.
		var parts []string
		for i := 0; i < v.Len(); i++ {
			if s, ok := normalizeValue(v.Index(i)); ok {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, " "), true

	default:
		// Numbers, booleans, channels and anything else are not text.
		return "", false
	}
}
