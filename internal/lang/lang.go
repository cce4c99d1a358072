// Package lang manages language codes for PPTrans.
// Codes are validated through golang.org/x/text; display names use the
// English name table.
package lang

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"pptrans/internal/logger"
	"pptrans/internal/types"
)

// Auto is the pseudo-code requesting source language detection.
const Auto = "auto"

// popular lists the codes surfaced first in UI pickers.
var popular = []string{"en", "de", "fr", "es", "it", "pt", "ru", "zh-cn", "ja", "ko", "ar"}

// aliases maps legacy translation-service codes to BCP 47 tags.
var aliases = map[string]string{
	"zh-cn": "zh-Hans",
	"zh-tw": "zh-Hant",
	"iw":    "he",
	"jw":    "jv",
	"tl":    "fil",
}

// Normalize validates a language code and returns its canonical lowercase
// form. "auto" passes through unchanged.
func Normalize(code string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return "", types.NewAppError(types.ErrLanguage, "empty language code", nil)
	}
	if normalized == Auto {
		return Auto, nil
	}

	if _, err := parseTag(normalized); err != nil {
		logger.Warn("unsupported language code", logger.String("code", code))
		return "", types.NewAppErrorWithDetails(types.ErrLanguage,
			"unsupported language code", code, err)
	}

	return normalized, nil
}

// Name returns the English display name for a language code.
func Name(code string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == Auto {
		return "Auto-detect", nil
	}

	tag, err := parseTag(normalized)
	if err != nil {
		return "", types.NewAppErrorWithDetails(types.ErrLanguage,
			"unsupported language code", code, err)
	}

	return display.English.Tags().Name(tag), nil
}

// ValidatePair validates a source/target pair for translation. The
// target may not be "auto". An equal pair is accepted; translation then
// degenerates to a pass-through.
func ValidatePair(source, target string) (string, string, error) {
	src, err := Normalize(source)
	if err != nil {
		return "", "", err
	}
	tgt, err := Normalize(target)
	if err != nil {
		return "", "", err
	}

	if tgt == Auto {
		return "", "", types.NewAppError(types.ErrLanguage,
			"auto-detect cannot be used as target language", nil)
	}

	return src, tgt, nil
}

// Popular returns the popular language codes with display names,
// auto-detect first.
func Popular() [][2]string {
	out := [][2]string{{Auto, "Auto-detect"}}
	for _, code := range popular {
		name, err := Name(code)
		if err != nil {
			continue
		}
		out = append(out, [2]string{code, name})
	}
	return out
}

// Search returns codes from the popular set whose code or name contains the
// query, exact matches first.
func Search(query string) [][2]string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var matches [][2]string
	for _, entry := range Popular() {
		code, name := entry[0], entry[1]
		if strings.Contains(strings.ToLower(code), query) ||
			strings.Contains(strings.ToLower(name), query) {
			matches = append(matches, entry)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		iExact := strings.EqualFold(matches[i][0], query) || strings.EqualFold(matches[i][1], query)
		jExact := strings.EqualFold(matches[j][0], query) || strings.EqualFold(matches[j][1], query)
		return iExact && !jExact
	})

	return matches
}

func parseTag(code string) (language.Tag, error) {
	if alias, ok := aliases[code]; ok {
		code = alias
	}
	return language.Parse(code)
}
