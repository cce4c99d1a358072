// Package redistribute maps a translated paragraph string back onto the
// paragraph's original run boundaries.
//
// The allocation is a character-proportional heuristic with word-boundary
// backtracking. It preserves the fragment count and never drops or
// duplicates characters, but it makes no semantic word-alignment promise:
// language pairs with a large length-ratio skew will split imperfectly.
package redistribute

import (
	"math"
	"unicode"

	"pptrans/internal/extract"
)

// Redistribute fills TranslatedText on every fragment of the element.
// The element's own TranslatedText must already be set.
func Redistribute(elem *extract.ParagraphElement) {
	n := len(elem.Fragments)
	if n == 0 {
		return
	}

	// Unchanged text keeps the original run boundaries exactly.
	if elem.TranslatedText == elem.OriginalText {
		for i := range elem.Fragments {
			elem.Fragments[i].TranslatedText = elem.Fragments[i].OriginalText
		}
		return
	}

	if n == 1 {
		elem.Fragments[0].TranslatedText = elem.TranslatedText
		return
	}

	originals := make([]string, n)
	for i := range elem.Fragments {
		originals[i] = elem.Fragments[i].OriginalText
	}
	parts := splitProportional(elem.TranslatedText, originals)
	for i := range elem.Fragments {
		elem.Fragments[i].TranslatedText = parts[i]
	}
}

// splitProportional cuts translated into len(originals) pieces whose
// lengths are proportional to the original pieces. The concatenation of
// the result always equals translated.
func splitProportional(translated string, originals []string) []string {
	n := len(originals)
	parts := make([]string, n)

	trans := []rune(translated)
	total := 0
	lengths := make([]int, n)
	for i, o := range originals {
		lengths[i] = len([]rune(o))
		total += lengths[i]
	}
	if total == 0 {
		// Degenerate original: put everything in the last fragment.
		parts[n-1] = translated
		return parts
	}

	pos := 0
	for i := 0; i < n-1; i++ {
		target := int(math.Round(float64(len(trans)) * float64(lengths[i]) / float64(total)))
		cut := pos + target
		if cut > len(trans) {
			cut = len(trans)
		}
		cut = backtrackToSpace(trans, pos, cut, target)
		parts[i] = string(trans[pos:cut])
		pos = cut
	}
	// The rounding remainder goes to the last fragment.
	parts[n-1] = string(trans[pos:])
	return parts
}

// backtrackToSpace moves a cut that lands mid-word back to just after the
// nearest preceding space, unless doing so would discard more than half
// of the intended slice.
func backtrackToSpace(trans []rune, start, cut, target int) int {
	if cut <= start || cut >= len(trans) {
		return cut
	}
	if unicode.IsSpace(trans[cut]) || unicode.IsSpace(trans[cut-1]) {
		return cut
	}
	for back := cut - 1; back > start; back-- {
		if unicode.IsSpace(trans[back-1]) {
			if (cut-back)*2 > target {
				return cut
			}
			return back
		}
	}
	return cut
}
