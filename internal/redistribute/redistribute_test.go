package redistribute

import (
	"strings"
	"testing"
	"testing/quick"

	"pptrans/internal/deck"
	"pptrans/internal/extract"
)

func makeElement(translated string, originals ...string) *extract.ParagraphElement {
	elem := &extract.ParagraphElement{
		OriginalText:   strings.Join(originals, ""),
		TranslatedText: translated,
	}
	for i, o := range originals {
		elem.Fragments = append(elem.Fragments, extract.RunFragment{
			RunIndex:     i,
			OriginalText: o,
		})
	}
	return elem
}

func joined(elem *extract.ParagraphElement) string {
	var sb strings.Builder
	for _, f := range elem.Fragments {
		sb.WriteString(f.TranslatedText)
	}
	return sb.String()
}

func TestRedistributeTwoRuns(t *testing.T) {
	elem := makeElement("Hello World", "Hallo ", "Welt")
	Redistribute(elem)

	if got := elem.Fragments[0].TranslatedText; got != "Hello " {
		t.Errorf("fragment 0 = %q, want %q", got, "Hello ")
	}
	if got := elem.Fragments[1].TranslatedText; got != "World" {
		t.Errorf("fragment 1 = %q, want %q", got, "World")
	}
}

func TestRedistributeUnchangedText(t *testing.T) {
	elem := makeElement("Hallo Welt", "Hallo ", "Welt")
	Redistribute(elem)

	if got := elem.Fragments[0].TranslatedText; got != "Hallo " {
		t.Errorf("fragment 0 = %q, want original boundaries", got)
	}
	if got := elem.Fragments[1].TranslatedText; got != "Welt" {
		t.Errorf("fragment 1 = %q, want original boundaries", got)
	}
}

func TestRedistributeSingleFragment(t *testing.T) {
	elem := makeElement("Hello", "Hallo")
	Redistribute(elem)
	if got := elem.Fragments[0].TranslatedText; got != "Hello" {
		t.Errorf("fragment 0 = %q, want %q", got, "Hello")
	}
}

func TestRedistributeZeroLengthFragment(t *testing.T) {
	elem := makeElement("Guten Morgen", "Guten ", "", "Morgen")
	Redistribute(elem)
	if len(elem.Fragments) != 3 {
		t.Fatalf("fragment count changed to %d", len(elem.Fragments))
	}
	if got := joined(elem); got != "Guten Morgen" {
		t.Errorf("joined = %q, want the full translated text", got)
	}
}

func TestRedistributeShorterTranslation(t *testing.T) {
	elem := makeElement("Hi", "Guten ", "Morgen ", "allerseits")
	Redistribute(elem)
	if len(elem.Fragments) != 3 {
		t.Fatalf("fragment count changed to %d", len(elem.Fragments))
	}
	if got := joined(elem); got != "Hi" {
		t.Errorf("joined = %q, want %q", got, "Hi")
	}
}

func TestRedistributeEmptyOriginals(t *testing.T) {
	elem := makeElement("Hello", "", "")
	Redistribute(elem)
	if got := joined(elem); got != "Hello" {
		t.Errorf("joined = %q, want %q", got, "Hello")
	}
}

// The two hard invariants: fragment count is preserved and the joined
// output equals the translated text exactly, for arbitrary inputs.
func TestRedistributeInvariants(t *testing.T) {
	property := func(translated string, a, b, c string) bool {
		elem := makeElement(translated, a, b, c)
		Redistribute(elem)
		return len(elem.Fragments) == 3 && joined(elem) == translated
	}
	if err := quick.Check(property, &quick.Config{MaxCount: 500}); err != nil {
		t.Error(err)
	}
}

func TestRedistributeUnicode(t *testing.T) {
	elem := makeElement("Grüße aus München", "Greetings ", "from Munich")
	Redistribute(elem)
	if got := joined(elem); got != "Grüße aus München" {
		t.Errorf("joined = %q, want the full translated text", got)
	}
	for i, f := range elem.Fragments {
		if !strings.Contains("Grüße aus München", f.TranslatedText) && f.TranslatedText != "" {
			t.Errorf("fragment %d = %q is not a contiguous slice", i, f.TranslatedText)
		}
	}
}

func TestRedistributePreservesFormattingSnapshots(t *testing.T) {
	elem := makeElement("Hello World", "Hallo ", "Welt")
	elem.Fragments[0].Formatting = extract.RunFormatting{Bold: true, HasBold: true, Color: deck.RGB{R: 255}, HasColor: true}
	Redistribute(elem)
	if !elem.Fragments[0].Formatting.HasBold || !elem.Fragments[0].Formatting.Bold {
		t.Error("formatting snapshot was modified by redistribution")
	}
}
