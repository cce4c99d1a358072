package extract

import (
	"testing"

	"pptrans/internal/deck"
)

func buildDeck() *deck.MemoryDocument {
	doc := deck.NewMemoryDocument()

	// Slide 1: title with mixed formatting plus a picture.
	s1 := doc.AddSlide()
	title := s1.AddShape()
	p := title.AddParagraph()
	p.SetAlignment(deck.AlignCenter)
	p.AddRun("Hallo ").WithBold(true).WithFontSize(24)
	p.AddRun("Welt")
	s1.AddNonTextShape()

	// Slide 2: a blank paragraph and a real one.
	s2 := doc.AddSlide()
	body := s2.AddShape()
	body.AddParagraph().AddRun("   ")
	body.AddParagraph().AddRun("Zweite Folie").WithItalic(true)

	// Slide 3: empty shape, nothing extractable.
	s3 := doc.AddSlide()
	s3.AddShape()

	return doc
}

func TestExtractCollectsParagraphs(t *testing.T) {
	doc := buildDeck()
	res, err := NewExtractor().Extract(doc, []int{0, 1, 2}, nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if res.SlidesVisited != 3 {
		t.Errorf("SlidesVisited = %d, want 3", res.SlidesVisited)
	}
	if len(res.Elements) != 2 {
		t.Fatalf("Elements = %d, want 2", len(res.Elements))
	}
	if res.SkippedBlank != 1 {
		t.Errorf("SkippedBlank = %d, want 1", res.SkippedBlank)
	}

	first := res.Elements[0]
	if first.OriginalText != "Hallo Welt" {
		t.Errorf("element 0 text = %q, want %q", first.OriginalText, "Hallo Welt")
	}
	if first.SlideIndex != 0 || first.ShapeIndex != 0 || first.ParagraphIndex != 0 {
		t.Errorf("element 0 position = %d/%d/%d",
			first.SlideIndex, first.ShapeIndex, first.ParagraphIndex)
	}
	if len(first.Fragments) != 2 {
		t.Fatalf("element 0 fragments = %d, want 2", len(first.Fragments))
	}
	if first.Fragments[0].OriginalText != "Hallo " {
		t.Errorf("fragment 0 text = %q", first.Fragments[0].OriginalText)
	}
	if !first.Fragments[0].Formatting.HasBold || !first.Fragments[0].Formatting.Bold {
		t.Error("fragment 0 should capture bold")
	}
	if first.Fragments[1].Formatting.HasBold {
		t.Error("fragment 1 bold should be absent")
	}
	if !first.Formatting.HasAlignment || first.Formatting.Alignment != deck.AlignCenter {
		t.Errorf("element 0 alignment = %+v", first.Formatting)
	}

	second := res.Elements[1]
	if second.OriginalText != "Zweite Folie" {
		t.Errorf("element 1 text = %q", second.OriginalText)
	}
	if second.SlideIndex != 1 {
		t.Errorf("element 1 slide = %d, want 1", second.SlideIndex)
	}
}

func TestExtractRespectsSelection(t *testing.T) {
	doc := buildDeck()
	res, err := NewExtractor().Extract(doc, []int{1}, nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(res.Elements) != 1 {
		t.Fatalf("Elements = %d, want 1", len(res.Elements))
	}
	if res.Elements[0].OriginalText != "Zweite Folie" {
		t.Errorf("text = %q", res.Elements[0].OriginalText)
	}
}

func TestExtractSurvivesBadSlideIndex(t *testing.T) {
	doc := buildDeck()
	res, err := NewExtractor().Extract(doc, []int{0, 99}, nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Errors != 1 {
		t.Errorf("Errors = %d, want 1", res.Errors)
	}
	if len(res.Elements) != 1 {
		t.Errorf("Elements = %d, want 1 from the good slide", len(res.Elements))
	}
}

func TestExtractKeepsZeroLengthRuns(t *testing.T) {
	doc := deck.NewMemoryDocument()
	p := doc.AddSlide().AddShape().AddParagraph()
	p.AddRun("Text")
	p.AddRun("")

	res, err := NewExtractor().Extract(doc, []int{0}, nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(res.Elements) != 1 {
		t.Fatalf("Elements = %d, want 1", len(res.Elements))
	}
	if got := len(res.Elements[0].Fragments); got != 2 {
		t.Errorf("fragments = %d, want 2 (zero-length run kept)", got)
	}
}

func TestExtractReportsPerSlideProgress(t *testing.T) {
	doc := buildDeck()

	var currents []int
	total := 0
	progress := func(current, t int, _ string) {
		currents = append(currents, current)
		total = t
	}

	if _, err := NewExtractor().Extract(doc, []int{0, 1, 2}, progress); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(currents) != 3 || currents[0] != 1 || currents[2] != 3 {
		t.Errorf("currents = %v, want one callback per slide", currents)
	}
}

func TestExtractUniqueIDs(t *testing.T) {
	doc := buildDeck()
	res, _ := NewExtractor().Extract(doc, []int{0, 1, 2}, nil)
	seen := map[string]bool{}
	for _, e := range res.Elements {
		if seen[e.ID] {
			t.Errorf("duplicate element ID %q", e.ID)
		}
		seen[e.ID] = true
	}
}
