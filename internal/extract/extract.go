// Package extract walks a presentation and collects the translatable
// text elements together with handles back into the document, so that
// translated text and preserved formatting can be written back later.
package extract

import (
	"fmt"
	"strings"

	"pptrans/internal/deck"
	"pptrans/internal/logger"
)

// RunFormatting is a snapshot of the character formatting of one run.
// Each attribute carries a presence flag; absent attributes inherit
// from the layout or master and must not be written back.
type RunFormatting struct {
	FontName     string
	HasFontName  bool
	FontSize     float64
	HasFontSize  bool
	Bold         bool
	HasBold      bool
	Italic       bool
	HasItalic    bool
	Underline    bool
	HasUnderline bool
	Color        deck.RGB
	HasColor     bool
}

// ParagraphFormatting is a snapshot of paragraph-level formatting.
type ParagraphFormatting struct {
	Alignment      string
	HasAlignment   bool
	SpaceBefore    float64
	HasSpaceBefore bool
	SpaceAfter     float64
	HasSpaceAfter  bool
}

// RunFragment records one run of a paragraph: its original text, the
// captured formatting and the live handle for the write-back phase.
type RunFragment struct {
	RunIndex       int
	OriginalText   string
	TranslatedText string
	Formatting     RunFormatting
	Run            deck.Run
}

// ParagraphElement is the unit of translation: one paragraph with its
// position in the deck, the concatenated original text and the per-run
// fragments.
type ParagraphElement struct {
	ID             string
	SlideIndex     int
	ShapeIndex     int
	ParagraphIndex int
	OriginalText   string
	TranslatedText string
	Formatting     ParagraphFormatting
	Fragments      []RunFragment
	Paragraph      deck.Paragraph
}

// Result carries the extracted elements plus walk statistics.
type Result struct {
	Elements      []*ParagraphElement
	SlidesVisited int
	ShapesVisited int
	SkippedBlank  int
	Errors        int
}

// ProgressFunc reports extraction progress per slide.
type ProgressFunc func(current, total int, message string)

// Extractor collects paragraph elements from selected slides.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract walks the given slide indices (0-based) in order and returns
// every non-blank paragraph. A defective slide or shape is logged and
// skipped; it never aborts the walk. Progress is reported after each
// slide, unreadable ones included.
func (e *Extractor) Extract(doc deck.Document, slideIndices []int, progress ProgressFunc) (*Result, error) {
	res := &Result{}

	for i, slideIdx := range slideIndices {
		slide, err := doc.Slide(slideIdx)
		if err != nil {
			logger.Warn("skipping unreadable slide",
				logger.Int("slide", slideIdx+1), logger.Err(err))
			res.Errors++
		} else {
			res.SlidesVisited++
			e.extractSlide(slide, slideIdx, res)
		}
		if progress != nil {
			progress(i+1, len(slideIndices),
				fmt.Sprintf("extracted slide %d of %d", i+1, len(slideIndices)))
		}
	}

	logger.Info("text extraction finished",
		logger.Int("slides", res.SlidesVisited),
		logger.Int("elements", len(res.Elements)),
		logger.Int("skipped_blank", res.SkippedBlank),
		logger.Int("errors", res.Errors))

	return res, nil
}

func (e *Extractor) extractSlide(slide deck.Slide, slideIdx int, res *Result) {
	for shapeIdx, shape := range slide.Shapes() {
		tc := shape.TextContainer()
		if tc == nil {
			continue
		}
		res.ShapesVisited++
		e.extractShape(tc, slideIdx, shapeIdx, res)
	}
}

func (e *Extractor) extractShape(tc deck.TextContainer, slideIdx, shapeIdx int, res *Result) {
	for paraIdx, para := range tc.Paragraphs() {
		elem := e.extractParagraph(para, slideIdx, shapeIdx, paraIdx)
		if elem == nil {
			res.SkippedBlank++
			continue
		}
		res.Elements = append(res.Elements, elem)
	}
}

// extractParagraph returns nil when the paragraph has no translatable
// text. Zero-length runs are still recorded as fragments so write-back
// can address every run of the paragraph.
func (e *Extractor) extractParagraph(para deck.Paragraph, slideIdx, shapeIdx, paraIdx int) *ParagraphElement {
	runs := para.Runs()
	if len(runs) == 0 {
		return nil
	}

	var sb strings.Builder
	fragments := make([]RunFragment, 0, len(runs))
	for runIdx, run := range runs {
		text := run.Text()
		sb.WriteString(text)
		fragments = append(fragments, RunFragment{
			RunIndex:     runIdx,
			OriginalText: text,
			Formatting:   captureRunFormatting(run),
			Run:          run,
		})
	}

	original := sb.String()
	if strings.TrimSpace(original) == "" {
		return nil
	}

	return &ParagraphElement{
		ID:             fmt.Sprintf("s%d/sh%d/p%d", slideIdx, shapeIdx, paraIdx),
		SlideIndex:     slideIdx,
		ShapeIndex:     shapeIdx,
		ParagraphIndex: paraIdx,
		OriginalText:   original,
		Formatting:     captureParagraphFormatting(para),
		Fragments:      fragments,
		Paragraph:      para,
	}
}

func captureRunFormatting(run deck.Run) RunFormatting {
	var f RunFormatting
	f.FontName, f.HasFontName = run.FontName()
	f.FontSize, f.HasFontSize = run.FontSize()
	f.Bold, f.HasBold = run.Bold()
	f.Italic, f.HasItalic = run.Italic()
	f.Underline, f.HasUnderline = run.Underline()
	f.Color, f.HasColor = run.Color()
	return f
}

func captureParagraphFormatting(para deck.Paragraph) ParagraphFormatting {
	var f ParagraphFormatting
	f.Alignment, f.HasAlignment = para.Alignment()
	f.SpaceBefore, f.HasSpaceBefore = para.SpaceBefore()
	f.SpaceAfter, f.HasSpaceAfter = para.SpaceAfter()
	return f
}
