// Package apply writes translated text and captured formatting back onto
// the document's run and paragraph handles.
package apply

import (
	"fmt"

	"pptrans/internal/extract"
	"pptrans/internal/logger"
)

// ProgressFunc reports write-back progress per slide.
type ProgressFunc func(current, total int, message string)

// Result counts the outcome of one apply pass.
type Result struct {
	FragmentsApplied int
	FragmentsFailed  int
}

// Applier writes elements back into the document.
type Applier struct{}

func NewApplier() *Applier {
	return &Applier{}
}

// Apply writes every element's fragments back to their run handles. A
// failing fragment is counted and logged; it never stops the pass, so a
// partially translated document can still be saved. Progress is
// reported after each slide's elements are written; elements arrive in
// slide order from extraction.
func (a *Applier) Apply(elements []*extract.ParagraphElement, progress ProgressFunc) *Result {
	res := &Result{}
	slides := countSlides(elements)
	done := 0
	for i, elem := range elements {
		a.applyElement(elem, res)
		if i == len(elements)-1 || elements[i+1].SlideIndex != elem.SlideIndex {
			done++
			if progress != nil {
				progress(done, slides, fmt.Sprintf("applied slide %d of %d", done, slides))
			}
		}
	}
	logger.Info("write-back finished",
		logger.Int("applied", res.FragmentsApplied),
		logger.Int("failed", res.FragmentsFailed))
	return res
}

func countSlides(elements []*extract.ParagraphElement) int {
	seen := make(map[int]bool)
	for _, elem := range elements {
		seen[elem.SlideIndex] = true
	}
	return len(seen)
}

func (a *Applier) applyElement(elem *extract.ParagraphElement, res *Result) {
	for i := range elem.Fragments {
		if err := applyFragment(&elem.Fragments[i]); err != nil {
			logger.Warn("failed to write fragment",
				logger.String("element", elem.ID),
				logger.Int("run", elem.Fragments[i].RunIndex),
				logger.Err(err))
			res.FragmentsFailed++
			continue
		}
		res.FragmentsApplied++
	}

	if err := applyParagraphFormatting(elem); err != nil {
		logger.Warn("failed to write paragraph formatting",
			logger.String("element", elem.ID), logger.Err(err))
		res.FragmentsFailed++
	}
}

// applyFragment sets the text first and the formatting after. Some
// document models reset run formatting when the text is reassigned, so
// the order matters.
func applyFragment(frag *extract.RunFragment) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("run handle panicked: %v", r)
		}
	}()

	if frag.Run == nil {
		return fmt.Errorf("run handle is nil")
	}

	frag.Run.SetText(frag.TranslatedText)

	f := frag.Formatting
	if f.HasFontName {
		frag.Run.SetFontName(f.FontName)
	}
	if f.HasFontSize {
		frag.Run.SetFontSize(f.FontSize)
	}
	if f.HasBold {
		frag.Run.SetBold(f.Bold)
	}
	if f.HasItalic {
		frag.Run.SetItalic(f.Italic)
	}
	if f.HasUnderline {
		frag.Run.SetUnderline(f.Underline)
	}
	if f.HasColor {
		frag.Run.SetColor(f.Color)
	}
	return nil
}

func applyParagraphFormatting(elem *extract.ParagraphElement) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("paragraph handle panicked: %v", r)
		}
	}()

	if elem.Paragraph == nil {
		return fmt.Errorf("paragraph handle is nil")
	}

	f := elem.Formatting
	if f.HasAlignment {
		elem.Paragraph.SetAlignment(f.Alignment)
	}
	if f.HasSpaceBefore {
		elem.Paragraph.SetSpaceBefore(f.SpaceBefore)
	}
	if f.HasSpaceAfter {
		elem.Paragraph.SetSpaceAfter(f.SpaceAfter)
	}
	return nil
}
