// Package deck provides the document-model collaborator for PPTrans:
// loading a PPTX presentation, walking slides, shapes, paragraphs and runs,
// mutating run text and formatting, and saving the result.
//
// Handles returned by a Document (slides, shapes, paragraphs, runs) are
// owned by the document and are only valid until Close is called. Callers
// must not retain them across a save/close boundary.
package deck

import "fmt"

// Paragraph alignment values.
const (
	AlignLeft    = "left"
	AlignCenter  = "center"
	AlignRight   = "right"
	AlignJustify = "justify"
)

// RGB is a 24-bit solid color.
type RGB struct {
	R, G, B uint8
}

// Hex returns the color as an uppercase RRGGBB string.
func (c RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// Document is a loaded presentation.
type Document interface {
	// SlideCount returns the number of slides.
	SlideCount() int
	// Slide returns the i-th slide (0-based).
	Slide(i int) (Slide, error)
	// Save writes the presentation to the given path. The source file is
	// never written in place.
	Save(path string) error
	// Close releases resources. All handles become invalid.
	Close() error
}

// Slide is one slide of a presentation.
type Slide interface {
	// Shapes returns the slide's shapes in native order.
	Shapes() []Shape
}

// Shape is a drawable object on a slide.
type Shape interface {
	// TextContainer returns the shape's text body, or nil when the shape
	// carries no text.
	TextContainer() TextContainer
}

// TextContainer holds the paragraphs of a text-bearing shape.
type TextContainer interface {
	Paragraphs() []Paragraph
}

// Paragraph is one paragraph within a text container.
type Paragraph interface {
	// Runs returns the paragraph's runs in native order, including
	// zero-length runs.
	Runs() []Run
	// Text returns the concatenation of all run texts.
	Text() string

	// Alignment returns the explicit alignment, if set.
	Alignment() (string, bool)
	SetAlignment(align string)

	// SpaceBefore returns the explicit spacing before the paragraph in
	// points, if set.
	SpaceBefore() (float64, bool)
	SetSpaceBefore(points float64)

	// SpaceAfter returns the explicit spacing after the paragraph in
	// points, if set.
	SpaceAfter() (float64, bool)
	SetSpaceAfter(points float64)
}

// Run is the smallest independently formatted text unit.
type Run interface {
	Text() string
	SetText(text string)

	FontName() (string, bool)
	SetFontName(name string)

	// FontSize is in points.
	FontSize() (float64, bool)
	SetFontSize(points float64)

	Bold() (bool, bool)
	SetBold(bold bool)

	Italic() (bool, bool)
	SetItalic(italic bool)

	Underline() (bool, bool)
	SetUnderline(underline bool)

	Color() (RGB, bool)
	SetColor(color RGB)
}

// OutputPath derives the save path for a translated copy of the input:
// the input's directory and stem with a "_translated" suffix before the
// extension.
func OutputPath(inputPath string) string {
	ext := ""
	stem := inputPath
	for i := len(inputPath) - 1; i >= 0; i-- {
		if inputPath[i] == '.' {
			stem = inputPath[:i]
			ext = inputPath[i:]
			break
		}
		if inputPath[i] == '/' || inputPath[i] == '\\' {
			break
		}
	}
	return stem + "_translated" + ext
}
