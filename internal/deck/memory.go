package deck

import (
	"strings"

	"pptrans/internal/types"
)

// MemoryDocument is an in-memory Document. It is used to build decks
// programmatically and as a stand-in for file-backed documents in tests.
type MemoryDocument struct {
	slides []*MemorySlide
	Saved  []string // paths passed to Save, in order
	closed bool
}

// NewMemoryDocument creates an empty in-memory document.
func NewMemoryDocument() *MemoryDocument {
	return &MemoryDocument{}
}

// AddSlide appends an empty slide and returns it for population.
func (d *MemoryDocument) AddSlide() *MemorySlide {
	s := &MemorySlide{}
	d.slides = append(d.slides, s)
	return s
}

func (d *MemoryDocument) SlideCount() int {
	return len(d.slides)
}

func (d *MemoryDocument) Slide(i int) (Slide, error) {
	if d.closed {
		return nil, types.NewAppError(types.ErrInternal, "document is closed", nil)
	}
	if i < 0 || i >= len(d.slides) {
		return nil, types.NewAppError(types.ErrInternal, "slide index out of range", nil)
	}
	return d.slides[i], nil
}

func (d *MemoryDocument) Save(path string) error {
	if d.closed {
		return types.NewAppError(types.ErrSave, "document is closed", nil)
	}
	d.Saved = append(d.Saved, path)
	return nil
}

func (d *MemoryDocument) Close() error {
	d.closed = true
	return nil
}

// MemorySlide implements Slide.
type MemorySlide struct {
	shapes []*MemoryShape
}

// AddShape appends an empty text shape and returns it.
func (s *MemorySlide) AddShape() *MemoryShape {
	sh := &MemoryShape{hasText: true}
	s.shapes = append(s.shapes, sh)
	return sh
}

// AddNonTextShape appends a shape with no text container, such as a
// picture or connector.
func (s *MemorySlide) AddNonTextShape() *MemoryShape {
	sh := &MemoryShape{}
	s.shapes = append(s.shapes, sh)
	return sh
}

func (s *MemorySlide) Shapes() []Shape {
	out := make([]Shape, len(s.shapes))
	for i, sh := range s.shapes {
		out[i] = sh
	}
	return out
}

// MemoryShape implements Shape.
type MemoryShape struct {
	hasText    bool
	paragraphs []*MemoryParagraph
}

// AddParagraph appends an empty paragraph and returns it.
func (sh *MemoryShape) AddParagraph() *MemoryParagraph {
	p := &MemoryParagraph{}
	sh.paragraphs = append(sh.paragraphs, p)
	return p
}

func (sh *MemoryShape) TextContainer() TextContainer {
	if !sh.hasText {
		return nil
	}
	return sh
}

func (sh *MemoryShape) Paragraphs() []Paragraph {
	out := make([]Paragraph, len(sh.paragraphs))
	for i, p := range sh.paragraphs {
		out[i] = p
	}
	return out
}

// MemoryParagraph implements Paragraph.
type MemoryParagraph struct {
	runs        []*MemoryRun
	alignment   string
	hasAlign    bool
	spaceBefore float64
	hasSpcBef   bool
	spaceAfter  float64
	hasSpcAft   bool
}

// AddRun appends a run with the given text and returns it.
func (p *MemoryParagraph) AddRun(text string) *MemoryRun {
	r := &MemoryRun{text: text}
	p.runs = append(p.runs, r)
	return r
}

func (p *MemoryParagraph) Runs() []Run {
	out := make([]Run, len(p.runs))
	for i, r := range p.runs {
		out[i] = r
	}
	return out
}

func (p *MemoryParagraph) Text() string {
	var sb strings.Builder
	for _, r := range p.runs {
		sb.WriteString(r.text)
	}
	return sb.String()
}

func (p *MemoryParagraph) Alignment() (string, bool) {
	return p.alignment, p.hasAlign
}

func (p *MemoryParagraph) SetAlignment(align string) {
	p.alignment = align
	p.hasAlign = true
}

func (p *MemoryParagraph) SpaceBefore() (float64, bool) {
	return p.spaceBefore, p.hasSpcBef
}

func (p *MemoryParagraph) SetSpaceBefore(points float64) {
	p.spaceBefore = points
	p.hasSpcBef = true
}

func (p *MemoryParagraph) SpaceAfter() (float64, bool) {
	return p.spaceAfter, p.hasSpcAft
}

func (p *MemoryParagraph) SetSpaceAfter(points float64) {
	p.spaceAfter = points
	p.hasSpcAft = true
}

// MemoryRun implements Run. The With* builders return the run so calls
// can be chained when constructing fixtures.
type MemoryRun struct {
	text         string
	fontName     string
	hasFontName  bool
	fontSize     float64
	hasFontSize  bool
	bold         bool
	hasBold      bool
	italic       bool
	hasItalic    bool
	underline    bool
	hasUnderline bool
	color        RGB
	hasColor     bool
}

func (r *MemoryRun) WithFontName(name string) *MemoryRun {
	r.SetFontName(name)
	return r
}

func (r *MemoryRun) WithFontSize(points float64) *MemoryRun {
	r.SetFontSize(points)
	return r
}

func (r *MemoryRun) WithBold(bold bool) *MemoryRun {
	r.SetBold(bold)
	return r
}

func (r *MemoryRun) WithItalic(italic bool) *MemoryRun {
	r.SetItalic(italic)
	return r
}

func (r *MemoryRun) WithUnderline(underline bool) *MemoryRun {
	r.SetUnderline(underline)
	return r
}

func (r *MemoryRun) WithColor(color RGB) *MemoryRun {
	r.SetColor(color)
	return r
}

func (r *MemoryRun) Text() string        { return r.text }
func (r *MemoryRun) SetText(text string) { r.text = text }

func (r *MemoryRun) FontName() (string, bool) { return r.fontName, r.hasFontName }
func (r *MemoryRun) SetFontName(name string) {
	r.fontName = name
	r.hasFontName = true
}

func (r *MemoryRun) FontSize() (float64, bool) { return r.fontSize, r.hasFontSize }
func (r *MemoryRun) SetFontSize(points float64) {
	r.fontSize = points
	r.hasFontSize = true
}

func (r *MemoryRun) Bold() (bool, bool) { return r.bold, r.hasBold }
func (r *MemoryRun) SetBold(bold bool) {
	r.bold = bold
	r.hasBold = true
}

func (r *MemoryRun) Italic() (bool, bool) { return r.italic, r.hasItalic }
func (r *MemoryRun) SetItalic(italic bool) {
	r.italic = italic
	r.hasItalic = true
}

func (r *MemoryRun) Underline() (bool, bool) { return r.underline, r.hasUnderline }
func (r *MemoryRun) SetUnderline(underline bool) {
	r.underline = underline
	r.hasUnderline = true
}

func (r *MemoryRun) Color() (RGB, bool) { return r.color, r.hasColor }
func (r *MemoryRun) SetColor(color RGB) {
	r.color = color
	r.hasColor = true
}
