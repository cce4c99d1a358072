package deck

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"pptrans/internal/logger"
	"pptrans/internal/types"
)

// XML namespaces used in PPTX parts.
const (
	nsPresentationML = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsDrawingML      = "http://schemas.openxmlformats.org/drawingml/2006/main"
)

// PPTXDocument is a Document backed by a PPTX (Office Open XML) file.
type PPTXDocument struct {
	path      string
	zipReader *zip.ReadCloser
	slides    []*pptxSlide
	closed    bool
}

// Open loads a PPTX file. It fails with a document-load error when the file
// is missing or is not a readable presentation.
func Open(path string) (*PPTXDocument, error) {
	logger.Info("loading presentation", logger.String("path", path))

	if _, err := os.Stat(path); err != nil {
		logger.Error("presentation file not found", err, logger.String("path", path))
		return nil, types.NewAppErrorWithDetails(types.ErrDocumentLoad,
			"PowerPoint file not found", path, err)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		logger.Error("failed to open presentation archive", err, logger.String("path", path))
		return nil, types.NewAppErrorWithDetails(types.ErrDocumentLoad,
			"cannot load PowerPoint file", path, err)
	}

	doc := &PPTXDocument{
		path:      path,
		zipReader: zr,
	}

	if err := doc.validate(); err != nil {
		zr.Close()
		return nil, err
	}

	if err := doc.parseSlides(); err != nil {
		zr.Close()
		return nil, err
	}

	logger.Info("presentation loaded", logger.String("path", path), logger.Int("slides", len(doc.slides)))
	return doc, nil
}

// validate checks that the archive looks like a presentation.
func (d *PPTXDocument) validate() error {
	required := map[string]bool{
		"[Content_Types].xml":  false,
		"ppt/presentation.xml": false,
	}
	for _, f := range d.zipReader.File {
		if _, ok := required[f.Name]; ok {
			required[f.Name] = true
		}
	}
	for name, found := range required {
		if !found {
			return types.NewAppErrorWithDetails(types.ErrDocumentLoad,
				"not a PowerPoint presentation", "missing "+name, nil)
		}
	}
	return nil
}

// parseSlides locates and parses every slide part, sorted by slide number.
func (d *PPTXDocument) parseSlides() error {
	var slidePaths []string
	for _, f := range d.zipReader.File {
		if isSlidePart(f.Name) {
			slidePaths = append(slidePaths, f.Name)
		}
	}
	if len(slidePaths) == 0 {
		return types.NewAppErrorWithDetails(types.ErrDocumentLoad,
			"not a PowerPoint presentation", "no slides found", nil)
	}

	sort.Slice(slidePaths, func(i, j int) bool {
		return slideNumber(slidePaths[i]) < slideNumber(slidePaths[j])
	})

	for _, partPath := range slidePaths {
		data, err := d.partContent(partPath)
		if err != nil {
			return types.NewAppErrorWithDetails(types.ErrDocumentLoad,
				"cannot read slide", partPath, err)
		}
		root, prefixes, err := parseXML(bytes.NewReader(data))
		if err != nil {
			return types.NewAppErrorWithDetails(types.ErrDocumentLoad,
				"cannot parse slide", partPath, err)
		}
		d.slides = append(d.slides, &pptxSlide{
			partPath: partPath,
			root:     root,
			prefixes: prefixes,
		})
	}

	return nil
}

func isSlidePart(name string) bool {
	return strings.HasPrefix(name, "ppt/slides/slide") &&
		strings.HasSuffix(name, ".xml") &&
		!strings.Contains(name, "_rels")
}

// slideNumber extracts N from "ppt/slides/slideN.xml".
func slideNumber(partPath string) int {
	name := strings.TrimPrefix(partPath, "ppt/slides/slide")
	name = strings.TrimSuffix(name, ".xml")
	n, _ := strconv.Atoi(name)
	return n
}

func (d *PPTXDocument) partContent(name string) ([]byte, error) {
	for _, f := range d.zipReader.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("part not found: %s", name)
}

// SlideCount returns the number of slides.
func (d *PPTXDocument) SlideCount() int {
	return len(d.slides)
}

// Slide returns the i-th slide (0-based).
func (d *PPTXDocument) Slide(i int) (Slide, error) {
	if d.closed {
		return nil, types.NewAppError(types.ErrInternal, "document is closed", nil)
	}
	if i < 0 || i >= len(d.slides) {
		return nil, types.NewAppErrorWithDetails(types.ErrInternal,
			"slide index out of range", fmt.Sprintf("index %d of %d", i, len(d.slides)), nil)
	}
	return d.slides[i], nil
}

// Path returns the path the document was loaded from.
func (d *PPTXDocument) Path() string {
	return d.path
}

// Save writes the presentation to the given path. Slide parts are
// re-serialized from their (possibly modified) trees; all other archive
// entries are copied through unchanged.
func (d *PPTXDocument) Save(path string) error {
	if d.closed {
		return types.NewAppError(types.ErrSave, "document is closed", nil)
	}
	if path == d.path {
		return types.NewAppErrorWithDetails(types.ErrSave,
			"refusing to overwrite the input file", path, nil)
	}

	logger.Info("saving presentation", logger.String("path", path))

	modified := make(map[string]*pptxSlide, len(d.slides))
	for _, s := range d.slides {
		modified[s.partPath] = s
	}

	out, err := os.Create(path)
	if err != nil {
		logger.Error("failed to create output file", err, logger.String("path", path))
		return types.NewAppErrorWithDetails(types.ErrSave, "cannot save presentation", path, err)
	}

	zw := zip.NewWriter(out)
	for _, f := range d.zipReader.File {
		w, err := zw.Create(f.Name)
		if err != nil {
			zw.Close()
			out.Close()
			return types.NewAppErrorWithDetails(types.ErrSave, "cannot save presentation", f.Name, err)
		}

		if slide, ok := modified[f.Name]; ok {
			if err := serializeXML(w, slide.root, slide.prefixes); err != nil {
				zw.Close()
				out.Close()
				return types.NewAppErrorWithDetails(types.ErrSave, "cannot serialize slide", f.Name, err)
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			zw.Close()
			out.Close()
			return types.NewAppErrorWithDetails(types.ErrSave, "cannot read archive entry", f.Name, err)
		}
		if _, err := io.Copy(w, rc); err != nil {
			rc.Close()
			zw.Close()
			out.Close()
			return types.NewAppErrorWithDetails(types.ErrSave, "cannot copy archive entry", f.Name, err)
		}
		rc.Close()
	}

	if err := zw.Close(); err != nil {
		out.Close()
		return types.NewAppErrorWithDetails(types.ErrSave, "cannot finalize presentation", path, err)
	}
	if err := out.Close(); err != nil {
		return types.NewAppErrorWithDetails(types.ErrSave, "cannot finalize presentation", path, err)
	}

	logger.Info("presentation saved", logger.String("path", path))
	return nil
}

// Close releases the underlying archive. All handles become invalid.
func (d *PPTXDocument) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.slides = nil
	if d.zipReader != nil {
		err := d.zipReader.Close()
		d.zipReader = nil
		return err
	}
	return nil
}

// pptxSlide implements Slide over a parsed slide part.
type pptxSlide struct {
	partPath string
	root     *xmlNode
	prefixes map[string]string
}

// Shapes returns text-capable shapes in document order, descending into
// grouped shapes.
func (s *pptxSlide) Shapes() []Shape {
	cSld := s.root.child(nsPresentationML, "cSld")
	if cSld == nil {
		return nil
	}
	spTree := cSld.child(nsPresentationML, "spTree")
	if spTree == nil {
		return nil
	}

	var shapes []Shape
	collectShapes(spTree, &shapes)
	return shapes
}

func collectShapes(tree *xmlNode, out *[]Shape) {
	for _, c := range tree.children {
		if c.isText() || c.name.Space != nsPresentationML {
			continue
		}
		switch c.name.Local {
		case "sp":
			*out = append(*out, &pptxShape{node: c})
		case "grpSp":
			collectShapes(c, out)
		}
	}
}

// pptxShape implements Shape.
type pptxShape struct {
	node *xmlNode
}

func (sh *pptxShape) TextContainer() TextContainer {
	txBody := sh.node.child(nsPresentationML, "txBody")
	if txBody == nil {
		return nil
	}
	return &pptxTextContainer{node: txBody}
}

// pptxTextContainer implements TextContainer.
type pptxTextContainer struct {
	node *xmlNode
}

func (tc *pptxTextContainer) Paragraphs() []Paragraph {
	var out []Paragraph
	for _, p := range tc.node.childrenNamed(nsDrawingML, "p") {
		out = append(out, &pptxParagraph{node: p})
	}
	return out
}

// pptxParagraph implements Paragraph over an a:p element.
type pptxParagraph struct {
	node *xmlNode
}

func (p *pptxParagraph) Runs() []Run {
	var out []Run
	for _, r := range p.node.childrenNamed(nsDrawingML, "r") {
		out = append(out, &pptxRun{node: r})
	}
	return out
}

func (p *pptxParagraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.Text())
	}
	return sb.String()
}

var alignmentFromOOXML = map[string]string{
	"l":    AlignLeft,
	"ctr":  AlignCenter,
	"r":    AlignRight,
	"just": AlignJustify,
}

var alignmentToOOXML = map[string]string{
	AlignLeft:    "l",
	AlignCenter:  "ctr",
	AlignRight:   "r",
	AlignJustify: "just",
}

func (p *pptxParagraph) Alignment() (string, bool) {
	pPr := p.node.child(nsDrawingML, "pPr")
	if pPr == nil {
		return "", false
	}
	raw, ok := pPr.attr("algn")
	if !ok {
		return "", false
	}
	align, ok := alignmentFromOOXML[raw]
	return align, ok
}

func (p *pptxParagraph) SetAlignment(align string) {
	raw, ok := alignmentToOOXML[align]
	if !ok {
		return
	}
	p.ensurePPr().setAttr("algn", raw)
}

func (p *pptxParagraph) SpaceBefore() (float64, bool) {
	return p.spacing("spcBef")
}

func (p *pptxParagraph) SetSpaceBefore(points float64) {
	p.setSpacing("spcBef", points)
}

func (p *pptxParagraph) SpaceAfter() (float64, bool) {
	return p.spacing("spcAft")
}

func (p *pptxParagraph) SetSpaceAfter(points float64) {
	p.setSpacing("spcAft", points)
}

// spacing reads a:spcBef/a:spcAft > a:spcPts val (hundredths of a point).
func (p *pptxParagraph) spacing(local string) (float64, bool) {
	pPr := p.node.child(nsDrawingML, "pPr")
	if pPr == nil {
		return 0, false
	}
	spc := pPr.child(nsDrawingML, local)
	if spc == nil {
		return 0, false
	}
	pts := spc.child(nsDrawingML, "spcPts")
	if pts == nil {
		return 0, false
	}
	raw, ok := pts.attr("val")
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return float64(v) / 100, true
}

func (p *pptxParagraph) setSpacing(local string, points float64) {
	pPr := p.ensurePPr()
	spc := pPr.child(nsDrawingML, local)
	if spc == nil {
		spc = &xmlNode{name: xml.Name{Space: nsDrawingML, Local: local}}
		pPr.children = append(pPr.children, spc)
	}
	pts := spc.child(nsDrawingML, "spcPts")
	if pts == nil {
		pts = &xmlNode{name: xml.Name{Space: nsDrawingML, Local: "spcPts"}}
		spc.children = append(spc.children, pts)
	}
	pts.setAttr("val", strconv.Itoa(int(points*100)))
}

// ensurePPr returns the paragraph properties element, creating it as the
// first child when missing (schema requires a:pPr before the runs).
func (p *pptxParagraph) ensurePPr() *xmlNode {
	pPr := p.node.child(nsDrawingML, "pPr")
	if pPr == nil {
		pPr = &xmlNode{name: xml.Name{Space: nsDrawingML, Local: "pPr"}}
		p.node.insertChildAt(0, pPr)
	}
	return pPr
}

// pptxRun implements Run over an a:r element.
type pptxRun struct {
	node *xmlNode
}

func (r *pptxRun) Text() string {
	t := r.node.child(nsDrawingML, "t")
	if t == nil {
		return ""
	}
	return t.innerText()
}

func (r *pptxRun) SetText(text string) {
	t := r.node.child(nsDrawingML, "t")
	if t == nil {
		t = &xmlNode{name: xml.Name{Space: nsDrawingML, Local: "t"}}
		r.node.children = append(r.node.children, t)
	}
	t.setInnerText(text)
}

func (r *pptxRun) FontName() (string, bool) {
	rPr := r.node.child(nsDrawingML, "rPr")
	if rPr == nil {
		return "", false
	}
	latin := rPr.child(nsDrawingML, "latin")
	if latin == nil {
		return "", false
	}
	return latin.attr("typeface")
}

func (r *pptxRun) SetFontName(name string) {
	rPr := r.ensureRPr()
	latin := rPr.child(nsDrawingML, "latin")
	if latin == nil {
		latin = &xmlNode{name: xml.Name{Space: nsDrawingML, Local: "latin"}}
		rPr.children = append(rPr.children, latin)
	}
	latin.setAttr("typeface", name)
}

func (r *pptxRun) FontSize() (float64, bool) {
	rPr := r.node.child(nsDrawingML, "rPr")
	if rPr == nil {
		return 0, false
	}
	raw, ok := rPr.attr("sz")
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return float64(v) / 100, true
}

func (r *pptxRun) SetFontSize(points float64) {
	r.ensureRPr().setAttr("sz", strconv.Itoa(int(points*100)))
}

func (r *pptxRun) Bold() (bool, bool) {
	return r.boolProp("b")
}

func (r *pptxRun) SetBold(bold bool) {
	r.setBoolProp("b", bold)
}

func (r *pptxRun) Italic() (bool, bool) {
	return r.boolProp("i")
}

func (r *pptxRun) SetItalic(italic bool) {
	r.setBoolProp("i", italic)
}

func (r *pptxRun) Underline() (bool, bool) {
	rPr := r.node.child(nsDrawingML, "rPr")
	if rPr == nil {
		return false, false
	}
	raw, ok := rPr.attr("u")
	if !ok {
		return false, false
	}
	return raw != "none", true
}

func (r *pptxRun) SetUnderline(underline bool) {
	if underline {
		r.ensureRPr().setAttr("u", "sng")
	} else {
		r.ensureRPr().setAttr("u", "none")
	}
}

func (r *pptxRun) Color() (RGB, bool) {
	rPr := r.node.child(nsDrawingML, "rPr")
	if rPr == nil {
		return RGB{}, false
	}
	fill := rPr.child(nsDrawingML, "solidFill")
	if fill == nil {
		return RGB{}, false
	}
	// Theme colors (a:schemeClr) cannot be resolved without the theme
	// part; the color is reported as absent rather than guessed.
	srgb := fill.child(nsDrawingML, "srgbClr")
	if srgb == nil {
		return RGB{}, false
	}
	raw, ok := srgb.attr("val")
	if !ok || len(raw) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

func (r *pptxRun) SetColor(color RGB) {
	rPr := r.ensureRPr()
	fill := rPr.child(nsDrawingML, "solidFill")
	if fill == nil {
		fill = &xmlNode{name: xml.Name{Space: nsDrawingML, Local: "solidFill"}}
		rPr.children = append(rPr.children, fill)
	}
	fill.children = []*xmlNode{{
		name:  xml.Name{Space: nsDrawingML, Local: "srgbClr"},
		attrs: []xml.Attr{{Name: xml.Name{Local: "val"}, Value: color.Hex()}},
	}}
}

func (r *pptxRun) boolProp(local string) (bool, bool) {
	rPr := r.node.child(nsDrawingML, "rPr")
	if rPr == nil {
		return false, false
	}
	raw, ok := rPr.attr(local)
	if !ok {
		return false, false
	}
	return raw == "1" || raw == "true", true
}

func (r *pptxRun) setBoolProp(local string, value bool) {
	if value {
		r.ensureRPr().setAttr(local, "1")
	} else {
		r.ensureRPr().setAttr(local, "0")
	}
}

// ensureRPr returns the run properties element, creating it as the first
// child when missing (schema requires a:rPr before a:t).
func (r *pptxRun) ensureRPr() *xmlNode {
	rPr := r.node.child(nsDrawingML, "rPr")
	if rPr == nil {
		rPr = &xmlNode{name: xml.Name{Space: nsDrawingML, Local: "rPr"}}
		r.node.insertChildAt(0, rPr)
	}
	return rPr
}
