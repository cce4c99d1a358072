package deck

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSlide1XML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld>
    <p:spTree>
      <p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
      <p:grpSpPr/>
      <p:sp>
        <p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>
        <p:spPr/>
        <p:txBody>
          <a:bodyPr/>
          <a:p>
            <a:pPr algn="ctr"><a:spcBef><a:spcPts val="600"/></a:spcBef></a:pPr>
            <a:r>
              <a:rPr lang="de-DE" sz="2400" b="1" u="sng">
                <a:solidFill><a:srgbClr val="FF0000"/></a:solidFill>
                <a:latin typeface="Arial"/>
              </a:rPr>
              <a:t>Hallo </a:t>
            </a:r>
            <a:r>
              <a:rPr lang="de-DE" sz="1800"/>
              <a:t>Welt</a:t>
            </a:r>
          </a:p>
        </p:txBody>
      </p:sp>
      <p:pic>
        <p:nvPicPr><p:cNvPr id="3" name="Picture 2"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>
      </p:pic>
    </p:spTree>
  </p:cSld>
</p:sld>`

const testSlide2XML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld>
    <p:spTree>
      <p:sp>
        <p:nvSpPr><p:cNvPr id="2" name="Content 1"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>
        <p:spPr/>
        <p:txBody>
          <a:bodyPr/>
          <a:p>
            <a:r>
              <a:t>Zweite Folie</a:t>
            </a:r>
          </a:p>
        </p:txBody>
      </p:sp>
    </p:spTree>
  </p:cSld>
</p:sld>`

// writeTestDeck writes a minimal two-slide presentation archive.
func writeTestDeck(t *testing.T, path string) {
	t.Helper()

	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create test deck: %v", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	entries := map[string]string{
		"[Content_Types].xml":      `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"ppt/presentation.xml":     `<?xml version="1.0"?><p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`,
		"ppt/slides/slide1.xml":    testSlide1XML,
		"ppt/slides/slide2.xml":    testSlide2XML,
		"docProps/app.xml":         `<?xml version="1.0"?><Properties/>`,
		"ppt/slides/_rels/slide1.xml.rels": `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"/>`,
	}
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close test deck: %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.pptx"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestOpenNotAPresentation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.pptx")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("expected error for non-archive file")
	}
}

func TestOpenAndReadText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pptx")
	writeTestDeck(t, path)

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer doc.Close()

	if got := doc.SlideCount(); got != 2 {
		t.Fatalf("SlideCount() = %d, want 2", got)
	}

	slide, err := doc.Slide(0)
	if err != nil {
		t.Fatalf("Slide(0) error = %v", err)
	}
	shapes := slide.Shapes()
	if len(shapes) != 1 {
		t.Fatalf("Shapes() = %d shapes, want 1 (pictures are not text shapes)", len(shapes))
	}

	tc := shapes[0].TextContainer()
	if tc == nil {
		t.Fatal("TextContainer() = nil, want text body")
	}
	paras := tc.Paragraphs()
	if len(paras) != 1 {
		t.Fatalf("Paragraphs() = %d, want 1", len(paras))
	}
	if got := paras[0].Text(); got != "Hallo Welt" {
		t.Errorf("paragraph text = %q, want %q", got, "Hallo Welt")
	}

	runs := paras[0].Runs()
	if len(runs) != 2 {
		t.Fatalf("Runs() = %d, want 2", len(runs))
	}
	if got := runs[0].Text(); got != "Hallo " {
		t.Errorf("run 0 text = %q, want %q", got, "Hallo ")
	}

	if size, ok := runs[0].FontSize(); !ok || size != 24 {
		t.Errorf("run 0 FontSize() = %v, %v, want 24, true", size, ok)
	}
	if bold, ok := runs[0].Bold(); !ok || !bold {
		t.Errorf("run 0 Bold() = %v, %v, want true, true", bold, ok)
	}
	if _, ok := runs[1].Bold(); ok {
		t.Error("run 1 Bold() should be absent")
	}
	if u, ok := runs[0].Underline(); !ok || !u {
		t.Errorf("run 0 Underline() = %v, %v, want true, true", u, ok)
	}
	if name, ok := runs[0].FontName(); !ok || name != "Arial" {
		t.Errorf("run 0 FontName() = %q, %v, want Arial, true", name, ok)
	}
	if color, ok := runs[0].Color(); !ok || color.Hex() != "FF0000" {
		t.Errorf("run 0 Color() = %v, %v, want FF0000, true", color, ok)
	}

	if align, ok := paras[0].Alignment(); !ok || align != AlignCenter {
		t.Errorf("Alignment() = %q, %v, want center, true", align, ok)
	}
	if spc, ok := paras[0].SpaceBefore(); !ok || spc != 6 {
		t.Errorf("SpaceBefore() = %v, %v, want 6, true", spc, ok)
	}
	if _, ok := paras[0].SpaceAfter(); ok {
		t.Error("SpaceAfter() should be absent")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "deck.pptx")
	outPath := filepath.Join(dir, "deck_translated.pptx")
	writeTestDeck(t, inPath)

	doc, err := Open(inPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	slide, _ := doc.Slide(0)
	runs := slide.Shapes()[0].TextContainer().Paragraphs()[0].Runs()
	runs[0].SetText("Hello ")
	runs[1].SetText("World")
	runs[1].SetBold(true)

	if err := doc.Save(outPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopen the saved file and verify text and formatting survived.
	saved, err := Open(outPath)
	if err != nil {
		t.Fatalf("Open(saved) error = %v", err)
	}
	defer saved.Close()

	slide, _ = saved.Slide(0)
	paras := slide.Shapes()[0].TextContainer().Paragraphs()
	if got := paras[0].Text(); got != "Hello World" {
		t.Errorf("saved paragraph text = %q, want %q", got, "Hello World")
	}
	runs = paras[0].Runs()
	if bold, ok := runs[1].Bold(); !ok || !bold {
		t.Errorf("saved run 1 Bold() = %v, %v, want true, true", bold, ok)
	}
	if size, ok := runs[0].FontSize(); !ok || size != 24 {
		t.Errorf("saved run 0 FontSize() = %v, %v, want 24, true", size, ok)
	}
	if align, ok := paras[0].Alignment(); !ok || align != AlignCenter {
		t.Errorf("saved Alignment() = %q, %v, want center, true", align, ok)
	}

	// Slide 2 was untouched and must still parse.
	slide2, _ := saved.Slide(1)
	if got := slide2.Shapes()[0].TextContainer().Paragraphs()[0].Text(); got != "Zweite Folie" {
		t.Errorf("slide 2 text = %q, want %q", got, "Zweite Folie")
	}
}

func TestSaveRefusesInputPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pptx")
	writeTestDeck(t, path)

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer doc.Close()

	if err := doc.Save(path); err == nil {
		t.Fatal("Save() onto the input path should fail")
	}
}

func TestSaveEscapesSpecialCharacters(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "deck.pptx")
	outPath := filepath.Join(dir, "out.pptx")
	writeTestDeck(t, inPath)

	doc, err := Open(inPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	slide, _ := doc.Slide(0)
	run := slide.Shapes()[0].TextContainer().Paragraphs()[0].Runs()[0]
	run.SetText(`Tom & "Jerry" <3`)
	if err := doc.Save(outPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	doc.Close()

	saved, err := Open(outPath)
	if err != nil {
		t.Fatalf("Open(saved) error = %v", err)
	}
	defer saved.Close()
	slide, _ = saved.Slide(0)
	got := slide.Shapes()[0].TextContainer().Paragraphs()[0].Runs()[0].Text()
	if got != `Tom & "Jerry" <3` {
		t.Errorf("round-tripped text = %q", got)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"deck.pptx", "deck_translated.pptx"},
		{"/data/q3 review.pptx", "/data/q3 review_translated.pptx"},
		{"slides", "slides_translated"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.in); got != tt.want {
			t.Errorf("OutputPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMemoryDocument(t *testing.T) {
	doc := NewMemoryDocument()
	slide := doc.AddSlide()
	shape := slide.AddShape()
	para := shape.AddParagraph()
	para.AddRun("Guten ").WithBold(true).WithFontSize(20)
	para.AddRun("Tag")
	slide.AddNonTextShape()

	if doc.SlideCount() != 1 {
		t.Fatalf("SlideCount() = %d, want 1", doc.SlideCount())
	}
	s, err := doc.Slide(0)
	if err != nil {
		t.Fatal(err)
	}
	shapes := s.Shapes()
	if len(shapes) != 2 {
		t.Fatalf("Shapes() = %d, want 2", len(shapes))
	}
	if shapes[1].TextContainer() != nil {
		t.Error("non-text shape should have nil text container")
	}
	p := shapes[0].TextContainer().Paragraphs()[0]
	if p.Text() != "Guten Tag" {
		t.Errorf("Text() = %q", p.Text())
	}
	if bold, ok := p.Runs()[0].Bold(); !ok || !bold {
		t.Error("builder bold not preserved")
	}

	if err := doc.Save("out.pptx"); err != nil {
		t.Fatal(err)
	}
	if len(doc.Saved) != 1 || doc.Saved[0] != "out.pptx" {
		t.Errorf("Saved = %v", doc.Saved)
	}

	doc.Close()
	if _, err := doc.Slide(0); err == nil {
		t.Error("Slide() after Close() should fail")
	}
}

func TestParseXMLPreservesPrefixes(t *testing.T) {
	root, prefixes, err := parseXML(strings.NewReader(testSlide1XML))
	if err != nil {
		t.Fatalf("parseXML() error = %v", err)
	}
	if root.name.Local != "sld" {
		t.Errorf("root = %q, want sld", root.name.Local)
	}
	if prefixes[nsDrawingML] != "a" {
		t.Errorf("prefix for drawingml = %q, want a", prefixes[nsDrawingML])
	}
	if prefixes[nsPresentationML] != "p" {
		t.Errorf("prefix for presentationml = %q, want p", prefixes[nsPresentationML])
	}

	var buf strings.Builder
	if err := serializeXML(&buf, root, prefixes); err != nil {
		t.Fatalf("serializeXML() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<a:t>Hallo </a:t>") {
		t.Errorf("serialized XML lost run text element:\n%s", out)
	}
	if !strings.Contains(out, `xmlns:a=`) {
		t.Error("serialized XML lost namespace declarations")
	}
}
