package translate

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"pptrans/internal/logger"
	"pptrans/internal/types"
)

// Glossary holds domain vocabulary substitutions applied to translated
// text. Matching is case-insensitive and whole-phrase.
type Glossary struct {
	entries []glossaryEntry
}

type glossaryEntry struct {
	pattern     *regexp.Regexp
	replacement string
}

// defaultEntries fix spellings generic translators routinely break.
// They are used when no glossary file is configured or found.
var defaultEntries = [][2]string{
	{"power point", "PowerPoint"},
	{"powerpoint", "PowerPoint"},
	{"excel", "Excel"},
	{"q & a", "Q&A"},
	{"q&a", "Q&A"},
}

// DefaultGlossary returns the built-in fallback glossary.
func DefaultGlossary() *Glossary {
	g := &Glossary{}
	for _, e := range defaultEntries {
		_ = g.Add(e[0], e[1])
	}
	return g
}

// LoadGlossary reads a glossary file. Each non-empty line has the form
// "source = target"; lines starting with # are comments. When no path is
// configured or the file is missing, the built-in defaults are used.
func LoadGlossary(path string) (*Glossary, error) {
	if path == "" {
		return DefaultGlossary(), nil
	}
	g := &Glossary{}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("glossary file not found, using built-in defaults",
				logger.String("path", path))
			return DefaultGlossary(), nil
		}
		return nil, types.NewAppErrorWithDetails(types.ErrConfig,
			"cannot read glossary file", path, err)
	}
	defer f.Close()

	lineNo := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		source, target, ok := strings.Cut(line, "=")
		if !ok {
			logger.Warn("skipping malformed glossary line",
				logger.String("path", path), logger.Int("line", lineNo))
			continue
		}
		if err := g.Add(strings.TrimSpace(source), strings.TrimSpace(target)); err != nil {
			logger.Warn("skipping unusable glossary entry",
				logger.String("path", path), logger.Int("line", lineNo), logger.Err(err))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig,
			"cannot read glossary file", path, err)
	}

	logger.Info("glossary loaded", logger.String("path", path), logger.Int("entries", len(g.entries)))
	return g, nil
}

// Add registers one substitution.
func (g *Glossary) Add(source, target string) error {
	if source == "" {
		return types.NewAppError(types.ErrInvalidInput, "glossary source term is empty", nil)
	}
	pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(source) + `\b`)
	if err != nil {
		return err
	}
	g.entries = append(g.entries, glossaryEntry{pattern: pattern, replacement: target})
	return nil
}

// Len returns the number of entries.
func (g *Glossary) Len() int {
	return len(g.entries)
}

// Apply rewrites translated text using the glossary.
func (g *Glossary) Apply(text string) string {
	for _, e := range g.entries {
		text = e.pattern.ReplaceAllString(text, e.replacement)
	}
	return text
}

// repetitionWords are function words some translation backends emit
// doubled. Matching is case-insensitive; the first occurrence is kept
// so a sentence-initial capital survives.
var repetitionWords = []string{
	"the", "a", "an", "and", "to", "of", "in", "is", "that",
	"der", "die", "das", "und",
}

var repetitionPatterns = compileRepetitionFixes()

func compileRepetitionFixes() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(repetitionWords))
	for i, word := range repetitionWords {
		quoted := regexp.QuoteMeta(word)
		patterns[i] = regexp.MustCompile(`(?i)\b(` + quoted + `)\s+` + quoted + `\b`)
	}
	return patterns
}

// CollapseRepetitions applies the known doubled-word fixes.
func CollapseRepetitions(text string) string {
	for _, p := range repetitionPatterns {
		text = p.ReplaceAllString(text, "$1")
	}
	return text
}
