// Package pipeline sequences the translation stages over one document
// and tracks per-run statistics.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"pptrans/internal/apply"
	"pptrans/internal/deck"
	"pptrans/internal/extract"
	"pptrans/internal/lang"
	"pptrans/internal/logger"
	"pptrans/internal/parser"
	"pptrans/internal/redistribute"
	"pptrans/internal/translate"
	"pptrans/internal/types"
)

// Loader opens a document. The default opens PPTX files from disk;
// tests inject in-memory documents.
type Loader func(path string) (deck.Document, error)

// ProgressFunc reports stage progress.
type ProgressFunc func(current, total int, message string)

// PreviewEntry pairs one element's original text with its translation.
type PreviewEntry struct {
	ID         string
	Original   string
	Translated string
}

// Orchestrator drives the stages in their fixed order:
// Idle -> Loaded -> Extracted -> Translated -> Redistributed ->
// Applied -> Saved -> Closed. Calling a stage out of order is a
// programming error and fails immediately.
type Orchestrator struct {
	gateway *translate.Gateway
	loader  Loader

	phase     types.ProcessPhase
	doc       deck.Document
	inputPath string
	elements  []*extract.ParagraphElement
	stats     types.ProcessingStats
	started   time.Time
}

// NewOrchestrator creates an orchestrator in the Idle phase.
func NewOrchestrator(gateway *translate.Gateway) *Orchestrator {
	return &Orchestrator{
		gateway: gateway,
		loader: func(path string) (deck.Document, error) {
			return deck.Open(path)
		},
		phase: types.PhaseIdle,
	}
}

// SetLoader replaces the document loader. Must be called before Load.
func (o *Orchestrator) SetLoader(loader Loader) {
	o.loader = loader
}

// Phase returns the current pipeline phase.
func (o *Orchestrator) Phase() types.ProcessPhase {
	return o.phase
}

// Stats returns a copy of the counters with the elapsed time updated.
func (o *Orchestrator) Stats() types.ProcessingStats {
	stats := o.stats
	if !o.started.IsZero() {
		stats.ElapsedTime = time.Since(o.started)
	}
	return stats
}

// phasePercent maps each phase to a coarse completion percentage.
var phasePercent = map[types.ProcessPhase]int{
	types.PhaseIdle:          0,
	types.PhaseLoaded:        10,
	types.PhaseExtracted:     25,
	types.PhaseTranslated:    70,
	types.PhaseRedistributed: 80,
	types.PhaseApplied:       90,
	types.PhaseSaved:         100,
	types.PhaseClosed:        100,
}

// Status reports the current phase for callers that poll the pipeline.
func (o *Orchestrator) Status() types.Status {
	return types.Status{
		Phase:    o.phase,
		Progress: phasePercent[o.phase],
		Message: fmt.Sprintf("%d of %d elements translated",
			o.stats.ElementsTranslated, o.stats.ElementsFound),
	}
}

func (o *Orchestrator) requirePhase(want types.ProcessPhase, op string) error {
	if o.phase != want {
		return types.NewAppErrorWithDetails(types.ErrInternal,
			"pipeline stage called out of order",
			fmt.Sprintf("%s requires phase %q, current phase is %q", op, want, o.phase), nil)
	}
	return nil
}

// Load opens the document. Valid from Idle or after a Close.
func (o *Orchestrator) Load(path string) error {
	if o.phase != types.PhaseIdle && o.phase != types.PhaseClosed {
		return types.NewAppErrorWithDetails(types.ErrInternal,
			"pipeline stage called out of order",
			fmt.Sprintf("Load requires an idle pipeline, current phase is %q", o.phase), nil)
	}

	doc, err := o.loader(path)
	if err != nil {
		return err
	}

	o.doc = doc
	o.inputPath = path
	o.elements = nil
	o.stats = types.ProcessingStats{TotalSlides: doc.SlideCount()}
	o.started = time.Now()
	o.phase = types.PhaseLoaded
	return nil
}

// Extract parses the slide range and collects the paragraph elements.
func (o *Orchestrator) Extract(rangeSpec string, progress ProgressFunc) error {
	if err := o.requirePhase(types.PhaseLoaded, "Extract"); err != nil {
		return err
	}

	indices, err := parser.ParseRange(rangeSpec, o.doc.SlideCount())
	if err != nil {
		return err
	}

	res, err := extract.NewExtractor().Extract(o.doc, indices, extract.ProgressFunc(progress))
	if err != nil {
		return err
	}

	o.elements = res.Elements
	o.stats.SlidesProcessed = res.SlidesVisited
	o.stats.ElementsFound = len(res.Elements)
	o.stats.Errors += res.Errors
	o.phase = types.PhaseExtracted
	return nil
}

// Translate fills in translations for the extracted elements. A partial
// failure degrades to original text and is counted; only fatal errors
// (auth, cancellation) are returned.
func (o *Orchestrator) Translate(ctx context.Context, sourceLang, targetLang string, progress ProgressFunc) error {
	if err := o.requirePhase(types.PhaseExtracted, "Translate"); err != nil {
		return err
	}

	source, target, err := lang.ValidatePair(sourceLang, targetLang)
	if err != nil {
		return err
	}

	outcome, err := o.gateway.Translate(ctx, o.elements, source, target, translate.ProgressFunc(progress))
	if outcome != nil {
		o.stats.ElementsTranslated = outcome.Translated
		o.stats.ElementsSkipped = outcome.Skipped
		o.stats.Errors += outcome.Failed
	}
	if err != nil {
		return err
	}

	o.phase = types.PhaseTranslated
	return nil
}

// Redistribute maps each element's translation onto its run boundaries.
func (o *Orchestrator) Redistribute() error {
	if err := o.requirePhase(types.PhaseTranslated, "Redistribute"); err != nil {
		return err
	}
	for _, elem := range o.elements {
		redistribute.Redistribute(elem)
	}
	o.phase = types.PhaseRedistributed
	return nil
}

// Apply writes the redistributed text and formatting back.
func (o *Orchestrator) Apply(progress ProgressFunc) error {
	if err := o.requirePhase(types.PhaseRedistributed, "Apply"); err != nil {
		return err
	}

	res := apply.NewApplier().Apply(o.elements, apply.ProgressFunc(progress))

	o.stats.Errors += res.FragmentsFailed
	o.phase = types.PhaseApplied
	return nil
}

// Save writes the document. An empty path saves next to the input as
// "<stem>_translated<ext>". Returns the path written.
func (o *Orchestrator) Save(outputPath string) (string, error) {
	if err := o.requirePhase(types.PhaseApplied, "Save"); err != nil {
		return "", err
	}

	if outputPath == "" {
		outputPath = deck.OutputPath(o.inputPath)
	}
	if err := o.doc.Save(outputPath); err != nil {
		return "", err
	}

	o.phase = types.PhaseSaved
	return outputPath, nil
}

// Close releases the document and its handles. It is valid in any phase
// with a loaded document so a failed run can still clean up.
func (o *Orchestrator) Close() error {
	if o.doc == nil {
		o.phase = types.PhaseIdle
		return nil
	}
	err := o.doc.Close()
	o.doc = nil
	o.elements = nil
	o.stats.ElapsedTime = time.Since(o.started)
	o.phase = types.PhaseClosed
	return err
}

// Preview returns up to limit before/after text pairs. Valid once
// translations exist, before or after write-back.
func (o *Orchestrator) Preview(limit int) ([]PreviewEntry, error) {
	switch o.phase {
	case types.PhaseTranslated, types.PhaseRedistributed, types.PhaseApplied, types.PhaseSaved:
	default:
		return nil, types.NewAppErrorWithDetails(types.ErrInternal,
			"pipeline stage called out of order",
			fmt.Sprintf("Preview requires translations, current phase is %q", o.phase), nil)
	}

	if limit <= 0 || limit > len(o.elements) {
		limit = len(o.elements)
	}
	entries := make([]PreviewEntry, 0, limit)
	for _, elem := range o.elements[:limit] {
		entries = append(entries, PreviewEntry{
			ID:         elem.ID,
			Original:   elem.OriginalText,
			Translated: elem.TranslatedText,
		})
	}
	return entries, nil
}

// Run executes the whole pipeline for one file and returns the result.
// An empty outputPath saves next to the input. The document is always
// closed before returning.
func (o *Orchestrator) Run(ctx context.Context, inputPath, outputPath, rangeSpec, sourceLang, targetLang string, progress ProgressFunc) (*types.ProcessResult, error) {
	if err := o.Load(inputPath); err != nil {
		return nil, err
	}
	defer o.Close()

	if err := o.Extract(rangeSpec, progress); err != nil {
		return nil, err
	}
	if err := o.Translate(ctx, sourceLang, targetLang, progress); err != nil {
		return nil, err
	}
	if err := o.Redistribute(); err != nil {
		return nil, err
	}
	if err := o.Apply(progress); err != nil {
		return nil, err
	}
	outputPath, err := o.Save(outputPath)
	if err != nil {
		return nil, err
	}

	stats := o.Stats()
	logger.Info("pipeline run finished",
		logger.String("input", inputPath),
		logger.String("output", outputPath),
		logger.Int("translated", stats.ElementsTranslated),
		logger.Int("skipped", stats.ElementsSkipped),
		logger.Int("errors", stats.Errors))

	return &types.ProcessResult{
		InputPath:  inputPath,
		OutputPath: outputPath,
		SourceLang: sourceLang,
		TargetLang: targetLang,
		Stats:      &stats,
	}, nil
}
