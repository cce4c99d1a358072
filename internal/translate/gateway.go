// Package translate fills in translated text for extracted paragraph
// elements. It filters out text not worth sending remotely, batches the
// rest, retries transient failures with backoff, and normalizes whatever
// shape the remote service returns. Translation failures degrade to
// keeping the original text; they never abort the pipeline.
package translate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"pptrans/internal/extract"
	"pptrans/internal/logger"
	"pptrans/internal/types"
)

// DefaultBatchSize is the number of texts grouped into one request.
const DefaultBatchSize = 50

// DefaultConcurrency is the number of batches translated in parallel.
const DefaultConcurrency = 3

// DefaultMaxRetries is the per-batch retry budget.
const DefaultMaxRetries = 3

// BaseRetryDelay is the base delay between retries. The actual delay
// grows quadratically with the attempt number.
const BaseRetryDelay = 2 * time.Second

// RateLimitDelay is the fixed, longer delay used after a 429.
const RateLimitDelay = 3 * BaseRetryDelay

// ProgressFunc reports translation progress per element.
type ProgressFunc func(current, total int, message string)

// GatewayConfig tunes the gateway. Zero values pick the defaults above.
type GatewayConfig struct {
	BatchSize   int
	Concurrency int
	MaxRetries  int
	RetryDelay  time.Duration
	Glossary    *Glossary
}

// Outcome summarizes one Translate pass.
type Outcome struct {
	Translated int
	Skipped    int
	Failed     int
}

// Gateway coordinates remote translation for paragraph elements.
type Gateway struct {
	cfg     GatewayConfig
	factory ClientFactory

	clientMu  sync.Mutex
	client    Client
	refreshed bool

	stats statsWindow
}

// NewGateway builds a gateway around a client factory. The first client
// is created lazily on the first call that needs one.
func NewGateway(cfg GatewayConfig, factory ClientFactory) *Gateway {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = BaseRetryDelay
	}
	if cfg.Glossary == nil {
		cfg.Glossary = DefaultGlossary()
	}
	return &Gateway{cfg: cfg, factory: factory}
}

// Translate fills TranslatedText on every element, in place. Elements
// that fail keep their original text and are counted in the outcome. A
// non-nil error is returned only for fatal conditions (authentication,
// cancellation); the elements are still left in a consistent state.
func (g *Gateway) Translate(ctx context.Context, elements []*extract.ParagraphElement, sourceLang, targetLang string, progress ProgressFunc) (*Outcome, error) {
	outcome := &Outcome{}
	if len(elements) == 0 {
		return outcome, nil
	}

	// Identical languages are a no-op pass.
	if sourceLang == targetLang {
		for _, elem := range elements {
			elem.TranslatedText = elem.OriginalText
		}
		outcome.Skipped = len(elements)
		return outcome, nil
	}

	var pending []*extract.ParagraphElement
	for _, elem := range elements {
		if ShouldSkip(elem.OriginalText) {
			elem.TranslatedText = elem.OriginalText
			outcome.Skipped++
			continue
		}
		pending = append(pending, elem)
	}

	logger.Info("starting translation",
		logger.Int("elements", len(elements)),
		logger.Int("skipped", outcome.Skipped),
		logger.String("source", sourceLang),
		logger.String("target", targetLang))

	if len(pending) == 0 {
		return outcome, nil
	}

	batches := makeBatches(pending, g.cfg.BatchSize)

	type batchResult struct {
		translated int
		failed     int
		err        error
	}
	results := make([]batchResult, len(batches))

	sem := make(chan struct{}, g.cfg.Concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0
	var fatal error

	// advance reports progress element by element, across all batches.
	advance := func(n int) {
		mu.Lock()
		completed += n
		current := completed
		mu.Unlock()
		if progress != nil {
			progress(current, len(pending),
				fmt.Sprintf("translated %d of %d text elements", current, len(pending)))
		}
	}

	for i, batch := range batches {
		wg.Add(1)
		go func(idx int, batch []*extract.ParagraphElement) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			mu.Lock()
			aborted := fatal != nil
			mu.Unlock()
			if aborted || ctx.Err() != nil {
				failBatch(batch)
				mu.Lock()
				results[idx] = batchResult{failed: len(batch)}
				mu.Unlock()
				advance(len(batch))
				return
			}

			err := g.translateBatch(ctx, batch, sourceLang, targetLang, func() { advance(1) })

			mu.Lock()
			if err != nil {
				failBatch(batch)
				results[idx] = batchResult{failed: len(batch), err: err}
				if types.CodeOf(err) == types.ErrAuth || ctx.Err() != nil {
					// Fatal: stop scheduling further batches but keep
					// what already finished.
					if fatal == nil {
						fatal = err
					}
				}
			} else {
				results[idx] = batchResult{translated: len(batch)}
			}
			mu.Unlock()
			if err != nil {
				advance(len(batch))
			}
		}(i, batch)
	}

	wg.Wait()

	for _, r := range results {
		outcome.Translated += r.translated
		outcome.Failed += r.failed
	}

	logger.Info("translation finished",
		logger.Int("translated", outcome.Translated),
		logger.Int("skipped", outcome.Skipped),
		logger.Int("failed", outcome.Failed))

	return outcome, fatal
}

func failBatch(batch []*extract.ParagraphElement) {
	for _, elem := range batch {
		elem.TranslatedText = elem.OriginalText
	}
}

func makeBatches(elements []*extract.ParagraphElement, size int) [][]*extract.ParagraphElement {
	var batches [][]*extract.ParagraphElement
	for start := 0; start < len(elements); start += size {
		end := start + size
		if end > len(elements) {
			end = len(elements)
		}
		batches = append(batches, elements[start:end])
	}
	return batches
}

// translateBatch runs one batch through the retry policy and writes the
// normalized, post-processed results back onto the elements. tick is
// called once per finished element.
func (g *Gateway) translateBatch(ctx context.Context, batch []*extract.ParagraphElement, sourceLang, targetLang string, tick func()) error {
	texts := make([]string, len(batch))
	chars := 0
	for i, elem := range batch {
		texts[i] = elem.OriginalText
		chars += len(elem.OriginalText)
	}

	results, err := g.callWithRetry(ctx, texts, sourceLang, targetLang)
	if err != nil {
		return err
	}
	g.stats.record(len(batch), chars)

	for i, elem := range batch {
		text := Normalize(results[i], elem.OriginalText)
		if strings.TrimSpace(text) == "" {
			text = elem.OriginalText
		}
		text = g.cfg.Glossary.Apply(text)
		text = CollapseRepetitions(text)
		elem.TranslatedText = text
		if tick != nil {
			tick()
		}
	}
	return nil
}

// callWithRetry applies the retry policy for a single request:
// transient errors retry with a quadratically growing delay, rate limits
// retry after a longer fixed delay, a structurally broken response gets
// one fresh client, and authentication failures abort immediately.
func (g *Gateway) callWithRetry(ctx context.Context, texts []string, sourceLang, targetLang string) ([]any, error) {
	var lastErr error

	for attempt := 1; attempt <= g.cfg.MaxRetries; attempt++ {
		client, err := g.currentClient()
		if err != nil {
			return nil, err
		}

		results, err := client.Translate(ctx, texts, sourceLang, targetLang)
		if err == nil {
			if len(results) != len(texts) {
				// A count mismatch means the service reordered or
				// truncated the batch; the results cannot be trusted.
				err = types.NewAppErrorWithDetails(types.ErrTranslation,
					"translation result count mismatch",
					fmt.Sprintf("sent %d, received %d", len(texts), len(results)), nil)
				g.refreshClient()
			} else {
				return results, nil
			}
		}
		lastErr = err

		code := types.CodeOf(err)
		if code == types.ErrAuth {
			logger.Error("authentication failure, aborting translation", err)
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		logger.Warn("translation attempt failed",
			logger.Int("attempt", attempt),
			logger.Int("maxRetries", g.cfg.MaxRetries),
			logger.Err(err))

		if code == types.ErrTranslation {
			g.refreshClient()
		}

		if attempt < g.cfg.MaxRetries {
			delay := g.cfg.RetryDelay * time.Duration(attempt*attempt)
			if code == types.ErrAPIRateLimit {
				delay = RateLimitDelay
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, lastErr
}

func (g *Gateway) currentClient() (Client, error) {
	g.clientMu.Lock()
	defer g.clientMu.Unlock()
	if g.client == nil {
		client, err := g.factory()
		if err != nil {
			return nil, err
		}
		g.client = client
	}
	return g.client, nil
}

// refreshClient replaces the client once per gateway lifetime. Repeated
// shape defects after a refresh are a service problem a new client will
// not fix.
func (g *Gateway) refreshClient() {
	g.clientMu.Lock()
	defer g.clientMu.Unlock()
	if g.refreshed {
		return
	}
	g.refreshed = true
	client, err := g.factory()
	if err != nil {
		logger.Warn("could not create replacement client", logger.Err(err))
		return
	}
	logger.Info("replaced translation client after defective response")
	g.client = client
}

// TestConnection performs one tiny translation to verify credentials
// and connectivity.
func (g *Gateway) TestConnection(ctx context.Context) error {
	client, err := g.currentClient()
	if err != nil {
		return err
	}
	results, err := client.Translate(ctx, []string{"Hello"}, "en", "es")
	if err != nil {
		return err
	}
	if len(results) != 1 {
		return types.NewAppError(types.ErrTranslation,
			"translation service returned a malformed response", nil)
	}
	return nil
}

// Stats returns a snapshot of the current request-counting window.
func (g *Gateway) Stats() StatsSnapshot {
	return g.stats.snapshot()
}

// statsWindow counts requests and characters in rolling one-hour
// windows, mirroring typical provider quota accounting.
type statsWindow struct {
	mu          sync.Mutex
	windowStart time.Time
	requests    int
	elements    int
	chars       int
}

// StatsSnapshot is a point-in-time copy of the request counters.
type StatsSnapshot struct {
	WindowStart time.Time
	Requests    int
	Elements    int
	Chars       int
}

func (s *statsWindow) record(elements, chars int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if s.windowStart.IsZero() || now.Sub(s.windowStart) > time.Hour {
		s.windowStart = now
		s.requests = 0
		s.elements = 0
		s.chars = 0
	}
	s.requests++
	s.elements += elements
	s.chars += chars
}

func (s *statsWindow) snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		WindowStart: s.windowStart,
		Requests:    s.requests,
		Elements:    s.elements,
		Chars:       s.chars,
	}
}
