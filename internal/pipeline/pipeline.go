package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/vitalscan/internal/cache"
	"github.com/ppiankov/vitalscan/internal/llm"
	"github.com/ppiankov/vitalscan/internal/model"
	"github.com/ppiankov/vitalscan/internal/normalize"
	"github.com/ppiankov/vitalscan/internal/observability"
	"github.com/ppiankov/vitalscan/internal/util"
	"github.com/ppiankov/vitalscan/internal/validate"
	"go.uber.org/zap"
)

// SourceUpstream is the document source recorded for scoring-service results
const SourceUpstream = "upstream"

// Pipeline loads raw reports, normalizes them, and attaches diagnostics
type Pipeline struct {
	fetcher    *Fetcher
	client     *AssessClient
	normalizer *normalize.Normalizer
	validator  *validate.Validator
	renderer   *Renderer
	summarizer *llm.Summarizer // nil when narratives are disabled
	config     *model.Config
	stdin      io.Reader
	now        func() time.Time
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) *Pipeline {
	logger := observability.GetLogger()

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM, cfg.Upstream))
		if err != nil {
			logger.Warn("failed to initialize LLM provider", zap.Error(err))
		} else {
			summarizer = s
		}
	}

	responses, responseTTL := newResponseCache(cfg.Cache)

	up := cfg.Upstream
	fetcher := NewFetcher(up.Timeout, up.UserAgent, up.MaxBodyBytes, up.InsecureTLS, up.HTTPProxy, up.HTTPSProxy, up.NoProxy).
		WithAttempts(up.Retries)
	if up.RespectRobots {
		fetcher.WithRobots(util.NewRobotsChecker(up.UserAgent, up.Timeout))
	}

	return &Pipeline{
		fetcher:    fetcher,
		client:     NewAssessClient(up, responses, responseTTL),
		normalizer: normalize.NewNormalizer(normalize.OptionsFromConfig(cfg.Normalize)),
		validator:  validate.NewValidator(),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		summarizer: summarizer,
		config:     cfg,
		stdin:      os.Stdin,
		now:        time.Now,
	}
}

// newResponseCache keeps assessment responses in process memory. They only
// reach disk when the operator opts in with cache.persist.
func newResponseCache(cfg model.CacheConfig) (cache.Cache, time.Duration) {
	switch {
	case !cfg.Enabled:
		return cache.Noop{}, 0
	case cfg.Persist:
		return cache.NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL), cfg.DiskTTL
	default:
		return cache.NewMemoryCache(cfg.MemoryTTL, 10*time.Minute), cfg.MemoryTTL
	}
}

// Renderer returns the pipeline's renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// Load reads a report from a source and normalizes it. The source is "-" for
// stdin, an http(s) URL, or a file path.
func (p *Pipeline) Load(ctx context.Context, source string) (*model.Document, error) {
	switch {
	case source == "-":
		data, err := io.ReadAll(io.LimitReader(p.stdin, p.maxBytes()))
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return p.NormalizeBytes(ctx, data, "", "stdin"), nil

	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		result, err := p.fetcher.FetchWithRetry(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		return p.NormalizeBytes(ctx, []byte(result.Body), result.ContentType, result.FinalURL), nil

	default:
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return p.NormalizeBytes(ctx, data, "", source), nil
	}
}

// NormalizeBytes decodes and normalizes a loaded document
func (p *Pipeline) NormalizeBytes(ctx context.Context, data []byte, contentType string, source string) *model.Document {
	return p.NormalizeRaw(ctx, DecodeRaw(data, contentType, filepath.Base(source)), source)
}

// NormalizeRaw normalizes an already decoded raw report
func (p *Pipeline) NormalizeRaw(ctx context.Context, raw model.RawReport, source string) *model.Document {
	logger := observability.GetLogger()

	report, prov := p.normalizer.NormalizeDetailed(raw)
	doc := &model.Document{
		Source:       source,
		NormalizedAt: p.now().UTC(),
		Path:         string(prov.Path),
		Defaulted:    prov.Defaulted,
		Report:       report,
		Signals:      p.validator.Check(report, prov),
	}

	logger.Info("normalized report",
		zap.String("source", source),
		zap.String("path", doc.Path),
		zap.Strings("defaulted", prov.Defaulted),
		zap.Strings("missing", prov.Missing),
		zap.Float64("overall_score", report.OverallScore),
		zap.Int("signals", len(doc.Signals)))

	// after numbers are final; the narrative never alters them
	if p.summarizer.IsEnabled() {
		summary, err := p.summarizer.GenerateSummary(ctx, report)
		if err != nil {
			logger.Warn("LLM summary generation failed", zap.Error(err))
		} else if summary != nil {
			doc.LLM = summary
		}
	}

	return doc
}

// Assess submits a questionnaire form to the scoring service and normalizes
// the returned report
func (p *Pipeline) Assess(ctx context.Context, form map[string]any) (*model.Document, error) {
	raw, err := p.client.Assess(ctx, form)
	if err != nil {
		return nil, err
	}
	return p.NormalizeRaw(ctx, raw, SourceUpstream), nil
}

// RenderReport writes the requested outputs and prints a summary to stdout
func (p *Pipeline) RenderReport(doc *model.Document, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(doc, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(doc, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	if doc.LLM != nil && doc.LLM.Enabled && mdPath != "" {
		llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(doc.LLM), llmPath); err != nil {
			observability.GetLogger().Warn("failed to write LLM summary", zap.String("path", llmPath), zap.Error(err))
		} else if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote LLM Summary: %s\n", llmPath)
		}
	}

	p.renderer.RenderSummary(doc)
	return nil
}

func (p *Pipeline) maxBytes() int64 {
	if p.config.Upstream.MaxBodyBytes > 0 {
		return p.config.Upstream.MaxBodyBytes
	}
	return 2_000_000
}
