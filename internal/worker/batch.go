package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/vitalscan/internal/model"
	"github.com/ppiankov/vitalscan/internal/observability"
	"go.uber.org/zap"
)

// Loader loads and normalizes one report source
type Loader interface {
	Load(ctx context.Context, source string) (*model.Document, error)
}

// LoadJob normalizes a single source
type LoadJob struct {
	Source  string
	Loader  Loader
	Limiter *Limiter // nil disables rate limiting
}

// Execute executes the load job
func (j *LoadJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil && isRemote(j.Source) {
		if err := j.Limiter.Wait(ctx, j.Source); err != nil {
			return &BatchResult{Source: j.Source, Error: fmt.Errorf("rate limit: %w", err)}
		}
	}

	doc, err := j.Loader.Load(ctx, j.Source)
	if err != nil {
		return &BatchResult{Source: j.Source, Error: err}
	}
	return &BatchResult{Source: j.Source, Document: doc}
}

// BatchResult is the outcome for one source
type BatchResult struct {
	Source   string          `json:"source"`
	Document *model.Document `json:"document,omitempty"`
	Error    error           `json:"-"`
	ErrorMsg string          `json:"error,omitempty"`
}

// GetError returns the error from the batch result
func (r *BatchResult) GetError() error {
	return r.Error
}

// BatchProcessor normalizes many sources concurrently
type BatchProcessor struct {
	loader      Loader
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a new batch processor. Remote sources are rate
// limited per host at requestsPerSecond; zero disables limiting.
func NewBatchProcessor(loader Loader, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	b := &BatchProcessor{
		loader:      loader,
		concurrency: concurrency,
	}
	if requestsPerSecond > 0 {
		b.limiter = NewLimiter(requestsPerSecond, burst)
	}
	return b
}

// ProcessSources processes sources concurrently; results are in input order
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*BatchResult {
	if len(sources) == 0 {
		return []*BatchResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	for _, source := range sources {
		pool.Submit(&LoadJob{
			Source:  source,
			Loader:  b.loader,
			Limiter: b.limiter,
		})
	}

	results := pool.Wait()

	out := make([]*BatchResult, len(results))
	failed := 0
	for i, result := range results {
		br := result.(*BatchResult)
		if br.Error != nil {
			br.ErrorMsg = br.Error.Error()
			failed++
		}
		out[i] = br
	}

	observability.GetLogger().Info("batch complete",
		zap.Int("sources", len(sources)),
		zap.Int("completed", len(out)),
		zap.Int("failed", failed))

	return out
}

// ProcessFile reads sources from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*BatchResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}
	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads report sources (paths or URLs) from a file, one
// per line. Blank lines and # comments are skipped; duplicates are dropped.
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
