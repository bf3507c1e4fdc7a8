package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/vitalscan/internal/model"
	"github.com/ppiankov/vitalscan/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	userAgent   string
	maxBytes    int64
	noCache     bool
	noFooter    bool
	insecureTLS bool
	clampRisks  bool
	httpProxy   string
	httpsProxy  string
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// normalizeCmd represents the normalize command
var normalizeCmd = &cobra.Command{
	Use:   "normalize <file|url|->",
	Short: "Normalize one raw report into the canonical shape",
	Long: `Normalize reads a raw health report and produces the canonical report:
- Annotated text reports are parsed line by line
- JSON or YAML reports are read with field aliases and fallbacks
- HTML results pages are reduced to their visible report text
- Diagnostic signals explain every fallback value used

Example:
  vitalscan normalize report.txt
  vitalscan normalize result.json --json canonical.json --md canonical.md
  curl -s http://localhost:5000/api/assess -d @form.json | vitalscan normalize -`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path (empty to skip)")
	normalizeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	normalizeCmd.Flags().BoolVar(&clampRisks, "clamp-risks", false, "clamp per-condition risks into 0-100")
	addHTTPFlags(normalizeCmd)
	addLLMFlags(normalizeCmd)
}

// addHTTPFlags registers the flags shared by commands that reach the network
func addHTTPFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	cmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent (default from config)")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", 0, "max response bytes to read (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh requests)")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	cmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	cmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	cmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

// addLLMFlags registers the optional narrative flags
func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

// buildConfig merges command-line flags into the loaded configuration
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := currentConfig()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.Upstream.Timeout = timeout
	}
	if userAgent != "" {
		cfg.Upstream.UserAgent = userAgent
	}
	if maxBytes > 0 {
		cfg.Upstream.MaxBodyBytes = maxBytes
	}
	if httpProxy != "" {
		cfg.Upstream.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.Upstream.HTTPSProxy = httpsProxy
	}
	if insecureTLS {
		cfg.Upstream.InsecureTLS = true
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	if clampRisks {
		cfg.Normalize.ClampRisks = true
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		if flags.Changed("llm-model") || cfg.LLM.Model == "" {
			cfg.LLM.Model = llmModel
		}
		cfg.LLM.StrictNumbers = true

		if llmProvider == "openai" && cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	return cfg, nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Normalizing: %s\n", source)
		fmt.Fprintf(os.Stderr, "Clamp risks: %v\n", cfg.Normalize.ClampRisks)
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(cfg)

	doc, err := p.Load(ctx, source)
	if err != nil {
		return fmt.Errorf("normalize failed: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Parsed %s report\n", doc.Path)
		fmt.Fprintf(os.Stderr, "✓ Overall score: %.1f/100 (grade %s)\n", doc.Report.OverallScore, doc.Report.Grade)
		fmt.Fprintf(os.Stderr, "✓ %d recommendation(s), %d signal(s)\n", len(doc.Report.Recommendations), len(doc.Signals))
		if doc.LLM != nil && doc.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", doc.LLM.Provider, doc.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(doc, outJSON, outMD, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}
