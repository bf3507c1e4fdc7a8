package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/vitalscan/internal/pipeline"
	"github.com/spf13/cobra"
)

var upstreamURL string

// assessCmd represents the assess command
var assessCmd = &cobra.Command{
	Use:   "assess <form.json|->",
	Short: "Submit a questionnaire to the scoring service and normalize the result",
	Long: `Assess posts a questionnaire (a JSON object of form fields) to the
configured scoring service, then normalizes whatever report comes back.
Blank fields are dropped so the service applies its own defaults.

Example:
  vitalscan assess form.json
  vitalscan assess form.json --upstream http://scorer:5000 --md report.md
  echo '{"age": 45, "gender": "female"}' | vitalscan assess -`,
	Args: cobra.ExactArgs(1),
	RunE: runAssess,
}

func init() {
	rootCmd.AddCommand(assessCmd)

	assessCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path (empty to skip)")
	assessCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	assessCmd.Flags().StringVar(&upstreamURL, "upstream", "", "scoring service base URL (default from config)")
	assessCmd.Flags().BoolVar(&clampRisks, "clamp-risks", false, "clamp per-condition risks into 0-100")
	addHTTPFlags(assessCmd)
	addLLMFlags(assessCmd)
}

func runAssess(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if upstreamURL != "" {
		cfg.Upstream.BaseURL = upstreamURL
	}

	form, err := readForm(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Submitting %d field(s) to %s\n\n", len(form), cfg.Upstream.BaseURL)
	}

	p := pipeline.NewPipeline(cfg)
	doc, err := p.Assess(ctx, form)
	if err != nil {
		return fmt.Errorf("assessment failed: %w", err)
	}

	if err := p.RenderReport(doc, outJSON, outMD, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}

// readForm reads a JSON object of form fields from a file or stdin ("-")
func readForm(source string, stdin io.Reader) (map[string]any, error) {
	var data []byte
	var err error
	if source == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("read form: %w", err)
	}

	var form map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&form); err != nil {
		return nil, fmt.Errorf("form must be a JSON object: %w", err)
	}
	return form, nil
}
