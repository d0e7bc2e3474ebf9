// Command matchfile runs ingestion and analysis once for local prompt iteration:
//
//	go run ./cmd/matchfile --resume cv.pdf --job jd.txt
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"resume-matcher/internal/analysis"
	"resume-matcher/internal/bootstrap"
	"resume-matcher/internal/ingest"
	"resume-matcher/internal/pdftext"
	"resume-matcher/internal/present"
	"resume-matcher/internal/shared/config"
)

type options struct {
	resumePath string
	jobPath    string
	provider   string
	model      string
	outPath    string
}

type output struct {
	FileName string          `json:"fileName"`
	Result   analysis.Result `json:"result"`
	View     present.View    `json:"view"`
}

func main() {
	if err := newRootCmd(config.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "matchfile",
		Short:        "Score a resume file against a job description file",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&opts.resumePath, "resume", "r", "", "Path to resume file (pdf or txt)")
	cmd.Flags().StringVarP(&opts.jobPath, "job", "j", "", "Path to job description text file")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "LLM provider (gemini|gemini-sdk|openai), defaults to LLM_PROVIDER")
	cmd.Flags().StringVar(&opts.model, "model", "", "LLM model, defaults to LLM_MODEL or the provider default")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "Also write the JSON output to this path")
	_ = cmd.MarkFlagRequired("resume")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}

func run(ctx context.Context, cfg config.Config, opts options, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg = cfg.WithProvider(opts.provider, opts.model)

	resumeBytes, err := os.ReadFile(opts.resumePath)
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}
	jobBytes, err := os.ReadFile(opts.jobPath)
	if err != nil {
		return fmt.Errorf("read job description: %w", err)
	}

	loader := pdftext.NewLoader(pdftext.Config{Worker: cfg.PDFWorker, MaxPages: cfg.PDFMaxPages}, nil)
	doc, err := ingest.NewService(loader).FromFile(ctx, filepath.Base(opts.resumePath), declaredType(opts.resumePath), resumeBytes)
	if err != nil {
		return fmt.Errorf("%s: %w", ingest.Message(err), err)
	}

	gen, err := bootstrap.BuildGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	client := analysis.NewClient(gen, cfg.AnalysisAPIKey(), cfg.LLMProvider, cfg.LLMModel)
	result, err := client.Analyze(ctx, doc.Text, string(jobBytes))
	if err != nil {
		var aerr *analysis.Error
		if errors.As(err, &aerr) {
			return fmt.Errorf("%s (%w)", aerr.Message, err)
		}
		return err
	}

	out := output{
		FileName: doc.FileName,
		Result:   result,
		View:     present.Render(present.State{Result: &result, FileName: doc.FileName}),
	}
	payload, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	if opts.outPath != "" {
		if err := os.WriteFile(opts.outPath, payload, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	_, err = stdout.Write(payload)
	return err
}

// declaredType stands in for the browser-supplied type. Unknown extensions are
// left empty so the content is sniffed.
func declaredType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".txt", ".text":
		return "text/plain"
	default:
		return ""
	}
}
