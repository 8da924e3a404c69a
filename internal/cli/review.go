package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dshills/repolens/internal/config"
	"github.com/dshills/repolens/internal/github"
	"github.com/dshills/repolens/internal/output"
	"github.com/dshills/repolens/internal/review"
)

// Review flags
var (
	flagProvider    string
	flagModel       string
	flagFormat      string
	flagOut         string
	flagConcurrency int
	flagBranch      string
	flagRules       string
	flagNoRedact    bool
)

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (openai, anthropic, gemini, ollama, lmstudio)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
}

func addReviewFlags(cmd *cobra.Command) {
	addModelFlags(cmd)
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Files reviewed in parallel")
	cmd.Flags().StringVar(&flagBranch, "branch", "", "Branch whose tree is reviewed")
	cmd.Flags().StringVar(&flagRules, "rules", "", "Rules file path")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagConcurrency > 0 {
		m["concurrency"] = strconv.Itoa(flagConcurrency)
	}
	if flagBranch != "" {
		m["branch"] = flagBranch
	}
	if flagRules != "" {
		m["rulesFile"] = flagRules
	}
	if flagNoRedact {
		m["redactSecrets"] = "false"
	}
	return m
}

var reviewCmd = &cobra.Command{
	Use:   "review <github-url>",
	Short: "Review a GitHub repository",
	Long: `Review a GitHub repository: the model selects the files worth reviewing,
each selected file is reviewed, and the results are rendered in the chosen
format. Files that cannot be reviewed are logged and left out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := github.ParseRepoURL(args[0])
		if err != nil {
			return err
		}
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err = invoke(cfg, func(pipeline *review.Pipeline, logger *logrus.Logger) error {
			if flagNoRedact {
				logger.Warn("secret redaction is disabled")
			}
			return runReview(ctx, pipeline, repo, cfg.Format, flagOut)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = exitCodeFor(err)
		}
		return nil
	},
}

// runReview runs one pipeline over repo and writes the rendered report.
func runReview(ctx context.Context, pipeline *review.Pipeline, repo github.Repo, format, outPath string) error {
	start := time.Now()
	batch, stats, err := pipeline.RunWithStats(ctx, repo)
	if err != nil {
		return err
	}
	report := &output.Report{
		Repo:     repo.String(),
		Batch:    batch,
		Stats:    stats,
		Duration: time.Since(start),
	}
	if err := output.WriteReport(report, format, outPath); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func init() {
	addReviewFlags(reviewCmd)
	reviewCmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, sarif)")
	reviewCmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
}
