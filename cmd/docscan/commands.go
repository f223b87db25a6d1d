package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/raaihank/doc-sentinel/internal/analyzer"
	"github.com/raaihank/doc-sentinel/internal/config"
	"github.com/raaihank/doc-sentinel/internal/extract"
	"github.com/raaihank/doc-sentinel/internal/privacy"
	"github.com/raaihank/doc-sentinel/internal/store"
)

// readDocument extracts text from office formats and falls back to reading
// anything else as plain UTF-8 text.
func readDocument(path string) (string, error) {
	if _, err := extract.FormatFromPath(path); err == nil {
		doc, err := extract.New(zap.NewNop()).ExtractFile(path)
		if err != nil {
			return "", err
		}
		return doc.Text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func loadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func sanitizeCmd(configPath *string) *cobra.Command {
	var level string
	var showReport bool

	cmd := &cobra.Command{
		Use:   "sanitize <file>",
		Short: "Redact sensitive information from a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if level == "" {
				level = cfg.Privacy.DefaultLevel
			}

			text, err := readDocument(args[0])
			if err != nil {
				return err
			}

			outcome, err := privacy.NewSanitizer(zap.NewNop()).SanitizeLevel(text, level)
			if err != nil {
				return err
			}

			if showReport {
				fmt.Fprintln(cmd.ErrOrStderr(), privacy.Report(outcome))
			}
			fmt.Fprintln(cmd.OutOrStdout(), outcome.RedactedText)
			return nil
		},
	}
	cmd.Flags().StringVar(&level, "level", "", "Privacy level: none, low, medium or high")
	cmd.Flags().BoolVar(&showReport, "report", false, "Print the privacy report to stderr")
	return cmd
}

func analyzeCmd(configPath *string) *cobra.Command {
	var level string
	var asJSON bool
	var noSave bool

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Sanitize a document and run the configured analysis backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if level == "" {
				level = cfg.Privacy.DefaultLevel
			}

			text, err := readDocument(args[0])
			if err != nil {
				return err
			}

			outcome, err := privacy.NewSanitizer(zap.NewNop()).SanitizeLevel(text, level)
			if err != nil {
				return err
			}

			backend, err := analyzer.New(cfg.Analyzer, zap.NewNop())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Analyzer.Timeout)
			defer cancel()

			result, err := backend.Analyze(ctx, outcome.RedactedText)
			if err != nil {
				return err
			}

			var storageKey string
			if cfg.Storage.AutoSave && !noSave {
				artifacts, err := store.New(cfg.Storage, zap.NewNop())
				if err != nil {
					return err
				}
				storageKey, err = artifacts.Put(&store.Artifact{
					WordCount:        result.WordCount,
					Summary:          result.Summary,
					ExecutiveSummary: result.ExecutiveSummary,
					KeyThemes:        result.KeyThemes,
					SlideHeadlines:   result.SlideHeadlines,
					Sentiment:        result.Sentiment,
					Sanitization:     outcome.Meta(),
				}, args[0])
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: analysis not saved: %v\n", err)
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"storage_key":           storageKey,
					"analysis":              result,
					"sanitization_metadata": outcome.Meta(),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, privacy.Report(outcome))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Summary:\n%s\n\n", result.Summary)
			fmt.Fprintf(out, "Executive summary:\n%s\n\n", result.ExecutiveSummary)
			if len(result.KeyThemes) > 0 {
				fmt.Fprintln(out, "Key themes:")
				for _, theme := range result.KeyThemes {
					fmt.Fprintf(out, "  - %s\n", theme)
				}
				fmt.Fprintln(out)
			}
			if len(result.SlideHeadlines) > 0 {
				fmt.Fprintln(out, "Slide headlines:")
				for i, headline := range result.SlideHeadlines {
					fmt.Fprintf(out, "  %d. %s\n", i+1, headline)
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "Sentiment: %s\n", result.Sentiment)
			fmt.Fprintf(out, "Word count: %d\n", result.WordCount)
			if storageKey != "" {
				fmt.Fprintf(out, "Saved as: %s\n", storageKey)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&level, "level", "", "Privacy level: none, low, medium or high")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Skip persisting the analysis artifact")
	return cmd
}

func historyCmd(configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored analyses and sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			artifacts, err := store.New(cfg.Storage, zap.NewNop())
			if err != nil {
				return err
			}

			summaries := artifacts.List()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summaries)
			}

			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No stored analyses.")
				return nil
			}
			for _, s := range summaries {
				line := fmt.Sprintf("%s  %s  %s", s.Timestamp.Format(time.RFC3339), s.Type, s.ID)
				if s.Type == "analysis" {
					line += fmt.Sprintf("  (%d words, %s)", s.WordCount, strings.ToLower(s.Sentiment))
				} else {
					line += fmt.Sprintf("  (%d documents)", s.DocumentCount)
				}
				fmt.Fprintln(out, line)
			}

			stats := artifacts.Stats()
			fmt.Fprintf(out, "\n%d analyses, %d sessions, %d bytes in %s\n",
				stats.Analyses, stats.Sessions, stats.TotalBytes, stats.BaseDir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print summaries as JSON")
	return cmd
}

func sweepCmd(configPath *string) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete stored artifacts older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if days == 0 {
				days = cfg.Storage.RetentionDays
			}
			if days <= 0 {
				return fmt.Errorf("retention days must be positive, got %d", days)
			}

			artifacts, err := store.New(cfg.Storage, zap.NewNop())
			if err != nil {
				return err
			}
			removed, err := artifacts.Sweep(time.Duration(days) * 24 * time.Hour)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d artifacts older than %d days\n", removed, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Retention window in days (defaults to configuration)")
	return cmd
}
