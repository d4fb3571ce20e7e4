package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spacesedan/nytsentiment/internal/dataset"
	"github.com/spacesedan/nytsentiment/internal/export"
	"github.com/spacesedan/nytsentiment/internal/models"
	"github.com/spacesedan/nytsentiment/internal/pipeline"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var commentsPath, articlesPath, outDir, format string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Annotate the given datasets, print the report and write exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			if commentsPath == "" && articlesPath == "" {
				return fmt.Errorf("at least one of --comments or --articles is required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, cleanup, err := a.buildPipeline(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var in pipeline.Input
			for _, f := range []struct {
				path string
				dst  **pipeline.Source
			}{{commentsPath, &in.Comments}, {articlesPath, &in.Articles}} {
				if f.path == "" {
					continue
				}
				file, err := os.Open(f.path)
				if err != nil {
					return err
				}
				defer file.Close()
				*f.dst = &pipeline.Source{Name: f.path, Reader: file}
			}

			report, err := p.Run(ctx, in)
			if err != nil {
				return err
			}

			if outDir != "" {
				if err := writeExports(outDir, dataset.Format(format), report); err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringVar(&commentsPath, "comments", "", "comments CSV or XLSX file")
	cmd.Flags().StringVar(&articlesPath, "articles", "", "articles CSV or XLSX file")
	cmd.Flags().StringVar(&outDir, "out", "", "directory for annotated exports")
	cmd.Flags().StringVar(&format, "format", string(dataset.FORMAT_CSV), "export format (csv or xlsx)")
	return cmd
}

func writeExports(dir string, format dataset.Format, report *models.RunReport) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	for _, outcome := range []models.DatasetOutcome{report.Comments, report.Articles} {
		if outcome.Status != models.DATASET_ANNOTATED {
			continue
		}
		path := filepath.Join(dir, export.FileName(outcome.Role, format))
		if err := writeExport(path, format, outcome.Dataset); err != nil {
			return err
		}
		slog.Info("[App] Wrote export", slog.String("path", path))
	}
	return nil
}

func writeExport(path string, format dataset.Format, ds *models.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.Write(f, ds, format); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
