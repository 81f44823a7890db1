package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/doctoc/internal/parser"
	"github.com/dgallion1/doctoc/internal/pipeline"
	"github.com/dgallion1/doctoc/internal/toc"
)

// fileOutline pairs an input path with its outline.
type fileOutline struct {
	File    string      `json:"file" yaml:"file"`
	Outline toc.Outline `json:"outline" yaml:"outline"`
}

func newOutlineCmd() *cobra.Command {
	var (
		format string
		jobs   int
		title  string
	)
	cmd := &cobra.Command{
		Use:   "outline FILE...",
		Short: "Print the outline of one or more documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
			if title != "" && len(args) > 1 {
				return fmt.Errorf("--title applies to a single file")
			}
			opts, err := parserOptions()
			if err != nil {
				return err
			}
			results, err := renderFiles(cmd.Context(), args, title, opts, jobs)
			if err != nil {
				return err
			}
			var v any = results
			if len(results) == 1 {
				v = results[0].Outline
			}
			return writeOutput(cmd.OutOrStdout(), format, v)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0), "Files to render concurrently")
	cmd.Flags().StringVar(&title, "title", "", "Override the document title")
	return cmd
}

// renderFiles renders paths concurrently and returns outlines in input order.
// The first failure cancels the remaining work.
func renderFiles(ctx context.Context, paths []string, title string, opts parser.Options, jobs int) ([]fileOutline, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]fileOutline, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			o, err := renderFile(path, title, opts)
			if err != nil {
				return err
			}
			results[i] = fileOutline{File: path, Outline: o}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func renderFile(path, title string, opts parser.Options) (toc.Outline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return toc.Outline{}, fmt.Errorf("read %s: %w", path, err)
	}
	return pipeline.Render(data, path, title, opts)
}

func writeOutput(w io.Writer, format string, v any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
