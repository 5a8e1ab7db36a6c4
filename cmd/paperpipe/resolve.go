// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperpipe/internal/entry"
	"github.com/pdiddy/paperpipe/internal/notify"
	"github.com/pdiddy/paperpipe/internal/pipeline"
	"github.com/pdiddy/paperpipe/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [inputs...]",
	Short: "Run the full pipeline on files, URLs, or citation exports",
	Long: `Resolve runs entry resolution, metadata enrichment, and file download
end to end. Inputs may be local PDF, BibTeX, or CSV files, paper page
URLs, or YAML draft records; each input may produce multiple drafts.
The finished records are written as YAML files to the output directory.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("out", "drafts", "directory for resolved draft records")
	resolveCmd.Flags().Bool("no-download", false, "skip the file acquisition stage")
	resolveCmd.Flags().Bool("force", false, "re-enrich drafts that already look complete")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more inputs (files, URLs, or draft records)")
	}

	outDir, _ := cmd.Flags().GetString("out")
	noDownload, _ := cmd.Flags().GetBool("no-download")
	force, _ := cmd.Flags().GetBool("force")

	p := pipeline.New(pipelineConfig(cmd), pipeline.WithNotifier(notify.New(os.Stderr)))

	payloads := make([]entry.Payload, len(args))
	for i, arg := range args {
		payloads[i] = classify(arg)
	}

	ctx := cmd.Context()
	drafts := p.ScrapeEntry(ctx, payloads)
	if len(drafts) == 0 {
		return fmt.Errorf("no input was recognized")
	}

	results := p.ScrapeMetadata(ctx, drafts, nil, force)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var written, downloaded, failed int
	for _, res := range results {
		d := res.Draft
		if !noDownload && !hasLocalFile(d) {
			if dl := p.Download(ctx, d, nil); dl.Source != "" {
				downloaded++
			}
		}

		path := filepath.Join(outDir, d.ID+".yaml")
		if err := writeDraft(d, path); err != nil {
			fmt.Fprintf(os.Stderr, "failed:  %s (%v)\n", d.Title, err)
			failed++
			continue
		}
		status := "resolved"
		if res.Failed() {
			status = "partial"
		}
		fmt.Fprintf(os.Stdout, "%s: %s -> %s\n", status, firstNonEmpty(d.Title, d.ID), path)
		written++
	}

	fmt.Fprintf(os.Stdout, "\nBatch summary: %d resolved, %d files downloaded, %d failed (total: %d)\n",
		written, downloaded, failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d draft(s) failed to resolve", failed)
	}
	return nil
}

// classify maps a raw CLI argument to an ingestion payload.
func classify(arg string) entry.Payload {
	if u, err := url.Parse(arg); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return entry.Payload{Type: "url", Value: arg}
	}
	if ext := strings.ToLower(filepath.Ext(arg)); ext == ".yaml" || ext == ".yml" {
		if data, err := os.ReadFile(arg); err == nil {
			return entry.Payload{Type: "record", Value: string(data)}
		}
	}
	return entry.Payload{Type: "file", Value: arg}
}

func hasLocalFile(d *types.Draft) bool {
	if d.MainURL == "" || strings.HasPrefix(d.MainURL, "http") {
		return false
	}
	_, err := os.Stat(d.MainURL)
	return err == nil
}

func writeDraft(d *types.Draft, path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling draft: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func readDraft(path string) (*types.Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d types.Draft
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing draft %s: %w", path, err)
	}
	if d.ID == "" {
		d.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
