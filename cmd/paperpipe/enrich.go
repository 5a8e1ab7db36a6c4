// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperpipe/internal/notify"
	"github.com/pdiddy/paperpipe/internal/pipeline"
	"github.com/pdiddy/paperpipe/pkg/types"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich [draft.yaml...]",
	Short: "Run the metadata adapter chain against existing draft records",
	Long: `Enrich loads draft records from YAML files, runs the configured
metadata adapters against each, and writes the enriched records back in
place. Per-adapter failures are reported as warnings; a draft is only
counted as failed when it cannot be read or written.`,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().StringSlice("scraper", nil, "restrict the chain to the named adapters")
	enrichCmd.Flags().Bool("force", false, "re-enrich drafts that already look complete")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more draft record files")
	}

	names, _ := cmd.Flags().GetStringSlice("scraper")
	force, _ := cmd.Flags().GetBool("force")

	p := pipeline.New(pipelineConfig(cmd), pipeline.WithNotifier(notify.New(os.Stderr)))

	var drafts []*types.Draft
	paths := make(map[string]string)
	var failed int
	for _, path := range args {
		d, err := readDraft(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed:  %s (%v)\n", path, err)
			failed++
			continue
		}
		drafts = append(drafts, d)
		paths[d.ID] = path
	}

	results := p.ScrapeMetadata(cmd.Context(), drafts, names, force)
	for _, res := range results {
		d := res.Draft
		if err := writeDraft(d, paths[d.ID]); err != nil {
			fmt.Fprintf(os.Stderr, "failed:  %s (%v)\n", paths[d.ID], err)
			failed++
			continue
		}
		status := "enriched"
		if res.Failed() {
			status = "partial"
		}
		fmt.Fprintf(os.Stdout, "%s: %s\n", status, firstNonEmpty(d.Title, d.ID))
	}

	if failed > 0 {
		return fmt.Errorf("%d draft(s) failed", failed)
	}
	return nil
}
