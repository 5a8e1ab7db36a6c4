// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperpipe/internal/notify"
	"github.com/pdiddy/paperpipe/internal/pipeline"
)

var downloadCmd = &cobra.Command{
	Use:   "download [draft.yaml...]",
	Short: "Acquire the primary file for existing draft records",
	Long: `Download runs the file acquisition chain for each draft record: the
configured downloaders are tried in priority order and the first located
file is fetched into the download directory. Records that already point
at a local file are skipped.`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringSlice("exclude", nil, "downloaders to skip")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more draft record files")
	}

	excluded, _ := cmd.Flags().GetStringSlice("exclude")

	p := pipeline.New(pipelineConfig(cmd), pipeline.WithNotifier(notify.New(os.Stderr)))

	var downloaded, skipped, failed int
	for _, path := range args {
		d, err := readDraft(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed:  %s (%v)\n", path, err)
			failed++
			continue
		}
		if hasLocalFile(d) {
			fmt.Fprintf(os.Stdout, "skipped: %s (file present)\n", firstNonEmpty(d.Title, d.ID))
			skipped++
			continue
		}

		res := p.Download(cmd.Context(), d, excluded)
		if res.Source == "" {
			fmt.Fprintf(os.Stderr, "failed:  %s (no source produced a file)\n", firstNonEmpty(d.Title, d.ID))
			failed++
			continue
		}
		if err := writeDraft(d, path); err != nil {
			fmt.Fprintf(os.Stderr, "failed:  %s (%v)\n", path, err)
			failed++
			continue
		}
		fmt.Fprintf(os.Stdout, "downloaded: %s (%s)\n", firstNonEmpty(d.Title, d.ID), res.Source)
		downloaded++
	}

	fmt.Fprintf(os.Stdout, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		downloaded, skipped, failed, len(args))
	if failed > 0 {
		return fmt.Errorf("%d draft(s) failed download", failed)
	}
	return nil
}
