// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperpipe/internal/download"
	"github.com/pdiddy/paperpipe/internal/enrich"
	"github.com/pdiddy/paperpipe/internal/prefs"
	"github.com/pdiddy/paperpipe/pkg/types"
)

var adaptersCmd = &cobra.Command{
	Use:   "adapters",
	Short: "Manage metadata adapters and downloaders",
	Long: `Adapters lists the configured metadata adapters and downloaders and
persists enable/disable edits in the preference database. Stored edits
overlay the built-in defaults on every run.`,
}

var adaptersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List adapters with their effective settings",
	RunE:  runAdaptersList,
}

var adaptersEnableCmd = &cobra.Command{
	Use:   "enable [name]",
	Short: "Enable an adapter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAdapterEnabled(cmd, args[0], true)
	},
}

var adaptersDisableCmd = &cobra.Command{
	Use:   "disable [name]",
	Short: "Disable an adapter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAdapterEnabled(cmd, args[0], false)
	},
}

func init() {
	adaptersCmd.PersistentFlags().String("kind", prefs.KindScraper, "adapter kind: scraper or downloader")

	adaptersCmd.AddCommand(adaptersListCmd)
	adaptersCmd.AddCommand(adaptersEnableCmd)
	adaptersCmd.AddCommand(adaptersDisableCmd)
	rootCmd.AddCommand(adaptersCmd)
}

func openPrefs(cmd *cobra.Command) (*prefs.Store, string, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	kind, _ := cmd.Flags().GetString("kind")
	if kind != prefs.KindScraper && kind != prefs.KindDownloader {
		return nil, "", fmt.Errorf("unknown adapter kind %q", kind)
	}
	store, err := prefs.NewStore(dataDir)
	if err != nil {
		return nil, "", err
	}
	return store, kind, nil
}

// effectiveDescriptors overlays the stored descriptors onto the
// built-in defaults for the kind.
func effectiveDescriptors(store *prefs.Store, kind string) ([]types.Descriptor, error) {
	stored, err := store.Descriptors(kind)
	if err != nil {
		return nil, err
	}
	if kind == prefs.KindDownloader {
		return download.MergeDescriptors(stored), nil
	}
	return enrich.MergeDescriptors(stored), nil
}

func runAdaptersList(cmd *cobra.Command, args []string) error {
	store, kind, err := openPrefs(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	descs, err := effectiveDescriptors(store, kind)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tENABLED\tPRIORITY\tCUSTOM")
	for _, d := range descs {
		custom := ""
		if d.Custom != nil {
			custom = "yes"
		}
		fmt.Fprintf(w, "%s\t%v\t%d\t%s\n", d.Name, d.Enable, d.Priority, custom)
	}
	return w.Flush()
}

func setAdapterEnabled(cmd *cobra.Command, name string, enable bool) error {
	store, kind, err := openPrefs(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	descs, err := effectiveDescriptors(store, kind)
	if err != nil {
		return err
	}
	for _, d := range descs {
		if d.Name != name {
			continue
		}
		if err := store.SetEnabled(kind, d, enable); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s: enable=%v\n", name, enable)
		return nil
	}
	return fmt.Errorf("unknown %s %q", kind, name)
}
