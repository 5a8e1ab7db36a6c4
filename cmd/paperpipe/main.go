// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperpipe CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperpipe/internal/download"
	"github.com/pdiddy/paperpipe/internal/notify"
	"github.com/pdiddy/paperpipe/internal/prefs"
	"github.com/pdiddy/paperpipe/internal/secrets"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultUserAgent = "paperpipe/0.1"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the paperpipe CLI.
var rootCmd = &cobra.Command{
	Use:   "paperpipe",
	Short: "Metadata and file resolution pipeline for scholarly papers",
	Long: `paperpipe turns raw paper references (PDF files, BibTeX, CSV exports,
captured web pages) into complete metadata records with local files.

Each pipeline stage is a subcommand: resolve runs the whole pipeline,
enrich and download run single stages against existing draft records,
and adapters manages which metadata sources and downloaders participate.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/", notify.New(os.Stderr))
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperpipe.yaml or ~/.config/paperpipe/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", defaultDataDir(), "directory for the preference database and downloads")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperpipe")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperpipe"))
		}
	}

	viper.SetEnvPrefix("PAPERPIPE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "paperpipe-data"
	}
	return filepath.Join(home, ".local", "share", "paperpipe")
}

// pipelineConfig assembles the pipeline configuration from the config
// file, environment, and secrets directory.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	dataDir, _ := cmd.Flags().GetString("data-dir")

	cfg := types.PipelineConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:    viper.GetDuration("timeout"),
			UserAgent:  viper.GetString("user_agent"),
			HTTPProxy:  viper.GetString("http_proxy"),
			HTTPSProxy: viper.GetString("https_proxy"),
		},
		Match:       types.MatchConfig{Threshold: viper.GetFloat64("match.threshold")},
		DownloadDir: viper.GetString("download_dir"),
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = filepath.Join(dataDir, "papers")
	}

	cfg.Scrapers = decodeDescriptors("scrapers")
	cfg.Downloaders = decodeDescriptors("downloaders")

	// Persisted adapter edits (adapters enable/disable) sit beneath the
	// config file: an explicit config entry wins over a stored one.
	if store, err := prefs.NewStore(dataDir); err == nil {
		cfg.Scrapers = overlayStored(store, prefs.KindScraper, cfg.Scrapers)
		cfg.Downloaders = overlayStored(store, prefs.KindDownloader, cfg.Downloaders)
		store.Close()
	} else {
		fmt.Fprintf(os.Stderr, "warning: preference store: %v\n", err)
	}

	applySecrets(&cfg)
	return cfg
}

// overlayStored layers the config-file descriptors over the stored ones.
func overlayStored(store *prefs.Store, kind string, configured []types.Descriptor) []types.Descriptor {
	stored, err := store.Descriptors(kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: reading stored %s descriptors: %v\n", kind, err)
		return configured
	}
	merged := make([]types.Descriptor, 0, len(stored)+len(configured))
	index := make(map[string]int, len(stored))
	for _, d := range stored {
		index[d.Name] = len(merged)
		merged = append(merged, d)
	}
	for _, d := range configured {
		if i, ok := index[d.Name]; ok {
			merged[i] = d
		} else {
			merged = append(merged, d)
		}
	}
	return merged
}

// decodeDescriptors reads an adapter descriptor list from the config
// through the yaml tags, which carry keys (url_template, require) that
// viper's own decoding would miss.
func decodeDescriptors(key string) []types.Descriptor {
	raw := viper.Get(key)
	if raw == nil {
		return nil
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: bad %s config: %v\n", key, err)
		return nil
	}
	var descs []types.Descriptor
	if err := yaml.Unmarshal(data, &descs); err != nil {
		fmt.Fprintf(os.Stderr, "warning: bad %s config: %v\n", key, err)
		return nil
	}
	return descs
}

// applySecrets threads credentials from the secrets directory into the
// descriptors of the downloaders that use them, without overriding
// explicit configuration. A downloader absent from the config gets its
// built-in descriptor plus the credential.
func applySecrets(cfg *types.PipelineConfig) {
	setArg := func(name, key, value string) {
		if value == "" {
			return
		}
		for i, d := range cfg.Downloaders {
			if d.Name != name {
				continue
			}
			if d.Args == nil {
				cfg.Downloaders[i].Args = map[string]string{}
			}
			if cfg.Downloaders[i].Args[key] == "" {
				cfg.Downloaders[i].Args[key] = value
			}
			return
		}
		for _, d := range download.DefaultDescriptors() {
			if d.Name == name {
				d.Args = map[string]string{key: value}
				cfg.Downloaders = append(cfg.Downloaders, d)
				return
			}
		}
	}

	setArg(download.NameSemantic, "api_key", secretDefault("semantic-scholar-api-key", ""))
	setArg(download.NameOpenAlex, "mailto", secretDefault("openalex-mailto", ""))
	setArg(download.NameMirror, "url", secretDefault("mirror-url", ""))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
