// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request timeout. Individual calls are bounded;
	// whole chains are not.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperpipe/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// HTTPProxy and HTTPSProxy are optional proxy URLs. Agents are built
	// once per run and shared by every adapter.
	HTTPProxy  string `json:"http_proxy,omitempty" yaml:"http_proxy,omitempty"`
	HTTPSProxy string `json:"https_proxy,omitempty" yaml:"https_proxy,omitempty"`
}

// MatchConfig holds title-match confirmation settings.
type MatchConfig struct {
	// Threshold is the similarity score above which a candidate record is
	// accepted as describing the same paper. The default (0.95) is an
	// empirically chosen constant, not derived from a model.
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// PipelineConfig groups the settings for one pipeline run.
type PipelineConfig struct {
	HTTPConfig `yaml:",inline"`

	// Match configures title-match confirmation.
	Match MatchConfig `json:"match" yaml:"match"`

	// Scrapers describes the metadata adapters by name. Built-ins missing
	// from the list run with default priority and enabled.
	Scrapers []Descriptor `json:"scrapers,omitempty" yaml:"scrapers,omitempty"`

	// Downloaders describes the file-download adapters.
	Downloaders []Descriptor `json:"downloaders,omitempty" yaml:"downloaders,omitempty"`

	// DownloadDir is where acquired files are written.
	DownloadDir string `json:"download_dir" yaml:"download_dir"`
}

// DefaultMatchThreshold is the similarity cutoff used when no value is
// configured.
const DefaultMatchThreshold = 0.95
