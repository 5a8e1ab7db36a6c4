// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Descriptor configures one adapter instance. Descriptors are read from
// the preference store at chain-build time and passed into adapter
// factories; adapters never re-read shared configuration mid-run.
type Descriptor struct {
	// Name identifies the adapter in the registry (e.g. "arxiv", "dblp").
	Name string `json:"name" yaml:"name"`

	// Enable controls whether the adapter participates in its chain.
	Enable bool `json:"enable" yaml:"enable"`

	// Priority orders chain execution (higher runs first) and doubles as
	// the merge-conflict precedence level for fields the adapter writes.
	Priority int `json:"priority" yaml:"priority"`

	// Args carries adapter-specific settings such as an API key or a
	// mirror site URL.
	Args map[string]string `json:"args,omitempty" yaml:"args,omitempty"`

	// Custom holds declarative rules for user-defined adapters. Nil for
	// built-ins.
	Custom *CustomRules `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// Arg returns the named argument or fallback when absent or empty.
func (d Descriptor) Arg(key, fallback string) string {
	if v, ok := d.Args[key]; ok && v != "" {
		return v
	}
	return fallback
}

// CustomRules defines a user-supplied adapter without code. The decide
// phase is a URL template gated on required fields; the parse phase is a
// set of per-field regex extractions. Rules have no access to host
// capabilities beyond the request and candidate shapes.
type CustomRules struct {
	// URLTemplate builds the request target. Placeholders {title}, {doi},
	// and {arxiv} are substituted with URL-escaped draft fields.
	URLTemplate string `json:"url_template" yaml:"url_template"`

	// Method is the HTTP method, GET when empty.
	Method string `json:"method,omitempty" yaml:"method,omitempty"`

	// Headers are added to the request verbatim.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Require lists draft fields that must be non-empty for the adapter
	// to run (subset of "title", "doi", "arxiv").
	Require []string `json:"require,omitempty" yaml:"require,omitempty"`

	// Fields maps a draft field name to a regex whose first capture group
	// extracts that field's value from the response body.
	Fields map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}
