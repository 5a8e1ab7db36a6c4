// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures passed between the
// entry, enrichment, and download stages.
package types

import (
	"strings"

	"github.com/google/uuid"
)

// PubType classifies the publication venue of a paper.
type PubType string

const (
	PubJournal    PubType = "journal"
	PubConference PubType = "conference"
	PubOther      PubType = "other"
	PubBook       PubType = "book"
)

// Draft is the mutable accumulator a pipeline run threads through every
// adapter. A Draft is owned by exactly one pipeline invocation; two
// concurrent chain executions never share an instance.
type Draft struct {
	// ID uniquely identifies the draft for the lifetime of the run.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in citation order.
	Authors []string `json:"authors" yaml:"authors"`

	// Publication is the venue name (journal or conference).
	Publication string `json:"publication,omitempty" yaml:"publication,omitempty"`

	// PubTime is the publication year (e.g. "2023").
	PubTime string `json:"pub_time,omitempty" yaml:"pub_time,omitempty"`

	// PubType classifies the venue: journal, conference, other, book.
	PubType PubType `json:"pub_type,omitempty" yaml:"pub_type,omitempty"`

	// DOI is the Digital Object Identifier, without a resolver prefix.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// ArxivID is the arXiv identifier (e.g. "2301.07041"), no "arXiv:" prefix.
	ArxivID string `json:"arxiv,omitempty" yaml:"arxiv,omitempty"`

	// MainURL locates the primary file (local path or remote URL).
	MainURL string `json:"main_url,omitempty" yaml:"main_url,omitempty"`

	// SupURLs lists supplementary file locations.
	SupURLs []string `json:"sup_urls,omitempty" yaml:"sup_urls,omitempty"`

	// Note is a free-form annotation carried through unmodified.
	Note string `json:"note,omitempty" yaml:"note,omitempty"`

	// Codes lists code-repository links associated with the paper.
	Codes []string `json:"codes,omitempty" yaml:"codes,omitempty"`

	// Pages, Volume, Number, and Publisher are secondary bibliographic fields.
	Pages     string `json:"pages,omitempty" yaml:"pages,omitempty"`
	Volume    string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Number    string `json:"number,omitempty" yaml:"number,omitempty"`
	Publisher string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
}

// NewDraft returns an empty draft with a fresh ID.
func NewDraft() *Draft {
	return &Draft{ID: uuid.NewString()}
}

// AuthorString returns the authors joined in the legacy delimited form
// ("A. Author, B. Author") used by downstream record stores.
func (d *Draft) AuthorString() string {
	return strings.Join(d.Authors, ", ")
}

// SetAuthorString replaces the author list from the legacy delimited form.
func (d *Draft) SetAuthorString(s string) {
	d.Authors = d.Authors[:0]
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			d.Authors = append(d.Authors, name)
		}
	}
}

// Clone returns a deep copy of the draft. Chains that may fail partway
// clone before mutating so callers keep the pre-run state.
func (d *Draft) Clone() *Draft {
	c := *d
	c.Authors = append([]string(nil), d.Authors...)
	c.SupURLs = append([]string(nil), d.SupURLs...)
	c.Codes = append([]string(nil), d.Codes...)
	return &c
}

// Candidate is a parsed external record produced by a metadata adapter.
// Its fields become authoritative only after title-match confirmation.
type Candidate struct {
	Title       string
	Authors     []string
	Publication string
	PubTime     string
	PubType     PubType
	DOI         string
	ArxivID     string
	Pages       string
	Volume      string
	Number      string
	Publisher   string
	Codes       []string
	SupURLs     []string
}
