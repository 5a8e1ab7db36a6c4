// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import "github.com/pdiddy/paperpipe/pkg/types"

// Field names tracked by the merge-priority resolver.
const (
	FieldTitle       = "title"
	FieldAuthors     = "authors"
	FieldPublication = "publication"
	FieldPubTime     = "pubTime"
	FieldPubType     = "pubType"
	FieldDOI         = "doi"
	FieldArxiv       = "arxiv"
	FieldMainURL     = "mainURL"
	FieldSupURLs     = "supURLs"
	FieldCodes       = "codes"
	FieldPages       = "pages"
	FieldVolume      = "volume"
	FieldNumber      = "number"
	FieldPublisher   = "publisher"
)

// Applier is the merge-priority resolver for a single draft. It records,
// per field, the priority of whichever adapter last wrote it, and allows
// a new write only when the field is empty or the writer's priority is
// at least the recorded level. Levels are monotonically non-decreasing
// across one enrichment run.
//
// Special cases: pubTime and pubType keep the first confirmed value and
// are never downgraded by later guesses; doi and arxiv are immutable
// once non-empty (only the entry stage or a user edit changes them);
// list fields are unioned rather than replaced.
type Applier struct {
	levels map[string]int
}

// NewApplier returns a resolver with no recorded levels; every field is
// considered to hold its original or user-supplied value.
func NewApplier() *Applier {
	return &Applier{levels: make(map[string]int)}
}

// Level returns the recorded priority for field, or -1 when the field
// has not been written during this run.
func (a *Applier) Level(field string) int {
	if lvl, ok := a.levels[field]; ok {
		return lvl
	}
	return -1
}

// Apply writes the confirmed candidate's fields into the draft subject
// to the overwrite rules, using priority as the writer's level.
func (a *Applier) Apply(d *types.Draft, c *types.Candidate, priority int) {
	a.setString(&d.Title, FieldTitle, c.Title, priority)
	a.setString(&d.Publication, FieldPublication, c.Publication, priority)
	a.setString(&d.Pages, FieldPages, c.Pages, priority)
	a.setString(&d.Volume, FieldVolume, c.Volume, priority)
	a.setString(&d.Number, FieldNumber, c.Number, priority)
	a.setString(&d.Publisher, FieldPublisher, c.Publisher, priority)

	if len(c.Authors) > 0 && a.allow(FieldAuthors, len(d.Authors) == 0, priority) {
		d.Authors = append([]string(nil), c.Authors...)
		a.record(FieldAuthors, priority)
	}

	// First confirmed value wins; later adapters never downgrade these.
	if c.PubTime != "" && d.PubTime == "" {
		d.PubTime = c.PubTime
		a.record(FieldPubTime, priority)
	}
	if c.PubType != "" && d.PubType == "" {
		d.PubType = c.PubType
		a.record(FieldPubType, priority)
	}

	// Identifiers are immutable once set.
	if c.DOI != "" && d.DOI == "" {
		d.DOI = c.DOI
		a.record(FieldDOI, priority)
	}
	if c.ArxivID != "" && d.ArxivID == "" {
		d.ArxivID = c.ArxivID
		a.record(FieldArxiv, priority)
	}

	if len(c.SupURLs) > 0 {
		d.SupURLs = union(d.SupURLs, c.SupURLs)
		a.record(FieldSupURLs, priority)
	}
	if len(c.Codes) > 0 {
		d.Codes = union(d.Codes, c.Codes)
		a.record(FieldCodes, priority)
	}
}

// SetMainURL writes the primary file location, subject to the standard
// overwrite rule.
func (a *Applier) SetMainURL(d *types.Draft, url string, priority int) {
	a.setString(&d.MainURL, FieldMainURL, url, priority)
}

func (a *Applier) setString(dst *string, field, value string, priority int) {
	if value == "" {
		return
	}
	if !a.allow(field, *dst == "", priority) {
		return
	}
	*dst = value
	a.record(field, priority)
}

// allow applies the overwrite rule: empty fields always accept; occupied
// fields require priority >= the recorded level.
func (a *Applier) allow(field string, empty bool, priority int) bool {
	if empty {
		return true
	}
	lvl, ok := a.levels[field]
	if !ok {
		// Occupied but never written this run: original or user-supplied
		// value, which any adapter may refine.
		return true
	}
	return priority >= lvl
}

// record bumps the field level, never decreasing it.
func (a *Applier) record(field string, priority int) {
	if lvl, ok := a.levels[field]; !ok || priority > lvl {
		a.levels[field] = priority
	}
}

// union appends the members of add missing from base, preserving order.
func union(base, add []string) []string {
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		seen[v] = true
	}
	for _, v := range add {
		if v != "" && !seen[v] {
			base = append(base, v)
			seen[v] = true
		}
	}
	return base
}
