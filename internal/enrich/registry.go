// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"github.com/pdiddy/paperpipe/internal/adapter"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// Built-in metadata adapter names.
const (
	NamePDFMeta    = "pdfmeta"
	NameArxiv      = "arxiv"
	NameCrossRef   = "crossref"
	NameDBLP       = "dblp"
	NameDBLPYear   = "dblp_year"
	NameDBLPVenue  = "dblp_venue"
	NameSemantic   = "semanticscholar"
	NameOpenReview = "openreview"
	NamePWC        = "paperswithcode"
	NameScholar    = "scholar"
)

// DefaultRegistry returns a registry with every built-in metadata
// adapter factory installed. Custom descriptors build through the same
// registry, so the chain cannot tell built-ins and customs apart.
func DefaultRegistry() *adapter.Registry {
	r := adapter.NewRegistry()
	r.Register(NamePDFMeta, newPDFMeta)
	r.Register(NameArxiv, newArxiv)
	r.Register(NameCrossRef, newCrossRef)
	r.Register(NameDBLP, newDBLP)
	r.Register(NameDBLPYear, newDBLPYear)
	r.Register(NameDBLPVenue, newDBLPVenue)
	r.Register(NameSemantic, newSemantic)
	r.Register(NameOpenReview, newOpenReview)
	r.Register(NamePWC, newPWC)
	r.Register(NameScholar, newScholar)
	return r
}

// DefaultDescriptors returns the built-in adapters with their default
// priorities, enabled. The numbers order the chain and double as merge
// precedence; they are conventional, not derived.
func DefaultDescriptors() []types.Descriptor {
	return []types.Descriptor{
		{Name: NamePDFMeta, Enable: true, Priority: 100},
		{Name: NameArxiv, Enable: true, Priority: 90},
		{Name: NameCrossRef, Enable: true, Priority: 80},
		{Name: NameDBLP, Enable: true, Priority: 70},
		{Name: NameDBLPYear, Enable: true, Priority: 65},
		{Name: NameDBLPVenue, Enable: true, Priority: 70},
		{Name: NameSemantic, Enable: true, Priority: 60},
		{Name: NameOpenReview, Enable: true, Priority: 50},
		{Name: NamePWC, Enable: true, Priority: 40},
		{Name: NameScholar, Enable: false, Priority: 30},
	}
}

// MergeDescriptors overlays user-configured descriptors onto the
// defaults: a configured entry replaces the default of the same name,
// unknown names (custom adapters) are appended.
func MergeDescriptors(configured []types.Descriptor) []types.Descriptor {
	merged := DefaultDescriptors()
	index := make(map[string]int, len(merged))
	for i, d := range merged {
		index[d.Name] = i
	}
	for _, c := range configured {
		if i, ok := index[c.Name]; ok {
			merged[i] = c
			continue
		}
		merged = append(merged, c)
	}
	return merged
}
