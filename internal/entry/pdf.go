// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entry

import (
	"context"

	"github.com/pdiddy/paperpipe/internal/pdfscan"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// pdfAdapter seeds a draft from a local PDF's embedded document
// metadata, first-page text layer, and annotation link targets.
type pdfAdapter struct{}

func (a *pdfAdapter) Name() string { return "pdf" }

func (a *pdfAdapter) Validates(p Payload) bool { return hasExt(p, ".pdf") }

func (a *pdfAdapter) Extract(_ context.Context, p Payload) ([]*types.Draft, error) {
	info, err := pdfscan.Scan(p.Value)
	if err != nil {
		return nil, err
	}

	d := types.NewDraft()
	d.MainURL = p.Value
	d.Title = info.Title
	d.Authors = info.Authors
	d.DOI = info.DOI
	d.ArxivID = info.ArxivID
	return []*types.Draft{d}, nil
}
