// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pdiddy/paperpipe/internal/adapter"
	"github.com/pdiddy/paperpipe/internal/pdfscan"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// pdfMeta extracts metadata embedded in the draft's local file: document
// info, identifier mentions on the first page, link annotations, and the
// font-size title heuristic. It runs before every network source.
type pdfMeta struct {
	adapter.Base
}

func newPDFMeta(desc types.Descriptor, env adapter.Env) (adapter.Adapter, error) {
	return &pdfMeta{Base: adapter.Base{Desc: desc, Client: env.Client}}, nil
}

func (p *pdfMeta) Decide(d *types.Draft) adapter.Request {
	if d.MainURL == "" {
		return adapter.Request{}
	}
	if _, err := os.Stat(d.MainURL); err != nil {
		return adapter.Request{}
	}
	return adapter.Request{URL: d.MainURL, Enabled: true}
}

// Fetch performs the file inspection; this adapter's I/O is local.
func (p *pdfMeta) Fetch(_ context.Context, req adapter.Request) ([]byte, error) {
	if !req.Enabled {
		return nil, nil
	}
	info, err := pdfscan.Scan(req.URL)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", req.URL, err)
	}
	return json.Marshal(info)
}

func (p *pdfMeta) Parse(body []byte, d *types.Draft, ap *adapter.Applier) error {
	if body == nil {
		return nil
	}
	var info pdfscan.Info
	if err := json.Unmarshal(body, &info); err != nil {
		return fmt.Errorf("decoding scan result: %w", err)
	}

	ap.Apply(d, &types.Candidate{
		Title:   info.Title,
		Authors: info.Authors,
		DOI:     info.DOI,
		ArxivID: info.ArxivID,
	}, p.Priority())
	return nil
}
