// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entry

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/paperpipe/pkg/types"
)

// csvAdapter reads a local CSV export. The first row names the columns;
// recognized headers are matched case-insensitively and unknown columns
// are ignored, so exports from different reference managers all load.
type csvAdapter struct{}

func (a *csvAdapter) Name() string { return "csv" }

func (a *csvAdapter) Validates(p Payload) bool { return hasExt(p, ".csv") }

func (a *csvAdapter) Extract(_ context.Context, p Payload) ([]*types.Draft, error) {
	f, err := os.Open(p.Value)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", p.Value, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", p.Value, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	col := make(map[string]int)
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}

	cell := func(row []string, names ...string) string {
		for _, n := range names {
			if i, ok := col[n]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
		}
		return ""
	}

	var drafts []*types.Draft
	for _, row := range rows[1:] {
		d := types.NewDraft()
		d.Title = cell(row, "title")
		if d.Title == "" {
			continue
		}
		if authors := cell(row, "authors", "author"); authors != "" {
			d.SetAuthorString(strings.ReplaceAll(authors, ";", ","))
		}
		d.Publication = cell(row, "publication", "venue", "journal")
		d.PubTime = cell(row, "year", "pub_time")
		d.DOI = cell(row, "doi")
		d.ArxivID = cell(row, "arxiv", "arxiv_id")
		d.Volume = cell(row, "volume")
		d.Number = cell(row, "number", "issue")
		d.Pages = cell(row, "pages")
		d.Publisher = cell(row, "publisher")
		drafts = append(drafts, d)
	}
	return drafts, nil
}
