// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entry

import (
	"context"
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperpipe/pkg/types"
)

// recordAdapter passes through a payload that already is a serialized
// draft record. Used for programmatic re-scrape: the caller hands back a
// stored record and the pipeline enriches it again.
type recordAdapter struct{}

func (a *recordAdapter) Name() string { return "record" }

func (a *recordAdapter) Validates(p Payload) bool { return p.Type == "record" }

func (a *recordAdapter) Extract(_ context.Context, p Payload) ([]*types.Draft, error) {
	var d types.Draft
	if err := yaml.Unmarshal([]byte(p.Value), &d); err != nil {
		return nil, fmt.Errorf("parsing record payload: %w", err)
	}
	if d.ID == "" {
		d.ID = types.NewDraft().ID
	}
	return []*types.Draft{&d}, nil
}
