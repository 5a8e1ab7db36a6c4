// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperpipe/internal/adapter"
	"github.com/pdiddy/paperpipe/internal/notify"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// stubAdapter applies a fixed candidate, or fails, at a fixed priority.
type stubAdapter struct {
	name     string
	priority int
	cand     *types.Candidate
	fetchErr error
	ran      *[]string
}

func (s *stubAdapter) Name() string  { return s.name }
func (s *stubAdapter) Priority() int { return s.priority }

func (s *stubAdapter) Decide(*types.Draft) adapter.Request {
	return adapter.Request{URL: "stub://" + s.name, Enabled: true}
}

func (s *stubAdapter) Fetch(context.Context, adapter.Request) ([]byte, error) {
	if s.ran != nil {
		*s.ran = append(*s.ran, s.name)
	}
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return []byte("ok"), nil
}

func (s *stubAdapter) Parse(body []byte, d *types.Draft, ap *adapter.Applier) error {
	if body == nil || s.cand == nil {
		return nil
	}
	ap.Apply(d, s.cand, s.priority)
	return nil
}

func TestEnrichAllDisabledLeavesDraftUnchanged(t *testing.T) {
	descs := []types.Descriptor{
		{Name: NameArxiv, Enable: false, Priority: 90},
		{Name: NameCrossRef, Enable: false, Priority: 80},
	}
	adapters, errs := DefaultRegistry().BuildAll(descs, adapter.Env{})
	require.Empty(t, errs)
	require.Empty(t, adapters)

	draft := types.NewDraft()
	draft.Title = "Attention Is All You Need"
	before := draft.Clone()

	res := Enrich(context.Background(), draft, adapters, notify.Discard)
	assert.False(t, res.Failed())
	assert.Equal(t, before.Title, draft.Title)
	assert.Equal(t, before.Authors, draft.Authors)
}

func TestEnrichLowerPriorityCannotOverwrite(t *testing.T) {
	high := &stubAdapter{name: "high", priority: 90, cand: &types.Candidate{Title: "High Title", PubTime: "2020"}}
	low := &stubAdapter{name: "low", priority: 40, cand: &types.Candidate{Title: "Low Title", PubTime: "1999", Pages: "1-10"}}

	draft := types.NewDraft()
	res := Enrich(context.Background(), draft, []adapter.Adapter{low, high}, notify.Discard)

	require.False(t, res.Failed())
	assert.Equal(t, "High Title", draft.Title)
	assert.Equal(t, "2020", draft.PubTime)
	// Fields the high-priority source never set still come from the low one.
	assert.Equal(t, "1-10", draft.Pages)
}

func TestEnrichIsIdempotent(t *testing.T) {
	a := &stubAdapter{name: "src", priority: 50, cand: &types.Candidate{
		Title:   "Stable Title",
		Authors: []string{"Ada Lovelace"},
		Codes:   []string{"https://github.com/example/repo"},
	}}

	draft := types.NewDraft()
	Enrich(context.Background(), draft, []adapter.Adapter{a}, notify.Discard)
	first := draft.Clone()
	Enrich(context.Background(), draft, []adapter.Adapter{a}, notify.Discard)

	assert.Equal(t, first.Title, draft.Title)
	assert.Equal(t, first.Authors, draft.Authors)
	assert.Equal(t, first.Codes, draft.Codes, "list fields must not grow on re-run")
}

func TestEnrichFailingAdapterDoesNotAbortChain(t *testing.T) {
	var ran []string
	failing := &stubAdapter{name: "failing", priority: 90, fetchErr: errors.New("boom"), ran: &ran}
	working := &stubAdapter{name: "working", priority: 40, cand: &types.Candidate{Title: "Recovered Title"}, ran: &ran}

	draft := types.NewDraft()
	res := Enrich(context.Background(), draft, []adapter.Adapter{failing, working}, notify.Discard)

	require.True(t, res.Failed())
	require.Contains(t, res.ErrorsByAdapter, "failing")
	assert.NotContains(t, res.ErrorsByAdapter, "working")
	assert.Equal(t, []string{"failing", "working"}, ran)
	assert.Equal(t, "Recovered Title", draft.Title)
}

func TestEnrichRecoversAdapterPanic(t *testing.T) {
	panicking := &panicAdapter{}
	working := &stubAdapter{name: "working", priority: 10, cand: &types.Candidate{Title: "Still Here"}}

	draft := types.NewDraft()
	res := Enrich(context.Background(), draft, []adapter.Adapter{panicking, working}, notify.Discard)

	require.Contains(t, res.ErrorsByAdapter, "panicking")
	assert.ErrorContains(t, res.ErrorsByAdapter["panicking"], "panic")
	assert.Equal(t, "Still Here", draft.Title)
}

type panicAdapter struct{}

func (p *panicAdapter) Name() string  { return "panicking" }
func (p *panicAdapter) Priority() int { return 99 }
func (p *panicAdapter) Decide(*types.Draft) adapter.Request {
	return adapter.Request{Enabled: true}
}
func (p *panicAdapter) Fetch(context.Context, adapter.Request) ([]byte, error) {
	panic("defective rule")
}
func (p *panicAdapter) Parse([]byte, *types.Draft, *adapter.Applier) error { return nil }

func TestOrderHoistsFileAdapterForLocalDrafts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	pdfmeta := &stubAdapter{name: NamePDFMeta, priority: 10}
	remote := &stubAdapter{name: "remote", priority: 90}

	draft := types.NewDraft()
	draft.MainURL = path
	ordered := order([]adapter.Adapter{remote, pdfmeta}, draft)
	require.Len(t, ordered, 2)
	assert.Equal(t, NamePDFMeta, ordered[0].Name())

	// Without a local file the priority order stands.
	draft.MainURL = "https://example.org/paper.pdf"
	ordered = order([]adapter.Adapter{remote, pdfmeta}, draft)
	assert.Equal(t, "remote", ordered[0].Name())
}

func TestEnrichStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran []string
	a := &stubAdapter{name: "never", priority: 50, ran: &ran}

	draft := types.NewDraft()
	res := Enrich(ctx, draft, []adapter.Adapter{a}, notify.Discard)
	assert.Empty(t, ran)
	assert.True(t, res.Failed())
}

func TestMergeDescriptorsOverlaysAndAppends(t *testing.T) {
	merged := MergeDescriptors([]types.Descriptor{
		{Name: NameScholar, Enable: true, Priority: 35},
		{Name: "mycustom", Enable: true, Priority: 20, Custom: &types.CustomRules{URLTemplate: "https://x/{doi}"}},
	})

	byName := make(map[string]types.Descriptor)
	for _, d := range merged {
		byName[d.Name] = d
	}
	assert.True(t, byName[NameScholar].Enable)
	assert.Equal(t, 35, byName[NameScholar].Priority)
	assert.Contains(t, byName, "mycustom")
	assert.Equal(t, len(DefaultDescriptors())+1, len(merged))
}
