// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package entry turns raw ingestion payloads (local files, pasted
// citations, captured web content) into initial draft records. Every
// registered adapter is tried against each payload; a single input may
// be recognized by more than one adapter, and all results are kept.
package entry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pdiddy/paperpipe/internal/httputil"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// Payload is one raw ingestion input.
type Payload struct {
	// Type classifies the input: "file", "url", or "record".
	Type string `json:"type" yaml:"type"`

	// Value is the file path, URL, or serialized record.
	Value string `json:"value" yaml:"value"`

	// Content optionally carries pre-captured page content for "url"
	// payloads, so the resolver does not re-fetch what the capturer
	// already has.
	Content []byte `json:"-" yaml:"-"`
}

// Adapter recognizes and extracts drafts from one payload shape.
// Validates must be cheap and side-effect free; Extract may download a
// PDF as part of extraction, but a failed download yields a draft with
// an empty primary-file field rather than an error.
type Adapter interface {
	Name() string
	Validates(p Payload) bool
	Extract(ctx context.Context, p Payload) ([]*types.Draft, error)
}

// Resolver fans a payload out to every registered entry adapter.
type Resolver struct {
	adapters []Adapter
	notify   types.Notifier
}

// NewResolver builds the resolver with the default adapter set: local
// PDF, BibTeX file, CSV export, structured-record passthrough, and the
// captured-web-page readers.
func NewResolver(client *httputil.Client, downloadDir string, notify types.Notifier) *Resolver {
	base := webBase{client: client, downloadDir: downloadDir, notify: notify}
	return &Resolver{
		adapters: []Adapter{
			&pdfAdapter{},
			&bibtexAdapter{},
			&csvAdapter{},
			&recordAdapter{},
			&arxivPageAdapter{webBase: base},
			&neuripsPageAdapter{webBase: base},
			&citationPageAdapter{webBase: base},
		},
		notify: notify,
	}
}

// Adapters returns the registered adapter names in registration order.
func (r *Resolver) Adapters() []string {
	names := make([]string, len(r.adapters))
	for i, a := range r.adapters {
		names[i] = a.Name()
	}
	return names
}

// Resolve tries every adapter whose predicate accepts the payload,
// concurrently, and concatenates their drafts. A payload no adapter
// recognizes yields zero drafts, not an error; a failing adapter is
// logged as a warning and the others proceed.
func (r *Resolver) Resolve(ctx context.Context, p Payload) []*types.Draft {
	type extraction struct {
		index  int
		drafts []*types.Draft
		err    error
		name   string
	}

	ch := make(chan extraction, len(r.adapters))
	var wg sync.WaitGroup

	for i, a := range r.adapters {
		if !a.Validates(p) {
			continue
		}
		wg.Add(1)
		go func(i int, a Adapter) {
			defer wg.Done()
			drafts, err := a.Extract(ctx, p)
			ch <- extraction{index: i, drafts: drafts, err: err, name: a.Name()}
		}(i, a)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	// Collect by adapter index so concurrent completion order does not
	// reorder results between runs.
	byIndex := make(map[int][]*types.Draft)
	for ex := range ch {
		if ex.err != nil {
			r.notify.Warn(fmt.Sprintf("entry adapter %s: %v", ex.name, ex.err))
			continue
		}
		byIndex[ex.index] = ex.drafts
	}

	var all []*types.Draft
	for i := range r.adapters {
		all = append(all, byIndex[i]...)
	}
	return all
}

// ResolveBatch resolves multiple payloads concurrently, preserving
// payload order in the output.
func (r *Resolver) ResolveBatch(ctx context.Context, payloads []Payload) []*types.Draft {
	results := make([][]*types.Draft, len(payloads))
	var wg sync.WaitGroup
	for i, p := range payloads {
		wg.Add(1)
		go func(i int, p Payload) {
			defer wg.Done()
			results[i] = r.Resolve(ctx, p)
		}(i, p)
	}
	wg.Wait()

	var all []*types.Draft
	for _, drafts := range results {
		all = append(all, drafts...)
	}
	return all
}

// hasExt reports whether a "file" payload exists with the extension.
func hasExt(p Payload, ext string) bool {
	if p.Type != "file" {
		return false
	}
	if filepath.Ext(p.Value) != ext {
		return false
	}
	_, err := os.Stat(p.Value)
	return err == nil
}
