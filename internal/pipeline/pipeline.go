// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline is the exposed surface of the resolution pipeline:
// entry resolution, metadata enrichment, and file acquisition, wired
// together over one shared HTTP client and one notifier.
package pipeline

import (
	"context"
	"sync"

	"github.com/pdiddy/paperpipe/internal/adapter"
	"github.com/pdiddy/paperpipe/internal/download"
	"github.com/pdiddy/paperpipe/internal/enrich"
	"github.com/pdiddy/paperpipe/internal/entry"
	"github.com/pdiddy/paperpipe/internal/httputil"
	"github.com/pdiddy/paperpipe/internal/match"
	"github.com/pdiddy/paperpipe/internal/notify"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// Pipeline owns the stage collaborators for one configured run context.
// It is safe for concurrent use; each draft flows through its own chain
// state.
type Pipeline struct {
	cfg      types.PipelineConfig
	env      adapter.Env
	resolver *entry.Resolver
	scrapers *adapter.Registry
	dloaders *download.Registry
	files    types.FileService
	notify   types.Notifier
}

// Option adjusts pipeline construction.
type Option func(*options)

type options struct {
	bypass httputil.Bypasser
	files  types.FileService
	notify types.Notifier
}

// WithBypass installs the interactive bot-detection bypass collaborator.
func WithBypass(b httputil.Bypasser) Option {
	return func(o *options) { o.bypass = b }
}

// WithFileService replaces the default local-directory file service.
func WithFileService(fs types.FileService) Option {
	return func(o *options) { o.files = fs }
}

// WithNotifier replaces the default discarding notifier.
func WithNotifier(n types.Notifier) Option {
	return func(o *options) { o.notify = n }
}

// New builds a pipeline from the configuration. The HTTP client, proxy
// agents, and title confirmer are constructed once and shared by every
// adapter across all stages.
func New(cfg types.PipelineConfig, opts ...Option) *Pipeline {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.notify == nil {
		o.notify = notify.Discard
	}

	client := httputil.New(cfg.HTTPConfig, o.bypass)
	if o.files == nil {
		o.files = download.NewLocalFiles(client, cfg.DownloadDir)
	}

	return &Pipeline{
		cfg: cfg,
		env: adapter.Env{
			Client:  client,
			Confirm: match.NewConfirmer(cfg.Match),
		},
		resolver: entry.NewResolver(client, cfg.DownloadDir, o.notify),
		scrapers: enrich.DefaultRegistry(),
		dloaders: download.DefaultRegistry(),
		files:    o.files,
		notify:   o.notify,
	}
}

// ScrapeEntry resolves raw ingestion payloads into initial drafts,
// concurrently across payloads. Unrecognized payloads yield no drafts.
func (p *Pipeline) ScrapeEntry(ctx context.Context, payloads []entry.Payload) []*types.Draft {
	return p.resolver.ResolveBatch(ctx, payloads)
}

// ScrapeMetadata enriches drafts through the metadata adapter chain,
// concurrently across drafts and strictly sequentially within each. The
// names argument restricts the chain to the named adapters; empty means
// all configured. When force is false, drafts that already carry a
// title, authors, and venue are returned untouched.
func (p *Pipeline) ScrapeMetadata(ctx context.Context, drafts []*types.Draft, names []string, force bool) []enrich.Result {
	descs := filterNames(enrich.MergeDescriptors(p.cfg.Scrapers), names)
	adapters, errs := p.scrapers.BuildAll(descs, p.env)
	for _, err := range errs {
		p.notify.Warn(err.Error())
	}

	results := make([]enrich.Result, len(drafts))
	var wg sync.WaitGroup
	for i, d := range drafts {
		if !force && complete(d) {
			results[i] = enrich.Result{Draft: d}
			continue
		}
		wg.Add(1)
		go func(i int, d *types.Draft) {
			defer wg.Done()
			results[i] = enrich.Enrich(ctx, d, adapters, p.notify)
		}(i, d)
	}
	wg.Wait()
	return results
}

// Download acquires the draft's primary file through the downloader
// chain, skipping the downloaders named in excluded. On success the
// draft's primary file location points at the local copy.
func (p *Pipeline) Download(ctx context.Context, draft *types.Draft, excluded []string) download.Result {
	descs := exclude(download.MergeDescriptors(p.cfg.Downloaders), excluded)
	downloaders, errs := p.dloaders.BuildAll(descs, p.env)
	for _, err := range errs {
		p.notify.Warn(err.Error())
	}
	return download.Acquire(ctx, draft, downloaders, p.files, p.notify)
}

// Files exposes the pipeline's file service for callers that relocate
// or delete records after processing.
func (p *Pipeline) Files() types.FileService {
	return p.files
}

// complete reports whether the draft already carries the fields a
// non-forced metadata pass would aim to fill.
func complete(d *types.Draft) bool {
	return d.Title != "" && len(d.Authors) > 0 && d.Publication != "" && d.PubTime != ""
}

// filterNames keeps only descriptors whose name is listed; an empty list
// keeps everything.
func filterNames(descs []types.Descriptor, names []string) []types.Descriptor {
	if len(names) == 0 {
		return descs
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var kept []types.Descriptor
	for _, d := range descs {
		if want[d.Name] {
			kept = append(kept, d)
		}
	}
	return kept
}

// exclude drops descriptors whose name is listed.
func exclude(descs []types.Descriptor, names []string) []types.Descriptor {
	if len(names) == 0 {
		return descs
	}
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	var kept []types.Descriptor
	for _, d := range descs {
		if !drop[d.Name] {
			kept = append(kept, d)
		}
	}
	return kept
}
