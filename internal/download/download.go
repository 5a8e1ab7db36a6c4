// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download locates and retrieves the primary file for a draft.
// Downloaders run in descending priority order and the chain stops at
// the first one that produces a file; a failing downloader is a
// warning, not an abort.
package download

import (
	"context"
	"fmt"
	"sort"

	"github.com/pdiddy/paperpipe/internal/adapter"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// Downloader follows the same three-phase shape as a metadata adapter,
// with a locate phase instead of a field-extraction parse: it turns the
// raw response into a remote file location, or "" when the source has
// nothing for this draft.
type Downloader interface {
	Name() string
	Priority() int
	Decide(draft *types.Draft) adapter.Request
	Fetch(ctx context.Context, req adapter.Request) ([]byte, error)
	Locate(body []byte, draft *types.Draft) (string, error)
}

// Factory builds one downloader from its descriptor.
type Factory func(desc types.Descriptor, env adapter.Env) (Downloader, error)

// Registry maps downloader names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name, replacing any previous entry.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Build constructs the downloader named by the descriptor.
func (r *Registry) Build(desc types.Descriptor, env adapter.Env) (Downloader, error) {
	f, ok := r.factories[desc.Name]
	if !ok {
		return nil, fmt.Errorf("unknown downloader %q", desc.Name)
	}
	return f(desc, env)
}

// BuildAll constructs downloaders for every enabled descriptor,
// reporting broken ones through errs and skipping them.
func (r *Registry) BuildAll(descs []types.Descriptor, env adapter.Env) (downloaders []Downloader, errs []error) {
	for _, d := range descs {
		if !d.Enable {
			continue
		}
		dl, err := r.Build(d, env)
		if err != nil {
			errs = append(errs, fmt.Errorf("building downloader %q: %w", d.Name, err))
			continue
		}
		downloaders = append(downloaders, dl)
	}
	return downloaders, errs
}

// Built-in downloader names.
const (
	NameArxiv    = "arxiv"
	NameOpenAlex = "openalex"
	NameSemantic = "semanticscholar"
	NameMirror   = "mirror"
)

// DefaultRegistry returns a registry with every built-in downloader.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NameArxiv, newArxiv)
	r.Register(NameOpenAlex, newOpenAlex)
	r.Register(NameSemantic, newSemantic)
	r.Register(NameMirror, newMirror)
	return r
}

// DefaultDescriptors returns the built-in downloaders with their default
// priorities. The mirror downloader stays dormant until a site URL is
// configured through its args.
func DefaultDescriptors() []types.Descriptor {
	return []types.Descriptor{
		{Name: NameArxiv, Enable: true, Priority: 100},
		{Name: NameOpenAlex, Enable: true, Priority: 80},
		{Name: NameSemantic, Enable: true, Priority: 60},
		{Name: NameMirror, Enable: true, Priority: 40},
	}
}

// MergeDescriptors overlays configured descriptors onto the defaults.
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

// Result carries the draft after a download attempt plus the failures
// absorbed along the way. Source names the downloader that produced the
// file, empty when none did.
type Result struct {
	Draft           *types.Draft
	Source          string
	ErrorsByAdapter map[string]error
}

// Acquire runs the downloaders against the draft in descending priority
// order and stops at the first located file. The located remote URL is
// handed to the file service, which returns the local path recorded as
// the draft's primary file location.
func Acquire(ctx context.Context, draft *types.Draft, downloaders []Downloader, files types.FileService, notify types.Notifier) Result {
	errs := make(map[string]error)

	for _, dl := range sorted(downloaders) {
		select {
		case <-ctx.Done():
			errs["chain"] = ctx.Err()
			return Result{Draft: draft, ErrorsByAdapter: errs}
		default:
		}

		loc, err := locate(ctx, dl, draft)
		if err != nil {
			errs[dl.Name()] = err
			notify.Warn(fmt.Sprintf("downloader %s: %v", dl.Name(), err))
			continue
		}
		if loc == "" {
			continue
		}

		path, err := files.Access(loc, true)
		if err != nil {
			errs[dl.Name()] = err
			notify.Warn(fmt.Sprintf("downloader %s: fetching %s: %v", dl.Name(), loc, err))
			continue
		}

		draft.MainURL = path
		return Result{Draft: draft, Source: dl.Name(), ErrorsByAdapter: errs}
	}

	return Result{Draft: draft, ErrorsByAdapter: errs}
}

// locate drives one downloader through its three phases, downgrading a
// panic to a downloader-scoped error.
func locate(ctx context.Context, dl Downloader, draft *types.Draft) (loc string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	req := dl.Decide(draft)
	if !req.Enabled {
		return "", nil
	}
	body, err := dl.Fetch(ctx, req)
	if err != nil {
		return "", err
	}
	return dl.Locate(body, draft)
}

func sorted(downloaders []Downloader) []Downloader {
	ordered := append([]Downloader(nil), downloaders...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() > ordered[j].Priority()
	})
	return ordered
}
