// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package adapter defines the three-phase contract shared by every
// metadata and download adapter, the typed registry that builds adapter
// instances from descriptors, and the merge-priority resolver that
// arbitrates field writes.
//
// Each adapter invocation moves through a fixed state machine: a
// disabled request is terminal and leaves the draft unchanged; an
// enabled request is fetched, its candidate either confirmed and
// applied, rejected, or the fetch error is logged and the draft left
// unchanged.
package adapter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/paperpipe/internal/httputil"
	"github.com/pdiddy/paperpipe/internal/match"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// Request is the output of an adapter's decide phase: the target
// operation plus an enabled flag. When Enabled is false the fetch and
// parse phases are skipped entirely.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    []byte
	Enabled bool
}

// Adapter is the universal three-phase shape. Decide is a pure function
// of the current draft and the adapter's arguments and must not perform
// I/O. Fetch performs the network or file operation. Parse extracts
// structured fields from the raw response and applies them through the
// merge-priority resolver.
type Adapter interface {
	Name() string
	Priority() int
	Decide(draft *types.Draft) Request
	Fetch(ctx context.Context, req Request) ([]byte, error)
	Parse(body []byte, draft *types.Draft, ap *Applier) error
}

// Env bundles the shared collaborators an adapter factory needs. The
// client and confirmer are built once per pipeline run.
type Env struct {
	Client  *httputil.Client
	Confirm match.Confirmer
}

// Base supplies the descriptor-backed identity and the default fetch
// implementation shared by most adapters. Concrete adapters embed Base
// and implement Decide and Parse.
type Base struct {
	Desc   types.Descriptor
	Client *httputil.Client
}

// Name returns the descriptor name.
func (b Base) Name() string { return b.Desc.Name }

// Priority returns the descriptor priority.
func (b Base) Priority() int { return b.Desc.Priority }

// Fetch performs the request through the shared client. A disabled
// request short-circuits with no I/O and a nil body.
func (b Base) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if !req.Enabled {
		return nil, nil
	}
	if req.Method == http.MethodPost {
		return b.Client.Post(ctx, req.URL, req.Headers, req.Body)
	}
	return b.Client.Get(ctx, req.URL, req.Headers)
}

// Factory builds one adapter instance from its descriptor.
type Factory func(desc types.Descriptor, env Env) (Adapter, error)

// Registry maps adapter names to factories. Built-in and custom adapters
// populate the same registry, so chains cannot distinguish them.
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

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Build constructs the adapter named by the descriptor. Descriptors that
// carry custom rules build a rule-driven adapter without needing a
// registered factory.
func (r *Registry) Build(desc types.Descriptor, env Env) (Adapter, error) {
	if f, ok := r.factories[desc.Name]; ok {
		return f(desc, env)
	}
	if desc.Custom != nil {
		return newCustom(desc, env)
	}
	return nil, fmt.Errorf("unknown adapter %q", desc.Name)
}

// BuildAll constructs adapters for every enabled descriptor. Descriptors
// that fail to build are reported through errs and skipped; one broken
// custom source never prevents the others from running.
func (r *Registry) BuildAll(descs []types.Descriptor, env Env) (adapters []Adapter, errs []error) {
	for _, d := range descs {
		if !d.Enable {
			continue
		}
		a, err := r.Build(d, env)
		if err != nil {
			errs = append(errs, fmt.Errorf("building adapter %q: %w", d.Name, err))
			continue
		}
		adapters = append(adapters, a)
	}
	return adapters, errs
}
