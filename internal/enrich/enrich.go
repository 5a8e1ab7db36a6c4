// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich runs the ordered metadata adapter chain against one
// draft. Adapters execute strictly sequentially: later adapters may
// consume fields earlier adapters just set (the venue lookup reads the
// venue key the DBLP adapter wrote), and the shared network client is
// rate-limit sensitive. One failing source never aborts enrichment.
package enrich

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/pdiddy/paperpipe/internal/adapter"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// Result carries the enriched draft plus the per-adapter failures the
// chain absorbed.
type Result struct {
	Draft           *types.Draft
	ErrorsByAdapter map[string]error
}

// Failed reports whether any adapter failed during the run.
func (r Result) Failed() bool { return len(r.ErrorsByAdapter) > 0 }

// Enrich runs the metadata adapters against the draft in descending
// priority order, applying confirmed candidates through one shared
// merge-priority resolver. The draft is mutated in place and also
// returned in the result.
//
// The file-embedded metadata adapter always runs first when the draft
// has a local primary file: embedded extraction is the cheapest and most
// trustworthy source. Fetch and parse failures are recorded per adapter,
// surfaced as warnings, and the chain proceeds.
func Enrich(ctx context.Context, draft *types.Draft, adapters []adapter.Adapter, notify types.Notifier) Result {
	ordered := order(adapters, draft)
	ap := adapter.NewApplier()
	errs := make(map[string]error)

	for _, a := range ordered {
		select {
		case <-ctx.Done():
			errs["chain"] = ctx.Err()
			return Result{Draft: draft, ErrorsByAdapter: errs}
		default:
		}

		if err := runOne(ctx, a, draft, ap); err != nil {
			errs[a.Name()] = err
			notify.Warn(fmt.Sprintf("metadata adapter %s: %v", a.Name(), err))
		}
	}

	return Result{Draft: draft, ErrorsByAdapter: errs}
}

// runOne drives one adapter through decide, fetch, and parse. A panic in
// a phase (a defective custom rule, a malformed response) is downgraded
// to an adapter-scoped error.
func runOne(ctx context.Context, a adapter.Adapter, draft *types.Draft, ap *adapter.Applier) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	req := a.Decide(draft)
	if !req.Enabled {
		return nil
	}

	body, err := a.Fetch(ctx, req)
	if err != nil {
		return err
	}

	return a.Parse(body, draft, ap)
}

// order sorts adapters by descending priority, hoisting the
// file-embedded adapter to the front when the draft has a local file.
func order(adapters []adapter.Adapter, draft *types.Draft) []adapter.Adapter {
	ordered := append([]adapter.Adapter(nil), adapters...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() > ordered[j].Priority()
	})

	if !hasLocalFile(draft) {
		return ordered
	}
	for i, a := range ordered {
		if a.Name() == NamePDFMeta && i > 0 {
			copy(ordered[1:i+1], ordered[:i])
			ordered[0] = a
			break
		}
	}
	return ordered
}

func hasLocalFile(d *types.Draft) bool {
	if d.MainURL == "" {
		return false
	}
	_, err := os.Stat(d.MainURL)
	return err == nil
}
