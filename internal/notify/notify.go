// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify provides the default writer-backed notifier. Pipeline
// failures degrade to warnings surfaced here; nothing is fatal.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/paperpipe/pkg/types"
)

// Writer writes prefixed notification lines to an io.Writer. Safe for
// concurrent use by the entry resolver's fan-out.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// New returns a notifier writing to w.
func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Warn writes a warning line.
func (n *Writer) Warn(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "warning: %s\n", msg)
}

// Error writes an error line.
func (n *Writer) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "error: %s\n", msg)
}

// Discard is a notifier that drops everything. Useful in tests and for
// callers that track errors through result values instead.
var Discard types.Notifier = discard{}

type discard struct{}

func (discard) Warn(string)  {}
func (discard) Error(string) {}
