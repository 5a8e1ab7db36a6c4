// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"testing"

	"github.com/pdiddy/paperpipe/pkg/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "Attention Is All You Need", "attention is all you need"},
		{"strips punctuation", "BERT: Pre-training of Deep Bidirectional Transformers", "bert pretraining of deep bidirectional transformers"},
		{"strips amp escape", "Signals &amp; Systems", "signals systems"},
		{"collapses whitespace", "  a\t b \n c  ", "a b c"},
		{"strips symbols", "cost < $100", "cost 100"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"identical", "Deep Residual Learning", "Deep Residual Learning", 1, 1},
		{"identical after normalization", "Deep Learning!", "deep learning", 1, 1},
		{"disjoint", "quantum chromodynamics", "zebra migration", 0, 0.2},
		{"single char difference stays high", "Deep Learning for X", "Deep Learning for Y", 0.5, 0.95},
		{"both empty", "", "", 0, 0},
		{"one too short", "a", "a longer title", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if got < tt.min || got > tt.max {
				t.Errorf("Similarity(%q, %q) = %v, want in [%v, %v]", tt.a, tt.b, got, tt.min, tt.max)
			}
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	a, b := "Attention Is All You Need", "Attention Is Not All You Need"
	if Similarity(a, b) != Similarity(b, a) {
		t.Error("similarity should be symmetric")
	}
}

func TestConfirmBoundary(t *testing.T) {
	c := NewConfirmer(types.MatchConfig{})

	// Identical normalized strings score 1.0 > 0.95: accept.
	if !c.Confirm("Deep Learning for X", "deep learning for x") {
		t.Error("identical normalized titles should confirm")
	}

	// A deliberately constructed near-miss must reject: the score is
	// below or at the threshold.
	if c.Confirm("Deep Learning for X", "Deep Learning for Y") {
		t.Error("near-miss titles should not confirm")
	}

	// Empty candidate never confirms.
	if c.Confirm("", "Deep Learning for X") {
		t.Error("empty candidate should not confirm")
	}
}

func TestConfirmerThresholdOverride(t *testing.T) {
	loose := NewConfirmer(types.MatchConfig{Threshold: 0.5})
	if !loose.Confirm("Deep Learning for X", "Deep Learning for Y") {
		t.Error("loose threshold should accept the near-miss")
	}

	// Out-of-range thresholds fall back to the default.
	bad := NewConfirmer(types.MatchConfig{Threshold: 1.5})
	if bad.threshold != types.DefaultMatchThreshold {
		t.Errorf("threshold = %v, want default", bad.threshold)
	}
}

func TestBest(t *testing.T) {
	c := NewConfirmer(types.MatchConfig{})
	titles := []string{
		"Deep Learning for Natural Language Processing",
		"Attention Is All You Need",
		"Deep Reinforcement Learning",
	}

	if got := c.Best("attention is all you need", titles); got != 1 {
		t.Errorf("Best = %d, want 1", got)
	}
	if got := c.Best("completely unrelated topic", titles); got != -1 {
		t.Errorf("Best = %d, want -1 for no match", got)
	}
}
