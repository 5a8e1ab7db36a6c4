// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match decides whether a candidate record retrieved from an
// external source describes the same paper as a draft. Every metadata
// adapter that disambiguates among search hits goes through this package;
// it is the pipeline's single source of truth for "is this the right paper".
package match

import (
	"strings"
	"unicode"

	"github.com/pdiddy/paperpipe/pkg/types"
)

// Normalize prepares a title for comparison: it strips the "&amp;" escape
// artifact left by some HTML sources, removes punctuation and symbols,
// collapses whitespace, and lowercases.
func Normalize(title string) string {
	title = strings.ReplaceAll(title, "&amp;", "")

	var b strings.Builder
	for _, r := range title {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(strings.Join(strings.Fields(b.String()), " "))
}

// Similarity returns the Sørensen–Dice coefficient over character bigrams
// of the two normalized strings, in [0, 1]. Identical normalized strings
// score 1; strings without a common bigram score 0.
func Similarity(a, b string) float64 {
	a, b = Normalize(a), Normalize(b)
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}

	ra, rb := []rune(a), []rune(b)
	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}

	bigrams := make(map[string]int)
	for i := 0; i < len(ra)-1; i++ {
		bigrams[string(ra[i:i+2])]++
	}

	shared := 0
	for i := 0; i < len(rb)-1; i++ {
		g := string(rb[i : i+2])
		if bigrams[g] > 0 {
			bigrams[g]--
			shared++
		}
	}

	return 2 * float64(shared) / float64(len(ra)-1+len(rb)-1)
}

// Confirmer checks candidate titles against a draft title using a fixed
// threshold. Adapters accept a candidate only when Confirm reports true.
type Confirmer struct {
	threshold float64
}

// NewConfirmer builds a Confirmer from the match configuration, falling
// back to the default threshold when unset.
func NewConfirmer(cfg types.MatchConfig) Confirmer {
	t := cfg.Threshold
	if t <= 0 || t > 1 {
		t = types.DefaultMatchThreshold
	}
	return Confirmer{threshold: t}
}

// Confirm reports whether candidateTitle and draftTitle describe the same
// paper. The comparison is strict: the score must exceed the threshold,
// so near-duplicates ("... for X" vs "... for Y") are rejected.
func (c Confirmer) Confirm(candidateTitle, draftTitle string) bool {
	return Similarity(candidateTitle, draftTitle) > c.threshold
}

// Best returns the index of the candidate whose title best matches the
// draft title, or -1 when none passes confirmation.
func (c Confirmer) Best(draftTitle string, titles []string) int {
	best, bestScore := -1, c.threshold
	for i, t := range titles {
		if s := Similarity(t, draftTitle); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}
