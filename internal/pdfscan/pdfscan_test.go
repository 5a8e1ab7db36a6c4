// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfscan

import (
	"testing"

	"github.com/ledongthuc/pdf"
)

func runs(pairs ...interface{}) []pdf.Text {
	var texts []pdf.Text
	for i := 0; i+1 < len(pairs); i += 2 {
		texts = append(texts, pdf.Text{S: pairs[i].(string), FontSize: pairs[i+1].(float64)})
	}
	return texts
}

func TestTitleFromFontsPicksLargestRun(t *testing.T) {
	texts := runs(
		"Journal of Examples", 9.0,
		"Attention Is ", 18.0,
		"All You Need", 18.0,
		"Jane Doe", 11.0,
	)
	if got := TitleFromFonts(texts); got != "Attention Is All You Need" {
		t.Errorf("title = %q", got)
	}
}

func TestTitleFromFontsSkipsArxivStamp(t *testing.T) {
	texts := runs(
		"arXiv:2301.00001v2 [cs.LG] 3 Jan 2023", 22.0,
		"Scaling Laws Revisited", 17.0,
		"body text", 10.0,
	)
	if got := TitleFromFonts(texts); got != "Scaling Laws Revisited" {
		t.Errorf("title = %q, want fallback past the arXiv stamp", got)
	}
}

func TestTitleFromFontsSkipsSingleWordHeader(t *testing.T) {
	texts := runs(
		"DRAFT", 30.0,
		"A Real Paper Title", 16.0,
	)
	if got := TitleFromFonts(texts); got != "A Real Paper Title" {
		t.Errorf("title = %q, want fallback past single-word header", got)
	}
}

func TestTitleFromFontsKeepsSingleWordCJK(t *testing.T) {
	texts := runs(
		"量子計算入門", 20.0,
		"Preface", 12.0,
	)
	if got := TitleFromFonts(texts); got != "量子計算入門" {
		t.Errorf("title = %q, CJK single run is a valid title", got)
	}
}

func TestTitleFromFontsEmpty(t *testing.T) {
	if got := TitleFromFonts(nil); got != "" {
		t.Errorf("title = %q, want empty", got)
	}
}

func TestIdentifierPatternsInPageText(t *testing.T) {
	text := "Preprint. See arXiv:2301.00001 and https://doi.org/10.1000/xyz123. More text."

	m := arxivPattern.FindStringSubmatch(text)
	if m == nil || m[1] != "2301.00001" {
		t.Fatalf("arxiv match = %v, want 2301.00001", m)
	}

	dm := doiPattern.FindStringSubmatch(text)
	if dm == nil {
		t.Fatal("doi pattern did not match")
	}
	if got := dm[1]; got != "10.1000/xyz123." && got != "10.1000/xyz123" {
		t.Fatalf("doi match = %q", got)
	}
}

func TestIdentifierPatternVariants(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://arxiv.org/abs/2107.03374v2", "2107.03374"},
		{"http://arxiv.org/pdf/1706.03762", "1706.03762"},
		{"ARXIV: 2301.00001", "2301.00001"},
	}
	for _, tt := range tests {
		m := arxivPattern.FindStringSubmatch(tt.in)
		if m == nil || m[1] != tt.want {
			t.Errorf("pattern(%q) = %v, want %q", tt.in, m, tt.want)
		}
	}
}
