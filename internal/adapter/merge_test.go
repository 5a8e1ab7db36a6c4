// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import (
	"testing"

	"github.com/pdiddy/paperpipe/pkg/types"
)

func TestApplyEmptyFieldAcceptsAnyPriority(t *testing.T) {
	d := types.NewDraft()
	ap := NewApplier()

	ap.Apply(d, &types.Candidate{Publication: "NeurIPS"}, 1)

	if d.Publication != "NeurIPS" {
		t.Errorf("Publication = %q, want NeurIPS", d.Publication)
	}
	if ap.Level(FieldPublication) != 1 {
		t.Errorf("level = %d, want 1", ap.Level(FieldPublication))
	}
}

func TestApplyLowerPriorityCannotOverwrite(t *testing.T) {
	d := types.NewDraft()
	ap := NewApplier()

	ap.Apply(d, &types.Candidate{Title: "High Confidence Title"}, 10)
	ap.Apply(d, &types.Candidate{Title: "Low Confidence Title"}, 5)

	if d.Title != "High Confidence Title" {
		t.Errorf("Title = %q, low priority clobbered high", d.Title)
	}
}

func TestApplyEqualPriorityOverwrites(t *testing.T) {
	d := types.NewDraft()
	ap := NewApplier()

	ap.Apply(d, &types.Candidate{Title: "First"}, 5)
	ap.Apply(d, &types.Candidate{Title: "Second"}, 5)

	if d.Title != "Second" {
		t.Errorf("Title = %q, want Second (equal priority may overwrite)", d.Title)
	}
}

func TestApplyMonotonicLevels(t *testing.T) {
	d := types.NewDraft()
	ap := NewApplier()

	ap.Apply(d, &types.Candidate{Title: "A"}, 3)
	before := ap.Level(FieldTitle)

	ap.Apply(d, &types.Candidate{Title: "B"}, 7)
	ap.Apply(d, &types.Candidate{Title: "C"}, 1)

	after := ap.Level(FieldTitle)
	if after < before {
		t.Errorf("level decreased from %d to %d", before, after)
	}
	if after != 7 {
		t.Errorf("level = %d, want 7", after)
	}
}

func TestPubTimeKeepsFirstConfirmedValue(t *testing.T) {
	d := types.NewDraft()
	ap := NewApplier()

	ap.Apply(d, &types.Candidate{PubTime: "2020", PubType: types.PubConference}, 2)
	ap.Apply(d, &types.Candidate{PubTime: "2021", PubType: types.PubJournal}, 9)

	if d.PubTime != "2020" {
		t.Errorf("PubTime = %q, want first confirmed value 2020", d.PubTime)
	}
	if d.PubType != types.PubConference {
		t.Errorf("PubType = %q, want conference", d.PubType)
	}
}

func TestIdentifiersImmutableOnceSet(t *testing.T) {
	d := types.NewDraft()
	ap := NewApplier()

	ap.Apply(d, &types.Candidate{DOI: "10.1/first", ArxivID: "2301.00001"}, 1)
	ap.Apply(d, &types.Candidate{DOI: "10.1/second", ArxivID: "2302.99999"}, 99)

	if d.DOI != "10.1/first" {
		t.Errorf("DOI = %q, want immutable first value", d.DOI)
	}
	if d.ArxivID != "2301.00001" {
		t.Errorf("ArxivID = %q, want immutable first value", d.ArxivID)
	}
}

func TestListFieldsUnionWithoutDuplicates(t *testing.T) {
	d := types.NewDraft()
	d.Codes = []string{"https://github.com/a/b"}
	ap := NewApplier()

	ap.Apply(d, &types.Candidate{
		Codes:   []string{"https://github.com/a/b", "https://github.com/c/d"},
		SupURLs: []string{"https://example.org/sup.pdf"},
	}, 3)
	// Second identical application must not duplicate entries.
	ap.Apply(d, &types.Candidate{
		Codes: []string{"https://github.com/c/d"},
	}, 3)

	if len(d.Codes) != 2 {
		t.Errorf("Codes = %v, want 2 unique entries", d.Codes)
	}
	if len(d.SupURLs) != 1 {
		t.Errorf("SupURLs = %v, want 1 entry", d.SupURLs)
	}
}

func TestUserSuppliedValueRefinableByAnyAdapter(t *testing.T) {
	d := types.NewDraft()
	d.Publication = "neurips" // user-supplied, no recorded level
	ap := NewApplier()

	ap.Apply(d, &types.Candidate{Publication: "Advances in Neural Information Processing Systems"}, 1)

	if d.Publication == "neurips" {
		t.Error("adapter should refine a field with no recorded level")
	}
}

func TestSetMainURL(t *testing.T) {
	d := types.NewDraft()
	ap := NewApplier()

	ap.SetMainURL(d, "https://arxiv.org/pdf/2301.00001", 4)
	if d.MainURL == "" {
		t.Fatal("MainURL not set")
	}
	ap.SetMainURL(d, "https://mirror.example/2301.pdf", 1)
	if d.MainURL != "https://arxiv.org/pdf/2301.00001" {
		t.Errorf("MainURL = %q, lower priority overwrote", d.MainURL)
	}
}

func TestLevelUnwrittenField(t *testing.T) {
	ap := NewApplier()
	if ap.Level(FieldTitle) != -1 {
		t.Errorf("Level = %d, want -1 for unwritten field", ap.Level(FieldTitle))
	}
}
