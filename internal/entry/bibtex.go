// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entry

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pdiddy/paperpipe/pkg/types"
)

// bibtexEntryPattern splits a .bib file into entries: @type{key, ...}.
var bibtexEntryPattern = regexp.MustCompile(`(?s)@(\w+)\s*\{\s*[^,]*,(.*?)\n\}`)

// bibtexFieldPattern matches one field assignment inside an entry. Values
// are brace- or quote-delimited.
var bibtexFieldPattern = regexp.MustCompile(`(\w+)\s*=\s*[{"]((?:[^{}"]|\{[^{}]*\})*)[}"]`)

// eprintPattern pulls a modern arXiv identifier out of an eprint field.
var eprintPattern = regexp.MustCompile(`^\d{4}\.\d{4,5}`)

// bibtexAdapter reads a local BibTeX export file.
type bibtexAdapter struct{}

func (a *bibtexAdapter) Name() string { return "bibtex" }

func (a *bibtexAdapter) Validates(p Payload) bool { return hasExt(p, ".bib") }

func (a *bibtexAdapter) Extract(_ context.Context, p Payload) ([]*types.Draft, error) {
	data, err := os.ReadFile(p.Value)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p.Value, err)
	}
	return parseBibTeX(string(data)), nil
}

// parseBibTeX converts each entry into a draft. Unrecognized fields are
// ignored; entries without a title are dropped.
func parseBibTeX(src string) []*types.Draft {
	var drafts []*types.Draft
	for _, entry := range bibtexEntryPattern.FindAllStringSubmatch(src, -1) {
		entryType, body := strings.ToLower(entry[1]), entry[2]

		d := types.NewDraft()
		switch entryType {
		case "article":
			d.PubType = types.PubJournal
		case "inproceedings", "conference", "proceedings":
			d.PubType = types.PubConference
		case "book":
			d.PubType = types.PubBook
		default:
			d.PubType = types.PubOther
		}

		for _, f := range bibtexFieldPattern.FindAllStringSubmatch(body, -1) {
			name := strings.ToLower(f[1])
			value := cleanBibValue(f[2])
			switch name {
			case "title":
				d.Title = value
			case "author":
				d.Authors = splitBibAuthors(value)
			case "journal", "booktitle":
				d.Publication = value
			case "year":
				d.PubTime = value
			case "doi":
				d.DOI = value
			case "eprint":
				if m := eprintPattern.FindString(value); m != "" {
					d.ArxivID = m
				}
			case "pages":
				d.Pages = value
			case "volume":
				d.Volume = value
			case "number":
				d.Number = value
			case "publisher":
				d.Publisher = value
			case "note":
				d.Note = value
			}
		}

		if d.Title != "" {
			drafts = append(drafts, d)
		}
	}
	return drafts
}

// splitBibAuthors splits an author field on " and " and flips the
// "Last, First" form into display order.
func splitBibAuthors(value string) []string {
	var authors []string
	for _, name := range strings.Split(value, " and ") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if last, first, ok := strings.Cut(name, ","); ok {
			name = strings.TrimSpace(first) + " " + strings.TrimSpace(last)
		}
		authors = append(authors, strings.TrimSpace(name))
	}
	return authors
}

// cleanBibValue strips protective braces and collapses line breaks.
func cleanBibValue(v string) string {
	v = strings.NewReplacer("{", "", "}", "", "\n", " ", "\r", " ").Replace(v)
	return strings.Join(strings.Fields(v), " ")
}
