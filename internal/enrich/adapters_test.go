// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperpipe/internal/adapter"
	"github.com/pdiddy/paperpipe/internal/httputil"
	"github.com/pdiddy/paperpipe/internal/match"
	"github.com/pdiddy/paperpipe/pkg/types"
)

func testEnv() adapter.Env {
	return adapter.Env{
		Client:  httputil.New(types.HTTPConfig{}, nil),
		Confirm: match.NewConfirmer(types.MatchConfig{}),
	}
}

func buildAdapter(t *testing.T, name string, priority int) adapter.Adapter {
	t.Helper()
	a, err := DefaultRegistry().Build(types.Descriptor{Name: name, Enable: true, Priority: priority}, testEnv())
	require.NoError(t, err)
	return a
}

func runAdapter(t *testing.T, a adapter.Adapter, d *types.Draft, ap *adapter.Applier) {
	t.Helper()
	req := a.Decide(d)
	require.True(t, req.Enabled)
	body, err := a.Fetch(context.Background(), req)
	require.NoError(t, err)
	require.NoError(t, a.Parse(body, d, ap))
}

const arxivFeedSample = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>Attention Is All
 You Need</title>
    <published>2017-06-12T17:57:34Z</published>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <link href="http://arxiv.org/pdf/1706.03762v5" title="pdf"/>
    <link href="http://arxiv.org/abs/1706.03762v5" rel="alternate"/>
  </entry>
</feed>`

func TestArxivAdapterParsesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1706.03762", r.URL.Query().Get("id_list"))
		w.Write([]byte(arxivFeedSample))
	}))
	defer srv.Close()
	orig := arxivAPIBase
	arxivAPIBase = srv.URL
	defer func() { arxivAPIBase = orig }()

	d := types.NewDraft()
	d.ArxivID = "1706.03762"
	a := buildAdapter(t, NameArxiv, 90)
	runAdapter(t, a, d, adapter.NewApplier())

	assert.Equal(t, "Attention Is All You Need", d.Title)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, d.Authors)
	assert.Equal(t, "2017", d.PubTime)
	assert.Equal(t, []string{"http://arxiv.org/pdf/1706.03762v5"}, d.SupURLs)
	assert.Empty(t, d.Publication, "arXiv must not claim the venue")
}

func TestArxivAdapterDisabledWithoutID(t *testing.T) {
	a := buildAdapter(t, NameArxiv, 90)
	req := a.Decide(types.NewDraft())
	assert.False(t, req.Enabled)
}

const crossrefWorkSample = `{"message":{
  "title":["Deep Residual Learning for Image Recognition"],
  "container-title":["2016 IEEE Conference on Computer Vision and Pattern Recognition (CVPR)"],
  "author":[{"given":"Kaiming","family":"He"},{"given":"Xiangyu","family":"Zhang"}],
  "type":"proceedings-article",
  "DOI":"10.1109/cvpr.2016.90",
  "page":"770-778",
  "publisher":"IEEE",
  "issued":{"date-parts":[[2016,6]]}
}}`

func TestCrossRefAdapterDOILookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "10.1109")
		w.Write([]byte(crossrefWorkSample))
	}))
	defer srv.Close()
	orig := crossrefAPIBase
	crossrefAPIBase = srv.URL
	defer func() { crossrefAPIBase = orig }()

	d := types.NewDraft()
	d.DOI = "10.1109/cvpr.2016.90"
	a := buildAdapter(t, NameCrossRef, 80)
	runAdapter(t, a, d, adapter.NewApplier())

	assert.Equal(t, "Deep Residual Learning for Image Recognition", d.Title)
	assert.Equal(t, []string{"Kaiming He", "Xiangyu Zhang"}, d.Authors)
	assert.Equal(t, types.PubConference, d.PubType)
	assert.Equal(t, "2016", d.PubTime)
	assert.Equal(t, "770-778", d.Pages)
	assert.Equal(t, "IEEE", d.Publisher)
}

func TestCrossRefAdapterSearchRejectsMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("query.bibliographic"))
		w.Write([]byte(`{"message":{"items":[
			{"title":["A Completely Different Paper"],"DOI":"10.1/other"}
		]}}`))
	}))
	defer srv.Close()
	orig := crossrefAPIBase
	crossrefAPIBase = srv.URL
	defer func() { crossrefAPIBase = orig }()

	d := types.NewDraft()
	d.Title = "Attention Is All You Need"
	a := buildAdapter(t, NameCrossRef, 80)
	runAdapter(t, a, d, adapter.NewApplier())

	assert.Empty(t, d.DOI, "unconfirmed search hit must not touch the draft")
}

const dblpPublSample = `{"result":{"hits":{"hit":[
  {"info":{
    "title":"Attention is All you Need.",
    "venue":"NIPS",
    "year":"2017",
    "type":"Conference and Workshop Papers",
    "doi":"10.5555/3295222",
    "authors":{"author":[{"text":"Ashish Vaswani"},{"text":"Wei Zhang 0004"}]}
  }},
  {"info":{
    "title":"Attention and Memory Networks.",
    "venue":"CoRR",
    "year":"2016",
    "type":"Informal Publications",
    "authors":{"author":{"text":"Solo Author"}}
  }}
]}}}`

func TestDBLPAdapterConfirmsBestHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(dblpPublSample))
	}))
	defer srv.Close()
	orig := dblpPublAPIBase
	dblpPublAPIBase = srv.URL
	defer func() { dblpPublAPIBase = orig }()

	d := types.NewDraft()
	d.Title = "Attention Is All You Need"
	a := buildAdapter(t, NameDBLP, 70)
	runAdapter(t, a, d, adapter.NewApplier())

	assert.Equal(t, "NIPS", d.Publication)
	assert.Equal(t, "2017", d.PubTime)
	assert.Equal(t, types.PubConference, d.PubType)
	assert.Equal(t, "10.5555/3295222", d.DOI)
	assert.Equal(t, []string{"Ashish Vaswani", "Wei Zhang"}, d.Authors,
		"numeric homonym suffix must be stripped")
}

func TestDBLPYearAdapterShiftsQueryYear(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{"result":{"hits":{"hit":[]}}}`))
	}))
	defer srv.Close()
	orig := dblpPublAPIBase
	dblpPublAPIBase = srv.URL
	defer func() { dblpPublAPIBase = orig }()

	d := types.NewDraft()
	d.Title = "Some Preprint"
	d.PubTime = "2017"
	a := buildAdapter(t, NameDBLPYear, 65)
	runAdapter(t, a, d, adapter.NewApplier())

	assert.Equal(t, "Some Preprint 2018", gotQuery)
}

func TestDBLPVenueAdapterExpandsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "NIPS", r.URL.Query().Get("q"))
		w.Write([]byte(`{"result":{"hits":{"hit":[
			{"info":{"venue":"Neural Information Processing Systems"}}
		]}}}`))
	}))
	defer srv.Close()
	orig := dblpVenueAPIBase
	dblpVenueAPIBase = srv.URL
	defer func() { dblpVenueAPIBase = orig }()

	d := types.NewDraft()
	d.Publication = "NIPS"

	// Same priority as the search adapter that wrote the key, so the
	// expansion is allowed through.
	ap := adapter.NewApplier()
	ap.Apply(d, &types.Candidate{Publication: "NIPS"}, 70)

	a := buildAdapter(t, NameDBLPVenue, 70)
	runAdapter(t, a, d, ap)
	assert.Equal(t, "Neural Information Processing Systems", d.Publication)

	// A full name is left alone.
	req := a.Decide(d)
	assert.False(t, req.Enabled)
}

const semanticPaperSample = `{
  "title":"Language Models are Few-Shot Learners",
  "venue":"NeurIPS",
  "year":2020,
  "publicationTypes":["Conference"],
  "externalIds":{"DOI":"10.5555/3495724","ArXiv":"2005.14165"},
  "authors":[{"name":"Tom B. Brown"}],
  "openAccessPdf":{"url":"https://example.org/gpt3.pdf"}
}`

func TestSemanticAdapterArxivLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "arXiv:2005.14165")
		w.Write([]byte(semanticPaperSample))
	}))
	defer srv.Close()
	orig := semanticAPIBase
	semanticAPIBase = srv.URL
	defer func() { semanticAPIBase = orig }()

	d := types.NewDraft()
	d.ArxivID = "2005.14165"
	a := buildAdapter(t, NameSemantic, 60)
	runAdapter(t, a, d, adapter.NewApplier())

	assert.Equal(t, "Language Models are Few-Shot Learners", d.Title)
	assert.Equal(t, "NeurIPS", d.Publication)
	assert.Equal(t, "2020", d.PubTime)
	assert.Equal(t, types.PubConference, d.PubType)
	assert.Equal(t, "10.5555/3495724", d.DOI)
	assert.Equal(t, []string{"https://example.org/gpt3.pdf"}, d.SupURLs)
}

func TestSemanticAdapterSearchConfirms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "search")
		w.Write([]byte(`{"data":[
			{"title":"An Unrelated Survey","year":2019},
			{"title":"Language Models are Few-Shot Learners","year":2020,"venue":"NeurIPS"}
		]}`))
	}))
	defer srv.Close()
	orig := semanticAPIBase
	semanticAPIBase = srv.URL
	defer func() { semanticAPIBase = orig }()

	d := types.NewDraft()
	d.Title = "Language Models are Few-Shot Learners"
	a := buildAdapter(t, NameSemantic, 60)
	runAdapter(t, a, d, adapter.NewApplier())

	assert.Equal(t, "NeurIPS", d.Publication)
	assert.Equal(t, "2020", d.PubTime)
}

func TestOpenReviewAdapterParsesNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("term"))
		w.Write([]byte(`{"notes":[{"content":{
			"title":"Denoising Diffusion Implicit Models",
			"authors":["Jiaming Song","Chenlin Meng"],
			"venue":"ICLR 2021 Poster",
			"pdf":"/pdf/abcdef.pdf",
			"code":"https://github.com/ermongroup/ddim"
		}}]}`))
	}))
	defer srv.Close()
	orig := openreviewAPIBase
	openreviewAPIBase = srv.URL
	defer func() { openreviewAPIBase = orig }()

	d := types.NewDraft()
	d.Title = "Denoising Diffusion Implicit Models"
	a := buildAdapter(t, NameOpenReview, 50)
	runAdapter(t, a, d, adapter.NewApplier())

	assert.Equal(t, []string{"Jiaming Song", "Chenlin Meng"}, d.Authors)
	assert.Equal(t, "ICLR 2021 Poster", d.Publication)
	assert.Equal(t, "2021", d.PubTime)
	assert.Equal(t, types.PubConference, d.PubType)
	assert.Equal(t, []string{"https://openreview.net/pdf/abcdef.pdf"}, d.SupURLs)
	assert.Equal(t, []string{"https://github.com/ermongroup/ddim"}, d.Codes)
}

func TestPWCAdapterFetchesRepositories(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "repositories") {
			w.Write([]byte(`{"results":[
				{"url":"https://github.com/fork/impl","is_official":false},
				{"url":"https://github.com/official/impl","is_official":true}
			]}`))
			return
		}
		assert.Equal(t, "1706.03762", r.URL.Query().Get("arxiv_id"))
		w.Write([]byte(`{"results":[{"id":"attention-is-all-you-need","title":"Attention Is All You Need"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	orig := pwcAPIBase
	pwcAPIBase = srv.URL
	defer func() { pwcAPIBase = orig }()

	d := types.NewDraft()
	d.ArxivID = "1706.03762"
	a := buildAdapter(t, NamePWC, 40)
	runAdapter(t, a, d, adapter.NewApplier())

	assert.Equal(t, []string{
		"https://github.com/official/impl",
		"https://github.com/fork/impl",
	}, d.Codes, "official repository ranks first")
}

const scholarPageSample = `<html><body>
<div class="gs_ri">
  <h3 class="gs_rt"><span>[PDF]</span> <a>Generative Adversarial Networks</a></h3>
  <div class="gs_a">I Goodfellow, J Pouget-Abadie… - Advances in neural information processing systems, 2014 - proceedings.neurips.cc</div>
</div>
</body></html>`

func TestScholarAdapterParsesResultPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(scholarPageSample))
	}))
	defer srv.Close()
	orig := scholarBase
	scholarBase = srv.URL
	defer func() { scholarBase = orig }()

	d := types.NewDraft()
	d.Title = "Generative Adversarial Networks"
	a := buildAdapter(t, NameScholar, 30)
	runAdapter(t, a, d, adapter.NewApplier())

	assert.Equal(t, "Generative Adversarial Networks", d.Title)
	assert.Equal(t, []string{"I Goodfellow", "J Pouget-Abadie"}, d.Authors)
	assert.Equal(t, "2014", d.PubTime)
	assert.Equal(t, "Advances in neural information processing systems", d.Publication)
}
