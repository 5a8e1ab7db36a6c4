// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperpipe/pkg/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPreferenceRoundTrip(t *testing.T) {
	s := openStore(t)

	got, err := s.Get("http_proxy", "default")
	require.NoError(t, err)
	assert.Equal(t, "default", got, "unset key falls back")

	require.NoError(t, s.Set("http_proxy", "http://proxy:8080"))
	got, err = s.Get("http_proxy", "default")
	require.NoError(t, err)
	assert.Equal(t, "http://proxy:8080", got)

	require.NoError(t, s.Set("http_proxy", "http://other:3128"))
	got, err = s.Get("http_proxy", "")
	require.NoError(t, err)
	assert.Equal(t, "http://other:3128", got, "set overwrites")
}

func TestDescriptorRoundTrip(t *testing.T) {
	s := openStore(t)

	desc := types.Descriptor{
		Name:     "scholar",
		Enable:   true,
		Priority: 35,
		Args:     map[string]string{"lang": "en"},
	}
	require.NoError(t, s.SaveDescriptor(KindScraper, desc))

	custom := types.Descriptor{
		Name:     "mylab",
		Enable:   true,
		Priority: 20,
		Custom: &types.CustomRules{
			URLTemplate: "https://papers.mylab.org/lookup?doi={doi}",
			Require:     []string{"doi"},
			Fields:      map[string]string{"title": `"title":"([^"]+)"`},
		},
	}
	require.NoError(t, s.SaveDescriptor(KindScraper, custom))

	descs, err := s.Descriptors(KindScraper)
	require.NoError(t, err)
	require.Len(t, descs, 2)

	assert.Equal(t, "scholar", descs[0].Name, "ordered by priority descending")
	assert.Equal(t, map[string]string{"lang": "en"}, descs[0].Args)
	require.NotNil(t, descs[1].Custom)
	assert.Equal(t, "https://papers.mylab.org/lookup?doi={doi}", descs[1].Custom.URLTemplate)

	// Downloader descriptors are a separate namespace.
	dls, err := s.Descriptors(KindDownloader)
	require.NoError(t, err)
	assert.Empty(t, dls)
}

func TestSetEnabledAndDelete(t *testing.T) {
	s := openStore(t)

	desc := types.Descriptor{Name: "scholar", Enable: false, Priority: 30}
	require.NoError(t, s.SetEnabled(KindScraper, desc, true))

	descs, err := s.Descriptors(KindScraper)
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.True(t, descs[0].Enable)

	require.NoError(t, s.DeleteDescriptor(KindScraper, "scholar"))
	descs, err = s.Descriptors(KindScraper)
	require.NoError(t, err)
	assert.Empty(t, descs)
}
