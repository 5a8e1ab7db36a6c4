// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/paperpipe/internal/httputil"
	"github.com/pdiddy/paperpipe/pkg/types"
)

// LocalFiles is the default file service: a flat directory of downloaded
// files. Access streams remote files through the shared client's
// transport with a temp-file-then-rename write, so a partial download
// never appears under the final name.
type LocalFiles struct {
	client *httputil.Client
	dir    string
}

// NewLocalFiles returns a file service rooted at dir.
func NewLocalFiles(client *httputil.Client, dir string) *LocalFiles {
	return &LocalFiles{client: client, dir: dir}
}

// Access resolves a URL to a local path. Local paths pass through after
// an existence check; remote URLs are downloaded when download is true.
func (f *LocalFiles) Access(rawURL string, download bool) (string, error) {
	if !isRemote(rawURL) {
		if _, err := os.Stat(rawURL); err != nil {
			return "", fmt.Errorf("local file %s: %w", rawURL, err)
		}
		return rawURL, nil
	}
	if !download {
		return rawURL, nil
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}
	dest := filepath.Join(f.dir, fileStem(rawURL)+".pdf")
	if err := f.fetch(rawURL, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Move relocates the draft's primary file into the managed directory.
func (f *LocalFiles) Move(draft *types.Draft) *types.Draft {
	if draft.MainURL == "" || isRemote(draft.MainURL) {
		return draft
	}
	dest := filepath.Join(f.dir, filepath.Base(draft.MainURL))
	if dest == draft.MainURL {
		return draft
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return nil
	}
	if err := os.Rename(draft.MainURL, dest); err != nil {
		return nil
	}
	draft.MainURL = dest
	return draft
}

// Remove deletes the draft's managed files.
func (f *LocalFiles) Remove(draft *types.Draft) bool {
	ok := true
	for _, p := range append([]string{draft.MainURL}, draft.SupURLs...) {
		if p == "" || isRemote(p) {
			continue
		}
		if !strings.HasPrefix(p, f.dir) {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			ok = false
		}
	}
	return ok
}

// fetch streams url to destPath via a temporary file.
func (f *LocalFiles) fetch(rawURL, destPath string) error {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := f.client.HTTP().Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func isRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// fileStem derives a filesystem-safe stem from the URL path, falling
// back to a random name for opaque URLs. Only a known file extension is
// stripped: arXiv identifiers like 2301.00001 end in a dotted sequence
// number that must stay part of the stem.
func fileStem(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return uuid.NewString()
	}
	base := filepath.Base(u.Path)
	switch strings.ToLower(filepath.Ext(base)) {
	case ".pdf", ".ps", ".gz":
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if base == "" || base == "." || base == "/" {
		return uuid.NewString()
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
