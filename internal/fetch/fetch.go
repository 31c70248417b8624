// Package fetch downloads OBR Economic and Fiscal Outlook workbooks and
// caches them on disk, one file per edition.
package fetch

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// editionURLs is the fixed registry of forecast editions. OBR publishes the
// detailed tables as direct Excel URLs; the registry is static configuration,
// not mutable state.
var editionURLs = map[string]string{
	"november-2025": "https://obr.uk/docs/dlm_uploads/Economy_Detailed_forecast_tables_November_2025.xlsx",
	"march-2025":    "https://obr.uk/docs/dlm_uploads/Economy_Detailed_forecast_tables_March_2025.xlsx",
}

// ErrUnknownEdition reports an edition absent from the registry.
var ErrUnknownEdition = errors.New("unknown forecast edition")

// DownloadError reports a failed workbook download: either a transport
// failure or a non-2xx response.
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("download %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("download %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// Editions returns the registered edition names, sorted.
func Editions() []string {
	names := make([]string, 0, len(editionURLs))
	for name := range editionURLs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EditionURL returns the source URL for a registered edition.
func EditionURL(edition string) (string, bool) {
	url, ok := editionURLs[edition]
	return url, ok
}

// Fetcher resolves editions to local workbook files, downloading on first
// use. There is no retry: a failed download surfaces immediately.
type Fetcher struct {
	CacheDir string
	Client   *http.Client

	// URLs overrides the edition registry; tests point it at a local server.
	URLs map[string]string
}

// New creates a fetcher caching into cacheDir, or the platform temp
// directory when cacheDir is empty.
func New(cacheDir string) *Fetcher {
	if cacheDir == "" {
		cacheDir = os.TempDir()
	}
	return &Fetcher{CacheDir: cacheDir}
}

// CachePath returns the deterministic cache location for an edition.
func (f *Fetcher) CachePath(edition string) string {
	return filepath.Join(f.CacheDir, fmt.Sprintf("obr_%s_economy.xlsx", edition))
}

// Resolve returns a local path for the edition's workbook. The registry is
// consulted before the cache so that a stale cache file can never satisfy an
// unregistered edition. Subsequent calls reuse the cached file without
// touching the network.
func (f *Fetcher) Resolve(edition string) (string, error) {
	url, ok := f.lookupURL(edition)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownEdition, edition)
	}

	cachePath := f.CachePath(edition)
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	if err := f.download(url, cachePath); err != nil {
		return "", err
	}
	return cachePath, nil
}

func (f *Fetcher) lookupURL(edition string) (string, bool) {
	if f.URLs != nil {
		url, ok := f.URLs[edition]
		return url, ok
	}
	return EditionURL(edition)
}

// download writes the response body verbatim to cachePath. The body lands in
// a uuid-suffixed temp file first and is renamed into place, so a reader
// never observes a partially written workbook; concurrent first fetches of
// the same edition remain last-writer-wins.
func (f *Fetcher) download(url, cachePath string) error {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Get(url)
	if err != nil {
		return &DownloadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DownloadError{URL: url, StatusCode: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := cachePath + "." + uuid.NewString() + ".tmp"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &DownloadError{URL: url, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close cache file: %w", err)
	}

	if err := os.Rename(tmpPath, cachePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("move cache file into place: %w", err)
	}
	return nil
}
