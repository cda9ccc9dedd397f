// Package asset loads the model shown by the viewer: it fetches a binary glTF file over
// HTTP or from disk, reports progress, and decodes it into a scene graph.
package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"model-viewer/internal/scene"
)

const defaultUserAgent = "model-viewer/1.0 (+glb loader)"

// ErrNoGeometry is returned when a file decodes but holds no triangle meshes.
var ErrNoGeometry = errors.New("asset: no triangle geometry")

// ProgressFunc receives the bytes read so far and the total size, or -1 when the size
// is unknown.
type ProgressFunc func(loaded, total int64)

// Fetcher loads a model into a scene graph. Load blocks until the model is decoded, ctx
// is cancelled, or the fetch fails.
type Fetcher interface {
	Load(ctx context.Context, url string, progress ProgressFunc) (*scene.Node, error)
}

// HTTPFetcher reads http(s) URLs, file:// URLs and plain paths.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
	// CacheDir, when set, keeps a copy of each downloaded file and serves later loads of
	// the same URL from disk.
	CacheDir string
	Log      zerolog.Logger
}

// NewHTTPFetcher returns a fetcher with no request timeout; a stalled download is ended
// by cancelling the context.
func NewHTTPFetcher(log zerolog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		Client:    &http.Client{},
		UserAgent: defaultUserAgent,
		Log:       log.With().Str("component", "asset").Logger(),
	}
}

// Load fetches url and decodes it.
func (f *HTTPFetcher) Load(ctx context.Context, url string, progress ProgressFunc) (*scene.Node, error) {
	start := time.Now()
	data, err := f.fetch(ctx, url, progress)
	if err != nil {
		return nil, err
	}
	if data, err = Unpack(data); err != nil {
		return nil, err
	}
	root, err := Decode(data)
	if err != nil {
		return nil, err
	}
	f.Log.Info().Str("url", url).Str("size", humanize.Bytes(uint64(len(data)))).
		Dur("took", time.Since(start)).Msg("asset loaded")
	return root, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, url string, progress ProgressFunc) ([]byte, error) {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		if path := f.cachePath(url); path != "" {
			if _, err := os.Stat(path); err == nil {
				f.Log.Debug().Str("url", url).Str("path", path).Msg("asset cache hit")
				return readFile(ctx, path, progress)
			}
		}
		return f.download(ctx, url, progress)
	case strings.HasPrefix(url, "file://"):
		return readFile(ctx, strings.TrimPrefix(url, "file://"), progress)
	case url == "":
		return nil, fmt.Errorf("asset: empty url")
	default:
		return readFile(ctx, url, progress)
	}
}

func (f *HTTPFetcher) download(ctx context.Context, url string, progress ProgressFunc) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("asset: %w", err)
	}
	ua := f.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("asset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("asset: GET %s: HTTP %d", url, resp.StatusCode)
	}
	f.Log.Debug().Str("url", url).Str("type", resp.Header.Get("Content-Type")).
		Str("size", sizeString(resp.ContentLength)).Msg("asset download started")

	data, err := readAll(ctx, resp.Body, resp.ContentLength, progress)
	if err != nil {
		return nil, fmt.Errorf("asset: GET %s: %w", url, err)
	}
	if path := f.cachePath(url); path != "" {
		if err := writeCache(path, data); err != nil {
			f.Log.Warn().Err(err).Str("path", path).Msg("asset cache write failed")
		}
	}
	return data, nil
}

func readFile(ctx context.Context, path string, progress ProgressFunc) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("asset: %w", err)
	}
	defer file.Close()
	total := int64(-1)
	if st, err := file.Stat(); err == nil {
		total = st.Size()
	}
	data, err := readAll(ctx, file, total, progress)
	if err != nil {
		return nil, fmt.Errorf("asset: read %s: %w", path, err)
	}
	return data, nil
}

// progressReader reports cumulative bytes after every read and stops when ctx is done.
type progressReader struct {
	ctx    context.Context
	r      io.Reader
	loaded int64
	total  int64
	fn     ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		if p.fn != nil {
			p.fn(p.loaded, p.total)
		}
	}
	return n, err
}

func readAll(ctx context.Context, r io.Reader, total int64, progress ProgressFunc) ([]byte, error) {
	if total < 0 {
		total = -1
	}
	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}
	pr := &progressReader{ctx: ctx, r: r, total: total, fn: progress}
	if _, err := io.Copy(&buf, pr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Percent converts a progress report to a percentage, or -1 when the total is unknown.
func Percent(loaded, total int64) float64 {
	if total <= 0 {
		return -1
	}
	p := float64(loaded) / float64(total) * 100
	if p > 100 {
		p = 100
	}
	return p
}

func sizeString(n int64) string {
	if n < 0 {
		return "unknown"
	}
	return humanize.Bytes(uint64(n))
}

// cachePath names the cache file for url: the sanitized base name plus a short id derived
// from the full URL, so different URLs with the same file name do not collide.
func (f *HTTPFetcher) cachePath(url string) string {
	if f.CacheDir == "" {
		return ""
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(url)).String()[:8]
	return filepath.Join(f.CacheDir, sanitizeFilename(filenameFromURL(url))+"-"+id+".glb")
}

func writeCache(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func filenameFromURL(url string) string {
	path := url
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var safeNameRe = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

func sanitizeFilename(name string) string {
	if name == "" || name == "." || name == "/" {
		return "model"
	}
	name = safeNameRe.ReplaceAllString(name, "_")
	if len(name) > 96 {
		name = name[:96]
	}
	return name
}
