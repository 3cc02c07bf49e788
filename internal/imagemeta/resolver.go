// Package imagemeta resolves image sources to their pixel dimensions.
//
// Only the image header is decoded. Sources may be local paths, file://
// URLs, data: URIs or http(s) URLs; results are cached per source.
package imagemeta

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF 解码
	_ "image/jpeg" // JPEG 解码
	_ "image/png"  // PNG 解码
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"  // BMP 解码
	_ "golang.org/x/image/tiff" // TIFF 解码
	_ "golang.org/x/image/webp" // WebP 解码
)

var (
	// ErrNotImage is returned when the data is not in a known image format.
	ErrNotImage = errors.New("not a supported image")
	// ErrUnsupportedSource is returned for source schemes the resolver cannot read.
	ErrUnsupportedSource = errors.New("unsupported image source")
)

// maxDownload caps the number of bytes read from a remote image.
const maxDownload = 32 << 20

type size struct {
	width, height int
}

// Resolver 读取图片头部获取尺寸，结果按来源缓存
type Resolver struct {
	client  *http.Client
	baseDir string
	timeout time.Duration
	cache   sync.Map
}

// Option 配置 Resolver
type Option func(*Resolver)

// WithHTTPClient sets the client used for http(s) sources.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		r.client = c
	}
}

// WithBaseDir resolves relative paths against dir.
func WithBaseDir(dir string) Option {
	return func(r *Resolver) {
		r.baseDir = dir
	}
}

// WithTimeout bounds each remote fetch.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// New 创建 Resolver
func New(opts ...Option) *Resolver {
	r := &Resolver{timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = &http.Client{Timeout: r.timeout}
	}
	return r
}

// Resolve returns the dimensions of the image at source.
func (r *Resolver) Resolve(source string) (int, int, error) {
	return r.ResolveContext(context.Background(), source)
}

// ResolveContext is Resolve with a context for remote sources.
func (r *Resolver) ResolveContext(ctx context.Context, source string) (int, int, error) {
	if v, ok := r.cache.Load(source); ok {
		s := v.(size)
		return s.width, s.height, nil
	}

	rc, err := r.open(ctx, source)
	if err != nil {
		return 0, 0, err
	}
	defer rc.Close()

	width, height, _, err := DecodeSize(rc)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", source, err)
	}
	r.cache.Store(source, size{width, height})
	return width, height, nil
}

func (r *Resolver) open(ctx context.Context, source string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(source, "data:"):
		data, err := decodeDataURI(source)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
		buf, err := DownloadImage(ctx, source, r.client)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(buf), nil
	case strings.HasPrefix(source, "file://"):
		u, err := url.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
		}
		return os.Open(u.Path)
	case strings.Contains(source, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
	}

	path := source
	if !filepath.IsAbs(path) && r.baseDir != "" {
		path = filepath.Join(r.baseDir, path)
	}
	return os.Open(path)
}

// DecodeSize 只解码图片头部，返回宽高和格式名
func DecodeSize(rd io.Reader) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(rd)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return 0, 0, "", ErrNotImage
		}
		return 0, 0, "", err
	}
	return cfg.Width, cfg.Height, format, nil
}

// decodeDataURI 解析 data:[<mediatype>][;base64],<data>
func decodeDataURI(source string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(source, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data URI", ErrUnsupportedSource)
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data URI: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data URI: %w", err)
	}
	return []byte(s), nil
}

// DownloadImage 下载图片
func DownloadImage(ctx context.Context, url string, client *http.Client) (*bytes.Buffer, error) {
	if client == nil {
		client = &http.Client{
			Timeout: 10 * time.Second,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(resp.Body, maxDownload)); err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return &buf, nil
}
