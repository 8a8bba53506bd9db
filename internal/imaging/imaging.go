// Package imaging normalizes uploaded and remote images into JPEG assets
// stored under a type-scoped directory and served from /uploads.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"math"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"foodmap/internal/apperr"
	"foodmap/internal/worker"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// URLPrefix is where Root is mounted by the HTTP server.
const URLPrefix = "/uploads/"

const (
	DefaultMaxWidth  = 800
	DefaultMaxHeight = 600
	DefaultQuality   = 82
	DefaultMaxBytes  = 10 << 20
	DefaultTimeout   = 15 * time.Second

	// 解碼前的尺寸上限；壓縮後很小的圖檔仍可能解碼成數 GB 的像素
	DefaultMaxPixels    = 40_000_000
	DefaultMaxDimension = 12_000
)

// Kind scopes the storage directory and the placeholder of an asset.
type Kind string

const (
	KindRestaurant Kind = "restaurant"
	KindDish       Kind = "dish"
	KindAvatar     Kind = "avatar"
)

var kinds = []Kind{KindRestaurant, KindDish, KindAvatar}

func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", apperr.Validation(fmt.Sprintf("unknown image type %q", s))
}

var decoders = map[string]func(io.Reader) (image.Image, error){
	"image/jpeg": jpeg.Decode,
	"image/png":  png.Decode,
	"image/webp": webp.Decode,
}

var configDecoders = map[string]func(io.Reader) (image.Config, error){
	"image/jpeg": jpeg.DecodeConfig,
	"image/png":  png.DecodeConfig,
	"image/webp": webp.DecodeConfig,
}

// ValidateMIME 只接受 jpeg/png/webp，會忽略參數（例如 charset）
func ValidateMIME(mimeType string) (string, error) {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return "", apperr.Validation("unsupported image type")
	}
	if mt == "image/jpg" {
		mt = "image/jpeg"
	}
	if _, ok := decoders[mt]; !ok {
		return "", apperr.Validation(fmt.Sprintf("unsupported image type %q, expected jpeg, png or webp", mt))
	}
	return mt, nil
}

// Processor 影像處理設定；零值欄位於 NewProcessor 補上預設值
type Processor struct {
	Root      string
	MaxWidth  int
	MaxHeight int
	Quality   int
	MaxBytes  int64
	// MaxPixels 與 MaxDimension 在解碼前以檔頭尺寸檢查
	MaxPixels    int
	MaxDimension int
	Timeout      time.Duration
	Client       *http.Client
	Now          func() time.Time
	NewID        func() string
}

func NewProcessor(root string) *Processor {
	return &Processor{
		Root:         root,
		MaxWidth:     DefaultMaxWidth,
		MaxHeight:    DefaultMaxHeight,
		Quality:      DefaultQuality,
		MaxBytes:     DefaultMaxBytes,
		MaxPixels:    DefaultMaxPixels,
		MaxDimension: DefaultMaxDimension,
		Timeout:      DefaultTimeout,
		Client:       &http.Client{},
		Now:          time.Now,
		NewID:        uuid.NewString,
	}
}

// Fit returns the size of a w×h image scaled into maxW×maxH, preserving
// aspect ratio. Images that already fit are never upscaled.
func Fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	return max(nw, 1), max(nh, 1)
}

// Save validates, resizes and re-encodes an image, then stores it under
// Root/{kind}/ and returns its URL. Every failure is returned to the caller.
func (p *Processor) Save(ctx context.Context, kind Kind, mimeType string, r io.Reader) (string, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return "", err
	}
	mt, err := ValidateMIME(mimeType)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, p.MaxBytes+1))
	if err != nil {
		return "", apperr.Dependency("failed to read image", err)
	}
	if int64(len(data)) > p.MaxBytes {
		return "", apperr.Validation(fmt.Sprintf("image exceeds %d bytes", p.MaxBytes))
	}

	if err := p.checkDimensions(mt, data); err != nil {
		return "", err
	}
	src, err := decoders[mt](bytes.NewReader(data))
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "invalid image data", err)
	}

	if err := ctx.Err(); err != nil {
		return "", apperr.Dependency("image processing canceled", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, p.resize(src), &jpeg.Options{Quality: p.Quality}); err != nil {
		return "", apperr.Dependency("failed to encode image", err)
	}

	name := fmt.Sprintf("%d-%s.jpg", p.Now().UnixMilli(), p.NewID())
	if err := p.write(kind, name, buf.Bytes()); err != nil {
		return "", apperr.Dependency("failed to store image", err)
	}
	return URLPrefix + string(kind) + "/" + name, nil
}

// checkDimensions 只讀檔頭取得寬高，超過上限就不進行完整解碼
func (p *Processor) checkDimensions(mt string, data []byte) error {
	cfg, err := configDecoders[mt](bytes.NewReader(data))
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid image data", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return apperr.Validation("invalid image data")
	}
	if cfg.Width > p.MaxDimension || cfg.Height > p.MaxDimension ||
		int64(cfg.Width)*int64(cfg.Height) > int64(p.MaxPixels) {
		return apperr.Validation(fmt.Sprintf("image dimensions %dx%d exceed the limit", cfg.Width, cfg.Height))
	}
	return nil
}

// resize 縮放並鋪上白底，PNG/WebP 的透明區域轉為 JPEG 後不會變黑
func (p *Processor) resize(src image.Image) image.Image {
	b := src.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), p.MaxWidth, p.MaxHeight)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func (p *Processor) write(kind Kind, name string, data []byte) error {
	dir := filepath.Join(p.Root, string(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, name))
}

// Fetch downloads a remote image and stores it like Save. Any failure
// degrades to the placeholder of kind instead of failing the caller.
func (p *Processor) Fetch(ctx context.Context, kind Kind, rawURL string) string {
	u, err := p.fetch(ctx, kind, rawURL)
	if err != nil {
		log.Printf("imaging: fetch %q failed, using placeholder: %v", rawURL, err)
		return Placeholder(kind)
	}
	return u
}

func (p *Processor) fetch(ctx context.Context, kind Kind, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.MaxBytes+1))
	if err != nil {
		return "", err
	}

	// 部分 CDN 回傳 application/octet-stream，改用內容判斷
	mt := resp.Header.Get("Content-Type")
	if _, err := ValidateMIME(mt); err != nil {
		mt = http.DetectContentType(data)
	}
	return p.Save(ctx, kind, mt, bytes.NewReader(data))
}

// Placeholder is the deterministic fallback asset for kind.
func Placeholder(kind Kind) string {
	return URLPrefix + "placeholders/" + string(kind) + ".jpg"
}

// IsPlaceholder reports whether rawURL points at a placeholder asset.
func IsPlaceholder(rawURL string) bool {
	return strings.HasPrefix(stripQuery(rawURL), URLPrefix+"placeholders/")
}

// EnsurePlaceholders writes a neutral placeholder JPEG per kind when missing.
func (p *Processor) EnsurePlaceholders() error {
	dir := filepath.Join(p.Root, "placeholders")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, k := range kinds {
		file := filepath.Join(dir, string(k)+".jpg")
		if _, err := os.Stat(file); err == nil {
			continue
		}
		img := image.NewRGBA(image.Rect(0, 0, p.MaxWidth, p.MaxHeight))
		draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 0xe5, G: 0xe5, B: 0xe5, A: 0xff}), image.Point{}, draw.Src)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.Quality}); err != nil {
			return err
		}
		if err := os.WriteFile(file, buf.Bytes(), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Fresh 加上 v=<unix millis>，讓瀏覽器在換圖後不會沿用快取
func (p *Processor) Fresh(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("v", strconv.FormatInt(p.Now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}

// Remove deletes a stored asset. URLs outside Root, placeholders and files
// that are already gone are ignored.
func (p *Processor) Remove(rawURL string) error {
	rel, ok := p.localPath(rawURL)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(p.Root, rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveLater schedules best-effort removal of replaced assets.
func (p *Processor) RemoveLater(pool worker.Pool, urls ...string) {
	for _, raw := range urls {
		if _, ok := p.localPath(raw); !ok {
			continue
		}
		queued := pool.TrySubmit(func() {
			if err := p.Remove(raw); err != nil {
				log.Printf("imaging: cleanup %q: %v", raw, err)
			}
		})
		if !queued {
			log.Printf("imaging: cleanup queue full, leaving %q", raw)
		}
	}
}

func (p *Processor) localPath(rawURL string) (string, bool) {
	s := stripQuery(rawURL)
	if !strings.HasPrefix(s, URLPrefix) || IsPlaceholder(s) {
		return "", false
	}
	clean := path.Clean("/" + strings.TrimPrefix(s, URLPrefix))
	rel := strings.TrimPrefix(clean, "/")
	kindDir, file, found := strings.Cut(rel, "/")
	if !found || file == "" || strings.Contains(file, "/") {
		return "", false
	}
	if _, err := ParseKind(kindDir); err != nil {
		return "", false
	}
	return filepath.FromSlash(rel), true
}

func stripQuery(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
