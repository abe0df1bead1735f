package coords

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

// FallbackImageSize is used whenever a reference image cannot be measured.
var FallbackImageSize = CanvasSize{Width: 800, Height: 600}

// ImageFetcher returns the raw bytes of a reference image.
type ImageFetcher interface {
	FetchImage(ctx context.Context, ref string) ([]byte, error)
}

// Dimensions is the outcome of a load. Size is always usable; Fallback and
// Err tell the caller whether it is the measured size or the default.
type Dimensions struct {
	CanvasSize
	Fallback bool  `json:"fallback"`
	Err      error `json:"-"`
}

type LoaderConfig struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	Fallback CanvasSize
}

// DimensionLoader measures reference images. Successful measurements are
// memoized per reference; failures are not, so a later call may succeed.
type DimensionLoader struct {
	fetcher  ImageFetcher
	cache    *gocache.Cache
	fallback CanvasSize
	timeout  time.Duration
	logger   *zap.Logger
}

func NewDimensionLoader(fetcher ImageFetcher, cfg LoaderConfig, logger *zap.Logger) *DimensionLoader {
	fallback := cfg.Fallback
	if !fallback.Valid() {
		fallback = FallbackImageSize
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &DimensionLoader{
		fetcher:  fetcher,
		cache:    gocache.New(ttl, 2*ttl),
		fallback: fallback,
		timeout:  cfg.Timeout,
		logger:   logger,
	}
}

// Load resolves the natural size of the image behind ref. It never fails:
// on any error it logs a warning and returns the fallback size.
func (l *DimensionLoader) Load(ctx context.Context, ref string) Dimensions {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return l.fail(ref, errors.New("empty image reference"))
	}

	if cached, found := l.cache.Get(ref); found {
		return Dimensions{CanvasSize: cached.(CanvasSize)}
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	size, err := l.measure(ctx, ref)
	if err != nil {
		return l.fail(ref, err)
	}

	l.cache.Set(ref, size, gocache.DefaultExpiration)
	return Dimensions{CanvasSize: size}
}

func (l *DimensionLoader) measure(ctx context.Context, ref string) (CanvasSize, error) {
	data, err := l.fetcher.FetchImage(ctx, ref)
	if err != nil {
		return CanvasSize{}, fmt.Errorf("fetch image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return CanvasSize{}, err
	}

	// Auto-orientation makes EXIF-rotated photos report the size a browser shows.
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return CanvasSize{}, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	size := CanvasSize{Width: float64(b.Dx()), Height: float64(b.Dy())}
	if !size.Valid() {
		return CanvasSize{}, fmt.Errorf("image has no area: %dx%d", b.Dx(), b.Dy())
	}
	return size, nil
}

func (l *DimensionLoader) fail(ref string, err error) Dimensions {
	l.logger.Warn("Failed to load image dimensions, using fallback size",
		zap.String("ref", ref),
		zap.Float64("fallback_width", l.fallback.Width),
		zap.Float64("fallback_height", l.fallback.Height),
		zap.Error(err))
	return Dimensions{CanvasSize: l.fallback, Fallback: true, Err: err}
}
