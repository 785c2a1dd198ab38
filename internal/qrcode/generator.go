// Package qrcode renders the card URL as a PNG QR code.
package qrcode

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/kapu/digital-card-go/internal/constants"
	"github.com/kapu/digital-card-go/internal/service/cache"
	"github.com/kapu/digital-card-go/pkg/errors"
)

const ContentType = "image/png"

// Image is a rendered QR code.
type Image struct {
	PNG   []byte `json:"png"`
	Size  int    `json:"size"`
	Level Level  `json:"level"`
}

// DataURI returns the image as a data: URI for inline display.
func (i *Image) DataURI() string {
	return "data:" + ContentType + ";base64," + base64.StdEncoding.EncodeToString(i.PNG)
}

// Result is delivered by Request.
type Result struct {
	Image *Image
	Err   error
}

// Generator renders QR codes and keeps them in an optional cache.
type Generator struct {
	cache  cache.Store
	logger *zap.Logger
}

func NewGenerator(store cache.Store, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{cache: store, logger: logger}
}

// Generate renders content with opts. Content that does not fit a QR symbol at
// opts.Level yields *errors.EncodingError.
func (g *Generator) Generate(ctx context.Context, content string, opts Options) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := fmt.Sprintf(constants.CacheKeys.QRImage, imageKey(content, opts))
	if g.cache != nil {
		var cached Image
		found, err := g.cache.Get(ctx, key, &cached)
		if err != nil {
			g.logger.Warn("QR cache read failed", zap.String("key", key), zap.Error(err))
		} else if found && len(cached.PNG) > 0 {
			return &cached, nil
		}
	}

	img, err := Render(content, opts)
	if err != nil {
		return nil, err
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, key, img, constants.CacheTTL.QRImage); err != nil {
			g.logger.Warn("QR cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return img, nil
}

// Request renders asynchronously. The channel yields at most one Result and is
// then closed. If ctx is done before rendering finishes the result is dropped
// and the channel is closed empty.
func (g *Generator) Request(ctx context.Context, content string, opts Options) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		img, err := g.Generate(ctx, content, opts)
		if ctx.Err() != nil {
			return
		}
		out <- Result{Image: img, Err: err}
	}()
	return out
}

// Render encodes content without touching the cache.
func Render(content string, opts Options) (*Image, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.NewValidationError("nothing to encode", "content", content)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	code, err := goqrcode.New(content, opts.Level.recovery())
	if err != nil {
		return nil, errors.NewEncodingError(
			fmt.Sprintf("content of %d bytes does not fit a QR code at level %s", len(content), opts.Level),
			string(opts.Level), len(content), err)
	}
	code.DisableBorder = true

	var buf bytes.Buffer
	if err := png.Encode(&buf, draw(code.Bitmap(), opts)); err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}

	return &Image{PNG: buf.Bytes(), Size: opts.Size, Level: opts.Level}, nil
}

// draw scales the module bitmap to opts.Size with a quiet zone of opts.Margin
// modules. Images smaller than one pixel per module grow to fit.
func draw(bitmap [][]bool, opts Options) image.Image {
	modules := len(bitmap)
	total := modules + 2*opts.Margin

	size := opts.Size
	if size < total {
		size = total
	}
	scale := size / total
	offset := (size-scale*total)/2 + opts.Margin*scale

	img := image.NewPaletted(image.Rect(0, 0, size, size), color.Palette{opts.Background, opts.Foreground})

	for y, row := range bitmap {
		for x, dark := range row {
			if !dark {
				continue
			}
			x0 := offset + x*scale
			y0 := offset + y*scale
			for py := y0; py < y0+scale; py++ {
				for px := x0; px < x0+scale; px++ {
					img.SetColorIndex(px, py, 1)
				}
			}
		}
	}

	return img
}

func imageKey(content string, opts Options) string {
	sum := sha256.Sum256([]byte(content + "|" + opts.cacheKey()))
	return hex.EncodeToString(sum[:12])
}
