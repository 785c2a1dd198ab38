package qrcode

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"

	"github.com/kapu/digital-card-go/internal/constants"
	"github.com/kapu/digital-card-go/pkg/errors"
)

// Level is a QR error-correction level.
type Level string

const (
	LevelLow      Level = "L"
	LevelMedium   Level = "M"
	LevelQuartile Level = "Q"
	LevelHigh     Level = "H"
)

func (l Level) recovery() goqrcode.RecoveryLevel {
	switch l {
	case LevelLow:
		return goqrcode.Low
	case LevelMedium:
		return goqrcode.Medium
	case LevelQuartile:
		return goqrcode.High
	default:
		return goqrcode.Highest
	}
}

// ParseLevel accepts L, M, Q or H in any case.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelLow:
		return LevelLow, nil
	case LevelMedium:
		return LevelMedium, nil
	case LevelQuartile:
		return LevelQuartile, nil
	case LevelHigh:
		return LevelHigh, nil
	default:
		return "", errors.NewValidationError("unknown error-correction level", "level", s)
	}
}

// ParseHexColor parses #rrggbb or #rgb.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, errors.NewValidationError("color must be #rrggbb", "color", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, errors.NewValidationError("color must be #rrggbb", "color", s)
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Options controls how a QR image is rendered.
type Options struct {
	Size       int
	Margin     int
	Level      Level
	Foreground color.RGBA
	Background color.RGBA
}

// DefaultOptions matches the share modal: 300px, 2 module margin, level H,
// dark green on white.
func DefaultOptions() Options {
	fg, _ := ParseHexColor(constants.QRDefaults.Foreground)
	bg, _ := ParseHexColor(constants.QRDefaults.Background)
	level, _ := ParseLevel(constants.QRDefaults.Level)
	return Options{
		Size:       constants.QRDefaults.Size,
		Margin:     constants.QRDefaults.Margin,
		Level:      level,
		Foreground: fg,
		Background: bg,
	}
}

// NewOptions builds Options from textual settings, using defaults for blanks.
func NewOptions(size, margin int, level, foreground, background string) (Options, error) {
	opts := DefaultOptions()
	if size > 0 {
		opts.Size = size
	}
	if margin >= 0 {
		opts.Margin = margin
	}
	if level != "" {
		l, err := ParseLevel(level)
		if err != nil {
			return Options{}, err
		}
		opts.Level = l
	}
	if foreground != "" {
		c, err := ParseHexColor(foreground)
		if err != nil {
			return Options{}, err
		}
		opts.Foreground = c
	}
	if background != "" {
		c, err := ParseHexColor(background)
		if err != nil {
			return Options{}, err
		}
		opts.Background = c
	}
	return opts, opts.Validate()
}

func (o Options) Validate() error {
	if o.Size <= 0 || o.Size > constants.QRDefaults.MaxSize {
		return errors.NewValidationError(fmt.Sprintf("size must be between 1 and %d", constants.QRDefaults.MaxSize), "size", o.Size)
	}
	if o.Margin < 0 || o.Margin > constants.QRDefaults.MaxMargin {
		return errors.NewValidationError(fmt.Sprintf("margin must be between 0 and %d", constants.QRDefaults.MaxMargin), "margin", o.Margin)
	}
	if _, err := ParseLevel(string(o.Level)); err != nil {
		return err
	}
	return nil
}

func (o Options) cacheKey() string {
	return fmt.Sprintf("%d:%d:%s:%02x%02x%02x:%02x%02x%02x", o.Size, o.Margin, o.Level,
		o.Foreground.R, o.Foreground.G, o.Foreground.B,
		o.Background.R, o.Background.G, o.Background.B)
}
