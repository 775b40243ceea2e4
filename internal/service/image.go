package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"time"

	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/metrics"
	"github.com/gen2brain/go-fitz"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedImage = errors.New("unsupported image")

// defaultMaxPixels bounds width*height of an upload when no limit is configured.
const defaultMaxPixels = 89_478_485

// PreparedImage is the RGB JPEG rendition of an upload, ready for a vision model.
type PreparedImage struct {
	Data     []byte
	MIMEType string
	Format   string
	Width    int
	Height   int
}

func prepareImage(raw []byte, quality int, maxPixels int64) (img *PreparedImage, err error) {
	start := time.Now()
	format := "unknown"
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.ImagePreprocessTotal(status, format)
		metrics.ImagePreprocessDuration(status, format, time.Since(start))
	}()

	if maxPixels <= 0 {
		maxPixels = defaultMaxPixels
	}

	var src image.Image
	if http.DetectContentType(raw) == "application/pdf" {
		format = PDF
		src, err = renderFirstPage(raw)
		if err == nil {
			b := src.Bounds()
			err = checkPixels(b.Dx(), b.Dy(), maxPixels)
		}
	} else {
		src, format, err = decodeBounded(raw, maxPixels)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	rgb := flattenToRGB(src)

	var buf bytes.Buffer
	if err = jpeg.Encode(&buf, rgb, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	b := rgb.Bounds()
	return &PreparedImage{
		Data:     buf.Bytes(),
		MIMEType: preparedMIMEType,
		Format:   format,
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}

// decodeBounded reads the header first so that oversized images are refused
// before any pixel buffer is allocated.
func decodeBounded(raw []byte, maxPixels int64) (image.Image, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, "unknown", err
	}
	if err := checkPixels(cfg.Width, cfg.Height, maxPixels); err != nil {
		return nil, format, err
	}
	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, format, err
	}
	return src, format, nil
}

func checkPixels(width, height int, maxPixels int64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	if pixels := int64(width) * int64(height); pixels > maxPixels {
		return fmt.Errorf("%dx%d is %d pixels, limit is %d", width, height, pixels, maxPixels)
	}
	return nil
}

// flattenToRGB composites src over a white background, dropping any alpha channel.
func flattenToRGB(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

func renderFirstPage(raw []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(raw)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, errors.New("pdf has no pages")
	}
	page, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("render pdf page: %w", err)
	}
	return page, nil
}
