package render

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// ErrUnknownImageFormat is returned for snapshot formats other than PNG and WebP.
var ErrUnknownImageFormat = errors.New("unknown image format")

// ImageFormat names a snapshot encoding.
type ImageFormat string

const (
	ImagePNG  ImageFormat = "png"
	ImageWebP ImageFormat = "webp"
)

// FormatForPath picks the encoding from a file extension.
func FormatForPath(path string) (ImageFormat, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return ImagePNG, nil
	case ".webp":
		return ImageWebP, nil
	default:
		return "", fmt.Errorf("%q: %w", ext, ErrUnknownImageFormat)
	}
}

// Downscale resizes img to width x height with Catmull-Rom filtering. It is
// used to resolve frames rendered at a multiple of the output size.
func Downscale(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// EncodeImage writes img to w in the given format.
func EncodeImage(w io.Writer, img image.Image, format ImageFormat) error {
	switch format {
	case ImagePNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("png encode: %w", err)
		}
	case ImageWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
	default:
		return fmt.Errorf("%q: %w", format, ErrUnknownImageFormat)
	}
	return nil
}

// SaveImage writes img to path, choosing the format from its extension.
func SaveImage(path string, img image.Image) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := EncodeImage(f, img, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	Logger().Debug("snapshot saved", "path", path, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return nil
}
