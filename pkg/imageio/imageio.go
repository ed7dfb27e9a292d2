// Package imageio decodes texture images by format without relying on
// image.Decode sniffing. The TGA decoder registers an empty magic string,
// so once it is linked into a binary image.Decode hands every file to it
// when it was registered first.
package imageio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// Format names a supported image codec.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	BMP  Format = "bmp"
	WebP Format = "webp"
	TGA  Format = "tga"
)

// ErrUnknownFormat is returned when no codec matches the hint or the data.
var ErrUnknownFormat = errors.New("unknown image format")

var decoders = map[Format]func(io.Reader) (image.Image, error){
	PNG:  png.Decode,
	JPEG: jpeg.Decode,
	BMP:  bmp.Decode,
	WebP: webp.Decode,
	TGA:  tga.Decode,
}

// FormatFor maps a file extension (".png") or MIME type ("image/png") to a
// format. It returns "" when the hint is empty or unknown.
func FormatFor(hint string) Format {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(hint), ".")) {
	case "png", "image/png":
		return PNG
	case "jpg", "jpeg", "image/jpeg":
		return JPEG
	case "bmp", "image/bmp":
		return BMP
	case "webp", "image/webp":
		return WebP
	case "tga", "image/x-tga", "image/tga":
		return TGA
	}
	return ""
}

// Sniff identifies a format from the leading bytes. TGA has no magic and
// is never reported.
func Sniff(head []byte) Format {
	switch {
	case bytes.HasPrefix(head, []byte("\x89PNG\r\n\x1a\n")):
		return PNG
	case bytes.HasPrefix(head, []byte("\xff\xd8")):
		return JPEG
	case bytes.HasPrefix(head, []byte("BM")):
		return BMP
	case len(head) >= 12 && string(head[:4]) == "RIFF" && string(head[8:12]) == "WEBP":
		return WebP
	}
	return ""
}

// Decode reads an image. Formats with a magic number are sniffed from the
// data; otherwise hint, a file extension or MIME type, picks the codec.
// Data with no magic and no hint is decoded as TGA.
func Decode(r io.Reader, hint string) (image.Image, Format, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(12)
	format := Sniff(head)
	if format == "" {
		format = FormatFor(hint)
	}
	if format == "" {
		if hint != "" {
			return nil, "", fmt.Errorf("%w: %s", ErrUnknownFormat, hint)
		}
		format = TGA
	}

	img, err := decoders[format](br)
	if err != nil {
		return nil, format, fmt.Errorf("%s: %w", format, err)
	}
	return img, format, nil
}

// DecodeFile opens path and decodes it using its extension as the hint.
func DecodeFile(path string) (image.Image, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	return Decode(f, filepath.Ext(path))
}
