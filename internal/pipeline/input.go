package pipeline

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bep/imagemeta"
	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/ppiankov/wastewise/internal/cache"
	"github.com/ppiankov/wastewise/internal/common"
	"github.com/ppiankov/wastewise/internal/fallback"
	"github.com/ppiankov/wastewise/internal/vision"
)

const invalidImageMessage = "upload a JPEG, PNG, GIF or WebP photo of the item"

// Image is a validated image ready for classification
type Image struct {
	Data     []byte
	Filename string
	Size     int64
	Width    int
	Height   int
	Format   string   // jpeg, png, gif, webp, bmp, tiff
	Hints    []string // EXIF/IPTC/XMP descriptions and keywords
}

// NewImage validates data as a decodable image. Anything else is a UserError
// wrapping common.ErrInvalidInput, returned before any classifier runs.
func NewImage(filename string, data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, common.NewUserError(invalidImageMessage, fmt.Errorf("%w: %s is empty", common.ErrInvalidInput, displayName(filename)))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, common.NewUserError(invalidImageMessage, fmt.Errorf("%w: %s is not a supported image: %v", common.ErrInvalidInput, displayName(filename), err))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, common.NewUserError(invalidImageMessage, fmt.Errorf("%w: %s has no pixels", common.ErrInvalidInput, displayName(filename)))
	}

	return &Image{
		Data:     data,
		Filename: filename,
		Size:     int64(len(data)),
		Width:    cfg.Width,
		Height:   cfg.Height,
		Format:   format,
		Hints:    ExtractHints(data),
	}, nil
}

// LoadImage reads and validates an image file. maxBytes <= 0 disables the cap.
func LoadImage(path string, maxBytes int64) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, common.NewUserError(
			fmt.Sprintf("image is larger than %d MB, upload a smaller photo", maxBytes>>20),
			fmt.Errorf("%w: %s exceeds %d bytes", common.ErrInvalidInput, path, maxBytes))
	}

	return NewImage(filepath.Base(path), data)
}

// MIMEType returns the image media type
func (img *Image) MIMEType() string {
	if img.Format == "" {
		return "application/octet-stream"
	}
	return "image/" + img.Format
}

// Vision converts the image to the payload sent to remote services
func (img *Image) Vision() vision.Image {
	return vision.Image{Data: img.Data, MIMEType: img.MIMEType()}
}

// FallbackInput is the subset the heuristic classifier needs
func (img *Image) FallbackInput() fallback.Input {
	return fallback.Input{
		Filename: img.Filename,
		Size:     img.Size,
		Width:    img.Width,
		Height:   img.Height,
		Hints:    img.Hints,
	}
}

// CacheKey identifies visually identical uploads by difference hash and byte
// size. Images that cannot be fully decoded fall back to a content hash.
func (img *Image) CacheKey() string {
	size := strconv.FormatInt(img.Size, 10)

	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err == nil {
		if hash, err := goimagehash.DifferenceHash(decoded); err == nil {
			return cache.Key("verdict", hash.ToString(), size)
		}
	}
	return cache.HashKey("verdict", img.Data)
}

var hintTags = map[imagemeta.Source]map[string]bool{
	imagemeta.EXIF: {
		"ImageDescription": true,
		"XPKeywords":       true,
		"XPSubject":        true,
		"XPTitle":          true,
		"UserComment":      true,
	},
	imagemeta.IPTC: {
		"Keywords":         true,
		"Caption-Abstract": true,
		"ObjectName":       true,
		"Headline":         true,
	},
	imagemeta.XMP: {
		"subject":     true,
		"description": true,
		"title":       true,
	},
}

// ExtractHints reads free-text metadata that can help the filename heuristic.
// It never fails; unreadable metadata yields no hints.
func ExtractHints(data []byte) []string {
	if len(data) == 0 {
		return nil
	}

	var hints []string
	seen := map[string]bool{}
	add := func(s string) {
		s = strings.TrimSpace(strings.Trim(s, "\x00"))
		if s == "" || seen[strings.ToLower(s)] {
			return
		}
		seen[strings.ToLower(s)] = true
		hints = append(hints, s)
	}

	_, _ = imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(data),
		Sources: imagemeta.EXIF | imagemeta.IPTC | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			if tags, ok := hintTags[ti.Source]; ok {
				return tags[ti.Tag]
			}
			return false
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			for _, s := range tagStrings(ti.Value) {
				add(s)
			}
			return nil
		},
	})

	return hints
}

// tagStrings flattens a tag value. XMP lists arrive as []string or []any.
func tagStrings(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []byte:
		return []string{string(val)}
	case []string:
		return val
	case []any:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func displayName(filename string) string {
	if filename == "" {
		return "upload"
	}
	return filename
}
