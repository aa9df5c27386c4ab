package vision

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/ppiankov/wastewise/internal/worker"
)

// Image is the payload handed to remote vision services
type Image struct {
	Data     []byte
	MIMEType string // e.g. image/jpeg
}

// Format returns the MIME subtype ("jpeg", "png", ...)
func (img Image) Format() string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	if i := strings.Index(mime, "/"); i >= 0 {
		return mime[i+1:]
	}
	return mime
}

// Base64 returns the standard base64 encoding of the image bytes
func (img Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURL returns the image as a data: URL
func (img Image) DataURL() string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + img.Base64()
}

// RawDetection is one object reported by a detection service, in the
// service's own units (score 0..1, bbox [x, y, w, h] in pixels)
type RawDetection struct {
	Class string    `json:"class"`
	Score float64   `json:"score"`
	BBox  []float64 `json:"bbox,omitempty"`
}

// Detector finds zero or more objects in an image
type Detector interface {
	Name() string
	Detect(ctx context.Context, img Image) ([]RawDetection, error)
}

// Label is a whole-image classification (score 0..1)
type Label struct {
	Label string
	Score float64
	Model string
}

// Labeler assigns a single label to a whole image
type Labeler interface {
	// Name returns the provider name
	Name() string

	// Label classifies the image
	Label(ctx context.Context, img Image) (*Label, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Config holds vision provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "gemini", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string

	// Limiter throttles outbound calls per host; nil disables throttling
	Limiter *worker.Limiter
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30 * time.Second,
		MaxTokens: 50,
	}
}

// waitFor blocks on the per-host limiter when one is configured
func waitFor(ctx context.Context, limiter *worker.Limiter, endpoint string) error {
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx, endpoint)
}
