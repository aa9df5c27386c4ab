package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/wastewise/internal/util"
	"github.com/ppiankov/wastewise/internal/worker"
)

// HTTPDetector talks to a remote object-detection service
type HTTPDetector struct {
	endpoint   string
	httpClient *http.Client
	limiter    *worker.Limiter
}

// DetectorOptions configures an HTTPDetector
type DetectorOptions struct {
	Endpoint   string
	Timeout    time.Duration
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
	Limiter    *worker.Limiter
}

type detectRequest struct {
	Image string `json:"image"`
}

type detectResponse struct {
	Detections []RawDetection `json:"detections"`
}

type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

type detectorError struct {
	Error string `json:"error"`
}

// NewHTTPDetector creates a detection client
func NewHTTPDetector(opts DetectorOptions) (*HTTPDetector, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("detector endpoint is required")
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &HTTPDetector{
		endpoint: strings.TrimSuffix(opts.Endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy),
			},
		},
		limiter: opts.Limiter,
	}, nil
}

// Name returns the detector name
func (d *HTTPDetector) Name() string {
	return "detector"
}

// Health checks the service and returns the name of the loaded model
func (d *HTTPDetector) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"/health", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("connect to %s: %w", d.endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("detector health check returned HTTP %d", resp.StatusCode)
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return "", fmt.Errorf("decode health response: %w", err)
	}
	if health.Status != "" && health.Status != "ok" && health.Status != "ready" {
		return "", fmt.Errorf("detector not ready: %s", health.Status)
	}

	return health.Model, nil
}

// Detect sends the image to the service
func (d *HTTPDetector) Detect(ctx context.Context, img Image) ([]RawDetection, error) {
	if err := waitFor(ctx, d.limiter, d.endpoint); err != nil {
		return nil, err
	}

	body, err := json.Marshal(detectRequest{Image: img.Base64()})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint+"/detect", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr detectorError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("detector error (%d): %s", httpResp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("detector error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp detectResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return resp.Detections, nil
}
