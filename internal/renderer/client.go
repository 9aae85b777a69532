// Package renderer is the synchronous call boundary to the external render
// service. It owns the only network call in the pipeline and never retries:
// retry policy belongs to the orchestrator.
package renderer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ThadPinch/ffp-render/internal/geometry"
)

var (
	// ErrUnavailable covers transport failures, timeouts, and non-success
	// channel-level responses. Always retryable from the orchestrator's view.
	ErrUnavailable = errors.New("render service unavailable")

	// ErrMalformedResponse is returned when the service answers success but
	// the artifact field is missing or undecodable.
	ErrMalformedResponse = errors.New("malformed render service response")

	// ErrPayloadTooLarge is returned before any network call when the
	// serialized document exceeds the configured request bound.
	ErrPayloadTooLarge = errors.New("render payload exceeds size limit")
)

// ServiceError is a failure the render service itself reported in its
// error envelope.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return "render service error: " + e.Message
}

// Config holds the explicitly constructed render service dependency:
// endpoint, credentials, and request bounds. No globals.
type Config struct {
	Endpoint        string
	APIKey          string
	RequestTimeout  time.Duration
	MaxPayloadBytes int64
}

// Client invokes the external render service
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a render service client
func NewClient(config Config) *Client {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if config.MaxPayloadBytes <= 0 {
		config.MaxPayloadBytes = 6 << 20
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// envelope mirrors the render service response body: exactly one of the two
// fields is meaningful.
type envelope struct {
	PDFData      string `json:"pdf_data"`
	ErrorMessage string `json:"errorMessage"`
}

// Invoke serializes the document, calls the render service, and returns the
// decoded binary artifact. Failures map onto the package's typed errors.
func (c *Client) Invoke(ctx context.Context, doc *geometry.Document) ([]byte, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize render payload: %w", err)
	}

	if int64(len(body)) > c.config.MaxPayloadBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(body))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http %d", ErrUnavailable, res.StatusCode)
	}

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var env envelope
	if err := json.Unmarshal(resBody, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if env.ErrorMessage != "" {
		return nil, &ServiceError{Message: env.ErrorMessage}
	}

	if env.PDFData == "" {
		return nil, fmt.Errorf("%w: missing pdf_data", ErrMalformedResponse)
	}

	artifact, err := base64.StdEncoding.DecodeString(env.PDFData)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 artifact: %v", ErrMalformedResponse, err)
	}

	return artifact, nil
}
