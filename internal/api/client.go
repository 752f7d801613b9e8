package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/rocjay1/finpulse/internal/models"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	generateReportPath    = "/api/v1/generate-report"
	uploadFilePath        = "/api/v1/upload-file"
	updateTransactionPath = "/api/v1/transactions/"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the instrumented default client.
	HTTPClient *http.Client
}

// Client talks to the remote analysis and persistence service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a Client for the service at opts.BaseURL.
func NewClient(opts Options, log zerolog.Logger) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("remote base URL is required")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid remote base URL %q: %w", opts.BaseURL, err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		log:        log.With().Str("component", "api").Logger(),
	}, nil
}

// GenerateReport asks the remote to analyze the given snapshot.
func (c *Client) GenerateReport(ctx context.Context, req ReportRequest) (*models.ReportResult, error) {
	const op = "generate report"

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report request: %w", err)
	}

	c.log.Debug().Int("transactions", len(req.Transactions)).Str("language", string(req.Language)).
		Str("industry", string(req.Industry)).Msg("requesting report")

	var result models.ReportResult
	if err := c.do(ctx, op, http.MethodPost, generateReportPath, "application/json", bytes.NewReader(body), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadFile sends a file to the remote for extraction. The format is opaque
// to this client.
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader) (*UploadResponse, error) {
	const op = "upload file"

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	size, err := io.Copy(part, content)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	c.log.Info().Str("filename", filename).Int64("size_bytes", size).Msg("uploading file")

	var resp UploadResponse
	if err := c.do(ctx, op, http.MethodPost, uploadFilePath, writer.FormDataContentType(), body, &resp); err != nil {
		return nil, err
	}
	c.log.Info().Str("filename", filename).Int("transactions", len(resp.Transactions)).Msg("upload processed")
	return &resp, nil
}

// UpdateTransaction saves the editable fields of one transaction.
func (c *Client) UpdateTransaction(ctx context.Context, id string, update models.TransactionUpdate) error {
	const op = "update transaction"

	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction update: %w", err)
	}

	var resp updateResponse
	if err := c.do(ctx, op, http.MethodPut, updateTransactionPath+url.PathEscape(id), "application/json", bytes.NewReader(body), &resp); err != nil {
		return err
	}
	c.log.Info().Str("id", id).Str("message", resp.Message).Msg("transaction updated remotely")
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("op", op).Msg("request failed")
		return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %w: failed to read response: %w", op, ErrTransport, err)
	}

	c.log.Debug().Str("op", op).Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remoteErr := newRemoteError(op, resp.StatusCode, data)
		c.log.Warn().Str("op", op).Int("status", resp.StatusCode).Str("detail", remoteErr.Detail).Msg("remote rejected request")
		return remoteErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
