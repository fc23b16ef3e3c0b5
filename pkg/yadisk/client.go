package yadisk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"vkbackup/pkg/config"
	errs "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/retry"
)

const serviceName = "disk"

// Client uploads files to Yandex.Disk with an OAuth token
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	overwrite  bool
	retry      *retry.Config
	logger     logger.Logger
}

// NewClient creates a Disk client from the disk section of the configuration
func NewClient(cfg config.DiskConfig, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      cfg.Token,
		overwrite:  cfg.Overwrite,
		retry:      retry.NoRetry(),
		logger:     log.WithField("component", "yadisk"),
	}
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetRetry enables retries for upload link and upload requests
func (c *Client) SetRetry(cfg *retry.Config) {
	if cfg != nil {
		c.retry = cfg
	}
}

// Name identifies the destination in logs and reports
func (c *Client) Name() string {
	return "yadisk"
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "OAuth "+c.token)
	req.Header.Set("Accept", "application/json")
}

// send performs req, logging the exchange. Only transport failures are
// returned as errors; status handling is left to the caller.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errs.New(serviceName, errs.ErrorTypeNetwork, 0, "network error: %v", err)
	}

	logger.LogRequest(c.logger, serviceName, req.Method, req.URL.Redacted(), resp.StatusCode,
		float64(time.Since(start).Microseconds())/1000)
	return resp, nil
}

// statusError builds a typed error for a non-2xx response and closes its body
func statusError(resp *http.Response) error {
	defer resp.Body.Close()

	apiErr := errs.FromStatus(serviceName, resp.StatusCode)
	if apiErr == nil {
		return nil
	}

	var body APIError
	if data, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil && json.Unmarshal(data, &body) == nil {
		switch {
		case body.Message != "":
			apiErr.Message = body.Message
		case body.Description != "":
			apiErr.Message = body.Description
		}
	}
	return apiErr
}

// EnsureFolder asks Disk to create path. The outcome is logged and not
// returned: an already existing folder answers 409 and that is fine. Only
// transport failures are errors.
func (c *Client) EnsureFolder(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, ResourceURL(c.baseURL, path), nil)
	if err != nil {
		return fmt.Errorf("create folder request: %w", err)
	}
	c.authorize(req)

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	fields := map[string]interface{}{
		"folder":      path,
		"status_code": resp.StatusCode,
	}
	switch resp.StatusCode {
	case http.StatusCreated:
		c.logger.InfoWithFields("Folder created", fields)
	case http.StatusConflict:
		c.logger.DebugWithFields("Folder already exists", fields)
	default:
		c.logger.WarnWithFields("Folder creation returned unexpected status", fields)
	}
	return nil
}

// UploadURL requests a signed upload href for path
func (c *Client) UploadURL(ctx context.Context, path string) (string, error) {
	return retry.DoWithResult(ctx, c.retry, func(ctx context.Context) (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, UploadLinkURL(c.baseURL, path, c.overwrite), nil)
		if err != nil {
			return "", fmt.Errorf("upload link request: %w", err)
		}
		c.authorize(req)

		resp, err := c.send(req)
		if err != nil {
			return "", err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return "", statusError(resp)
		}
		defer resp.Body.Close()

		var link Link
		if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
			return "", errs.New(serviceName, errs.ErrorTypeParsing, resp.StatusCode, "failed to parse upload link: %v", err)
		}
		if link.Href == "" {
			return "", errs.New(serviceName, errs.ErrorTypeParsing, resp.StatusCode, "upload link for %s has no href", path)
		}
		return link.Href, nil
	})
}

// Upload sends the file at localPath to href as multipart form data in a
// field named "file"
func (c *Client) Upload(ctx context.Context, href, localPath string) error {
	body, contentType, err := multipartBody(localPath)
	if err != nil {
		return err
	}

	return retry.Do(ctx, c.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, href, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("upload request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := c.send(req)
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return statusError(resp)
		}
		resp.Body.Close()
		return nil
	})
}

// Store uploads localPath to remotePath: upload link first, then the bytes
func (c *Client) Store(ctx context.Context, remotePath, localPath string) error {
	href, err := c.UploadURL(ctx, remotePath)
	if err != nil {
		return fmt.Errorf("get upload link for %s: %w", remotePath, err)
	}
	if err := c.Upload(ctx, href, localPath); err != nil {
		return fmt.Errorf("upload %s: %w", remotePath, err)
	}
	return nil
}

func multipartBody(localPath string) ([]byte, string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(localPath))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("read %s: %w", localPath, err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finish multipart body: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
