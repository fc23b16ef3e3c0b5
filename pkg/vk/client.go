package vk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"vkbackup/pkg/config"
	errs "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/retry"
)

const serviceName = "vk"

// Client talks to the VK API on behalf of a single access token
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	apiVersion string
	userAgent  string
	retry      *retry.Config
	logger     logger.Logger
}

// NewClient creates a VK client from the vk section of the configuration
func NewClient(cfg config.VKConfig, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      cfg.Token,
		apiVersion: version,
		userAgent:  "vkbackup/1.0",
		retry:      retry.NoRetry(),
		logger:     log.WithField("component", "vk"),
	}
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetRetry enables retries for API and download requests
func (c *Client) SetRetry(cfg *retry.Config) {
	if cfg != nil {
		c.retry = cfg
	}
}

// doRequest sends req and converts transport failures and non-2xx statuses
// into typed errors. The caller owns the body of a successful response.
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method": req.Method,
			"url":    RedactURL(req.URL.String()),
			"error":  err.Error(),
		})
		return nil, errs.New(serviceName, errs.ErrorTypeNetwork, 0, "network error: %v", err)
	}

	logger.LogRequest(c.logger, serviceName, req.Method, RedactURL(req.URL.String()), resp.StatusCode, elapsed)

	if apiErr := errs.FromStatus(serviceName, resp.StatusCode); apiErr != nil {
		resp.Body.Close()
		return nil, apiErr
	}
	return resp, nil
}

// getJSON performs a GET against rawURL and decodes the body into target
func (c *Client) getJSON(ctx context.Context, rawURL string, target interface{}) error {
	return retry.Do(ctx, c.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return errs.New(serviceName, errs.ErrorTypeUnknown, 0, "failed to create request: %v", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.doRequest(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return errs.New(serviceName, errs.ErrorTypeNetwork, resp.StatusCode, "failed to read response body: %v", err)
		}

		if err := json.Unmarshal(body, target); err != nil {
			preview := string(body)
			if len(preview) > 200 {
				preview = preview[:200] + "..."
			}
			c.logger.DebugWithFields("Failed to parse JSON response", map[string]interface{}{
				"error":        err.Error(),
				"body_preview": preview,
			})
			return errs.New(serviceName, errs.ErrorTypeParsing, resp.StatusCode, "failed to parse JSON: %v", err)
		}
		return nil
	})
}

// FetchProfilePhotos returns the raw photos.get response for the user's
// profile album
func (c *Client) FetchProfilePhotos(ctx context.Context, userID int64) (*PhotosResponse, error) {
	var response PhotosResponse
	if err := c.getJSON(ctx, PhotosGetURL(c.baseURL, c.token, c.apiVersion, userID), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// FetchTopPhotos fetches the profile album and selects the most liked
// photos. limit <= 0 selects DefaultLimit photos.
func (c *Client) FetchTopPhotos(ctx context.Context, userID int64, limit int) (*FetchResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	c.logger.DebugWithFields("Fetching profile photos", map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
	})

	response, err := c.FetchProfilePhotos(ctx, userID)
	if err != nil {
		var apiErr *errs.Error
		if errors.As(err, &apiErr) && apiErr.Type == errs.ErrorTypeParsing {
			// A body that does not decode counts as an album with no photos
			c.logger.WarnWithFields("Malformed photos.get response", map[string]interface{}{
				"user_id": userID,
				"error":   apiErr.Message,
			})
			return &FetchResult{}, nil
		}
		return nil, fmt.Errorf("fetch profile photos of %d: %w", userID, err)
	}

	result := &FetchResult{APIError: response.Error}
	if response.Response == nil || response.Response.Items == nil {
		fields := map[string]interface{}{"user_id": userID}
		if response.Error != nil {
			fields["error_code"] = response.Error.Code
			fields["error_msg"] = response.Error.Message
		}
		c.logger.WarnWithFields("Response has no photo items", fields)
		return result, nil
	}

	result.Total = response.Response.Count
	result.Records = SelectTop(response.Response.Items, limit)

	c.logger.InfoWithFields("Selected profile photos", map[string]interface{}{
		"user_id":  userID,
		"total":    result.Total,
		"selected": len(result.Records),
	})
	return result, nil
}

// DownloadPhoto streams the image at photoURL into w and returns the number
// of bytes written
func (c *Client) DownloadPhoto(ctx context.Context, photoURL string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return 0, errs.New(serviceName, errs.ErrorTypeUnknown, 0, "failed to create request: %v", err)
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, errs.New(serviceName, errs.ErrorTypeNetwork, resp.StatusCode, "failed to read photo: %v", err)
	}
	return n, nil
}
