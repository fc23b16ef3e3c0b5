package vk

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vkbackup/pkg/config"
	errs "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/retry"
)

// mockRoundTripper lets tests fail requests at the transport level
type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.handler(req)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *logger.TestLogger) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tl := logger.NewTestLogger()
	client := NewClient(config.VKConfig{
		Token:      "test-token",
		APIVersion: "5.199",
		BaseURL:    server.URL,
	}, 5*time.Second, tl)
	return client, tl
}

const photosPayload = `{
  "response": {
    "count": 6,
    "items": [
      {"id": 1, "owner_id": 42, "date": 1600000001, "likes": {"count": 10}, "sizes": [{"type": "m", "url": "https://img/1m", "width": 130, "height": 98}, {"type": "z", "url": "https://img/1z", "width": 1280, "height": 960}]},
      {"id": 2, "owner_id": 42, "date": 1600000002, "likes": {"count": 50}, "sizes": [{"type": "x", "url": "https://img/2x", "width": 604, "height": 453}]},
      {"id": 3, "owner_id": 42, "date": 1600000003, "likes": {"count": 30}, "sizes": [{"type": "x", "url": "https://img/3x", "width": 604, "height": 453}]},
      {"id": 4, "owner_id": 42, "date": 1600000004, "likes": {"count": 5}, "sizes": [{"type": "x", "url": "https://img/4x", "width": 604, "height": 453}]},
      {"id": 5, "owner_id": 42, "date": 1600000005, "likes": {"count": 20}, "sizes": [{"type": "x", "url": "https://img/5x", "width": 604, "height": 453}]},
      {"id": 6, "owner_id": 42, "date": 1600000006, "likes": {"count": 1}, "sizes": [{"type": "x", "url": "https://img/6x", "width": 604, "height": 453}]}
    ]
  }
}`

func TestFetchTopPhotos(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/method/photos.get", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get("access_token"))
		assert.Equal(t, "42", r.URL.Query().Get("owner_id"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, photosPayload)
	})

	result, err := client.FetchTopPhotos(context.Background(), 42, 5)
	require.NoError(t, err)
	require.Len(t, result.Records, 5)

	assert.Equal(t, 6, result.Total)
	assert.Nil(t, result.APIError)
	assert.Equal(t, 50, result.Records[0].Likes)
	assert.Equal(t, "https://img/2x", result.Records[0].URL)
	assert.Equal(t, 10, result.Records[3].Likes)
	assert.Equal(t, "https://img/1z", result.Records[3].URL)
	assert.Equal(t, 5, result.Records[4].Likes)
}

func TestFetchTopPhotosDefaultsLimit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, photosPayload)
	})

	result, err := client.FetchTopPhotos(context.Background(), 42, 0)
	require.NoError(t, err)
	assert.Len(t, result.Records, DefaultLimit)
}

func TestFetchTopPhotosMissingItems(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		code    int
	}{
		{"error payload", `{"error": {"error_code": 5, "error_msg": "User authorization failed: invalid access_token (4)."}}`, 5},
		{"private profile", `{"error": {"error_code": 30, "error_msg": "This profile is private"}}`, 30},
		{"response without items", `{"response": {"count": 0}}`, 0},
		{"empty object", `{}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, tl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.payload)
			})

			result, err := client.FetchTopPhotos(context.Background(), 1, 5)
			require.NoError(t, err)
			assert.Empty(t, result.Records)
			if tt.code != 0 {
				require.NotNil(t, result.APIError)
				assert.Equal(t, tt.code, result.APIError.Code)
			} else {
				assert.Nil(t, result.APIError)
			}
			assert.True(t, tl.HasMessage("Response has no photo items"))
		})
	}
}

func TestFetchTopPhotosHTTPErrors(t *testing.T) {
	tests := []struct {
		status   int
		expected errs.ErrorType
	}{
		{http.StatusUnauthorized, errs.ErrorTypeAuth},
		{http.StatusTooManyRequests, errs.ErrorTypeRateLimit},
		{http.StatusInternalServerError, errs.ErrorTypeServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.FetchTopPhotos(context.Background(), 1, 5)
			require.Error(t, err)

			var apiErr *errs.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.expected, apiErr.Type)
			assert.Equal(t, "vk", apiErr.Service)
		})
	}
}

func TestFetchTopPhotosMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"html page", "<html>maintenance</html>"},
		{"response is an array", `{"response": []}`},
		{"items is a string", `{"response": {"items": "x"}}`},
		{"truncated json", `{"response": {"count": 2, "items": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, tl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			})

			result, err := client.FetchTopPhotos(context.Background(), 1, 5)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Empty(t, result.Records)
			assert.Nil(t, result.APIError)
			assert.True(t, tl.HasMessage("Malformed photos.get response"))
			assert.False(t, tl.HasError())
		})
	}
}

func TestFetchTopPhotosStatusErrorPropagates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "<html>maintenance</html>")
	})

	result, err := client.FetchTopPhotos(context.Background(), 1, 5)
	assert.Nil(t, result)

	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeServerError, apiErr.Type)
}

func TestFetchTopPhotosNetworkError(t *testing.T) {
	client := NewClient(config.VKConfig{Token: "t"}, time.Second, logger.NewNopLogger())
	client.SetHTTPClient(&http.Client{Transport: &mockRoundTripper{
		handler: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
	}})

	_, err := client.FetchTopPhotos(context.Background(), 1, 5)

	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeNetwork, apiErr.Type)
}

func TestFetchTopPhotosRetriesWhenEnabled(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, photosPayload)
	})
	client.SetRetry(&retry.Config{MaxAttempts: 2, Backoff: &retry.ConstantBackoff{Delay: time.Millisecond}})

	result, err := client.FetchTopPhotos(context.Background(), 42, 5)
	require.NoError(t, err)
	assert.Len(t, result.Records, 5)
	assert.Equal(t, 2, calls)
}

func TestFetchTopPhotosNoRetryByDefault(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchTopPhotos(context.Background(), 42, 5)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFetchTopPhotosCancelled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, photosPayload)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchTopPhotos(ctx, 42, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDownloadPhoto(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("jpeg-bytes"))
	})

	var buf bytes.Buffer
	n, err := client.DownloadPhoto(context.Background(), client.baseURL+"/photo.jpg", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.Equal(t, "jpeg-bytes", buf.String())

	_, err = client.DownloadPhoto(context.Background(), client.baseURL+"/missing.jpg", io.Discard)
	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeNotFound, apiErr.Type)
}
