package yadisk

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vkbackup/pkg/config"
	errs "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/retry"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server, *logger.TestLogger) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tl := logger.NewTestLogger()
	client := NewClient(config.DiskConfig{
		Token:     "disk-token",
		BaseURL:   server.URL,
		Overwrite: true,
	}, 5*time.Second, tl)
	return client, server, tl
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestEnsureFolder(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		level   string
	}{
		{"created", http.StatusCreated, "Folder created", "INFO"},
		{"exists", http.StatusConflict, "Folder already exists", "DEBUG"},
		{"unauthorized is only logged", http.StatusUnauthorized, "Folder creation returned unexpected status", "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _, tl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPut, r.Method)
				assert.Equal(t, ResourcesEndpoint, r.URL.Path)
				assert.Equal(t, "vk_photos", r.URL.Query().Get("path"))
				assert.Equal(t, "OAuth disk-token", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
			}))

			require.NoError(t, client.EnsureFolder(context.Background(), "vk_photos"))

			found := false
			for _, msg := range tl.GetMessagesByLevel(tt.level) {
				if msg.Message == tt.message {
					found = true
				}
			}
			assert.True(t, found, "expected %q at %s", tt.message, tt.level)
		})
	}
}

func TestEnsureFolderTransportError(t *testing.T) {
	client, server, _ := newTestClient(t, http.NotFoundHandler())
	server.Close()

	err := client.EnsureFolder(context.Background(), "vk_photos")

	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeNetwork, apiErr.Type)
}

func TestUploadURL(t *testing.T) {
	client, server, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UploadEndpoint, r.URL.Path)
		assert.Equal(t, "vk_photos/photo_50_1.jpg", r.URL.Query().Get("path"))
		assert.Equal(t, "true", r.URL.Query().Get("overwrite"))
		assert.Equal(t, "OAuth disk-token", r.Header.Get("Authorization"))
		io.WriteString(w, `{"href": "https://uploader.example/upload/abc", "method": "PUT", "templated": false}`)
	}))
	assert.NotNil(t, server)

	href, err := client.UploadURL(context.Background(), "vk_photos/photo_50_1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://uploader.example/upload/abc", href)
}

func TestUploadURLErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected errs.ErrorType
		message  string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message": "Не авторизован.", "error": "UnauthorizedError"}`, errs.ErrorTypeAuth, "Не авторизован."},
		{"conflict", http.StatusConflict, `{"description": "resource already exists", "error": "DiskResourceAlreadyExistsError"}`, errs.ErrorTypeConflict, "resource already exists"},
		{"server error", http.StatusServiceUnavailable, ``, errs.ErrorTypeServerError, "unexpected status 503 Service Unavailable"},
		{"missing href", http.StatusOK, `{}`, errs.ErrorTypeParsing, "upload link for x.jpg has no href"},
		{"garbage", http.StatusOK, `not json`, errs.ErrorTypeParsing, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))

			_, err := client.UploadURL(context.Background(), "x.jpg")

			var apiErr *errs.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.expected, apiErr.Type)
			if tt.message != "" {
				assert.Equal(t, tt.message, apiErr.Message)
			}
		})
	}
}

func TestUpload(t *testing.T) {
	var gotName, gotContent string
	client, server, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, _ := io.ReadAll(file)
		gotName = header.Filename
		gotContent = string(data)
		w.WriteHeader(http.StatusCreated)
	}))

	local := writeTempFile(t, "photo_50_1.jpg", "jpeg-bytes")
	require.NoError(t, client.Upload(context.Background(), server.URL+"/upload/abc", local))

	assert.Equal(t, "photo_50_1.jpg", gotName)
	assert.Equal(t, "jpeg-bytes", gotContent)
}

func TestUploadRejected(t *testing.T) {
	client, server, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInsufficientStorage)
	}))

	err := client.Upload(context.Background(), server.URL+"/upload", writeTempFile(t, "a.jpg", "x"))

	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInsufficientStorage, apiErr.Code)
}

func TestUploadMissingFile(t *testing.T) {
	client, server, _ := newTestClient(t, http.NotFoundHandler())

	err := client.Upload(context.Background(), server.URL, filepath.Join(t.TempDir(), "nope.jpg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStore(t *testing.T) {
	var uploads int32
	mux := http.NewServeMux()
	client, server, _ := newTestClient(t, mux)

	mux.HandleFunc(UploadEndpoint, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"href": "`+server.URL+`/put/`+r.URL.Query().Get("path")+`"}`)
	})
	mux.HandleFunc("/put/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&uploads, 1)
		assert.Equal(t, "/put/vk_photos/photo_1_2.jpg", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	})

	err := client.Store(context.Background(), "vk_photos/photo_1_2.jpg", writeTempFile(t, "photo_1_2.jpg", "data"))
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&uploads))
}

func TestUploadRetriesWhenEnabled(t *testing.T) {
	var calls int32
	client, server, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _, err := r.FormFile("file")
		assert.NoError(t, err)
		w.WriteHeader(http.StatusCreated)
	}))
	client.SetRetry(&retry.Config{MaxAttempts: 3, Backoff: &retry.ConstantBackoff{Delay: time.Millisecond}})

	require.NoError(t, client.Upload(context.Background(), server.URL+"/u", writeTempFile(t, "a.jpg", "abc")))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRemotePath(t *testing.T) {
	assert.Equal(t, "vk_photos/a.jpg", RemotePath("vk_photos", "a.jpg"))
	assert.Equal(t, "vk_photos/a.jpg", RemotePath("vk_photos/", "a.jpg"))
	assert.Equal(t, "a.jpg", RemotePath("", "a.jpg"))
	assert.Equal(t, "disk:/backup/a.jpg", RemotePath("disk:/backup", "a.jpg"))
}
