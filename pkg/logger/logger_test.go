package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vkbackup/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"text info", &config.LoggingConfig{Level: "info", Format: "text"}, false},
		{"json debug", &config.LoggingConfig{Level: "debug", Format: "json"}, false},
		{"invalid level", &config.LoggingConfig{Level: "verbose"}, true},
		{"file output", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "vkbackup.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"loud", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.expected, level)
		})
	}
}

// bufferLogger writes JSON into buf so tests can decode each event
func bufferLogger(buf *bytes.Buffer) Logger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zl := zerolog.New(buf)
	return &zerologLogger{logger: &zl, fields: map[string]interface{}{}}
}

func decodeLast(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var event map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &event))
	return event
}

func TestFieldsAreCarried(t *testing.T) {
	var buf bytes.Buffer
	log := bufferLogger(&buf).
		WithField("component", "backup").
		WithFields(map[string]interface{}{"user_id": int64(7), "limit": 5})

	log.Info("Run started")

	event := decodeLast(t, &buf)
	assert.Equal(t, "info", event["level"])
	assert.Equal(t, "Run started", event["message"])
	assert.Equal(t, "backup", event["component"])
	assert.Equal(t, float64(7), event["user_id"])
	assert.Equal(t, float64(5), event["limit"])
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := bufferLogger(&buf).WithField("a", "1")
	_ = parent.WithField("b", "2")

	parent.Warn("only a")

	event := decodeLast(t, &buf)
	assert.Equal(t, "1", event["a"])
	assert.NotContains(t, event, "b")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := bufferLogger(&buf)

	log.WithError(errors.New("upload refused")).Error("Transfer failed")
	event := decodeLast(t, &buf)
	assert.Equal(t, "upload refused", event["error"])

	assert.Same(t, log, log.WithError(nil))
}

func TestFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	bufferLogger(&buf).InfoWithFields("types", map[string]interface{}{
		"duration": 1500 * time.Millisecond,
		"ok":       true,
		"names":    []string{"x", "y"},
		"ratio":    0.5,
	})

	event := decodeLast(t, &buf)
	assert.Equal(t, true, event["ok"])
	assert.Equal(t, 0.5, event["ratio"])
	assert.Equal(t, []interface{}{"x", "y"}, event["names"])
	assert.Contains(t, event, "duration")
}

func TestLogRequestLevels(t *testing.T) {
	tl := NewTestLogger()

	LogRequest(tl, "vk", "GET", "https://api.vk.com/method/photos.get", 200, 12)
	LogRequest(tl, "disk", "PUT", "https://cloud-api.yandex.net/v1/disk/resources", 409, 3)
	LogRequest(tl, "disk", "GET", "https://cloud-api.yandex.net/v1/disk/resources/upload", 503, 8)

	assert.Len(t, tl.GetMessagesByLevel("DEBUG"), 1)
	warns := tl.GetMessagesByLevel("WARN")
	require.Len(t, warns, 1)
	assert.Equal(t, 409, warns[0].Fields["status_code"])
	assert.True(t, tl.HasError())
}

func TestLogTransfer(t *testing.T) {
	tl := NewTestLogger()

	LogTransfer(tl, "photo_50_1.jpg", "vk_photos/photo_50_1.jpg", 2048, nil)
	LogTransfer(tl, "photo_30_2.jpg", "vk_photos/photo_30_2.jpg", 0, errors.New("boom"))

	msgs := tl.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Photo uploaded", msgs[0].Message)
	assert.Equal(t, int64(2048), msgs[0].Fields["size_bytes"])
	assert.Equal(t, "ERROR", msgs[1].Level)
	assert.EqualError(t, msgs[1].Error, "boom")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "********", MaskSecret("short"))
	assert.Equal(t, "vk1a...9f0e", MaskSecret("vk1a0000000000009f0e"))
}

func TestTestLoggerSharesSink(t *testing.T) {
	tl := NewTestLogger()
	child := tl.WithField("file", "a.jpg").WithError(errors.New("x"))
	child.Warn("collision")

	msgs := tl.GetMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "a.jpg", msgs[0].Fields["file"])
	assert.Contains(t, tl.String(), "[WARN] collision")

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
}

func TestGlobalLogger(t *testing.T) {
	tl := NewTestLogger()
	SetLogger(tl)
	defer SetLogger(nil)

	Info("hello")
	WithField("k", "v").Warn("scoped")

	assert.True(t, tl.HasMessage("hello"))
	assert.True(t, tl.HasMessage("scoped"))
}

type recordingSink struct {
	lines []string
}

func (s *recordingSink) Log(level, message string) {
	s.lines = append(s.lines, level+" "+message)
}

func TestNewWithSink(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	logFile := filepath.Join(t.TempDir(), "tui.log")
	sink := &recordingSink{}
	l, err := NewWithSink(&config.LoggingConfig{Level: "info", File: logFile}, sink)
	require.NoError(t, err)

	l.Debug("hidden")
	l.WithField("user_id", 1).Info("Photos selected")
	l.WarnWithFields("Name collision", map[string]interface{}{"file": "a.jpg"})
	l.WithError(errors.New("boom")).Error("Photo transfer failed")

	assert.Equal(t, []string{
		"INFO Photos selected",
		"WARN Name collision",
		"ERROR Photo transfer failed",
	}, sink.lines)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"Photos selected"`)
	assert.Contains(t, string(data), `"user_id":1`)

	_, err = NewWithSink(&config.LoggingConfig{Level: "loud"}, sink)
	assert.Error(t, err)
}
