// Package logger provides structured logging for vkbackup.
//
// It wraps zerolog behind a small Logger interface so components can be
// handed a logger, a no-op logger, or a capturing TestLogger.
//
// Basic usage:
//
//	cfg := &config.LoggingConfig{Level: "info", Format: "text"}
//	if err := logger.Initialize(cfg); err != nil {
//	    return err
//	}
//
//	logger.WithField("user_id", 1).Info("Fetching profile photos")
//
// Components usually keep a scoped logger:
//
//	log := logger.GetLogger().WithField("component", "yadisk")
//	log.InfoWithFields("Upload finished", map[string]interface{}{
//	    "file_name": "photo_50_1600000000.jpg",
//	    "size_bytes": 1024,
//	})
//
// Format "text" writes colored console lines to stderr, "json" writes raw
// JSON lines. When File is set, JSON lines are appended to it as well.
package logger
