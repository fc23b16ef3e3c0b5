package backup

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"vkbackup/pkg/config"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/objectstore"
	"vkbackup/pkg/report"
	"vkbackup/pkg/retry"
	"vkbackup/pkg/storage"
	"vkbackup/pkg/vk"
	"vkbackup/pkg/yadisk"
)

// ErrNoPhotos is returned by Run when the profile album yields nothing to upload
var ErrNoPhotos = errors.New("no photos found")

// Runner moves a user's most liked profile photos to a destination, one
// photo at a time
type Runner struct {
	source   PhotoSource
	dest     Destination
	store    *storage.Manager
	progress Progress
	config   *config.Config
	logger   logger.Logger
}

// New builds a Runner with the VK client, the configured destination and a
// staging manager
func New(cfg *config.Config, log logger.Logger) (*Runner, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	retryCfg := retry.FromConfig(cfg.Retry, log)

	source := vk.NewClient(cfg.VK, cfg.HTTP.Timeout, log)
	source.SetRetry(retryCfg)

	dest, err := NewDestination(cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewManager(cfg.Storage, cfg.Naming, log)
	if err != nil {
		return nil, err
	}

	logger.LogComponentStart("backup", map[string]interface{}{
		"destination":  dest.Name(),
		"api_version":  cfg.VK.APIVersion,
		"max_attempts": cfg.Retry.MaxAttempts,
		"staging_dir":  store.Dir(),
	})

	return NewRunner(cfg, source, dest, store, log), nil
}

// NewDestination creates the client for disk.backend
func NewDestination(cfg *config.Config, log logger.Logger) (Destination, error) {
	switch cfg.Disk.Backend {
	case "", "yadisk":
		client := yadisk.NewClient(cfg.Disk, cfg.HTTP.Timeout, log)
		client.SetRetry(retry.FromConfig(cfg.Retry, log))
		return client, nil
	case "s3":
		return objectstore.NewClient(cfg.Disk.S3, log)
	default:
		return nil, fmt.Errorf("unknown disk backend %q", cfg.Disk.Backend)
	}
}

// NewRunner wires a Runner from its parts
func NewRunner(cfg *config.Config, source PhotoSource, dest Destination, store *storage.Manager, log logger.Logger) *Runner {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Runner{
		source:   source,
		dest:     dest,
		store:    store,
		progress: nopProgress{},
		config:   cfg,
		logger:   log.WithField("component", "backup"),
	}
}

// SetProgress attaches a progress sink
func (r *Runner) SetProgress(p Progress) {
	if p == nil {
		p = nopProgress{}
	}
	r.progress = p
}

// Run fetches the profile photos of userID, uploads the top ones and writes
// the report file. A userID of 0 falls back to vk.user_id. The staging
// directory is cleaned up in every case.
func (r *Runner) Run(ctx context.Context, userID int64) (*report.Report, error) {
	if userID == 0 {
		userID = r.config.VK.UserID
	}
	runID := uuid.NewString()
	folder := r.config.Disk.Folder

	log := r.logger.WithFields(map[string]interface{}{
		"run_id":  runID,
		"user_id": userID,
	})
	log.InfoWithFields("Backup started", map[string]interface{}{
		"destination": r.dest.Name(),
		"folder":      folder,
		"limit":       r.config.Selection.Limit,
	})

	defer func() {
		if err := r.store.Cleanup(); err != nil {
			log.WithError(err).Warn("Failed to clean up staging directory")
		}
	}()

	rep, err := r.run(ctx, log, userID, folder)
	if rep != nil {
		rep.RunID = runID
		rep.UserID = userID
	}

	uploaded, total := 0, int64(0)
	if rep != nil {
		uploaded, total = rep.Len(), rep.TotalBytes()
	}
	r.progress.Finish(uploaded, total, err)

	if err != nil {
		if !errors.Is(err, ErrNoPhotos) {
			log.WithError(err).ErrorWithFields("Backup failed", map[string]interface{}{"uploaded": uploaded})
		}
		return rep, err
	}

	rep.Finish()
	if path := r.config.Storage.ReportFile; path != "" {
		if err := report.Save(path, rep); err != nil {
			return rep, err
		}
		log.DebugWithFields("Report written", map[string]interface{}{"path": path})
	}

	log.InfoWithFields("Backup finished", map[string]interface{}{
		"uploaded":   uploaded,
		"size_bytes": total,
	})
	return rep, nil
}

func (r *Runner) run(ctx context.Context, log logger.Logger, userID int64, folder string) (*report.Report, error) {
	result, err := r.source.FetchTopPhotos(ctx, userID, r.config.Selection.Limit)
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		if result.APIError != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoPhotos, result.APIError)
		}
		return nil, ErrNoPhotos
	}

	log.InfoWithFields("Photos selected", map[string]interface{}{
		"album_total": result.Total,
		"selected":    len(result.Records),
	})

	if err := r.dest.EnsureFolder(ctx, folder); err != nil {
		return nil, fmt.Errorf("create folder %s: %w", folder, err)
	}

	return r.UploadAll(ctx, result.Records, folder)
}

// UploadAll downloads each record into staging and stores it under folder.
// Photos are handled strictly in order and the first failure stops the run;
// the returned report then lists the photos that made it.
func (r *Runner) UploadAll(ctx context.Context, records []vk.PhotoRecord, folder string) (*report.Report, error) {
	rep := report.New("", r.config.VK.UserID, r.dest.Name(), folder)
	r.progress.Start(len(records), r.dest.Name(), folder)

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		fileName, _ := r.store.FileName(rec.Likes, rec.Date, rec.PhotoID)
		r.progress.PhotoStarted(fileName, rec.Likes)

		entry, err := r.transfer(ctx, rec, fileName, folder)
		if err != nil {
			r.progress.PhotoFailed(fileName, err)
			return rep, err
		}

		rep.Add(entry)
		r.progress.PhotoUploaded(fileName, entry.Bytes)
	}

	return rep, nil
}

func (r *Runner) transfer(ctx context.Context, rec vk.PhotoRecord, fileName, folder string) (report.Entry, error) {
	remotePath := yadisk.RemotePath(folder, fileName)

	localPath, size, err := r.store.Write(fileName, func(w io.Writer) (int64, error) {
		return r.source.DownloadPhoto(ctx, rec.URL, w)
	})
	if err != nil {
		logger.LogTransfer(r.logger, fileName, remotePath, size, err)
		return report.Entry{}, fmt.Errorf("download %s: %w", fileName, err)
	}

	err = r.dest.Store(ctx, remotePath, localPath)
	logger.LogTransfer(r.logger, fileName, remotePath, size, err)
	if err != nil {
		return report.Entry{}, fmt.Errorf("store %s: %w", fileName, err)
	}

	return report.Entry{
		FileName:   fileName,
		Size:       rec.SizeType,
		Bytes:      size,
		Likes:      rec.Likes,
		Date:       rec.Date,
		PhotoID:    rec.PhotoID,
		URL:        rec.URL,
		RemotePath: remotePath,
	}, nil
}
