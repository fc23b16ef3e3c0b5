// Package storage stages downloaded photos on local disk.
//
// Files are written atomically (temporary file plus rename) under names
// derived from likes and upload date. Unless photos are kept locally, the
// staging directory is temporary and removed by Cleanup once a run ends.
//
//	manager, err := storage.NewManager(cfg.Storage, cfg.Naming, log)
//	if err != nil {
//	    return err
//	}
//	defer manager.Cleanup()
//
//	name, _ := manager.FileName(record.Likes, record.Date, record.PhotoID)
//	path, size, err := manager.Write(name, func(w io.Writer) (int64, error) {
//	    return client.DownloadPhoto(ctx, record.URL, w)
//	})
package storage
