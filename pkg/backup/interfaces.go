package backup

import (
	"context"
	"io"

	"vkbackup/pkg/vk"
)

// PhotoSource fetches and downloads photos
type PhotoSource interface {
	FetchTopPhotos(ctx context.Context, userID int64, limit int) (*vk.FetchResult, error)
	DownloadPhoto(ctx context.Context, photoURL string, w io.Writer) (int64, error)
}

// Destination stores staged photos remotely
type Destination interface {
	EnsureFolder(ctx context.Context, folder string) error
	Store(ctx context.Context, remotePath, localPath string) error
	Name() string
}

// Progress receives run events. ui.ProgressDisplay and tui.TUI implement it.
type Progress interface {
	Start(total int, destination, folder string)
	PhotoStarted(fileName string, likes int)
	PhotoUploaded(fileName string, size int64)
	PhotoFailed(fileName string, err error)
	Finish(uploaded int, totalBytes int64, err error)
}

type nopProgress struct{}

func (nopProgress) Start(int, string, string)   {}
func (nopProgress) PhotoStarted(string, int)    {}
func (nopProgress) PhotoUploaded(string, int64) {}
func (nopProgress) PhotoFailed(string, error)   {}
func (nopProgress) Finish(int, int64, error)    {}
