package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry describes one uploaded photo
type Entry struct {
	FileName string `json:"file_name"`
	// Size is the VK size letter of the uploaded rendition
	Size       string `json:"size"`
	Bytes      int64  `json:"bytes"`
	Likes      int    `json:"likes"`
	Date       int64  `json:"date"`
	PhotoID    int64  `json:"photo_id,omitempty"`
	URL        string `json:"url"`
	RemotePath string `json:"remote_path"`
}

// Report is the results file written after a run
type Report struct {
	RunID       string    `json:"run_id"`
	UserID      int64     `json:"user_id"`
	Destination string    `json:"destination"`
	Folder      string    `json:"folder"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Photos      []Entry   `json:"photos"`
}

// New starts an empty report
func New(runID string, userID int64, destination, folder string) *Report {
	return &Report{
		RunID:       runID,
		UserID:      userID,
		Destination: destination,
		Folder:      folder,
		StartedAt:   time.Now().UTC(),
		Photos:      []Entry{},
	}
}

// Add records an uploaded photo
func (r *Report) Add(e Entry) {
	r.Photos = append(r.Photos, e)
}

// Len returns the number of uploaded photos
func (r *Report) Len() int {
	return len(r.Photos)
}

// TotalBytes sums the sizes of all uploaded files
func (r *Report) TotalBytes() int64 {
	var total int64
	for _, p := range r.Photos {
		total += p.Bytes
	}
	return total
}

// Finish stamps the completion time
func (r *Report) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// Save writes the report as indented JSON. The file is replaced atomically.
func Save(path string, r *Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary report file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(r); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync report file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close report file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace report file: %w", err)
	}
	return nil
}

// Load reads a report written by Save
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	if r.Photos == nil {
		r.Photos = []Entry{}
	}
	return &r, nil
}
