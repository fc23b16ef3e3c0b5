package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressDisplay renders a single-line progress bar over the selected
// photos. In verbose mode it prints one line per photo instead.
type ProgressDisplay struct {
	mu          sync.Mutex
	out         io.Writer
	label       string
	total       int
	uploaded    int
	current     string
	bytes       int64
	failed      bool
	startTime   time.Time
	verbose     bool
	lastLineLen int
}

// NewProgressDisplay creates a progress display labelled with the VK user
func NewProgressDisplay(label string, verbose bool) *ProgressDisplay {
	return &ProgressDisplay{
		out:       Output,
		label:     label,
		startTime: time.Now(),
		verbose:   verbose,
	}
}

// SetOutput redirects the display, mainly for tests
func (p *ProgressDisplay) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = w
}

// Start announces how many photos will be uploaded
func (p *ProgressDisplay) Start(total int, destination, folder string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.startTime = time.Now()
	fmt.Fprintf(p.out, "%s %d photos → %s:%s\n", Magenta("→"), total, destination, folder)
	if !p.verbose {
		p.printProgress()
	}
}

// PhotoStarted marks the start of a photo transfer
func (p *ProgressDisplay) PhotoStarted(fileName string, likes int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = fileName
	if p.verbose {
		fmt.Fprintf(p.out, "%s %s %s\n", Cyan("↑"), fileName, Dim(fmt.Sprintf("♥ %d", likes)))
		return
	}
	p.printProgress()
}

// PhotoUploaded marks a photo as stored at the destination
func (p *ProgressDisplay) PhotoUploaded(fileName string, size int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.uploaded++
	p.bytes += size
	p.current = ""
	if p.verbose {
		fmt.Fprintf(p.out, "%s %s • %s\n", Green("✓"), fileName, FormatBytes(size))
		return
	}
	p.printProgress()
}

// PhotoFailed marks the photo that ended the run
func (p *ProgressDisplay) PhotoFailed(fileName string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failed = true
	if !p.verbose {
		p.printProgress()
	}
	fmt.Fprintf(p.out, "\n%s %s: %v\n", Red("✗"), fileName, err)
}

// Finish prints the summary line
func (p *ProgressDisplay) Finish(uploaded int, totalBytes int64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.startTime)
	if !p.verbose {
		fmt.Fprintln(p.out)
	}
	if err != nil {
		fmt.Fprintf(p.out, "%s Stopped after %d of %d photos\n", Red("✗"), uploaded, p.total)
		return
	}
	fmt.Fprintf(p.out, "%s Uploaded %d photos of %s\n", Green("✓"), uploaded, p.label)
	fmt.Fprintf(p.out, "  %s %s in %s\n", Dim("•"), FormatBytes(totalBytes), FormatDuration(elapsed))
}

// Bar renders the progress bar for done out of total
func Bar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
}

func (p *ProgressDisplay) printProgress() {
	line := fmt.Sprintf("%s [%s] %d/%d • %s",
		Cyan(p.label),
		Bar(p.uploaded, p.total, 20),
		p.uploaded,
		p.total,
		FormatBytes(p.bytes),
	)
	if p.current != "" {
		line += " • " + p.current
	}
	if p.failed {
		line += " • " + Red("failed")
	}

	pad := ""
	if p.lastLineLen > len(line) {
		pad = strings.Repeat(" ", p.lastLineLen-len(line))
	}
	p.lastLineLen = len(line)
	fmt.Fprintf(p.out, "\r%s%s", line, pad)
}
