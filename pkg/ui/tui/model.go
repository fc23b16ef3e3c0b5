package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// PhotoState is where a photo is in the download-then-upload sequence
type PhotoState int

const (
	PhotoPending PhotoState = iota
	PhotoActive
	PhotoUploaded
	PhotoFailed
)

// PhotoItem is one selected photo as shown in the list
type PhotoItem struct {
	FileName string
	Likes    int
	Size     int64
	State    PhotoState
	Err      error
}

// LogLine is an entry in the log panel
type LogLine struct {
	Time    time.Time
	Level   string
	Message string
}

// Model is the bubbletea model of a backup run. It is only mutated from
// Update, so it needs no locking.
type Model struct {
	spinner spinner.Model
	bar     progress.Model

	label       string
	destination string
	folder      string

	total    int
	photos   []*PhotoItem
	index    map[string]int
	uploaded int
	bytes    int64
	started  time.Time
	finished bool
	err      error

	logs    []LogLine
	maxLogs int

	width    int
	height   int
	showHelp bool
	onQuit   func()
}

// NewModel creates the model. onQuit runs when the user quits, typically
// cancelling the run.
func NewModel(label string, onQuit func()) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = labelStyle

	bar := progress.New(progress.WithGradient(string(accentBlue), string(okGreen)))
	bar.Width = 40

	return &Model{
		spinner: s,
		bar:     bar,
		label:   label,
		index:   make(map[string]int),
		started: time.Now(),
		maxLogs: 50,
		onQuit:  onQuit,
	}
}

// Init starts the spinner
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *Model) start(total int, destination, folder string) {
	m.total = total
	m.destination = destination
	m.folder = folder
	m.started = time.Now()
}

func (m *Model) photoStarted(fileName string, likes int) {
	if i, ok := m.index[fileName]; ok {
		m.photos[i].State = PhotoActive
		m.photos[i].Likes = likes
		return
	}
	m.index[fileName] = len(m.photos)
	m.photos = append(m.photos, &PhotoItem{FileName: fileName, Likes: likes, State: PhotoActive})
}

func (m *Model) photoUploaded(fileName string, size int64) {
	m.uploaded++
	m.bytes += size
	if i, ok := m.index[fileName]; ok {
		m.photos[i].State = PhotoUploaded
		m.photos[i].Size = size
	}
}

func (m *Model) photoFailed(fileName string, err error) {
	if i, ok := m.index[fileName]; ok {
		m.photos[i].State = PhotoFailed
		m.photos[i].Err = err
	}
}

func (m *Model) addLog(level, message string) {
	m.logs = append(m.logs, LogLine{Time: time.Now(), Level: level, Message: message})
	if len(m.logs) > m.maxLogs {
		m.logs = m.logs[len(m.logs)-m.maxLogs:]
	}
}

// Percent is the share of selected photos already uploaded
func (m *Model) Percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.uploaded) / float64(m.total)
}

// Active returns the photo currently in flight, if any
func (m *Model) Active() *PhotoItem {
	for _, p := range m.photos {
		if p.State == PhotoActive {
			return p
		}
	}
	return nil
}
