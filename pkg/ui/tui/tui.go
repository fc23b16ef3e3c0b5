package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// TUI drives the bubbletea program and receives progress events from the
// backup runner. Its methods are safe to call from another goroutine.
type TUI struct {
	program *tea.Program
	model   *Model
}

// NewTUI creates a TUI for label. onQuit is invoked when the user quits
// before the run is over.
func NewTUI(label string, onQuit func(), opts ...tea.ProgramOption) *TUI {
	model := NewModel(label, onQuit)
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}

	return &TUI{
		program: tea.NewProgram(model, opts...),
		model:   model,
	}
}

// Run blocks until the program exits
func (t *TUI) Run() error {
	_, err := t.program.Run()
	return err
}

// Stop quits the program
func (t *TUI) Stop() {
	t.program.Quit()
}

func (t *TUI) send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

func (t *TUI) Start(total int, destination, folder string) {
	t.send(StartMsg{Total: total, Destination: destination, Folder: folder})
}

func (t *TUI) PhotoStarted(fileName string, likes int) {
	t.send(PhotoStartMsg{FileName: fileName, Likes: likes})
}

func (t *TUI) PhotoUploaded(fileName string, size int64) {
	t.send(PhotoDoneMsg{FileName: fileName, Size: size})
}

func (t *TUI) PhotoFailed(fileName string, err error) {
	t.send(PhotoErrorMsg{FileName: fileName, Err: err})
}

func (t *TUI) Finish(uploaded int, totalBytes int64, err error) {
	t.send(FinishMsg{Uploaded: uploaded, Bytes: totalBytes, Err: err})
}

// Log adds a line to the log panel
func (t *TUI) Log(level, message string) {
	t.send(LogMsg{Level: level, Message: message})
}
