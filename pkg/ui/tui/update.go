package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"vkbackup/pkg/ui"
)

// StartMsg announces the selected photos and the destination
type StartMsg struct {
	Total       int
	Destination string
	Folder      string
}

// PhotoStartMsg is sent when a photo begins downloading
type PhotoStartMsg struct {
	FileName string
	Likes    int
}

// PhotoDoneMsg is sent when a photo is stored at the destination
type PhotoDoneMsg struct {
	FileName string
	Size     int64
}

// PhotoErrorMsg is sent when a photo fails and the run stops
type PhotoErrorMsg struct {
	FileName string
	Err      error
}

// FinishMsg is sent once the run is over
type FinishMsg struct {
	Uploaded int
	Bytes    int64
	Err      error
}

// LogMsg adds a line to the log panel
type LogMsg struct {
	Level   string
	Message string
}

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = clamp(msg.Width-10, 10, 60)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StartMsg:
		m.start(msg.Total, msg.Destination, msg.Folder)
		m.addLog("INFO", fmt.Sprintf("%d photos selected for %s:%s", msg.Total, msg.Destination, msg.Folder))
		return m, nil

	case PhotoStartMsg:
		m.photoStarted(msg.FileName, msg.Likes)
		return m, nil

	case PhotoDoneMsg:
		m.photoUploaded(msg.FileName, msg.Size)
		m.addLog("SUCCESS", fmt.Sprintf("%s (%s)", msg.FileName, ui.FormatBytes(msg.Size)))
		return m, nil

	case PhotoErrorMsg:
		m.photoFailed(msg.FileName, msg.Err)
		m.addLog("ERROR", fmt.Sprintf("%s: %v", msg.FileName, msg.Err))
		return m, nil

	case FinishMsg:
		m.finished = true
		m.err = msg.Err
		if msg.Err != nil {
			m.addLog("ERROR", "Run stopped")
		} else {
			m.addLog("SUCCESS", fmt.Sprintf("Uploaded %d photos", msg.Uploaded))
		}
		return m, nil

	case LogMsg:
		m.addLog(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		if !m.finished && m.onQuit != nil {
			m.onQuit()
		}
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.logs = nil
		return m, nil
	}

	return m, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
