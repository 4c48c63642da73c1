package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/handiism/bandcamp-mosaic/internal/config"
	"github.com/handiism/bandcamp-mosaic/internal/download"
	"github.com/handiism/bandcamp-mosaic/internal/mosaic"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_OptionToggles(t *testing.T) {
	m := NewModel(config.DefaultSettings())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})

	if !m.retryMisses || !m.skipMosaic || !m.verbose {
		t.Errorf("options = (%v, %v, %v), want all on", m.retryMisses, m.skipMosaic, m.verbose)
	}
	if m.textInput.Value() != "" {
		t.Errorf("toggles leaked into input: %q", m.textInput.Value())
	}
}

func TestModel_LoadError(t *testing.T) {
	m := NewModel(nil)
	m.state = StateLoading

	m = update(t, m, LoadDoneMsg{Err: errors.New("no such file")})

	if m.state != StateError {
		t.Fatalf("state = %v, want StateError", m.state)
	}
	if !strings.Contains(m.View(), "no such file") {
		t.Error("error view should show the error")
	}
}

func TestModel_VerboseFiltering(t *testing.T) {
	m := NewModel(nil)

	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "cached", Level: download.LevelVerbose}})
	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "found", Level: download.LevelSuccess}})

	if len(m.logs) != 1 || m.logs[0].Message != "found" {
		t.Errorf("logs = %+v, want only the success entry", m.logs)
	}
}

func TestModel_LogsAreCapped(t *testing.T) {
	m := NewModel(nil)
	for i := 0; i < maxLogs+5; i++ {
		m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "x", Level: download.LevelInfo}})
	}
	if len(m.logs) != maxLogs {
		t.Errorf("len(logs) = %d, want %d", len(m.logs), maxLogs)
	}
}

func TestModel_AcquireDoneSkippingMosaic(t *testing.T) {
	m := NewModel(nil)
	m.skipMosaic = true
	m.state = StateAcquiring

	m = update(t, m, AcquireDoneMsg{Summary: download.Summary{Total: 3, Resolved: 2, Missed: 1}})

	if m.state != StateComplete {
		t.Fatalf("state = %v, want StateComplete", m.state)
	}
	view := m.View()
	if !strings.Contains(view, "Found:   2") || strings.Contains(view, "No images found.") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestModel_MosaicDone(t *testing.T) {
	tests := []struct {
		name   string
		result mosaic.Result
		want   string
	}{
		{"empty cache", mosaic.Result{}, "No images found."},
		{"built", mosaic.Result{Tiles: 4, OutputPath: "out.jpg"}, "Mosaic built with 4 albums"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(nil)
			m.state = StateComposing

			m = update(t, m, MosaicDoneMsg{Result: tt.result})

			if m.state != StateComplete {
				t.Fatalf("state = %v, want StateComplete", m.state)
			}
			if !strings.Contains(m.View(), tt.want) {
				t.Errorf("view does not contain %q", tt.want)
			}
		})
	}
}

func TestModel_StaleMessagesIgnored(t *testing.T) {
	m := NewModel(nil)

	m = update(t, m, AcquireDoneMsg{Err: errors.New("late")})
	m = update(t, m, MosaicDoneMsg{Err: errors.New("late")})

	if m.state != StateInput {
		t.Errorf("state = %v, want StateInput", m.state)
	}
}
