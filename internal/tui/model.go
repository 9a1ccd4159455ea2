// Package tui is the terminal front end of the import wizard. It drives the
// importer state machine with bubbletea and submits through any
// importer.Submitter, normally the HTTP client.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/importer"
	tea "github.com/charmbracelet/bubbletea"
)

// SubmitTimeout bounds one submission.
var SubmitTimeout = 2 * time.Minute

// loadedMsg carries the state produced by loading a file.
type loadedMsg struct{ state importer.State }

// submittedMsg carries the state produced by a submission.
type submittedMsg struct{ state importer.State }

// Opener opens the file at path for reading.
type Opener func(path string) (io.ReadCloser, error)

// Model is the bubbletea model of the wizard.
type Model struct {
	state     importer.State
	submitter importer.Submitter
	open      Opener
	maxSize   int64

	path   string // FileSelect input
	cursor int    // selected header in Mapping
	busy   bool
}

// New creates a wizard that submits through sub and reads at most maxSize
// bytes per file.
func New(sub importer.Submitter, maxSize int64) Model {
	return Model{
		state:     importer.Start(),
		submitter: sub,
		open:      func(path string) (io.ReadCloser, error) { return os.Open(path) },
		maxSize:   maxSize,
	}
}

// WithOpener replaces the file opener.
func (m Model) WithOpener(open Opener) Model {
	m.open = open
	return m
}

// State returns the current wizard state.
func (m Model) State() importer.State {
	return m.state
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.busy = false
		m.state = msg.state
		m.cursor = 0
		return m, nil

	case submittedMsg:
		m.busy = false
		m.state = msg.state
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch st := m.state.(type) {
		case importer.FileSelect:
			return m.updateFileSelect(st, msg)
		case importer.Mapping:
			return m.updateMapping(st, msg)
		case importer.Done:
			return m.updateDone(msg)
		}
	}
	return m, nil
}

func (m Model) updateFileSelect(_ importer.FileSelect, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		path := strings.TrimSpace(m.path)
		if path == "" {
			return m, nil
		}
		m.busy = true
		return m, m.load(path)
	case tea.KeyBackspace:
		if r := []rune(m.path); len(r) > 0 {
			m.path = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.path += string(msg.Runes)
	}
	return m, nil
}

func (m Model) updateMapping(st importer.Mapping, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = st.Back()
		return m, nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(st.Headers)-1 {
			m.cursor++
		}
	case "left", "h":
		m.state = cycleField(st, m.cursor, -1)
	case "right", "l":
		m.state = cycleField(st, m.cursor, 1)
	case "enter":
		m.busy = true
		return m, m.submit(st)
	}
	return m, nil
}

func (m Model) updateDone(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.state = importer.Start()
		m.path = ""
		return m, nil
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

// fieldChoices is the cycle order of targets; "" leaves a column unmapped.
var fieldChoices = append([]core.Field{""}, core.ImportableFields...)

// cycleField moves the target of the header at cursor by step through
// fieldChoices.
func cycleField(st importer.Mapping, cursor, step int) importer.Mapping {
	if cursor < 0 || cursor >= len(st.Headers) {
		return st
	}
	header := st.Headers[cursor]
	idx := 0
	for i, f := range fieldChoices {
		if f == st.FieldFor(header) {
			idx = i
			break
		}
	}
	idx = (idx + step + len(fieldChoices)) % len(fieldChoices)

	next, err := st.Map(header, fieldChoices[idx])
	if err != nil {
		st.Err = err
		return st
	}
	return next
}

func (m Model) load(path string) tea.Cmd {
	open, maxSize := m.open, m.maxSize
	return func() tea.Msg {
		f, err := open(path)
		if err != nil {
			return loadedMsg{state: importer.FileSelect{Err: err}}
		}
		defer f.Close()

		var r io.Reader = f
		if maxSize > 0 {
			r = importer.NewLimitedReader(f, maxSize)
		}
		return loadedMsg{state: importer.FileSelect{}.Load(filepath.Base(path), r)}
	}
}

func (m Model) submit(st importer.Mapping) tea.Cmd {
	sub := m.submitter
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), SubmitTimeout)
		defer cancel()
		return submittedMsg{state: st.Submit(ctx, sub)}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString("Product import\n\n")

	switch st := m.state.(type) {
	case importer.FileSelect:
		b.WriteString("File (.csv, .xlsx or .json): ")
		b.WriteString(m.path)
		b.WriteString("_\n")
		if st.Err != nil {
			fmt.Fprintf(&b, "\nError: %s\n", core.FormatUserError(st.Err))
		}
		if m.busy {
			b.WriteString("\nLoading...\n")
		}
		b.WriteString("\nenter: load  esc: quit\n")

	case importer.Mapping:
		fmt.Fprintf(&b, "%s: %d rows\n\n", st.FileName, len(st.Rows))
		for i, h := range st.Headers {
			pointer := "  "
			if i == m.cursor {
				pointer = "> "
			}
			target := string(st.FieldFor(h))
			if target == "" {
				target = "(skip)"
			}
			fmt.Fprintf(&b, "%s%-24s -> %s\n", pointer, h, target)
		}
		if st.Err != nil {
			fmt.Fprintf(&b, "\nError: %s\n", st.Err)
		}
		if m.busy {
			b.WriteString("\nSubmitting...\n")
		}
		b.WriteString("\nup/down: column  left/right: field  enter: import  esc: back\n")

	case importer.Done:
		r := st.Result
		fmt.Fprintf(&b, "%s\n\n", r.Message)
		fmt.Fprintf(&b, "Inserted: %d\nSkipped:  %d\nRejected: %d\n", r.Inserted, r.Skipped, len(r.Rejected))
		if len(r.SkippedSKUs) > 0 {
			fmt.Fprintf(&b, "\nSkipped SKUs: %s\n", strings.Join(r.SkippedSKUs, ", "))
		}
		for _, rej := range r.Rejected {
			fmt.Fprintf(&b, "  row %d %s: %s\n", rej.Index+1, rej.SKU, strings.Join(rej.Errors, "; "))
		}
		b.WriteString("\nenter: import another file  q: quit\n")
	}
	return b.String()
}
