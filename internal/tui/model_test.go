package tui

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/importer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "Nombre,Precio\nWidget,9.99\n"

func fakeOpener(files map[string]string) Opener {
	return func(path string) (io.ReadCloser, error) {
		content, ok := files[path]
		if !ok {
			return nil, os.ErrNotExist
		}
		return io.NopCloser(strings.NewReader(content)), nil
	}
}

type recorder struct {
	got []importer.MappedRecord
	err error
}

func (r *recorder) Submit(_ context.Context, records []importer.MappedRecord) (core.ImportResult, error) {
	r.got = records
	if r.err != nil {
		return core.ImportResult{}, r.err
	}
	return core.ImportResult{
		Message:  "Imported 1 of 1 products",
		Received: len(records),
		Inserted: len(records),
	}, nil
}

// send feeds msg to m and runs any resulting command once.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		if out := cmd(); out != nil {
			if _, quit := out.(tea.QuitMsg); !quit {
				next, _ = m.Update(out)
				m = next.(Model)
			}
		}
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func TestWizardHappyPath(t *testing.T) {
	sub := &recorder{}
	m := New(sub, 1<<20).WithOpener(fakeOpener(map[string]string{"/tmp/products.csv": sampleCSV}))

	m = typeText(t, m, "/tmp/products.csv")
	m = send(t, m, key(tea.KeyEnter))

	mapping, ok := m.State().(importer.Mapping)
	require.True(t, ok, "want Mapping, got %T", m.State())
	assert.Equal(t, "products.csv", mapping.FileName)
	assert.Equal(t, []string{"Nombre", "Precio"}, mapping.Headers)

	// Precio -> retailPrice (third choice after skip), then Nombre -> name.
	// Mapping Precio first keeps it from passing through name.
	m = send(t, m, key(tea.KeyDown))
	for i := 0; i < 3; i++ {
		m = send(t, m, key(tea.KeyRight))
	}
	m = send(t, m, key(tea.KeyUp))
	m = send(t, m, key(tea.KeyRight))

	mapping = m.State().(importer.Mapping)
	assert.Equal(t, core.FieldName, mapping.FieldFor("Nombre"))
	assert.Equal(t, core.FieldRetailPrice, mapping.FieldFor("Precio"))
	assert.Contains(t, m.View(), "> Nombre")

	m = send(t, m, key(tea.KeyEnter))
	done, ok := m.State().(importer.Done)
	require.True(t, ok, "want Done, got %T", m.State())
	assert.Equal(t, 1, done.Result.Inserted)
	assert.Equal(t, []importer.MappedRecord{{core.FieldName: "Widget", core.FieldRetailPrice: "9.99"}}, sub.got)
	assert.Contains(t, m.View(), "Inserted: 1")

	m = send(t, m, key(tea.KeyEnter))
	assert.IsType(t, importer.FileSelect{}, m.State())
}

func TestWizardLoadError(t *testing.T) {
	m := New(&recorder{}, 0).WithOpener(fakeOpener(map[string]string{"notes.txt": "hello"}))

	m = typeText(t, m, "notes.txt")
	m = send(t, m, key(tea.KeyEnter))

	st, ok := m.State().(importer.FileSelect)
	require.True(t, ok)
	assert.ErrorIs(t, st.Err, importer.ErrUnsupportedFile)
	assert.Contains(t, m.View(), "FILE006")

	m = typeText(t, New(&recorder{}, 0).WithOpener(fakeOpener(nil)), "missing.csv")
	m = send(t, m, key(tea.KeyEnter))
	st = m.State().(importer.FileSelect)
	assert.ErrorIs(t, st.Err, os.ErrNotExist)
}

func TestWizardSubmitErrorStaysInMapping(t *testing.T) {
	sub := &recorder{err: errors.New("Invalid data (Code: IMP006). Provide a non-empty list")}
	m := New(sub, 0).WithOpener(fakeOpener(map[string]string{"p.csv": sampleCSV}))

	m = typeText(t, m, "p.csv")
	m = send(t, m, key(tea.KeyEnter))
	m = send(t, m, key(tea.KeyEnter))

	st, ok := m.State().(importer.Mapping)
	require.True(t, ok)
	require.Error(t, st.Err)
	assert.Contains(t, m.View(), "IMP006")
}

func TestWizardBackAndEditing(t *testing.T) {
	m := New(&recorder{}, 0).WithOpener(fakeOpener(map[string]string{"p.csv": sampleCSV}))

	m = typeText(t, m, "p.csvx")
	m = send(t, m, key(tea.KeyBackspace))
	m = send(t, m, key(tea.KeyEnter))
	require.IsType(t, importer.Mapping{}, m.State())

	m = send(t, m, key(tea.KeyEsc))
	st, ok := m.State().(importer.FileSelect)
	require.True(t, ok)
	assert.NoError(t, st.Err)
}

func TestCycleFieldWrapsAndUnmapsDuplicates(t *testing.T) {
	st := importer.NewMapping("p.csv", importer.Table{Headers: []string{"a", "b"}})

	st = cycleField(st, 0, -1)
	assert.Equal(t, core.FieldBrandID, st.FieldFor("a"))

	st = cycleField(st, 1, -1)
	assert.Equal(t, core.FieldBrandID, st.FieldFor("b"))
	assert.Equal(t, core.Field(""), st.FieldFor("a"))

	assert.Equal(t, st, cycleField(st, 5, 1))
}

func TestCtrlCQuits(t *testing.T) {
	_, cmd := New(&recorder{}, 0).Update(key(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
