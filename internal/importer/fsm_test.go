package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadMapping(t *testing.T, name, content string) Mapping {
	t.Helper()
	state := FileSelect{}.Load(name, strings.NewReader(content))
	m, ok := state.(Mapping)
	require.True(t, ok, "expected Mapping, got %T", state)
	return m
}

func TestLoadParseErrorStaysInFileSelect(t *testing.T) {
	state := FileSelect{}.Load("notes.txt", strings.NewReader("hello"))

	fs, ok := state.(FileSelect)
	require.True(t, ok, "expected FileSelect, got %T", state)
	assert.ErrorIs(t, fs.Err, ErrUnsupportedFile)
}

func TestLoadSuggestsMapping(t *testing.T) {
	m := loadMapping(t, "p.csv", "Name,SKU,Retail Price,wholesale_price,Color\nWidget,W1,9.99,5,red\n")

	assert.Equal(t, "p.csv", m.FileName)
	assert.Equal(t, ColumnMapping{
		"Name":            core.FieldName,
		"SKU":             core.FieldSKU,
		"Retail Price":    core.FieldRetailPrice,
		"wholesale_price": core.FieldWholesalePrice,
	}, m.Columns)
	assert.Equal(t, core.Field(""), m.FieldFor("Color"))
}

func TestSuggestMappingUsesEachFieldOnce(t *testing.T) {
	got := SuggestMapping([]string{"sku", "SKU", "brand id"})
	assert.Equal(t, ColumnMapping{"sku": core.FieldSKU, "brand id": core.FieldBrandID}, got)
}

func TestMapAndTransform(t *testing.T) {
	m := loadMapping(t, "es.csv", "Nombre,Precio\nWidget,9.99\n")
	require.Empty(t, m.Columns)

	m, err := m.Map("Nombre", core.FieldName)
	require.NoError(t, err)
	m, err = m.Map("Precio", core.FieldRetailPrice)
	require.NoError(t, err)

	records := m.Transform()
	require.Len(t, records, 1)
	assert.Equal(t, MappedRecord{core.FieldName: "Widget", core.FieldRetailPrice: "9.99"}, records[0])
}

func TestSubmitWithoutSKURejectsEveryRow(t *testing.T) {
	store := dbtest.NewMemStore()
	svc := core.NewService(store, core.ServiceConfig{MaxConcurrentImports: 1})
	sub := SubmitterFunc(func(ctx context.Context, records []MappedRecord) (core.ImportResult, error) {
		return svc.ImportProducts(ctx, ToImportRecords(records))
	})

	m := loadMapping(t, "es.csv", "Nombre,Precio\nWidget,9.99\n")
	m, err := m.Map("Nombre", core.FieldName)
	require.NoError(t, err)
	m, err = m.Map("Precio", core.FieldRetailPrice)
	require.NoError(t, err)

	state := m.Submit(context.Background(), sub)
	back, ok := state.(Mapping)
	require.True(t, ok, "expected Mapping, got %T", state)
	assert.ErrorIs(t, back.Err, core.ErrNoValidRecords)
	assert.Equal(t, "VAL008", core.MapError(back.Err).Code)
	assert.Empty(t, store.Products)
}

func TestMapLastAssignmentWins(t *testing.T) {
	m := loadMapping(t, "p.csv", "a,b\n1,2\n")

	m, err := m.Map("a", core.FieldSKU)
	require.NoError(t, err)
	m2, err := m.Map("b", core.FieldSKU)
	require.NoError(t, err)

	assert.Equal(t, ColumnMapping{"b": core.FieldSKU}, m2.Columns)
	assert.Equal(t, ColumnMapping{"a": core.FieldSKU}, m.Columns, "earlier value is unchanged")
	assert.Equal(t, []MappedRecord{{core.FieldSKU: "2"}}, m2.Transform())
}

func TestMapUnmapAndErrors(t *testing.T) {
	m := loadMapping(t, "p.csv", "name,extra\nWidget,x\n")
	require.Equal(t, core.FieldName, m.FieldFor("name"))

	m, err := m.Map("name", "")
	require.NoError(t, err)
	assert.Empty(t, m.Columns)

	_, err = m.Map("missing", core.FieldName)
	assert.ErrorIs(t, err, ErrUnknownHeader)

	_, err = m.Map("extra", core.Field("color"))
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestTransformKeepsRowOrderAndDropsUnmapped(t *testing.T) {
	m := loadMapping(t, "p.csv", "sku,name,notes\nA,Alpha,n1\nB,Beta,n2\nC,Gamma,n3\n")

	records := m.Transform()
	require.Len(t, records, 3)
	for i, sku := range []string{"A", "B", "C"} {
		assert.Equal(t, sku, records[i][core.FieldSKU])
		assert.NotContains(t, records[i], core.Field("notes"))
	}
}

func TestBackDiscardsMapping(t *testing.T) {
	m := loadMapping(t, "p.csv", "name\nWidget\n")
	assert.Equal(t, FileSelect{}, m.Back())
}

func TestSubmit(t *testing.T) {
	m := loadMapping(t, "p.csv", "name,sku\nWidget,W1\n")

	t.Run("success moves to done", func(t *testing.T) {
		var got []MappedRecord
		sub := SubmitterFunc(func(_ context.Context, records []MappedRecord) (core.ImportResult, error) {
			got = records
			return core.ImportResult{Received: 1, Inserted: 1}, nil
		})

		state := m.Submit(context.Background(), sub)

		done, ok := state.(Done)
		require.True(t, ok, "expected Done, got %T", state)
		assert.Equal(t, 1, done.Result.Inserted)
		assert.Equal(t, "p.csv", done.FileName)
		assert.Equal(t, []MappedRecord{{core.FieldName: "Widget", core.FieldSKU: "W1"}}, got)
	})

	t.Run("failure stays in mapping", func(t *testing.T) {
		boom := errors.New("server unavailable")
		sub := SubmitterFunc(func(context.Context, []MappedRecord) (core.ImportResult, error) {
			return core.ImportResult{}, boom
		})

		state := m.Submit(context.Background(), sub)

		mapping, ok := state.(Mapping)
		require.True(t, ok, "expected Mapping, got %T", state)
		assert.ErrorIs(t, mapping.Err, boom)
		assert.Equal(t, m.Columns, mapping.Columns)
	})
}

func TestToImportRecords(t *testing.T) {
	got := ToImportRecords([]MappedRecord{{core.FieldName: "Widget", core.FieldStock: ""}})
	assert.Equal(t, []core.ImportRecord{{"name": "Widget", "stock": ""}}, got)
}
