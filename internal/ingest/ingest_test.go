package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/askmydata/backend/internal/models"
)

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"data.csv", FormatCSV, false},
		{"DATA.CSV", FormatCSV, false},
		{"people.json", FormatJSON, false},
		{"report.xlsx", FormatExcel, false},
		{"legacy.xls", FormatExcel, false},
		{"notes.txt", "", true},
		{"noextension", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatFromFilename(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				var ingestErr *Error
				require.True(t, errors.As(err, &ingestErr))
				assert.Equal(t, KindUnsupportedFileType, ingestErr.Kind)
				assert.True(t, errors.Is(err, ErrUnsupportedFileType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFromFilenameAllowed(t *testing.T) {
	allowed := []string{".csv", "XLSX"}

	got, err := FormatFromFilenameAllowed("data.CSV", allowed)
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, got)

	got, err = FormatFromFilenameAllowed("book.xlsx", allowed)
	require.NoError(t, err)
	assert.Equal(t, FormatExcel, got)

	for _, name := range []string{"people.json", "legacy.xls", "noextension"} {
		_, err = FormatFromFilenameAllowed(name, allowed)
		var ingestErr *Error
		require.True(t, errors.As(err, &ingestErr), name)
		assert.Equal(t, KindUnsupportedFileType, ingestErr.Kind)
	}

	got, err = FormatFromFilenameAllowed("people.json", nil)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, got)
}

func TestLoadCSV(t *testing.T) {
	table, warnings, err := Load(FormatCSV, []byte("a,b\n1,2\n3,4\n"))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, table, 2)
	assert.Equal(t, []string{"a", "b"}, table.Columns())

	v, ok := table[0].Get("a")
	require.True(t, ok)
	assert.Equal(t, models.Text("1"), v)
	v, _ = table[1].Get("b")
	assert.Equal(t, models.Text("4"), v)
}

func TestLoadCSV_Reconciliation(t *testing.T) {
	data := []byte("name,age,city\nalice,30\nbob,41,paris,extra\ncarol,25,rome\n")

	table, warnings, err := Load(FormatCSV, data)
	require.NoError(t, err)
	require.Len(t, table, 3)
	require.Len(t, warnings, 2)

	city, _ := table[0].Get("city")
	assert.True(t, city.IsNull(), "short row should be padded with null")
	assert.Equal(t, 2, warnings[0].Line)
	assert.Contains(t, warnings[0].Reason, "set to null")

	assert.Equal(t, 3, table[1].Len(), "extra field should be dropped")
	assert.Equal(t, 3, warnings[1].Line)
	assert.Contains(t, warnings[1].Reason, "dropped")
}

func TestLoadCSV_EdgeCases(t *testing.T) {
	t.Run("header only", func(t *testing.T) {
		table, _, err := Load(FormatCSV, []byte("a,b\n"))
		require.NoError(t, err)
		assert.True(t, table.IsEmpty())
	})

	t.Run("empty input", func(t *testing.T) {
		table, _, err := Load(FormatCSV, []byte(""))
		require.NoError(t, err)
		assert.True(t, table.IsEmpty())
	})

	t.Run("byte order mark is stripped", func(t *testing.T) {
		table, _, err := Load(FormatCSV, []byte("\xef\xbb\xbfa,b\n1,2\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, table.Columns())
	})

	t.Run("quoted fields", func(t *testing.T) {
		table, _, err := Load(FormatCSV, []byte("name,note\n\"Smith, J\",\"said \"\"hi\"\"\"\n"))
		require.NoError(t, err)
		require.Len(t, table, 1)
		v, _ := table[0].Get("name")
		assert.Equal(t, models.Text("Smith, J"), v)
		v, _ = table[0].Get("note")
		assert.Equal(t, models.Text(`said "hi"`), v)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		table, warnings, err := Load(FormatCSV, []byte("a,b\n\xff\xfe,1\n"))
		require.Error(t, err)
		assert.True(t, table.IsEmpty())
		assert.Nil(t, warnings)

		var ingestErr *Error
		require.True(t, errors.As(err, &ingestErr))
		assert.Equal(t, KindParseFailure, ingestErr.Kind)
		assert.Contains(t, err.Error(), "Error loading CSV")
	})
}

func TestLoadJSON(t *testing.T) {
	t.Run("root object yields one record", func(t *testing.T) {
		table, _, err := Load(FormatJSON, []byte(`{"z": 1, "a": "x", "m": true, "n": null}`))
		require.NoError(t, err)
		require.Len(t, table, 1)
		assert.Equal(t, []string{"z", "a", "m", "n"}, table.Columns())

		z, _ := table[0].Get("z")
		assert.Equal(t, models.Number(1), z)
		m, _ := table[0].Get("m")
		assert.Equal(t, models.Bool(true), m)
		n, _ := table[0].Get("n")
		assert.True(t, n.IsNull())
	})

	t.Run("root array of objects", func(t *testing.T) {
		table, _, err := Load(FormatJSON, []byte(`[{"a":1},{"a":2},{"a":3}]`))
		require.NoError(t, err)
		assert.Len(t, table, 3)
		assert.Equal(t, []string{"a"}, table.Columns())
	})

	t.Run("empty array", func(t *testing.T) {
		table, _, err := Load(FormatJSON, []byte(`[]`))
		require.NoError(t, err)
		assert.True(t, table.IsEmpty())
	})

	t.Run("nested values are kept as compact json", func(t *testing.T) {
		table, _, err := Load(FormatJSON, []byte(`{"tags": [ "a", "b" ], "meta": { "k" : 1 }}`))
		require.NoError(t, err)
		tags, _ := table[0].Get("tags")
		assert.Equal(t, models.Text(`["a","b"]`), tags)
		meta, _ := table[0].Get("meta")
		assert.Equal(t, models.Text(`{"k":1}`), meta)
	})

	t.Run("numbers beyond float64 stay as text", func(t *testing.T) {
		table, _, err := Load(FormatJSON, []byte(`[{"big": 1e400, "neg": -2E+999, "ok": 12.5}]`))
		require.NoError(t, err)
		big, _ := table[0].Get("big")
		assert.Equal(t, models.Text("1e400"), big)
		neg, _ := table[0].Get("neg")
		assert.Equal(t, models.Text("-2E+999"), neg)
		ok, _ := table[0].Get("ok")
		assert.Equal(t, models.Number(12.5), ok)
	})

	failures := []struct {
		name string
		data string
	}{
		{"non-object element", `[{"a":1}, 2]`},
		{"scalar root", `42`},
		{"string root", `"hello"`},
		{"malformed", `{"a": }`},
		{"trailing data", `{"a":1} {"b":2}`},
		{"empty document", ``},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			table, _, err := Load(FormatJSON, []byte(tt.data))
			require.Error(t, err)
			assert.True(t, table.IsEmpty())
			assert.Contains(t, err.Error(), "Error loading JSON")
		})
	}
}

func TestLoadExcel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"product", "units", "price"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"widget", 3, 2.5}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"gadget", 10}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, warnings, err := LoadFile("inventory.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, table, 2)
	assert.Equal(t, []string{"product", "units", "price"}, table.Columns())

	product, _ := table[0].Get("product")
	assert.Equal(t, models.Text("widget"), product)
	units, _ := table[0].Get("units")
	assert.Equal(t, models.Number(3), units)
	price, _ := table[0].Get("price")
	assert.Equal(t, models.Number(2.5), price)

	missing, _ := table[1].Get("price")
	assert.True(t, missing.IsNull())
}

func TestLoadExcel_NotAWorkbook(t *testing.T) {
	table, _, err := Load(FormatExcel, []byte("a,b\n1,2\n"))
	require.Error(t, err)
	assert.True(t, table.IsEmpty())
	assert.Contains(t, err.Error(), "Error loading Excel")
}

func TestLoadExcel_StringCellsStayText(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"zip", "eu_price", "flag", "a", "a", "count"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"01234", "1,5", "true", "first", "second", 7}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"98765", "2,0", "false", "third", "fourth", true}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, _, err := LoadFile("prices.xlsx", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, []string{"zip", "eu_price", "flag", "a", "a.1", "count"}, table.Columns())
	assert.Equal(t, `{"zip": "01234", "eu_price": "1,5", "flag": "true", "a": "first", "a.1": "second", "count": 7}`, table[0].String())

	boolean, _ := table[1].Get("count")
	assert.Equal(t, models.Bool(true), boolean)
}

func TestDedupeColumns(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"a", "b"}, []string{"a", "b"}},
		{[]string{"a", "a", "a"}, []string{"a", "a.1", "a.2"}},
		{[]string{"a", "a", "a.1"}, []string{"a", "a.1", "a.1.1"}},
		{[]string{"x", "Unnamed: 1", "x"}, []string{"x", "Unnamed: 1", "x.1"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, dedupeColumns(tt.in))
	}
}

func TestInferCell(t *testing.T) {
	tests := []struct {
		name string
		in   cell
		want models.Value
	}{
		{"empty", cell{}, models.Null()},
		{"integer", cell{raw: "42", display: "42", kind: cellNumber}, models.Number(42)},
		{"formatted number keeps raw", cell{raw: "1234.5", display: "1,234.50", kind: cellNumber}, models.Number(1234.5)},
		{"date keeps display", cell{raw: "45292", display: "01-01-24", kind: cellNumber}, models.Text("01-01-24")},
		{"percentage keeps display", cell{raw: "0.5", display: "50%", kind: cellNumber}, models.Text("50%")},
		{"boolean", cell{raw: "1", display: "TRUE", kind: cellBool}, models.Bool(true)},
		{"text", cell{raw: "hello", display: "hello", kind: cellText}, models.Text("hello")},
		{"numeric-looking text", cell{raw: "01234", display: "01234", kind: cellText}, models.Text("01234")},
		{"comma decimal text", cell{raw: "1,5", display: "1,5", kind: cellText}, models.Text("1,5")},
		{"boolean-looking text", cell{raw: "true", display: "true", kind: cellText}, models.Text("true")},
		{"error cell", cell{raw: "#DIV/0!", display: "#DIV/0!", kind: cellError}, models.Text("#DIV/0!")},
		{"untyped number", cell{raw: "42.5", display: "42.5"}, models.Number(42.5)},
		{"untyped leading zero", cell{raw: "007", display: "007"}, models.Text("007")},
		{"untyped zero fraction", cell{raw: "0.25", display: "0.25"}, models.Number(0.25)},
		{"untyped comma", cell{raw: "1,5", display: "1,5"}, models.Text("1,5")},
		{"untyped boolean", cell{raw: "TRUE", display: "TRUE"}, models.Bool(true)},
		{"nan stays text", cell{raw: "NaN", display: "NaN"}, models.Text("NaN")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inferCell(tt.in))
		})
	}
}

type panickingLoader struct{}

func (panickingLoader) Format() Format { return FormatCSV }

func (panickingLoader) Load([]byte) (models.Table, []models.ParseWarning, error) {
	panic("boom")
}

func TestRegistry_RecoversFromPanic(t *testing.T) {
	r := NewRegistry()
	r.Register(panickingLoader{})

	table, _, err := r.Load(FormatCSV, []byte("a\n1\n"))
	require.Error(t, err)
	assert.True(t, table.IsEmpty())
	assert.Contains(t, err.Error(), "panicked")
}
