package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "table", input: "table", want: FormatTable},
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "json", input: "json", want: FormatJSON},
		{name: "JSON uppercase", input: "JSON", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "whitespace trimmed", input: "  table  ", want: FormatTable},
		{name: "invalid format", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "table", FormatTable.String())
	assert.Equal(t, "json", FormatJSON.String())
	assert.Equal(t, "yaml", FormatYAML.String())
}

func TestPrinterPrint(t *testing.T) {
	t.Run("TableFormat", func(t *testing.T) {
		var buf bytes.Buffer
		printer := NewPrinter(&buf, FormatTable, false)

		table := NewTableData("Bucket", "Size")
		table.AddRow("backups", "1.25 GB")

		require.NoError(t, printer.Print(table))
		assert.Contains(t, buf.String(), "BUCKET")
		assert.Contains(t, buf.String(), "backups")
	})

	t.Run("JSONFormat", func(t *testing.T) {
		var buf bytes.Buffer
		printer := NewPrinter(&buf, FormatJSON, false)

		require.NoError(t, printer.Print(map[string]any{"bucket": "backups"}))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "backups", decoded["bucket"])
	})

	t.Run("YAMLFormat", func(t *testing.T) {
		var buf bytes.Buffer
		printer := NewPrinter(&buf, FormatYAML, false)

		require.NoError(t, printer.Print(map[string]string{"bucket": "backups"}))
		assert.Contains(t, buf.String(), "bucket: backups")
	})

	t.Run("TableFallsBackToJSON", func(t *testing.T) {
		var buf bytes.Buffer
		printer := NewPrinter(&buf, FormatTable, false)

		// map does not implement TableRenderer
		require.NoError(t, printer.Print(map[string]string{"bucket": "backups"}))
		assert.Contains(t, buf.String(), `"bucket": "backups"`)
	})
}

func TestPrinterMessages(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, FormatTable, false)

	printer.Println("plain message")
	printer.Printf("formatted %d\n", 42)
	printer.Success("success message")
	printer.Warning("warning message")
	printer.Error("error message")

	output := buf.String()
	assert.Contains(t, output, "plain message")
	assert.Contains(t, output, "formatted 42")
	assert.Contains(t, output, "success message")
	assert.Contains(t, output, "warning message")
	assert.Contains(t, output, "error message")
	// No ANSI codes without color
	assert.NotContains(t, output, "\033[")
}

func TestPrinterBold(t *testing.T) {
	colored := NewPrinter(&bytes.Buffer{}, FormatTable, true)
	plain := NewPrinter(&bytes.Buffer{}, FormatTable, false)

	assert.Equal(t, "\033[1mtotal\033[0m", colored.Bold("total"))
	assert.Equal(t, "total", plain.Bold("total"))
}

func TestDefaultPrinter(t *testing.T) {
	printer := DefaultPrinter()
	assert.NotNil(t, printer)
	assert.Equal(t, FormatTable, printer.Format())
	assert.True(t, printer.ColorEnabled())
}
