package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeReport_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  Format
		wantErr string
	}{
		{"garbage json", "{not json", FormatJSON, "invalid JSON"},
		{"garbage yaml", "root: [unterminated", FormatYAML, "invalid YAML"},
		{"foreign document", `[1, 0, {"progname":"ncdu"}]`, FormatJSON, "invalid JSON"},
		{"missing progname", `{"root":"/x","entries":[]}`, FormatJSON, "not a heft report"},
		{
			"entry below threshold",
			`{"progname":"heft","root":"/x","threshold_bytes":100,"entries":[{"path":"/x/a","is_file":true,"size_bytes":5}]}`,
			FormatJSON, "below the threshold",
		},
		{
			"entry outside root",
			`{"progname":"heft","root":"/x","entries":[{"path":"/y/a","is_file":true,"size_bytes":5}]}`,
			FormatJSON, "outside root",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeReport([]byte(tt.data), tt.format)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDecodeReport_RederivesDisplay(t *testing.T) {
	data := `{"progname":"heft","root":"/x","entries":[{"path":"/x/a","is_file":true,"size_bytes":12595,"size_display":"wrong"}]}`
	report, err := DecodeReport([]byte(data), FormatJSON)
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, "12.3 KB", report.Entries[0].SizeDisplay)
	assert.NotNil(t, report.Errors)
}

func TestImportReport_MissingFile(t *testing.T) {
	_, err := ImportReport(filepath.Join(t.TempDir(), "none.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
