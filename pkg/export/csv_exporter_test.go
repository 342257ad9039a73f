package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRender(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"Class", "Attendance Rate"},
		Rows: []map[string]string{
			{"Class": "7A", "Attendance Rate": "80%"},
			{"Class": "7B", "Attendance Rate": "95%"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Class,Attendance Rate", strings.TrimSpace(lines[0]))
	assert.Equal(t, "7A,80%", strings.TrimSpace(lines[1]))
}

func TestCSVRenderQuotesCommas(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"Class"},
		Rows:    []map[string]string{{"Class": `Grade 7, Section A`}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"Grade 7, Section A"`)
}

func TestCSVRenderMissingCellStaysEmpty(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"Class", "Present"},
		Rows:    []map[string]string{{"Class": "7A"}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), "7A,")
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	exporter := NewPDFExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"Class", "Rate"},
		Rows:    []map[string]string{{"Class": "7A", "Rate": "80%"}},
	}, "Attendance Report")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}
