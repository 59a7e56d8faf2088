package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-structurer/internal/docgen"
	"alfredoptarigan/resume-structurer/internal/models"
	"alfredoptarigan/resume-structurer/internal/structurer"
)

const payload = `{
  "contact": {"name": "Jane Doe", "email": "jane@example.com"},
  "work_experience": [{"company": "Acme", "role": "Engineer", "dates": "2020 - Present"}],
  "skills": "Go, SQL"
}`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestStructureCommand(t *testing.T) {
	out, err := run(t, payload, "structure", "-")
	require.NoError(t, err)

	var resp models.StructureResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Record)
	assert.Equal(t, "Jane Doe", resp.Record.Personal.Name)
	assert.Equal(t, []string{"Go", "SQL"}, resp.Record.Skills)
	require.Len(t, resp.Record.Experience, 1)
	assert.NotNil(t, resp.Warnings)
}

func TestStructureCommandInvalid(t *testing.T) {
	_, err := run(t, `{"contact": {"name": "No Email"}}`, "record", "-")

	var invalid *structurer.InvalidError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Fields, "personal.email")
}

func TestStructureCommandMissingFile(t *testing.T) {
	_, err := run(t, "", "structure", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()

	recordJSON, err := run(t, payload, "record", "-")
	require.NoError(t, err)

	var resp models.StructureResponse
	require.NoError(t, json.Unmarshal([]byte(recordJSON), &resp))
	data, err := json.Marshal(resp.Record)
	require.NoError(t, err)

	recordPath := filepath.Join(dir, "record.json")
	require.NoError(t, os.WriteFile(recordPath, data, 0644))

	t.Run("stdout", func(t *testing.T) {
		out, err := run(t, "", "render", "--format", "markdown", recordPath)
		require.NoError(t, err)
		assert.Contains(t, out, "Jane Doe")
	})

	t.Run("file", func(t *testing.T) {
		outPath := filepath.Join(dir, "resume.pdf")
		_, err := run(t, "", "render", "-f", "pdf", "-o", outPath, recordPath)
		require.NoError(t, err)

		written, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(written, []byte("%PDF")))
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := run(t, "", "render", "--format", "odt", recordPath)
		assert.ErrorIs(t, err, docgen.ErrUnsupportedFormat)
	})
}

func TestRenderCommandRejectsInvalidRecord(t *testing.T) {
	_, err := run(t, `{"personal": {"name": ""}}`, "render", "--format", "html", "-")
	assert.ErrorIs(t, err, structurer.ErrStructuring)
}

func TestFormatsCommand(t *testing.T) {
	out, err := run(t, "", "formats")
	require.NoError(t, err)

	for _, f := range []docgen.Format{docgen.FormatPDF, docgen.FormatDOCX, docgen.FormatMarkdown} {
		assert.Contains(t, out, string(f))
	}
}
