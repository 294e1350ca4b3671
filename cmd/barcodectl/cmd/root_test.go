package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anime-shed/barcode-studio-go/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand("test")
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommandHelp(t *testing.T) {
	out, _, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Available Commands:")
	assert.Contains(t, out, "generate")
	assert.Contains(t, out, "scan")
}

func TestGenerateThenScan(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "code.png")

	_, stderr, err := run(t, "generate", "--type", "CODE128", "--data", "CLI-128", "--out", file)
	require.NoError(t, err)
	assert.Contains(t, stderr, "wrote "+file)

	out, _, err := run(t, "scan", file, "--expected", "CLI-128")
	require.NoError(t, err)

	var resp models.ScanResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.True(t, resp.Success)
	assert.Equal(t, "CLI-128", resp.Data)
	require.NotNil(t, resp.Match)
	assert.True(t, resp.Match.Exact)
}

func TestGenerateIntoDirectory(t *testing.T) {
	dir := t.TempDir()
	_, stderr, err := run(t, "generate", "-t", "EAN13", "-d", "590123412345", "-f", "jpeg", "-o", dir)
	require.NoError(t, err)

	want := filepath.Join(dir, "ean13.jpg")
	assert.Contains(t, stderr, "wrote "+want)
	assert.FileExists(t, want)
}

func TestGenerateSVGToStdout(t *testing.T) {
	out, _, err := run(t, "generate", "-t", "qrcode", "-d", "svg please", "-f", "svg", "--dot-style", "rounded")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<svg"), out)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing flags", []string{"generate", "--type", "CODE128"}, `required flag(s) "data" not set`},
		{"bad format", []string{"generate", "-t", "CODE128", "-d", "x", "-f", "bmp"}, "Invalid format"},
		{"bad payload", []string{"generate", "-t", "EAN13", "-d", "letters"}, "Invalid data for EAN13"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestScanMissingFile(t *testing.T) {
	_, _, err := run(t, "scan", filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open ")
}

func TestTypesCommand(t *testing.T) {
	out, _, err := run(t, "types")
	require.NoError(t, err)

	var types models.TypesResponse
	require.NoError(t, json.Unmarshal([]byte(out), &types))
	assert.Len(t, types["1d"], 10)
	assert.Len(t, types["2d"], 4)
}

func TestPayloadBytes(t *testing.T) {
	b, err := payloadBytes("data:application/pdf;base64,JVBERi0=")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(b))

	b, err = payloadBytes("<svg/>")
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(b))

	_, err = payloadBytes("data:image/png,raw")
	assert.Error(t, err)
}
