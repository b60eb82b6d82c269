package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "city.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_PlainCatalog(t *testing.T) {
	path := writeCatalog(t, `[
  {"id": "101010100", "name": "北京"},
  {"id": "101220607", "name": "望江"}
]`)

	var out bytes.Buffer
	assert.Equal(t, 0, run(path, &out))
	assert.Contains(t, out.String(), "Records: 2")
	assert.Contains(t, out.String(), "Catalog OK.")
}

func TestRun_ValidatedCatalog(t *testing.T) {
	path := writeCatalog(t, `[
  {"id": "101220607", "name": "望江", "province": "安徽", "city": "安庆"}
]`)

	var out bytes.Buffer
	assert.Equal(t, 0, run(path, &out))
}

func TestRun_FieldOrderIgnored(t *testing.T) {
	path := writeCatalog(t, `[
  {"name": "望江", "city": "安庆", "id": "101220607", "province": "安徽"},
  {"province": "安徽", "id": "101220601", "name": "安庆", "city": "安庆"}
]`)

	var out bytes.Buffer
	assert.Equal(t, 0, run(path, &out), out.String())
}

func TestRun_EmptyCatalog(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 0, run(writeCatalog(t, "[\n]"), &out))
	assert.Contains(t, out.String(), "Records: 0")
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "invalid json",
			content: `[{"id": "101010100",`,
			want:    "FATAL: parse catalog",
		},
		{
			name:    "bad prefix",
			content: `[{"id": "102010100", "name": "北京"}]`,
			want:    `id "102010100" is not 101 followed by six digits`,
		},
		{
			name:    "short code",
			content: `[{"id": "1010101", "name": "北京"}]`,
			want:    "is not 101 followed by six digits",
		},
		{
			name:    "non digit code",
			content: `[{"id": "10101010A", "name": "北京"}]`,
			want:    "is not 101 followed by six digits",
		},
		{
			name:    "numeric id",
			content: `[{"id": 101010100, "name": "北京"}]`,
			want:    "id missing or not a string",
		},
		{
			name:    "blank name",
			content: `[{"id": "101010100", "name": " "}]`,
			want:    "name is empty or not a string",
		},
		{
			name:    "unexpected field",
			content: `[{"id": "101010100", "name": "北京", "lat": "39.9"}]`,
			want:    "unexpected fields",
		},
		{
			name:    "mixed shapes",
			content: `[{"id": "101010100", "name": "北京"}, {"id": "101220607", "name": "望江", "province": "安徽", "city": "安庆"}]`,
			want:    "differ from first record",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, 1, run(writeCatalog(t, tt.content), &out))
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestRun_MissingFile(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run(filepath.Join(t.TempDir(), "absent.json"), &out))
	assert.Contains(t, out.String(), "FATAL: read catalog")
}

func TestRun_DuplicateIDsWarnOnly(t *testing.T) {
	path := writeCatalog(t, `[
  {"id": "101010100", "name": "北京"},
  {"id": "101010100", "name": "北京"}
]`)

	var out bytes.Buffer
	assert.Equal(t, 0, run(path, &out))
	assert.Contains(t, out.String(), "warning: record 1: id 101010100 duplicates record 0")
}
