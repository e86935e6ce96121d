package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected map[string]string
	}{
		{name: "simple key-value", content: "DB_URL=sqlite::memory:", expected: map[string]string{"DB_URL": "sqlite::memory:"}},
		{name: "multiple keys", content: "KEY1=value1\nKEY2=value2", expected: map[string]string{"KEY1": "value1", "KEY2": "value2"}},
		{name: "double quoted value", content: `OWNER="alice smith"`, expected: map[string]string{"OWNER": "alice smith"}},
		{name: "single quoted value", content: `OWNER='alice smith'`, expected: map[string]string{"OWNER": "alice smith"}},
		{name: "comments and blank lines", content: "# comment\n\nKEY=v\n", expected: map[string]string{"KEY": "v"}},
		{name: "whitespace trimmed", content: "  KEY  =  v  ", expected: map[string]string{"KEY": "v"}},
		{name: "value with equals sign", content: "CONN=postgres://u:p@host/db?sslmode=disable", expected: map[string]string{"CONN": "postgres://u:p@host/db?sslmode=disable"}},
		{name: "export prefix", content: "export KEY=v", expected: map[string]string{"KEY": "v"}},
		{name: "trailing comment", content: "KEY=v # note", expected: map[string]string{"KEY": "v"}},
		{name: "hash inside quotes kept", content: `KEY="a # b"`, expected: map[string]string{"KEY": "a # b"}},
		{name: "lines without equals skipped", content: "garbage\nKEY=v", expected: map[string]string{"KEY": "v"}},
		{name: "empty file", content: "", expected: map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envFile := filepath.Join(t.TempDir(), ".env")
			require.NoError(t, os.WriteFile(envFile, []byte(tt.content), 0644))

			result, err := LoadDotEnv(envFile)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestLoadDotEnvFileNotFound(t *testing.T) {
	_, err := LoadDotEnv("/nonexistent/path/.env")
	assert.Error(t, err)
}
