package configfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.properties")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_PORT=25510\n"), 0o644))

	contents, err := Read(path)

	require.NoError(t, err)
	assert.Equal(t, "HTTP_PORT=25510\n", contents)
}

func TestReadWindows1252Fallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.properties")

	// 0x93/0x94 are curly quotes in Windows-1252 and invalid UTF-8
	require.NoError(t, os.WriteFile(path, []byte{0x93, 'h', 'i', 0x94, '\n'}, 0o644))

	contents, err := Read(path)

	require.NoError(t, err)
	assert.Equal(t, "“hi”\n", contents)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.properties"))
	assert.Error(t, err)
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.properties")

	require.NoError(t, Write(path, "MDDS_REGION=NJ\n"))

	contents, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "MDDS_REGION=NJ\n", contents)
}
