// Package configfile reads and writes the terminal's own configuration
// file, whose location the terminal reports in its console output.
package configfile

import (
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Read returns the contents of the terminal's config file. The Java
// worker writes Windows-1252 on some hosts, so non-UTF-8 content is
// decoded with that charset rather than mangled with replacement runes.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}

	return string(decoded), nil
}

// Write replaces the config file contents.
func Write(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
