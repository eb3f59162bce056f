package terminal

import "strings"

const (
	pathPrefix = "Using "
	pathSuffix = " as the config file"
)

// DetectConfigPath extracts the config file location the terminal reports
// in its startup output, e.g. "Using /opt/theta/config.properties as the
// config file". This is a best-effort scan over free-form log text, not a
// parser; it reports false when either marker is absent, the markers are
// out of order, or they enclose nothing.
func DetectConfigPath(line string) (string, bool) {
	start := strings.Index(line, pathPrefix)
	end := strings.Index(line, pathSuffix)

	if start < 0 || end < 0 {
		return "", false
	}

	start += len(pathPrefix)
	if start >= end {
		return "", false
	}

	path := strings.TrimSpace(line[start:end])
	if path == "" {
		return "", false
	}

	return path, true
}
