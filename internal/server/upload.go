package server

import (
	"path/filepath"
	"regexp"
	"strings"
)

const maxFilenameLen = 100

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFilename reduces a client-supplied name to a safe base name.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, "._")
	if len(name) > maxFilenameLen {
		name = name[len(name)-maxFilenameLen:]
	}
	if name == "" {
		return "artifact.sqlite"
	}
	return name
}

// allowedExtension reports whether name ends in one of exts, ignoring case.
func allowedExtension(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// isWithinDir checks if filePath is within or equal to dirPath.
func isWithinDir(filePath, dirPath string) bool {
	filePath = filepath.Clean(filePath)
	dirPath = filepath.Clean(dirPath)

	dirWithSep := dirPath
	if !strings.HasSuffix(dirWithSep, string(filepath.Separator)) {
		dirWithSep += string(filepath.Separator)
	}
	return strings.HasPrefix(filePath, dirWithSep) || filePath == dirPath
}

func invalidTypeMessage(exts []string) string {
	return "Invalid file type. Please upload a " + strings.Join(exts, ", ") + " file"
}
