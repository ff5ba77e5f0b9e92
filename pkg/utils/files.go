package utils

import (
	"os"
	"path/filepath"
	"strings"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// OutputPath replaces the extension of inPath with ext, or appends ext when
// inPath has none.
func OutputPath(inPath, ext string) string {
	old := filepath.Ext(inPath)
	if old == "" {
		return inPath + ext
	}
	return strings.TrimSuffix(inPath, old) + ext
}

// WriteFile writes data to path, refusing to overwrite the file it was
// generated from.
func WriteFile(path, source string, data []byte) error {
	if source != "" {
		out, _, err := GetPathInfo(path)
		if err != nil {
			return err
		}
		in, _, err := GetPathInfo(source)
		if err != nil {
			return err
		}
		if out == in {
			return &os.PathError{Op: "write", Path: path, Err: os.ErrExist}
		}
	}
	return os.WriteFile(path, data, 0o644)
}
