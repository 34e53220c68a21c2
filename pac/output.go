package pac

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Make sure the output directory exists
func PrepareOutputDirectory(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0770); err != nil {
			return &IoError{Stage: StageOutputDir, Path: dir, Err: err}
		}
		log.Printf("Created output directory: %s\n", dir)
	} else if err != nil {
		return &IoError{Stage: StageOutputDir, Path: dir, Err: err}
	}
	return nil
}

// Where the given partition file name ends up inside dir. File names come
// straight out of the container, so only the last path element is kept
// (with either kind of slash) and nothing can escape the directory.
func OutputPath(dir string, fileName string) (string, error) {
	name := strings.ReplaceAll(fileName, "\\", "/")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." || name == ".." {
		return "", formatErrorf(StageExtract, "unusable output file name %q", fileName)
	}
	return filepath.Join(dir, name), nil
}
