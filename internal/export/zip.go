package export

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Zip streams a deflate-compressed archive of every file under dir to w,
// with paths stored relative to dir.
func Zip(dir string, w io.Writer) error {
	zw := zip.NewWriter(w)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		header := &zip.FileHeader{Name: filepath.ToSlash(rel), Method: zip.Deflate}
		entry, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(entry, f)
		return err
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("zip %s: %w", dir, err)
	}

	return zw.Close()
}
