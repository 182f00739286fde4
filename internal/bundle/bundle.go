// Package bundle packs the documents of a bulk run into a single ZIP archive.
package bundle

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

// Packager writes an archive holding paths.
type Packager interface {
	Pack(ctx context.Context, paths []string, outputPath string) error
}

// PackError reports which member could not be added.
type PackError struct {
	Path  string
	Cause error
}

func (e *PackError) Error() string {
	return fmt.Sprintf("failed to add %s to bundle: %v", e.Path, e.Cause)
}

func (e *PackError) Unwrap() error {
	return e.Cause
}

// ZipPackager stores members flat, under their base names, deflated.
type ZipPackager struct{}

// Pack implements Packager. A partially written archive is removed on failure.
func (ZipPackager) Pack(ctx context.Context, paths []string, outputPath string) (err error) {
	if len(paths) == 0 {
		return fmt.Errorf("nothing to bundle")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(outputPath)
		}
	}()

	zw := zip.NewWriter(f)
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := filepath.Base(p)
		if seen[name] {
			return &PackError{Path: p, Cause: fmt.Errorf("duplicate member name %q", name)}
		}
		seen[name] = true
		if err := addFile(zw, p, name); err != nil {
			return &PackError{Path: p, Cause: err}
		}
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: info.ModTime(),
	})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

// Name returns the archive name for a complex and date,
// e.g. ecourts_Pune_District_Court_20250307.zip.
func Name(complexName string, date time.Time) string {
	safe := types.SanitizeFileName(strings.ReplaceAll(strings.TrimSpace(complexName), " ", "_"))
	return fmt.Sprintf("ecourts_%s_%s.zip", safe, date.Format(types.FileDateLayout))
}

// Clean removes documents and archives left in dir by previous runs and returns how
// many files were deleted.
func Clean(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".pdf", ".zip":
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
