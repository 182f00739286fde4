package bundle

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestZipPackager_Pack(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "court_a_20250307.pdf", "%PDF-a")
	b := writeFile(t, filepath.Join(dir), "court_b_20250307.pdf", "%PDF-b")
	out := filepath.Join(dir, "bundle", "ecourts_x_20250307.zip")

	require.NoError(t, ZipPackager{}.Pack(context.Background(), []string{a, b}, out))

	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()

	require.Len(t, zr.File, 2)
	assert.Equal(t, "court_a_20250307.pdf", zr.File[0].Name)
	assert.Equal(t, "court_b_20250307.pdf", zr.File[1].Name)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-b", string(content))
}

func TestZipPackager_MissingMemberRemovesArchive(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.pdf", "a")
	out := filepath.Join(dir, "out.zip")

	err := ZipPackager{}.Pack(context.Background(), []string{a, filepath.Join(dir, "gone.pdf")}, out)

	var packErr *PackError
	require.ErrorAs(t, err, &packErr)
	assert.Equal(t, filepath.Join(dir, "gone.pdf"), packErr.Path)
	assert.NoFileExists(t, out)
}

func TestZipPackager_DuplicateNames(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.pdf", "a")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	b := writeFile(t, filepath.Join(dir, "sub"), "a.pdf", "b")

	err := ZipPackager{}.Pack(context.Background(), []string{a, b}, filepath.Join(dir, "out.zip"))
	assert.ErrorContains(t, err, "duplicate member name")
}

func TestZipPackager_Empty(t *testing.T) {
	err := ZipPackager{}.Pack(context.Background(), nil, filepath.Join(t.TempDir(), "out.zip"))
	assert.Error(t, err)
}

func TestName(t *testing.T) {
	date := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "ecourts_Pune_District_Court_20250307.zip", Name("Pune District Court", date))
	assert.Equal(t, "ecourts_Court_Complex__Nagpur_20250307.zip", Name(" Court Complex: Nagpur ", date))
}

func TestClean(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "old.pdf", "x")
	writeFile(t, dir, "old.ZIP", "x")
	keep := writeFile(t, dir, "notes.txt", "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.pdf"), 0755))

	removed, err := Clean(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.FileExists(t, keep)
	assert.DirExists(t, filepath.Join(dir, "nested.pdf"))

	removed, err = Clean(filepath.Join(dir, "absent"))
	require.NoError(t, err)
	assert.Zero(t, removed)
}
