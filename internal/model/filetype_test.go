package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyFile(t *testing.T) {
	tests := map[string]FileCategory{
		"movie.MKV":       CatVideo,
		"song.mp3":        CatAudio,
		"backup.tar.gz":   CatArchive,
		"main.go":         CatCode,
		"README":          CatOther,
		"/a/b/photo.jpeg": CatImage,
		"ubuntu.iso":      CatDiskImage,
	}
	for name, want := range tests {
		assert.Equal(t, want, ClassifyFile(name), name)
	}
}

func TestDetectCategory_SniffsUnknownExtensions(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "snapshot")
	require.NoError(t, os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o644))
	gz := filepath.Join(dir, "blob.bak")
	require.NoError(t, os.WriteFile(gz, []byte{0x1f, 0x8b, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00}, 0o644))

	assert.Equal(t, CatImage, DetectCategory(png))
	assert.Equal(t, CatArchive, DetectCategory(gz))
	assert.Equal(t, CatVideo, DetectCategory(filepath.Join(dir, "missing.mp4")))
	assert.Equal(t, CatOther, DetectCategory(filepath.Join(dir, "missing")))
}

func TestBreakdown(t *testing.T) {
	report := &ScanReport{
		Root: "/r",
		Entries: []Entry{
			NewEntry("/r/a.mkv", true, 300),
			NewEntry("/r/b.mp4", true, 200),
			NewEntry("/r/c.zip", true, 400),
			NewEntry("/r/d", true, 100),
			NewEntry("/r", false, 1000),
		},
	}

	got := Breakdown(report, nil)
	assert.Equal(t, []CategoryStat{
		{Category: CatVideo, Files: 2, Bytes: 500},
		{Category: CatArchive, Files: 1, Bytes: 400},
		{Category: CatOther, Files: 1, Bytes: 100},
	}, got)

	all := Breakdown(report, func(string) FileCategory { return CatLog })
	assert.Equal(t, []CategoryStat{{Category: CatLog, Files: 4, Bytes: 1000}}, all)
}

func TestCategoryNameAndColor(t *testing.T) {
	assert.Equal(t, "Video", CategoryName(CatVideo))
	assert.Equal(t, "Disk images", CategoryName(CatDiskImage))
	assert.Equal(t, "Other", CategoryName(FileCategory(99)))
	assert.NotEmpty(t, CategoryColor(CatLog))
	assert.Equal(t, CategoryColor(CatOther), CategoryColor(FileCategory(-1)))
}
