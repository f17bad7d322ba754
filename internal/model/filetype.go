package model

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileCategory groups large files by what they usually are.
type FileCategory int

const (
	CatOther FileCategory = iota
	CatVideo
	CatAudio
	CatImage
	CatArchive
	CatDiskImage
	CatDocument
	CatDatabase
	CatLog
	CatCode
)

var categoryNames = [...]string{
	CatOther:     "Other",
	CatVideo:     "Video",
	CatAudio:     "Audio",
	CatImage:     "Images",
	CatArchive:   "Archives",
	CatDiskImage: "Disk images",
	CatDocument:  "Documents",
	CatDatabase:  "Databases",
	CatLog:       "Logs",
	CatCode:      "Code",
}

var categoryColors = [...]string{
	CatOther:     "#ABB2BF",
	CatVideo:     "#E06C75",
	CatAudio:     "#BE5046",
	CatImage:     "#C678DD",
	CatArchive:   "#E5C07B",
	CatDiskImage: "#D19A66",
	CatDocument:  "#98C379",
	CatDatabase:  "#56B6C2",
	CatLog:       "#5C6370",
	CatCode:      "#61AFEF",
}

// CategoryName returns the display name for a category.
func CategoryName(cat FileCategory) string {
	if cat < 0 || int(cat) >= len(categoryNames) {
		return categoryNames[CatOther]
	}
	return categoryNames[cat]
}

// CategoryColor returns the theme color for a category.
func CategoryColor(cat FileCategory) string {
	if cat < 0 || int(cat) >= len(categoryColors) {
		return categoryColors[CatOther]
	}
	return categoryColors[cat]
}

var extMap = map[string]FileCategory{
	".mp4": CatVideo, ".mkv": CatVideo, ".avi": CatVideo, ".mov": CatVideo,
	".wmv": CatVideo, ".flv": CatVideo, ".webm": CatVideo, ".m4v": CatVideo,
	".mpg": CatVideo, ".mpeg": CatVideo, ".mts": CatVideo, ".ts": CatVideo,

	".mp3": CatAudio, ".flac": CatAudio, ".wav": CatAudio, ".aac": CatAudio,
	".ogg": CatAudio, ".m4a": CatAudio, ".opus": CatAudio, ".aiff": CatAudio,

	".jpg": CatImage, ".jpeg": CatImage, ".png": CatImage, ".gif": CatImage,
	".bmp": CatImage, ".webp": CatImage, ".tiff": CatImage, ".tif": CatImage,
	".psd": CatImage, ".raw": CatImage, ".cr2": CatImage, ".nef": CatImage,
	".heic": CatImage, ".avif": CatImage,

	".zip": CatArchive, ".tar": CatArchive, ".gz": CatArchive, ".bz2": CatArchive,
	".xz": CatArchive, ".zst": CatArchive, ".rar": CatArchive, ".7z": CatArchive,
	".tgz": CatArchive, ".jar": CatArchive, ".deb": CatArchive, ".rpm": CatArchive,

	".iso": CatDiskImage, ".dmg": CatDiskImage, ".img": CatDiskImage,
	".vmdk": CatDiskImage, ".vdi": CatDiskImage, ".qcow2": CatDiskImage,
	".vhd": CatDiskImage, ".vhdx": CatDiskImage,

	".pdf": CatDocument, ".doc": CatDocument, ".docx": CatDocument,
	".xls": CatDocument, ".xlsx": CatDocument, ".ppt": CatDocument,
	".pptx": CatDocument, ".odt": CatDocument, ".epub": CatDocument,
	".csv": CatDocument, ".txt": CatDocument,

	".db": CatDatabase, ".sqlite": CatDatabase, ".sqlite3": CatDatabase,
	".mdb": CatDatabase, ".ldb": CatDatabase, ".parquet": CatDatabase,

	".log": CatLog, ".out": CatLog, ".trace": CatLog,

	".go": CatCode, ".rs": CatCode, ".js": CatCode, ".py": CatCode,
	".c": CatCode, ".h": CatCode, ".cpp": CatCode, ".java": CatCode,
	".json": CatCode, ".yaml": CatCode, ".yml": CatCode, ".wasm": CatCode,
	".so": CatCode, ".dll": CatCode, ".dylib": CatCode, ".a": CatCode, ".o": CatCode,
}

// ClassifyFile returns the category for a file name by its extension.
func ClassifyFile(name string) FileCategory {
	if cat, ok := extMap[strings.ToLower(filepath.Ext(name))]; ok {
		return cat
	}
	return CatOther
}

// DetectCategory classifies a local file, sniffing its content when the
// extension is unknown. Files that cannot be read fall back to CatOther.
func DetectCategory(path string) FileCategory {
	if cat := ClassifyFile(path); cat != CatOther {
		return cat
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return CatOther
	}
	return categoryForMIME(mt)
}

func categoryForMIME(mt *mimetype.MIME) FileCategory {
	for m := mt; m != nil; m = m.Parent() {
		if cat, ok := extMap[m.Extension()]; ok {
			return cat
		}
		mime := m.String()
		switch {
		case strings.HasPrefix(mime, "video/"):
			return CatVideo
		case strings.HasPrefix(mime, "audio/"):
			return CatAudio
		case strings.HasPrefix(mime, "image/"):
			return CatImage
		}
	}
	return CatOther
}

// CategoryStat is the share of a report held by one category.
type CategoryStat struct {
	Category FileCategory
	Files    int
	Bytes    uint64
}

// Breakdown totals the report's file entries per category, largest first.
// classify decides each file's category; nil means ClassifyFile.
func Breakdown(report *ScanReport, classify func(path string) FileCategory) []CategoryStat {
	if classify == nil {
		classify = ClassifyFile
	}
	byCat := make(map[FileCategory]*CategoryStat)
	for _, e := range report.Files() {
		cat := classify(e.Path)
		st, ok := byCat[cat]
		if !ok {
			st = &CategoryStat{Category: cat}
			byCat[cat] = st
		}
		st.Files++
		st.Bytes = SaturatingAdd(st.Bytes, e.SizeBytes)
	}

	out := make([]CategoryStat, 0, len(byCat))
	for _, st := range byCat {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bytes != out[j].Bytes {
			return out[i].Bytes > out[j].Bytes
		}
		return out[i].Category < out[j].Category
	})
	return out
}
