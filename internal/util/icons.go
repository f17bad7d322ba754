package util

import (
	"path/filepath"
	"strings"
)

// Icon returns the list icon for a report entry. Well-known build and cache
// directories, and common large-file extensions, get a distinct glyph.
func Icon(path string, isFile bool) string {
	base := strings.ToLower(filepath.Base(path))
	if !isFile {
		if icon, ok := dirIcons[base]; ok {
			return icon
		}
		return "📁"
	}
	if icon, ok := extIcons[filepath.Ext(base)]; ok {
		return icon
	}
	return "📄"
}

// Directories that usually hold regenerable data and are common cleanup targets.
var dirIcons = map[string]string{
	"node_modules": "📦",
	"vendor":       "📦",
	"target":       "🎯",
	"build":        "🔨",
	"dist":         "📤",
	".cache":       "💾",
	"cache":        "💾",
	"tmp":          "🕐",
	".git":         "🔀",
}

var extIcons = map[string]string{
	".mp4":  "🎬",
	".mkv":  "🎬",
	".mov":  "🎬",
	".avi":  "🎬",
	".mp3":  "🎵",
	".flac": "🎵",
	".wav":  "🎵",
	".jpg":  "🖼️",
	".jpeg": "🖼️",
	".png":  "🖼️",
	".zip":  "📦",
	".tar":  "📦",
	".gz":   "📦",
	".7z":   "📦",
	".iso":  "💿",
	".dmg":  "💿",
	".log":  "📜",
	".db":   "🗄️",
	".pdf":  "📕",
}
