package stages

import (
	"path/filepath"
	"strings"
)

type fileKind int

const (
	kindText fileKind = iota
	kindImage
	kindAudio
)

var imageExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".ogg":  {},
	".webm": {},
}

func kindOf(path string) fileKind {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := imageExtensions[ext]; ok {
		return kindImage
	}
	if _, ok := audioExtensions[ext]; ok {
		return kindAudio
	}
	return kindText
}

func imageMIMEType(path string) string {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// baseName returns a file name without its extension.
func baseName(name string) string {
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}

var nameReplacer = strings.NewReplacer(
	"/", " ", "\\", " ", ":", " ", "*", "", "?", "",
	"\"", "", "<", "", ">", "", "|", " ", "#", "", "^", "",
	"[", "", "]", "",
)

// sanitizeName turns a suggested title into a filename-safe note name.
func sanitizeName(name string) string {
	cleaned := nameReplacer.Replace(strings.TrimSpace(name))
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	cleaned = strings.Trim(cleaned, ". ")
	if len(cleaned) > 120 {
		cleaned = strings.TrimSpace(cleaned[:120])
	}
	return cleaned
}
