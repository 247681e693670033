package download

import (
	"path"
	"strings"
)

// VideoInfo carries the metadata reported by a probe.
type VideoInfo struct {
	Title                 string   `json:"title"`
	Thumbnail             string   `json:"thumbnail"`
	Duration              string   `json:"duration"`
	FileSize              int64    `json:"fileSize"`
	HasSubtitles          bool     `json:"hasSubtitles"`
	AvailableQualities    []string `json:"availableQualities"`
	SubtitleLanguages     []string `json:"subtitleLanguages"`
	AutoSubtitleLanguages []string `json:"autoSubtitleLanguages"`
}

// Artifacts groups the files produced by one retrieval by role.
type Artifacts struct {
	Media     string
	Info      string
	Subtitles []string
	Others    []string
}

// PrimaryExt returns the container extension for the requested format.
func PrimaryExt(f Format) string {
	if f == FormatAudio {
		return ".mp3"
	}
	return ".mp4"
}

// IsSubtitleFile reports whether a filename looks like a subtitle artifact.
func IsSubtitleFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".vtt" || ext == ".srt"
}

// SubtitleLanguage derives the language tag from a subtitle filename: the
// dot-separated segment immediately preceding the extension, so
// "Title.en.vtt" yields "en". This exact rule is the contract consumers
// of the subtitle list depend on; a file with no language segment yields
// its base name.
func SubtitleLanguage(filename string) string {
	parts := strings.Split(filename, ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}

// ClassifyArtifacts assigns each produced filename a role. The first file
// whose extension matches the requested container is the primary media
// file; the first *.info.json is the metadata file.
func ClassifyArtifacts(names []string, format Format) Artifacts {
	var out Artifacts
	primary := PrimaryExt(format)
	for _, name := range names {
		switch {
		case out.Media == "" && strings.EqualFold(path.Ext(name), primary):
			out.Media = name
		case out.Info == "" && strings.HasSuffix(strings.ToLower(name), ".info.json"):
			out.Info = name
		case IsSubtitleFile(name):
			out.Subtitles = append(out.Subtitles, name)
		default:
			out.Others = append(out.Others, name)
		}
	}
	return out
}
