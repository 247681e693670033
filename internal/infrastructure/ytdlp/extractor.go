// Package ytdlp invokes the external yt-dlp binary and interprets its
// structured output.
package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"vidgrab/internal/domain/download"
)

const (
	defaultBinary       = "yt-dlp"
	defaultSubLangs     = "en,es,fr,de,it,pt,ru,ja,ko,zh"
	defaultAudioBitrate = "320K"
)

// Extractor wraps yt-dlp probe and fetch calls.
type Extractor struct {
	binary       string
	subLangs     string
	audioBitrate string
}

// New creates the adapter. Empty values fall back to defaults.
func New(binary, subLangs, audioBitrate string) *Extractor {
	if binary == "" {
		binary = defaultBinary
	}
	if subLangs == "" {
		subLangs = defaultSubLangs
	}
	if audioBitrate == "" {
		audioBitrate = defaultAudioBitrate
	}
	return &Extractor{binary: binary, subLangs: subLangs, audioBitrate: audioBitrate}
}

// Probe runs yt-dlp in info-only mode and parses the JSON it prints.
func (e *Extractor) Probe(ctx context.Context, url string) (download.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, e.binary, "--no-playlist", "--print-json", "--no-download", url)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return download.VideoInfo{}, &download.ProbeError{Detail: strings.TrimSpace(stderr.String()), Err: err}
	}

	info, err := parseProbeOutput(stdout.Bytes())
	if err != nil {
		return download.VideoInfo{}, &download.ParseError{Source: "probe output", Err: err}
	}
	return info, nil
}

// Fetch runs yt-dlp in download mode, writing into workDir, and returns
// the names of the regular files produced there. Percentages printed on
// stdout are forwarded to onProgress.
func (e *Extractor) Fetch(ctx context.Context, url, quality string, format download.Format, workDir string, onProgress func(int)) ([]string, error) {
	cmd := exec.CommandContext(ctx, e.binary, e.fetchArgs(url, quality, format, workDir)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &download.FetchError{Err: err}
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, &download.FetchError{Err: err}
	}

	scanErr := forwardProgress(stdout, onProgress)
	if scanErr != nil {
		// Keep draining so the child never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, stdout)
	}

	if err := cmd.Wait(); err != nil {
		return nil, &download.FetchError{Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	if scanErr != nil {
		return nil, &download.FetchError{Err: scanErr}
	}
	return listFiles(workDir)
}

// forwardProgress relays progress percentages from the tool's stdout to
// onProgress until the stream ends.
func forwardProgress(r io.Reader, onProgress func(int)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if percent, ok := parseProgressLine(scanner.Text()); ok && onProgress != nil {
			onProgress(percent)
		}
	}
	return scanner.Err()
}

func (e *Extractor) fetchArgs(url, quality string, format download.Format, workDir string) []string {
	args := []string{
		"--no-playlist",
		"--newline",
		"--write-info-json",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", e.subLangs,
		"--output", filepath.Join(workDir, "%(title)s.%(ext)s"),
	}
	if format == download.FormatAudio {
		args = append(args, "-x", "--audio-format", "mp3", "--audio-quality", e.audioBitrate)
	} else {
		args = append(args, "-f", fmt.Sprintf("best[height<=%s]", strings.TrimSuffix(quality, "p")))
	}
	return append(args, url)
}

type probePayload struct {
	Title          string  `json:"title"`
	Thumbnail      string  `json:"thumbnail"`
	Duration       float64 `json:"duration"`
	DurationString string  `json:"duration_string"`
	FilesizeApprox int64   `json:"filesize_approx"`
	Formats        []struct {
		Height int `json:"height"`
	} `json:"formats"`
	Subtitles         map[string]json.RawMessage `json:"subtitles"`
	AutomaticCaptions map[string]json.RawMessage `json:"automatic_captions"`
}

func parseProbeOutput(data []byte) (download.VideoInfo, error) {
	var payload probePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return download.VideoInfo{}, err
	}

	info := download.VideoInfo{
		Title:                 payload.Title,
		Thumbnail:             payload.Thumbnail,
		Duration:              payload.DurationString,
		FileSize:              payload.FilesizeApprox,
		AvailableQualities:    qualitiesFromFormats(payload),
		SubtitleLanguages:     sortedKeys(payload.Subtitles),
		AutoSubtitleLanguages: sortedKeys(payload.AutomaticCaptions),
	}
	if info.Title == "" {
		info.Title = "Unknown Title"
	}
	if info.Duration == "" && payload.Duration > 0 {
		info.Duration = strconv.FormatFloat(payload.Duration, 'f', -1, 64)
	}
	info.HasSubtitles = len(info.SubtitleLanguages) > 0 || len(info.AutoSubtitleLanguages) > 0
	return info, nil
}

func qualitiesFromFormats(payload probePayload) []string {
	seen := make(map[int]struct{})
	heights := make([]int, 0, len(payload.Formats))
	for _, f := range payload.Formats {
		if f.Height <= 0 {
			continue
		}
		if _, ok := seen[f.Height]; ok {
			continue
		}
		seen[f.Height] = struct{}{}
		heights = append(heights, f.Height)
	}
	if len(heights) == 0 {
		return []string{"720p"}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(heights)))
	out := make([]string, 0, len(heights))
	for _, h := range heights {
		out = append(out, fmt.Sprintf("%dp", h))
	}
	return out
}

func sortedKeys(m map[string]json.RawMessage) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// parseProgressLine extracts the percentage from yt-dlp --newline progress
// output, e.g. "[download]  42.3% of 10.66MiB at 2.05MiB/s ETA 00:03".
func parseProgressLine(line string) (int, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[download]") {
		return 0, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, "[download]"))
	idx := strings.IndexByte(rest, '%')
	if idx <= 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(rest[:idx]), 64)
	if err != nil {
		return 0, false
	}
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	return int(value), true
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &download.StorageError{Op: "list work dir", Err: err}
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
