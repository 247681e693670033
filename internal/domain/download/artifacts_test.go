package download

import "testing"

func TestSubtitleLanguage(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"Demo.en.vtt", "en"},
		{"My Video.pt.srt", "pt"},
		{"Some.Title.With.Dots.ja.vtt", "ja"},
		{"noext", ""},
		{"plain.vtt", "plain"},
	}
	for _, c := range cases {
		if got := SubtitleLanguage(c.filename); got != c.want {
			t.Fatalf("SubtitleLanguage(%q) = %q, want %q", c.filename, got, c.want)
		}
	}
}

func TestClassifyArtifacts_Video(t *testing.T) {
	names := []string{
		"Demo.info.json",
		"Demo.mp4",
		"Demo.en.vtt",
		"Demo.es.srt",
		"Demo.description",
	}
	got := ClassifyArtifacts(names, FormatVideo)
	if got.Media != "Demo.mp4" {
		t.Fatalf("expected Demo.mp4 as media, got %q", got.Media)
	}
	if got.Info != "Demo.info.json" {
		t.Fatalf("expected Demo.info.json as info, got %q", got.Info)
	}
	if len(got.Subtitles) != 2 || got.Subtitles[0] != "Demo.en.vtt" || got.Subtitles[1] != "Demo.es.srt" {
		t.Fatalf("unexpected subtitles: %v", got.Subtitles)
	}
	if len(got.Others) != 1 || got.Others[0] != "Demo.description" {
		t.Fatalf("unexpected others: %v", got.Others)
	}
}

func TestClassifyArtifacts_AudioIgnoresVideoContainer(t *testing.T) {
	names := []string{"Track.mp4", "Track.mp3", "Track.info.json"}
	got := ClassifyArtifacts(names, FormatAudio)
	if got.Media != "Track.mp3" {
		t.Fatalf("expected Track.mp3 as media, got %q", got.Media)
	}
}

func TestClassifyArtifacts_FirstMatchWins(t *testing.T) {
	names := []string{"a.mp4", "b.mp4"}
	got := ClassifyArtifacts(names, FormatVideo)
	if got.Media != "a.mp4" {
		t.Fatalf("expected first container match, got %q", got.Media)
	}
}

func TestClassifyArtifacts_NoMedia(t *testing.T) {
	got := ClassifyArtifacts([]string{"only.en.vtt"}, FormatVideo)
	if got.Media != "" {
		t.Fatalf("expected no media file, got %q", got.Media)
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL("https://example.com/v1"); err != nil {
		t.Fatalf("expected valid url, got %v", err)
	}
	for _, raw := range []string{"", "   ", "ftp://example.com/x", "https://", "::::"} {
		if err := ValidateURL(raw); err == nil {
			t.Fatalf("expected validation error for %q", raw)
		}
	}
}
