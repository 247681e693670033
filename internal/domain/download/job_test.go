package download

import "testing"

func TestCanTransition_HappyPath(t *testing.T) {
	steps := []struct{ from, to Status }{
		{StatusPending, StatusDownloading},
		{StatusDownloading, StatusPaused},
		{StatusPaused, StatusDownloading},
		{StatusDownloading, StatusCompleted},
	}
	for _, s := range steps {
		if !CanTransition(s.from, s.to) {
			t.Fatalf("expected %s -> %s to be allowed", s.from, s.to)
		}
	}
}

func TestCanTransition_TerminalStatesAreFinal(t *testing.T) {
	for _, from := range []Status{StatusCompleted, StatusError} {
		for _, to := range []Status{StatusPending, StatusDownloading, StatusPaused, StatusCompleted, StatusError} {
			if CanTransition(from, to) {
				t.Fatalf("expected %s -> %s to be rejected", from, to)
			}
		}
	}
}

func TestCanTransition_PausedCanStillFinish(t *testing.T) {
	// An in-flight retrieval is never interrupted, so a paused job may
	// reach a terminal state without resuming first.
	if !CanTransition(StatusPaused, StatusCompleted) {
		t.Fatalf("expected paused -> completed to be allowed")
	}
	if !CanTransition(StatusPaused, StatusError) {
		t.Fatalf("expected paused -> error to be allowed")
	}
}

func TestCanTransition_NoDirectPendingToTerminalSuccess(t *testing.T) {
	if CanTransition(StatusPending, StatusCompleted) {
		t.Fatalf("expected pending -> completed to be rejected")
	}
	if CanTransition(StatusPending, StatusPaused) {
		t.Fatalf("expected pending -> paused to be rejected")
	}
}

func TestClone_IsolatesSubtitles(t *testing.T) {
	job := &Job{
		ID:        "j1",
		Subtitles: []Subtitle{{Language: "en", Filename: "a.en.vtt"}},
	}
	copied := job.Clone()
	copied.Subtitles[0].Language = "fr"
	if job.Subtitles[0].Language != "en" {
		t.Fatalf("clone mutated original subtitle list")
	}
}

func TestValidFormat(t *testing.T) {
	if !ValidFormat(FormatVideo) || !ValidFormat(FormatAudio) {
		t.Fatalf("expected video and audio to be valid formats")
	}
	if ValidFormat(Format("gif")) {
		t.Fatalf("expected unknown format to be rejected")
	}
}
