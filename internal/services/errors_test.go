package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapTagsAndFormats(t *testing.T) {
	inner := errors.New("exit status 1")
	err := Wrap(ErrExtractionFailed, "extract", "ffmpeg", "no audio stream", inner)

	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatal("expected ErrExtractionFailed tag")
	}
	if !errors.Is(err, inner) {
		t.Fatal("expected inner error to be wrapped")
	}
	msg := err.Error()
	for _, want := range []string{"extract", "ffmpeg", "no audio stream"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}

func TestRetryableClassification(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{Wrap(ErrTranscription, "transcribe", "whisper", "timeout", nil), true},
		{Wrap(ErrExtractionFailed, "extract", "", "", nil), false},
		{Wrap(ErrUnsupportedFormat, "scan", "", "", nil), false},
		{Wrap(ErrModelLoad, "transcribe", "", "", nil), false},
		{Wrap(ErrInvariant, "assemble", "", "", nil), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Errorf("Retryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestBatchFatal(t *testing.T) {
	if !BatchFatal(Wrap(ErrModelLoad, "transcribe", "whisper", "cannot load model", nil)) {
		t.Fatal("model load errors must abort the batch")
	}
	if BatchFatal(Wrap(ErrTranscription, "transcribe", "", "", nil)) {
		t.Fatal("transcription errors must not abort the batch")
	}
}
