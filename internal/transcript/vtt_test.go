package transcript

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"callsearch/internal/model"
)

func TestParseVTT_WhenGivenSingleCue_ShouldExtractSpeakerAndText(t *testing.T) {
	input := "WEBVTT\n\n1\n00:00:05.000 --> 00:00:08.000\nAlice: hello world\n"

	got := ParseVTT(input)

	want := []model.TranscriptEntry{
		{Timestamp: "00:00:05.000", Speaker: "Alice", Text: "hello world"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseVTT() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseVTT_WhenPayloadHasNoSpeaker_ShouldUseDefaultSpeaker(t *testing.T) {
	input := "WEBVTT\n\n00:01:00.000 --> 00:01:02.000\njust some words\n"

	got := ParseVTT(input)

	want := []model.TranscriptEntry{
		{Timestamp: "00:01:00.000", Speaker: DefaultSpeaker, Text: "just some words"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseVTT() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseVTT_WhenGivenCRLF_ShouldStripCarriageReturns(t *testing.T) {
	input := "WEBVTT\r\n\r\n1\r\n00:00:01.000 --> 00:00:02.000\r\nBob: gas limit\r\n"

	got := ParseVTT(input)

	want := []model.TranscriptEntry{
		{Timestamp: "00:00:01.000", Speaker: "Bob", Text: "gas limit"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseVTT() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseVTT_WhenCueHasNoText_ShouldDropIt(t *testing.T) {
	input := "WEBVTT\n\n1\n00:00:01.000 --> 00:00:02.000\n\n2\n00:00:03.000 --> 00:00:04.000\nCarol: kept\n"

	got := ParseVTT(input)

	if len(got) != 1 || got[0].Speaker != "Carol" || got[0].Timestamp != "00:00:03.000" {
		t.Errorf("expected only Carol's cue, got %+v", got)
	}
}

func TestParseVTT_WhenTextHasNoTimestamp_ShouldDropIt(t *testing.T) {
	input := "WEBVTT\n\norphan line\n\n00:00:03.000 --> 00:00:04.000\nDan: kept\n"

	got := ParseVTT(input)

	if len(got) != 1 || got[0].Text != "kept" {
		t.Errorf("expected only the timed cue, got %+v", got)
	}
}

func TestParseVTT_WhenTimingLineMalformed_ShouldDropCue(t *testing.T) {
	input := "WEBVTT\n\n00:01.000 --> 00:02.000\nEve: short form timing\n"

	if got := ParseVTT(input); len(got) != 0 {
		t.Errorf("expected no entries, got %+v", got)
	}
}

func TestParseVTT_WhenCueSpansTwoLines_ShouldJoinText(t *testing.T) {
	input := "WEBVTT\n\n1\n00:00:05.000 --> 00:00:08.000\nAlice: first half\nsecond half\n\n2\n00:00:09.000 --> 00:00:10.000\nBob: next\n"

	got := ParseVTT(input)

	want := []model.TranscriptEntry{
		{Timestamp: "00:00:05.000", Speaker: "Alice", Text: "first half second half"},
		{Timestamp: "00:00:09.000", Speaker: "Bob", Text: "next"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseVTT() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseVTT_WhenSpeakerLineIsEmpty_ShouldTakeTextFromNextLine(t *testing.T) {
	input := "WEBVTT\n\n00:00:05.000 --> 00:00:08.000\nAlice:\nthe actual words\n"

	got := ParseVTT(input)

	want := []model.TranscriptEntry{
		{Timestamp: "00:00:05.000", Speaker: "Alice", Text: "the actual words"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseVTT() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseVTT_WhenFileStartsWithBOM_ShouldSkipHeader(t *testing.T) {
	input := "\ufeffWEBVTT\n\n00:00:01.000 --> 00:00:02.000\nAl: hi\n"

	got := ParseVTT(input)

	if len(got) != 1 || got[0].Text != "hi" {
		t.Errorf("expected one entry, got %+v", got)
	}
}

func TestParseVTT_ShouldPreserveFileOrder(t *testing.T) {
	input := "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nA: one\n\n00:00:03.000 --> 00:00:04.000\nB: two\n\n00:00:05.000 --> 00:00:06.000\nC: three\n"

	got := ParseVTT(input)

	var speakers []string
	for _, e := range got {
		speakers = append(speakers, e.Speaker)
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, speakers); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseVTT_WhenCalledTwice_ShouldReturnIdenticalEntries(t *testing.T) {
	input := "WEBVTT\n\n1\n00:00:05.000 --> 00:00:08.000\nAlice: hello\n\n2\n00:00:09.000 --> 00:00:10.000\nno speaker here\n"

	if diff := cmp.Diff(ParseVTT(input), ParseVTT(input)); diff != "" {
		t.Errorf("ParseVTT() not deterministic:\n%s", diff)
	}
}

func TestParseVTT_WhenGivenEmptyInput_ShouldReturnNoEntries(t *testing.T) {
	if got := ParseVTT(""); len(got) != 0 {
		t.Errorf("expected no entries, got %+v", got)
	}
}

// --- isDigitOnly ---

func TestIsDigitOnly(t *testing.T) {
	cases := map[string]bool{"1": true, "042": true, "": false, "1a": false, " 1": false}
	for in, want := range cases {
		if got := isDigitOnly(in); got != want {
			t.Errorf("isDigitOnly(%q) = %v, want %v", in, got, want)
		}
	}
}
