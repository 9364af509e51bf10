package transcript

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"callsearch/internal/model"
)

func TestParseChat_WhenReplyIsFollowedByBody_ShouldFoldBodyIntoMessage(t *testing.T) {
	input := "00:01:00\tBob\tReplying to Alice\n\nactual reply text\n00:01:05\tCarol\thi\n"

	got := ParseChat(input)

	want := []model.ChatMessage{
		{Timestamp: "00:01:00", Speaker: "Bob", Message: "actual reply text"},
		{Timestamp: "00:01:05", Speaker: "Carol", Message: "hi"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseChat() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseChat_WhenReplyBodySpansLines_ShouldJoinWithSingleSpace(t *testing.T) {
	input := "00:02:00\tBob\tReplying to \"Alice: gas?\"\n first part \nsecond part\n\n"

	got := ParseChat(input)

	if len(got) != 1 || got[0].Message != "first part second part" {
		t.Errorf("expected folded body, got %+v", got)
	}
}

func TestParseChat_WhenReplyHasNoBody_ShouldKeepPlaceholder(t *testing.T) {
	input := "00:03:00\tBob\tReplying to Alice\n00:03:10\tCarol\tok\n"

	got := ParseChat(input)

	if len(got) != 2 || got[0].Message != "Replying to Alice" {
		t.Errorf("expected placeholder kept, got %+v", got)
	}
}

func TestParseChat_WhenReplyIsLastLine_ShouldKeepPlaceholder(t *testing.T) {
	got := ParseChat("00:03:00\tBob\tReplying to Alice")

	if len(got) != 1 || got[0].Message != "Replying to Alice" {
		t.Errorf("expected placeholder kept, got %+v", got)
	}
}

func TestParseChat_WhenLineIsReaction_ShouldDropIt(t *testing.T) {
	input := "00:04:00\tDan\tReacted to \"ship it\" with 👍\n00:04:01\tEve\tReaccionó a \"hola\" con 👍\n00:04:02\tFay\treal message\n"

	got := ParseChat(input)

	want := []model.ChatMessage{{Timestamp: "00:04:02", Speaker: "Fay", Message: "real message"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseChat() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseChat_WhenBodyEmpty_ShouldDropMessage(t *testing.T) {
	input := "00:05:00\tGus\t   \n00:05:01\tHal\tkept\n"

	got := ParseChat(input)

	if len(got) != 1 || got[0].Speaker != "Hal" {
		t.Errorf("expected only Hal, got %+v", got)
	}
}

func TestParseChat_WhenGivenCRLF_ShouldStripCarriageReturns(t *testing.T) {
	got := ParseChat("00:06:00\tIvy\tblob fees\r\n")

	if len(got) != 1 || got[0].Message != "blob fees" {
		t.Errorf("expected trimmed message, got %+v", got)
	}
}

func TestParseChat_WhenLinesAreUnstructured_ShouldSkipThem(t *testing.T) {
	input := "random preamble\n00:07:00\tJo\tstructured\nmore noise\n"

	got := ParseChat(input)

	if len(got) != 1 || got[0].Message != "structured" {
		t.Errorf("expected only structured line, got %+v", got)
	}
}

func TestParseChat_WhenSpeakerContainsSpaces_ShouldKeepFullName(t *testing.T) {
	got := ParseChat("00:08:00\tTim Beiko\tlet's move on\n")

	if len(got) != 1 || got[0].Speaker != "Tim Beiko" {
		t.Errorf("unexpected speaker %+v", got)
	}
}

func TestParseChat_WhenMessageContainsTabs_ShouldSplitOnFirstTwoTabs(t *testing.T) {
	got := ParseChat("00:09:00\tKim\tcol1\tcol2\n")

	if len(got) != 1 || got[0].Speaker != "Kim" || got[0].Message != "col1\tcol2" {
		t.Errorf("unexpected parse %+v", got)
	}
}

func TestParseChat_WhenCalledTwice_ShouldReturnIdenticalMessages(t *testing.T) {
	input := "00:01:00\tBob\tReplying to Alice\nbody\n00:01:05\tCarol\thi\n"

	if diff := cmp.Diff(ParseChat(input), ParseChat(input)); diff != "" {
		t.Errorf("ParseChat() not deterministic:\n%s", diff)
	}
}
