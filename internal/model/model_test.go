package model

import "testing"

func TestParseFilter_WhenEmpty_ShouldDefaultToAll(t *testing.T) {
	f, err := ParseFilter("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f != FilterAll {
		t.Errorf("expected all, got %q", f)
	}
}

func TestParseFilter_WhenGivenMixedCase_ShouldNormalize(t *testing.T) {
	f, err := ParseFilter(" Chat ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f != FilterChat {
		t.Errorf("expected chat, got %q", f)
	}
}

func TestParseFilter_WhenUnknown_ShouldReturnError(t *testing.T) {
	if _, err := ParseFilter("minutes"); err == nil {
		t.Fatal("expected error")
	}
}

func TestFilterAllows_ShouldMatchOwnTypeOnly(t *testing.T) {
	if !FilterAll.Allows(TypeChat) {
		t.Error("all should allow chat")
	}
	if !FilterChat.Allows(TypeChat) {
		t.Error("chat should allow chat")
	}
	if FilterChat.Allows(TypeTranscript) {
		t.Error("chat should not allow transcript")
	}
}

func TestFilterNext_ShouldCycleThroughAllFilters(t *testing.T) {
	f := FilterAll
	seen := map[Filter]bool{}
	for range Filters {
		seen[f] = true
		f = f.Next()
	}
	if f != FilterAll {
		t.Errorf("expected to wrap back to all, got %q", f)
	}
	if len(seen) != len(Filters) {
		t.Errorf("expected %d distinct filters, got %d", len(Filters), len(seen))
	}
}
