package model

import "testing"

func TestDecodeEIP_WhenGivenLegacyStatus_ShouldMigrateToStatusHistory(t *testing.T) {
	input := `{"id":7702,"title":"Set EOA account code","forkRelationships":[{"forkName":"Pectra","status":"Included"}]}`

	eip, migrated, err := DecodeEIP([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !migrated {
		t.Error("expected migrated=true")
	}
	if len(eip.ForkRelationships) != 1 {
		t.Fatalf("expected 1 fork relationship, got %d", len(eip.ForkRelationships))
	}
	fr := eip.ForkRelationships[0]
	if fr.ForkName != "Pectra" || fr.CurrentStatus() != "Included" {
		t.Errorf("unexpected relationship %+v", fr)
	}
}

func TestDecodeEIP_WhenLegacyStatusAndHistoryBothPresent_ShouldKeepHistory(t *testing.T) {
	input := `{"id":1,"title":"x","forkRelationships":[{"forkName":"Fusaka","status":"Declined","statusHistory":[{"status":"Proposed"},{"status":"Considered"}]}]}`

	eip, migrated, err := DecodeEIP([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !migrated {
		t.Error("expected legacy field to be reported")
	}
	if got := eip.ForkRelationships[0].CurrentStatus(); got != "Considered" {
		t.Errorf("expected history to win, got %q", got)
	}
}

func TestDecodeEIP_WhenAlreadyMigrated_ShouldReportNoMigration(t *testing.T) {
	input := `{"id":4844,"title":"Shard Blob Transactions","benefits":["cheaper L2s"],"forkRelationships":[{"forkName":"Dencun","statusHistory":[{"status":"Included","call":"acde/170"}]}]}`

	eip, migrated, err := DecodeEIP([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if migrated {
		t.Error("expected migrated=false")
	}
	if eip.ID != 4844 || eip.Benefits[0] != "cheaper L2s" {
		t.Errorf("unexpected eip %+v", eip)
	}
	if eip.ForkRelationships[0].StatusHistory[0].Call != "acde/170" {
		t.Errorf("expected call reference preserved")
	}
}

func TestDecodeEIP_WhenForkHasNoStatus_ShouldUseEmptyHistory(t *testing.T) {
	eip, _, err := DecodeEIP([]byte(`{"id":2,"title":"y","forkRelationships":[{"forkName":"Glamsterdam"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eip.ForkRelationships[0].StatusHistory == nil {
		t.Error("expected non-nil empty history")
	}
	if eip.ForkRelationships[0].CurrentStatus() != "" {
		t.Error("expected empty current status")
	}
}

func TestDecodeEIP_WhenIDMissing_ShouldReturnError(t *testing.T) {
	if _, _, err := DecodeEIP([]byte(`{"title":"no id"}`)); err == nil {
		t.Fatal("expected error")
	}
}

func TestDecodeEIP_WhenInvalidJSON_ShouldReturnError(t *testing.T) {
	if _, _, err := DecodeEIP([]byte(`{`)); err == nil {
		t.Fatal("expected error")
	}
}
