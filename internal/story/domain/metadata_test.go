package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDeltaStatus(t *testing.T) {
	tests := []struct {
		in   string
		want DeltaStatus
	}{
		{"progressed", DeltaProgressed},
		{"completed", DeltaCompleted},
		{"failed", DeltaFailed},
		{"unchanged", DeltaUnchanged},
		{"", DeltaUnchanged},
		{"paused", DeltaUnchanged},
	}
	for _, tt := range tests {
		if got := ParseDeltaStatus(tt.in); got != tt.want {
			t.Errorf("ParseDeltaStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseChoiceKind(t *testing.T) {
	tests := []struct {
		in   string
		want ChoiceKind
	}{
		{"direct", ChoiceDirect},
		{"risky", ChoiceRisky},
		{"social", ChoiceSocial},
		{"", ChoiceDirect},
		{"bold", ChoiceDirect},
	}
	for _, tt := range tests {
		if got := ParseChoiceKind(tt.in); got != tt.want {
			t.Errorf("ParseChoiceKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"mission-giver", RoleMissionGiver},
		{"villain", RoleVillain},
		{"neutral", RoleNeutral},
		{"", RoleUndetermined},
		{"sidekick", RoleUndetermined},
	}
	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBranchMetadataEmpty(t *testing.T) {
	var meta BranchMetadata
	if !meta.Empty() {
		t.Fatal("zero metadata should be empty")
	}
	meta.Choices = []ChoiceRecord{{ID: "c1", Text: "Go left"}}
	if meta.Empty() {
		t.Fatal("metadata with choices should not be empty")
	}
}

func TestBranchMetadataJSONShape(t *testing.T) {
	meta := BranchMetadata{
		SourceChoice: &ChoiceRecord{
			ID:   "c1",
			Text: "Bribe the guard",
			Kind: ChoiceRisky,
			Cost: map[Currency]int{CurrencyDollar: 100},
		},
		MissionDeltas: []MissionDelta{
			{MissionID: "m1", Status: DeltaProgressed, ProgressDelta: 25},
		},
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := decoded["source_choice"]; !ok {
		t.Error("missing source_choice key")
	}
	if _, ok := decoded["mission_deltas"]; !ok {
		t.Error("missing mission_deltas key")
	}

	var roundTrip BranchMetadata
	if err := json.Unmarshal(raw, &roundTrip); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if roundTrip.SourceChoice == nil || roundTrip.SourceChoice.Cost[CurrencyDollar] != 100 {
		t.Errorf("round trip lost choice cost: %+v", roundTrip.SourceChoice)
	}
}

func TestChoiceFromRecord(t *testing.T) {
	now := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)

	t.Run("keeps provided id", func(t *testing.T) {
		choice, err := ChoiceFromRecord("node-1", ChoiceRecord{ID: "c1", Text: "Run"}, 0, now)
		if err != nil {
			t.Fatalf("ChoiceFromRecord() error = %v", err)
		}
		if choice.ID != "c1" {
			t.Errorf("ID = %q, want c1", choice.ID)
		}
	})

	t.Run("generates missing id", func(t *testing.T) {
		choice, err := ChoiceFromRecord("node-1", ChoiceRecord{Text: "Hide"}, 1, now)
		if err != nil {
			t.Fatalf("ChoiceFromRecord() error = %v", err)
		}
		if choice.ID == "" {
			t.Error("ID not generated")
		}
		if choice.Position != 1 {
			t.Errorf("Position = %d, want 1", choice.Position)
		}
	})

	t.Run("rejects blank text", func(t *testing.T) {
		if _, err := ChoiceFromRecord("node-1", ChoiceRecord{Text: "  "}, 0, now); err == nil {
			t.Fatal("expected error for blank text")
		}
	})
}
