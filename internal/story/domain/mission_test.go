package domain

import (
	"errors"
	"testing"
	"time"
)

func testMission(t *testing.T) Mission {
	t.Helper()
	mission, err := CreateMission(CreateMissionInput{
		PlayerID:       "player-1",
		StoryID:        "story-1",
		Title:          "Recover the ledger",
		Objective:      "Retrieve the smuggler's ledger from the customs house",
		GiverID:        "char-giver",
		TargetID:       "char-villain",
		RewardCurrency: CurrencyDiamond,
		RewardAmount:   50,
	}, nil, nil)
	if err != nil {
		t.Fatalf("CreateMission() error = %v", err)
	}
	return mission
}

func TestCreateMissionRequiresObjective(t *testing.T) {
	_, err := CreateMission(CreateMissionInput{PlayerID: "player-1"}, nil, nil)
	if !errors.Is(err, ErrEmptyObjective) {
		t.Fatalf("CreateMission() error = %v, want %v", err, ErrEmptyObjective)
	}
}

func TestMissionAdvanceProgress(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("caps at 100", func(t *testing.T) {
		mission := testMission(t)
		for i := 0; i < 5; i++ {
			if err := mission.AdvanceProgress(25, "step", now); err != nil {
				t.Fatalf("AdvanceProgress() error = %v", err)
			}
		}
		if mission.Progress != 100 {
			t.Errorf("Progress = %d, want 100", mission.Progress)
		}
		if mission.Status != MissionActive {
			t.Errorf("Status = %q, want active", mission.Status)
		}
	})

	t.Run("rejects negative delta", func(t *testing.T) {
		mission := testMission(t)
		if err := mission.AdvanceProgress(-10, "slip", now); !errors.Is(err, ErrProgressRegressed) {
			t.Fatalf("AdvanceProgress() error = %v, want %v", err, ErrProgressRegressed)
		}
	})

	t.Run("appends history", func(t *testing.T) {
		mission := testMission(t)
		if err := mission.AdvanceProgress(25, "found a lead", now); err != nil {
			t.Fatalf("AdvanceProgress() error = %v", err)
		}
		if got := len(mission.ProgressUpdates); got != 2 {
			t.Fatalf("ProgressUpdates length = %d, want 2", got)
		}
		last := mission.ProgressUpdates[1]
		if last.Progress != 25 || last.Description != "found a lead" {
			t.Errorf("last update = %+v", last)
		}
	})
}

func TestMissionTerminalStates(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("complete pins progress", func(t *testing.T) {
		mission := testMission(t)
		if err := mission.Complete("handed over the ledger", now); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if mission.Progress != 100 {
			t.Errorf("Progress = %d, want 100", mission.Progress)
		}
		if err := mission.AdvanceProgress(10, "late", now); !errors.Is(err, ErrMissionFinal) {
			t.Fatalf("AdvanceProgress() after complete error = %v, want %v", err, ErrMissionFinal)
		}
	})

	t.Run("fail keeps progress", func(t *testing.T) {
		mission := testMission(t)
		if err := mission.AdvanceProgress(25, "step", now); err != nil {
			t.Fatalf("AdvanceProgress() error = %v", err)
		}
		if err := mission.Fail("ledger burned", now); err != nil {
			t.Fatalf("Fail() error = %v", err)
		}
		if mission.Progress != 25 {
			t.Errorf("Progress = %d, want 25", mission.Progress)
		}
		if err := mission.Complete("too late", now); !errors.Is(err, ErrMissionFinal) {
			t.Fatalf("Complete() after fail error = %v, want %v", err, ErrMissionFinal)
		}
	})
}

func TestMissionApply(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		delta      MissionDelta
		wantStatus MissionStatus
		wantProg   int
	}{
		{"unchanged", MissionDelta{Status: DeltaUnchanged}, MissionActive, 0},
		{"progressed", MissionDelta{Status: DeltaProgressed, ProgressDelta: 25}, MissionActive, 25},
		{"completed", MissionDelta{Status: DeltaCompleted}, MissionCompleted, 100},
		{"failed", MissionDelta{Status: DeltaFailed}, MissionFailed, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mission := testMission(t)
			if err := mission.Apply(tt.delta, now); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if mission.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", mission.Status, tt.wantStatus)
			}
			if mission.Progress != tt.wantProg {
				t.Errorf("Progress = %d, want %d", mission.Progress, tt.wantProg)
			}
		})
	}
}
