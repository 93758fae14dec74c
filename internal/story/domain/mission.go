package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MissionStatus is the lifecycle state of a mission. Transitions are
// monotonic: a completed or failed mission never becomes active again.
type MissionStatus string

const (
	// MissionActive means the mission is in progress.
	MissionActive MissionStatus = "active"
	// MissionCompleted means the objective was met.
	MissionCompleted MissionStatus = "completed"
	// MissionFailed means the mission was lost.
	MissionFailed MissionStatus = "failed"
)

// DefaultProgressStep is the progress granted by a progressed delta
// that carries no explicit amount.
const DefaultProgressStep = 25

var (
	// ErrEmptyObjective indicates a mission is missing its objective.
	ErrEmptyObjective = errors.New("mission objective is required")
	// ErrMissionFinal indicates a terminal mission was asked to change.
	ErrMissionFinal = errors.New("mission status is final")
	// ErrProgressRegressed indicates a negative progress delta on an
	// active mission.
	ErrProgressRegressed = errors.New("mission progress cannot decrease while active")
)

// ProgressUpdate is one entry in a mission's ordered progress history.
type ProgressUpdate struct {
	Progress    int       `json:"progress"`
	Description string    `json:"description"`
	At          time.Time `json:"timestamp"`
}

// Mission is a player-scoped objective. It is exclusively owned by the
// PlayerProgress that created it; nodes reference it by id, never copy it.
type Mission struct {
	ID              string
	PlayerID        string
	StoryID         string
	Title           string
	Description     string
	Objective       string
	GiverID         string
	TargetID        string
	Status          MissionStatus
	Difficulty      string
	Progress        int // 0-100, monotonically non-decreasing while active
	RewardCurrency  Currency
	RewardAmount    int
	Deadline        time.Time
	ProgressUpdates []ProgressUpdate
	CreatedAt       time.Time
	CompletedAt     time.Time
}

// CreateMissionInput describes the data needed to create a mission.
type CreateMissionInput struct {
	PlayerID       string
	StoryID        string
	Title          string
	Description    string
	Objective      string
	GiverID        string
	TargetID       string
	Difficulty     string
	RewardCurrency Currency
	RewardAmount   int
	Deadline       time.Time
}

// CreateMission builds an active mission with a generated ID and an
// initial progress entry.
func CreateMission(input CreateMissionInput, now func() time.Time, idGenerator func() (string, error)) (Mission, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = NewID
	}

	input.Objective = strings.TrimSpace(input.Objective)
	if input.Objective == "" {
		return Mission{}, ErrEmptyObjective
	}
	if input.Difficulty == "" {
		input.Difficulty = "medium"
	}

	missionID, err := idGenerator()
	if err != nil {
		return Mission{}, fmt.Errorf("generate mission id: %w", err)
	}

	createdAt := now().UTC()
	return Mission{
		ID:             missionID,
		PlayerID:       strings.TrimSpace(input.PlayerID),
		StoryID:        strings.TrimSpace(input.StoryID),
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Objective:      input.Objective,
		GiverID:        strings.TrimSpace(input.GiverID),
		TargetID:       strings.TrimSpace(input.TargetID),
		Status:         MissionActive,
		Difficulty:     input.Difficulty,
		Progress:       0,
		RewardCurrency: input.RewardCurrency,
		RewardAmount:   input.RewardAmount,
		Deadline:       input.Deadline,
		ProgressUpdates: []ProgressUpdate{{
			Progress:    0,
			Description: "Mission assigned",
			At:          createdAt,
		}},
		CreatedAt: createdAt,
	}, nil
}

// Active reports whether the mission can still change.
func (m *Mission) Active() bool {
	return m.Status == MissionActive
}

// AdvanceProgress raises progress on an active mission, capped at 100.
// Negative deltas are rejected; terminal missions reject any change.
func (m *Mission) AdvanceProgress(delta int, note string, now time.Time) error {
	if !m.Active() {
		return ErrMissionFinal
	}
	if delta < 0 {
		return ErrProgressRegressed
	}
	next := m.Progress + delta
	if next > 100 {
		next = 100
	}
	m.Progress = next
	m.ProgressUpdates = append(m.ProgressUpdates, ProgressUpdate{
		Progress:    next,
		Description: note,
		At:          now.UTC(),
	})
	return nil
}

// Complete marks an active mission completed and pins progress at 100.
func (m *Mission) Complete(note string, now time.Time) error {
	if !m.Active() {
		return ErrMissionFinal
	}
	m.Status = MissionCompleted
	m.Progress = 100
	m.CompletedAt = now.UTC()
	m.ProgressUpdates = append(m.ProgressUpdates, ProgressUpdate{
		Progress:    100,
		Description: note,
		At:          now.UTC(),
	})
	return nil
}

// Fail marks an active mission failed. Progress stays where it was.
func (m *Mission) Fail(note string, now time.Time) error {
	if !m.Active() {
		return ErrMissionFinal
	}
	m.Status = MissionFailed
	m.CompletedAt = now.UTC()
	m.ProgressUpdates = append(m.ProgressUpdates, ProgressUpdate{
		Progress:    m.Progress,
		Description: note,
		At:          now.UTC(),
	})
	return nil
}

// Apply folds one metadata delta into the mission.
func (m *Mission) Apply(delta MissionDelta, now time.Time) error {
	switch delta.Status {
	case DeltaProgressed:
		return m.AdvanceProgress(delta.ProgressDelta, delta.Note, now)
	case DeltaCompleted:
		return m.Complete(delta.Note, now)
	case DeltaFailed:
		return m.Fail(delta.Note, now)
	default:
		return nil
	}
}
