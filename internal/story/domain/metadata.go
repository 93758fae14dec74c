package domain

import "strings"

// DeltaStatus describes how a node's metadata moves a mission.
type DeltaStatus string

const (
	// DeltaUnchanged leaves the mission as it was.
	DeltaUnchanged DeltaStatus = "unchanged"
	// DeltaProgressed advances the mission while it stays active.
	DeltaProgressed DeltaStatus = "progressed"
	// DeltaCompleted marks the mission completed.
	DeltaCompleted DeltaStatus = "completed"
	// DeltaFailed marks the mission failed.
	DeltaFailed DeltaStatus = "failed"
)

// ParseDeltaStatus maps a raw status string to a known DeltaStatus.
// Unknown values resolve to DeltaUnchanged.
func ParseDeltaStatus(raw string) DeltaStatus {
	switch DeltaStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case DeltaProgressed:
		return DeltaProgressed
	case DeltaCompleted:
		return DeltaCompleted
	case DeltaFailed:
		return DeltaFailed
	default:
		return DeltaUnchanged
	}
}

// Interaction records one character's appearance in a node.
type Interaction struct {
	CharacterID   string `json:"character_id"`
	CharacterName string `json:"character_name"`
	Role          Role   `json:"role"`
	Opposition    bool   `json:"opposition"`
	Summary       string `json:"summary"`
}

// MissionDelta records one mission-state change implied by a node.
type MissionDelta struct {
	MissionID     string      `json:"mission_id"`
	Status        DeltaStatus `json:"status"`
	ProgressDelta int         `json:"progress_delta"`
	Note          string      `json:"note"`
}

// ChoiceRecord is the metadata form of a choice: either one of the
// choices a node offers, or the choice that produced the node.
type ChoiceRecord struct {
	ID          string           `json:"choice_id"`
	Text        string           `json:"text"`
	Consequence string           `json:"consequence"`
	Kind        ChoiceKind       `json:"type"`
	Cost        map[Currency]int `json:"currency_requirements,omitempty"`
	CharacterID string           `json:"character_id,omitempty"`
}

// Protagonist carries the player-character details pinned at story start.
type Protagonist struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
}

// StoryParameters are the generation parameters carried on every node
// so context synthesis stays deterministic for any ancestor.
type StoryParameters struct {
	Conflict       string `json:"conflict"`
	Setting        string `json:"setting"`
	NarrativeStyle string `json:"narrative_style"`
	Mood           string `json:"mood"`
}

// BranchMetadata is the closed set of structured annotations on a node.
// It is written once at node creation and never mutated afterwards;
// synthesis and consistency checks pattern-match on these fields instead
// of scraping free text.
type BranchMetadata struct {
	SourceChoice  *ChoiceRecord   `json:"source_choice,omitempty"`
	Choices       []ChoiceRecord  `json:"choices,omitempty"`
	Interactions  []Interaction   `json:"interactions,omitempty"`
	MissionDeltas []MissionDelta  `json:"mission_deltas,omitempty"`
	Protagonist   Protagonist     `json:"protagonist"`
	Parameters    StoryParameters `json:"story_parameters"`
}

// Empty reports whether the metadata carries no structured entries.
func (m BranchMetadata) Empty() bool {
	return m.SourceChoice == nil &&
		len(m.Choices) == 0 &&
		len(m.Interactions) == 0 &&
		len(m.MissionDeltas) == 0
}
