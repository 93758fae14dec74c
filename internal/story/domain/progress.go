package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyPlayerID indicates a player id is required but missing.
	ErrEmptyPlayerID = errors.New("player id is required")
)

// ChoiceTaken is one entry in a player's ordered choice history.
type ChoiceTaken struct {
	ChoiceID   string    `json:"choice_id"`
	FromNodeID string    `json:"from_node_id"`
	ToNodeID   string    `json:"to_node_id"`
	At         time.Time `json:"timestamp"`
}

// PlayerProgress is a player's private cursor into a shared story tree.
// The tree itself is never duplicated per player; progress holds only a
// node index plus player-owned state such as balances and missions.
type PlayerProgress struct {
	PlayerID              string
	StoryID               string
	CurrentNodeID         string
	Balances              map[Currency]int
	ChoiceHistory         []ChoiceTaken
	ActiveMissions        []string
	CompletedMissions     []string
	FailedMissions        []string
	EncounteredCharacters []string
	NodeCount             int
	CreatedAt             time.Time
	LastActive            time.Time
}

// NewPlayerProgress creates fresh progress positioned at the story root
// with the default balances for every known currency.
func NewPlayerProgress(playerID, storyID, rootNodeID string, now func() time.Time) (PlayerProgress, error) {
	if now == nil {
		now = time.Now
	}
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return PlayerProgress{}, ErrEmptyPlayerID
	}
	storyID = strings.TrimSpace(storyID)
	if storyID == "" {
		return PlayerProgress{}, ErrEmptyStoryID
	}

	createdAt := now().UTC()
	return PlayerProgress{
		PlayerID:      playerID,
		StoryID:       storyID,
		CurrentNodeID: strings.TrimSpace(rootNodeID),
		Balances:      DefaultBalances(),
		NodeCount:     1,
		CreatedAt:     createdAt,
		LastActive:    createdAt,
	}, nil
}

// Balance returns the held amount for a currency, zero when absent.
func (p *PlayerProgress) Balance(currency Currency) int {
	return p.Balances[currency]
}

// MoveTo advances the cursor to a node and records the choice taken.
func (p *PlayerProgress) MoveTo(choiceID, toNodeID string, now time.Time) {
	p.ChoiceHistory = append(p.ChoiceHistory, ChoiceTaken{
		ChoiceID:   choiceID,
		FromNodeID: p.CurrentNodeID,
		ToNodeID:   toNodeID,
		At:         now.UTC(),
	})
	p.CurrentNodeID = toNodeID
	p.NodeCount++
	p.LastActive = now.UTC()
}

// RecordEncounter notes that the player has met a character. Repeats
// are ignored so the slice stays a set.
func (p *PlayerProgress) RecordEncounter(characterID string) {
	characterID = strings.TrimSpace(characterID)
	if characterID == "" {
		return
	}
	for _, id := range p.EncounteredCharacters {
		if id == characterID {
			return
		}
	}
	p.EncounteredCharacters = append(p.EncounteredCharacters, characterID)
}

// TrackMission moves a mission id into the set matching its status,
// removing it from the other two first. The three sets stay disjoint.
func (p *PlayerProgress) TrackMission(missionID string, status MissionStatus) error {
	missionID = strings.TrimSpace(missionID)
	if missionID == "" {
		return errors.New("mission id is required")
	}
	p.ActiveMissions = removeID(p.ActiveMissions, missionID)
	p.CompletedMissions = removeID(p.CompletedMissions, missionID)
	p.FailedMissions = removeID(p.FailedMissions, missionID)
	switch status {
	case MissionActive:
		p.ActiveMissions = append(p.ActiveMissions, missionID)
	case MissionCompleted:
		p.CompletedMissions = append(p.CompletedMissions, missionID)
	case MissionFailed:
		p.FailedMissions = append(p.FailedMissions, missionID)
	default:
		return fmt.Errorf("unknown mission status %q", status)
	}
	return nil
}

// HasActiveMission reports whether a mission id is in the active set.
func (p *PlayerProgress) HasActiveMission(missionID string) bool {
	for _, id := range p.ActiveMissions {
		if id == missionID {
			return true
		}
	}
	return false
}

func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
