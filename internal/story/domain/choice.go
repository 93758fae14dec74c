package domain

import (
	"errors"
	"strings"
	"time"
)

// ChoiceKind classifies how a choice approaches the situation.
type ChoiceKind string

const (
	// ChoiceDirect advances the mission head-on.
	ChoiceDirect ChoiceKind = "direct"
	// ChoiceRisky takes a dangerous approach.
	ChoiceRisky ChoiceKind = "risky"
	// ChoiceSocial involves another character.
	ChoiceSocial ChoiceKind = "social"
)

// ParseChoiceKind maps a raw kind string to a known ChoiceKind.
// Unknown values resolve to ChoiceDirect.
func ParseChoiceKind(raw string) ChoiceKind {
	switch ChoiceKind(strings.ToLower(strings.TrimSpace(raw))) {
	case ChoiceRisky:
		return ChoiceRisky
	case ChoiceSocial:
		return ChoiceSocial
	default:
		return ChoiceDirect
	}
}

// ErrEmptyChoiceText indicates a choice is missing display text.
var ErrEmptyChoiceText = errors.New("choice text is required")

// Choice is a labeled edge out of a story node. Its destination is empty
// until a player takes the choice; once set it is immutable and must
// reference a node whose parent is the choice's source.
type Choice struct {
	ID                string
	SourceNodeID      string
	Text              string
	Consequence       string
	Kind              ChoiceKind
	Cost              map[Currency]int
	CharacterID       string
	DestinationNodeID string
	Position          int
	CreatedAt         time.Time
}

// Resolved reports whether the choice already leads to a committed node.
func (c Choice) Resolved() bool {
	return c.DestinationNodeID != ""
}

// ChoiceFromRecord builds an edge from its metadata form under a source node.
func ChoiceFromRecord(sourceNodeID string, record ChoiceRecord, position int, now time.Time) (Choice, error) {
	text := strings.TrimSpace(record.Text)
	if text == "" {
		return Choice{}, ErrEmptyChoiceText
	}
	id := strings.TrimSpace(record.ID)
	if id == "" {
		generated, err := NewID()
		if err != nil {
			return Choice{}, err
		}
		id = generated
	}
	return Choice{
		ID:           id,
		SourceNodeID: sourceNodeID,
		Text:         text,
		Consequence:  strings.TrimSpace(record.Consequence),
		Kind:         ParseChoiceKind(string(record.Kind)),
		Cost:         record.Cost,
		CharacterID:  strings.TrimSpace(record.CharacterID),
		Position:     position,
		CreatedAt:    now.UTC(),
	}, nil
}

// Record converts the edge back to its metadata form.
func (c Choice) Record() ChoiceRecord {
	return ChoiceRecord{
		ID:          c.ID,
		Text:        c.Text,
		Consequence: c.Consequence,
		Kind:        c.Kind,
		Cost:        c.Cost,
		CharacterID: c.CharacterID,
	}
}
