package generate

import (
	"encoding/json"
	"strings"

	"github.com/oleandergames/tradecraft/internal/platform/errors"
	"github.com/oleandergames/tradecraft/internal/story/domain"
)

type wireSegment struct {
	NarrativeText string                 `json:"narrative_text"`
	Story         string                 `json:"story"`
	Choices       []domain.ChoiceRecord  `json:"choices"`
	Interactions  []domain.Interaction   `json:"character_interactions"`
	MissionUpdate *domain.MissionDelta   `json:"mission_update"`
	MissionBatch  []domain.MissionDelta  `json:"mission_updates"`
	IsEndpoint    bool                   `json:"is_endpoint"`
}

// ParseSegment decodes provider output into a Segment. Providers wrap
// JSON in markdown fences often enough that fences are stripped first.
// Output with no usable narrative text is a generation failure.
func ParseSegment(raw string) (Segment, error) {
	cleaned := stripFences(raw)

	var wire wireSegment
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return Segment{}, errors.Wrap(errors.CodeGenerationFailed, "decode generated segment", err)
	}

	text := strings.TrimSpace(wire.NarrativeText)
	if text == "" {
		text = strings.TrimSpace(wire.Story)
	}
	if text == "" {
		return Segment{}, errors.New(errors.CodeGenerationFailed, "generated segment has no narrative text")
	}

	segment := Segment{
		NarrativeText: text,
		Interactions:  wire.Interactions,
		IsEndpoint:    wire.IsEndpoint,
	}

	for _, choice := range wire.Choices {
		if strings.TrimSpace(choice.Text) == "" {
			continue
		}
		choice.Kind = domain.ParseChoiceKind(string(choice.Kind))
		segment.Choices = append(segment.Choices, choice)
	}

	for i := range segment.Interactions {
		segment.Interactions[i].Role = domain.ParseRole(string(segment.Interactions[i].Role))
	}

	deltas := wire.MissionBatch
	if wire.MissionUpdate != nil {
		deltas = append(deltas, *wire.MissionUpdate)
	}
	for _, delta := range deltas {
		delta.Status = domain.ParseDeltaStatus(string(delta.Status))
		if delta.Status == domain.DeltaUnchanged {
			continue
		}
		if delta.Status == domain.DeltaProgressed && delta.ProgressDelta == 0 {
			delta.ProgressDelta = domain.DefaultProgressStep
		}
		segment.MissionDeltas = append(segment.MissionDeltas, delta)
	}

	return segment, nil
}

// stripFences removes a surrounding markdown code fence, with or
// without a language tag.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
