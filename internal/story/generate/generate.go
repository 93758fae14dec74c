// Package generate calls the external narrative generation provider and
// parses its output into a node candidate.
package generate

import (
	"context"

	"github.com/oleandergames/tradecraft/internal/story/domain"
)

// Request carries everything the provider needs to continue a story.
type Request struct {
	ContextDigest string
	ChoiceText    string
	Protagonist   domain.Protagonist
	Parameters    domain.StoryParameters
	ActiveMission *domain.Mission
	Characters    []domain.Character
	Opening       bool
}

// Segment is one generated story beat: narrative text plus the
// structured metadata that will become the new node's branch metadata.
type Segment struct {
	NarrativeText string
	Choices       []domain.ChoiceRecord
	Interactions  []domain.Interaction
	MissionDeltas []domain.MissionDelta
	IsEndpoint    bool
}

// Generator produces the next story segment for a request. Failures
// carry their own retryable signal via errors.Code.Retryable.
type Generator interface {
	Generate(ctx context.Context, req Request) (Segment, error)
}
