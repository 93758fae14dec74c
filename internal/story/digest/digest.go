// Package digest builds bounded narrative context digests from a node's
// ancestor chain. The digest grounds the continuation prompt sent to the
// generation provider.
package digest

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/oleandergames/tradecraft/internal/platform/errors"
	"github.com/oleandergames/tradecraft/internal/platform/metrics"
	"github.com/oleandergames/tradecraft/internal/story/domain"
)

const (
	// DefaultMaxChars bounds the digest size in characters.
	DefaultMaxChars = 4000
	// DefaultMaxDepth bounds how many ancestors are walked.
	DefaultMaxDepth = 50

	sectionSeparator = "\n\n"
)

// NodeSource provides point lookups into the story graph.
type NodeSource interface {
	GetNode(ctx context.Context, nodeID string) (domain.StoryNode, error)
}

// Digest is the bounded context handed to the generation provider.
type Digest struct {
	Text    string
	Scenes  int
	Omitted int
}

// Synthesizer walks ancestor chains and renders them newest-first into
// a character-bounded digest.
type Synthesizer struct {
	nodes    NodeSource
	maxChars int
	maxDepth int
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithMaxChars overrides the digest character budget.
func WithMaxChars(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.maxChars = n
		}
	}
}

// WithMaxDepth overrides how many ancestors are walked.
func WithMaxDepth(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// NewSynthesizer creates a Synthesizer over a node source.
func NewSynthesizer(nodes NodeSource, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		nodes:    nodes,
		maxChars: DefaultMaxChars,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize builds the digest for a node. It fails only when the node
// itself is unknown. Ancestors with missing or unreadable metadata
// contribute their narrative text alone; a broken parent link ends the
// walk early instead of aborting.
func (s *Synthesizer) Synthesize(ctx context.Context, nodeID string) (Digest, error) {
	target, err := s.nodes.GetNode(ctx, nodeID)
	if err != nil {
		return Digest{}, errors.Wrap(errors.CodeNodeNotFound, fmt.Sprintf("digest target node %s", nodeID), err)
	}

	chain := []domain.StoryNode{target}
	parentID := target.ParentID
	for parentID != "" && len(chain) < s.maxDepth {
		node, err := s.nodes.GetNode(ctx, parentID)
		if err != nil {
			break
		}
		chain = append(chain, node)
		parentID = node.ParentID
	}
	depthTruncated := parentID != "" && len(chain) >= s.maxDepth

	// chain is newest-first; scene numbers count up from the oldest
	// node we walked.
	sections := make([]string, len(chain))
	for i, node := range chain {
		sections[i] = renderScene(len(chain)-i, node)
	}

	var included []string
	used := 0
	omitted := 0
	for i, section := range sections {
		sep := 0
		if len(included) > 0 {
			sep = len(sectionSeparator)
		}
		if used+sep+len(section) > s.maxChars {
			if i == 0 {
				// The newest scene must always be present, even cut.
				// Back off to a rune boundary so the cut cannot split
				// a multi-byte character.
				cut := s.maxChars
				for cut > 0 && !utf8.RuneStart(section[cut]) {
					cut--
				}
				included = append(included, section[:cut])
				used = cut
				omitted = len(sections) - 1
			} else {
				omitted = len(sections) - i
			}
			break
		}
		included = append(included, section)
		used += sep + len(section)
	}
	if depthTruncated && omitted == 0 {
		omitted = 1
	}

	if omitted > 0 {
		metrics.DigestTruncations.Inc()
		for {
			summary := fmt.Sprintf("Narrative continues from %d earlier encounters, summarized.", omitted)
			if used+len(sectionSeparator)+len(summary) <= s.maxChars || len(included) <= 1 {
				if used+len(sectionSeparator)+len(summary) <= s.maxChars {
					included = append(included, summary)
				}
				break
			}
			dropped := included[len(included)-1]
			included = included[:len(included)-1]
			used -= len(sectionSeparator) + len(dropped)
			omitted++
		}
	}

	return Digest{
		Text:    strings.Join(included, sectionSeparator),
		Scenes:  len(included),
		Omitted: omitted,
	}, nil
}

// renderScene formats one node's contribution: narrative text, the
// choice that produced it, the characters present, and mission deltas.
// Missing metadata degrades to narrative text alone.
func renderScene(number int, node domain.StoryNode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SCENE %d: %s", number, strings.TrimSpace(node.NarrativeText))

	meta := node.Metadata
	if meta.Empty() {
		return b.String()
	}

	if meta.SourceChoice != nil && meta.SourceChoice.Text != "" {
		fmt.Fprintf(&b, "\nThe player chose: %s", meta.SourceChoice.Text)
		if meta.SourceChoice.Consequence != "" {
			fmt.Fprintf(&b, " (%s)", meta.SourceChoice.Consequence)
		}
	}

	for _, interaction := range meta.Interactions {
		if interaction.CharacterName == "" {
			continue
		}
		fmt.Fprintf(&b, "\n%s (%s)", interaction.CharacterName, interaction.Role)
		if interaction.Opposition {
			b.WriteString(" opposes the player")
		}
		if interaction.Summary != "" {
			fmt.Fprintf(&b, ": %s", interaction.Summary)
		}
	}

	for _, delta := range meta.MissionDeltas {
		switch delta.Status {
		case domain.DeltaProgressed:
			fmt.Fprintf(&b, "\nMission %s progressed", delta.MissionID)
		case domain.DeltaCompleted:
			fmt.Fprintf(&b, "\nMission %s completed", delta.MissionID)
		case domain.DeltaFailed:
			fmt.Fprintf(&b, "\nMission %s failed", delta.MissionID)
		default:
			continue
		}
		if delta.Note != "" {
			fmt.Fprintf(&b, ": %s", delta.Note)
		}
	}

	return b.String()
}
