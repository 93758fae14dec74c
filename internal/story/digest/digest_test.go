package digest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/oleandergames/tradecraft/internal/platform/errors"
	"github.com/oleandergames/tradecraft/internal/story/domain"
)

type fakeNodes struct {
	nodes map[string]domain.StoryNode
}

func (f *fakeNodes) GetNode(_ context.Context, nodeID string) (domain.StoryNode, error) {
	node, ok := f.nodes[nodeID]
	if !ok {
		return domain.StoryNode{}, errors.New(errors.CodeNodeNotFound, "node "+nodeID+" not found")
	}
	return node, nil
}

// buildChain creates a linear chain of n nodes and returns the source
// plus the id of the newest node.
func buildChain(n int) (*fakeNodes, string) {
	source := &fakeNodes{nodes: make(map[string]domain.StoryNode)}
	parent := ""
	last := ""
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("node-%d", i)
		source.nodes[id] = domain.StoryNode{
			ID:            id,
			StoryID:       "story-1",
			ParentID:      parent,
			NarrativeText: fmt.Sprintf("Scene %d unfolds at the docks with hurried footsteps.", i),
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		parent = id
		last = id
	}
	return source, last
}

func TestSynthesizeUnknownNode(t *testing.T) {
	source, _ := buildChain(1)
	s := NewSynthesizer(source)
	if _, err := s.Synthesize(context.Background(), "node-missing"); err == nil {
		t.Fatal("Synthesize() expected error for unknown node")
	} else if errors.CodeOf(err) != errors.CodeNodeNotFound {
		t.Fatalf("Synthesize() code = %q, want %q", errors.CodeOf(err), errors.CodeNodeNotFound)
	}
}

func TestSynthesizeBudgetNeverExceeded(t *testing.T) {
	for _, chainLen := range []int{1, 50, 500} {
		for _, budget := range []int{60, 400, 4000} {
			t.Run(fmt.Sprintf("chain=%d budget=%d", chainLen, budget), func(t *testing.T) {
				source, newest := buildChain(chainLen)
				s := NewSynthesizer(source, WithMaxChars(budget), WithMaxDepth(1000))
				d, err := s.Synthesize(context.Background(), newest)
				if err != nil {
					t.Fatalf("Synthesize() error = %v", err)
				}
				if len(d.Text) > budget {
					t.Fatalf("digest length %d exceeds budget %d", len(d.Text), budget)
				}
				if !strings.Contains(d.Text, "SCENE") {
					t.Error("digest missing scene content")
				}
			})
		}
	}
}

func TestSynthesizeCutsAtRuneBoundary(t *testing.T) {
	source := &fakeNodes{nodes: map[string]domain.StoryNode{
		"node-0": {
			ID:            "node-0",
			StoryID:       "story-1",
			NarrativeText: strings.Repeat("💎💵💶", 200),
			CreatedAt:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}}

	// Sweep budgets around the emoji width so some land mid-rune.
	for budget := 40; budget < 60; budget++ {
		s := NewSynthesizer(source, WithMaxChars(budget))
		d, err := s.Synthesize(context.Background(), "node-0")
		if err != nil {
			t.Fatalf("Synthesize() error = %v", err)
		}
		if len(d.Text) > budget {
			t.Fatalf("budget %d: digest length %d", budget, len(d.Text))
		}
		if !utf8.ValidString(d.Text) {
			t.Fatalf("budget %d: digest cut through a rune: %q", budget, d.Text)
		}
	}
}

func TestSynthesizeNewestFirstWithSummary(t *testing.T) {
	source, newest := buildChain(50)
	s := NewSynthesizer(source, WithMaxChars(300), WithMaxDepth(1000))
	d, err := s.Synthesize(context.Background(), newest)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if d.Omitted == 0 {
		t.Fatal("expected omitted ancestors for a tight budget")
	}
	if !strings.Contains(d.Text, "Scene 49 unfolds") {
		t.Error("digest missing the newest scene")
	}
	if !strings.Contains(d.Text, "earlier encounters, summarized") {
		t.Error("digest missing omission summary line")
	}
	newestIdx := strings.Index(d.Text, "Scene 49")
	if older := strings.Index(d.Text, "Scene 48"); older != -1 && older < newestIdx {
		t.Error("older scene rendered before newest scene")
	}
}

func TestSynthesizeRespectsMaxDepth(t *testing.T) {
	source, newest := buildChain(20)
	s := NewSynthesizer(source, WithMaxChars(100000), WithMaxDepth(5))
	d, err := s.Synthesize(context.Background(), newest)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if strings.Contains(d.Text, "Scene 10 unfolds") {
		t.Error("digest walked past the depth limit")
	}
	if d.Omitted == 0 {
		t.Error("depth-limited digest should report omitted ancestors")
	}
}

func TestSynthesizeMetadataRendering(t *testing.T) {
	source, newest := buildChain(2)
	node := source.nodes[newest]
	node.Metadata = domain.BranchMetadata{
		SourceChoice: &domain.ChoiceRecord{Text: "Follow the courier", Consequence: "You are spotted"},
		Interactions: []domain.Interaction{
			{CharacterID: "c1", CharacterName: "Mara Voss", Role: domain.RoleVillain, Opposition: true, Summary: "blocks the alley"},
		},
		MissionDeltas: []domain.MissionDelta{
			{MissionID: "m1", Status: domain.DeltaProgressed, ProgressDelta: 25, Note: "courier identified"},
		},
	}
	source.nodes[newest] = node

	s := NewSynthesizer(source)
	d, err := s.Synthesize(context.Background(), newest)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	for _, want := range []string{
		"The player chose: Follow the courier (You are spotted)",
		"Mara Voss (villain) opposes the player: blocks the alley",
		"Mission m1 progressed: courier identified",
	} {
		if !strings.Contains(d.Text, want) {
			t.Errorf("digest missing %q", want)
		}
	}
}

func TestSynthesizeDegradesOnBrokenParentLink(t *testing.T) {
	source, newest := buildChain(3)
	node := source.nodes["node-1"]
	node.ParentID = "node-gone"
	source.nodes["node-1"] = node

	s := NewSynthesizer(source)
	d, err := s.Synthesize(context.Background(), newest)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !strings.Contains(d.Text, "Scene 2 unfolds") || !strings.Contains(d.Text, "Scene 1 unfolds") {
		t.Error("digest lost reachable ancestors")
	}
	if strings.Contains(d.Text, "Scene 0 unfolds") {
		t.Error("digest included node past the broken link")
	}
}

func TestSynthesizeEmptyMetadataNarrativeOnly(t *testing.T) {
	source, newest := buildChain(1)
	s := NewSynthesizer(source)
	d, err := s.Synthesize(context.Background(), newest)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if strings.Contains(d.Text, "The player chose") {
		t.Error("empty metadata produced choice content")
	}
	if d.Scenes != 1 || d.Omitted != 0 {
		t.Errorf("Scenes = %d, Omitted = %d", d.Scenes, d.Omitted)
	}
}
