package engine

import (
	"context"
	"sort"
	"sync"

	"github.com/oleandergames/tradecraft/internal/platform/errors"
	"github.com/oleandergames/tradecraft/internal/story/domain"
	"github.com/oleandergames/tradecraft/internal/story/generate"
	"github.com/oleandergames/tradecraft/internal/story/storage"
)

// fakeStore is an in-memory storage.Store with the same concurrency
// guard semantics as the sqlite implementation.
type fakeStore struct {
	mu         sync.Mutex
	stories    map[string]domain.Story
	nodes      map[string]domain.StoryNode
	choices    map[string][]domain.Choice
	progress   map[string]domain.PlayerProgress
	missions   map[string]domain.Mission
	characters map[string]domain.Character

	// beforeCommit, when set, runs once at the start of the next
	// CommitTransition with the lock held. Tests use it to interleave
	// a racing write between read and commit. beforeBalances does the
	// same for UpdateBalances.
	beforeCommit   func()
	beforeBalances func()

	// lastCommitHadDeadline records whether the most recent
	// CommitTransition arrived with a context deadline.
	lastCommitHadDeadline bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stories:    map[string]domain.Story{},
		nodes:      map[string]domain.StoryNode{},
		choices:    map[string][]domain.Choice{},
		progress:   map[string]domain.PlayerProgress{},
		missions:   map[string]domain.Mission{},
		characters: map[string]domain.Character{},
	}
}

func progressKey(playerID, storyID string) string { return playerID + "|" + storyID }

func (f *fakeStore) CreateStory(_ context.Context, story domain.Story, root domain.StoryNode, choices []domain.Choice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	story.RootNodeID = root.ID
	f.stories[story.ID] = story
	f.nodes[root.ID] = root
	f.choices[root.ID] = append([]domain.Choice{}, choices...)
	return nil
}

func (f *fakeStore) GetStory(_ context.Context, storyID string) (domain.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	story, ok := f.stories[storyID]
	if !ok {
		return domain.Story{}, errors.New(errors.CodeStoryNotFound, "story "+storyID+" not found")
	}
	return story, nil
}

func (f *fakeStore) GetNode(_ context.Context, nodeID string) (domain.StoryNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	node, ok := f.nodes[nodeID]
	if !ok {
		return domain.StoryNode{}, errors.New(errors.CodeNodeNotFound, "node "+nodeID+" not found")
	}
	return node, nil
}

func (f *fakeStore) GetRootNode(_ context.Context, storyID string) (domain.StoryNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, node := range f.nodes {
		if node.StoryID == storyID && node.Root() {
			return node, nil
		}
	}
	return domain.StoryNode{}, errors.New(errors.CodeStoryNotFound, "story "+storyID+" has no root")
}

func (f *fakeStore) LatestNodeOnPath(_ context.Context, playerID, storyID string) (domain.StoryNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	progress, ok := f.progress[progressKey(playerID, storyID)]
	if !ok {
		return domain.StoryNode{}, errors.New(errors.CodePlayerNotFound, "no progress")
	}
	var visited []domain.StoryNode
	for _, taken := range progress.ChoiceHistory {
		if node, ok := f.nodes[taken.ToNodeID]; ok && node.StoryID == storyID {
			visited = append(visited, node)
		}
	}
	if len(visited) == 0 {
		return domain.StoryNode{}, errors.New(errors.CodeNodeNotFound, "no visited nodes")
	}
	sort.Slice(visited, func(i, j int) bool {
		if !visited[i].CreatedAt.Equal(visited[j].CreatedAt) {
			return visited[i].CreatedAt.After(visited[j].CreatedAt)
		}
		return visited[i].ID > visited[j].ID
	})
	return visited[0], nil
}

func (f *fakeStore) GetChoices(_ context.Context, nodeID string) ([]domain.Choice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Choice{}, f.choices[nodeID]...), nil
}

func (f *fakeStore) GetChoice(_ context.Context, nodeID, choiceID string) (domain.Choice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, choice := range f.choices[nodeID] {
		if choice.ID == choiceID {
			return choice, nil
		}
	}
	return domain.Choice{}, errors.New(errors.CodeChoiceNotFound, "choice "+choiceID+" not found")
}

func (f *fakeStore) CreateProgress(_ context.Context, progress domain.PlayerProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress[progressKey(progress.PlayerID, progress.StoryID)] = progress
	return nil
}

func (f *fakeStore) GetProgress(_ context.Context, playerID, storyID string) (domain.PlayerProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	progress, ok := f.progress[progressKey(playerID, storyID)]
	if !ok {
		return domain.PlayerProgress{}, errors.New(errors.CodePlayerNotFound, "no progress")
	}
	// The sqlite store decodes fresh values on every read; hand out a
	// copy so callers mutating the result cannot reach stored state.
	progress.Balances = copyBalances(progress.Balances)
	progress.ChoiceHistory = append([]domain.ChoiceTaken{}, progress.ChoiceHistory...)
	progress.ActiveMissions = append([]string{}, progress.ActiveMissions...)
	progress.CompletedMissions = append([]string{}, progress.CompletedMissions...)
	progress.FailedMissions = append([]string{}, progress.FailedMissions...)
	progress.EncounteredCharacters = append([]string{}, progress.EncounteredCharacters...)
	return progress, nil
}

func copyBalances(balances map[domain.Currency]int) map[domain.Currency]int {
	copied := make(map[domain.Currency]int, len(balances))
	for currency, amount := range balances {
		copied[currency] = amount
	}
	return copied
}

func (f *fakeStore) UpdateBalances(_ context.Context, playerID, storyID string, balances, expected map[domain.Currency]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.beforeBalances != nil {
		hook := f.beforeBalances
		f.beforeBalances = nil
		hook()
	}

	key := progressKey(playerID, storyID)
	progress, ok := f.progress[key]
	if !ok {
		return errors.New(errors.CodePlayerNotFound, "no progress")
	}
	if !balancesEqual(progress.Balances, expected) {
		return errors.New(errors.CodeConcurrentModification, "balances changed since read")
	}
	progress.Balances = balances
	f.progress[key] = progress
	return nil
}

func balancesEqual(a, b map[domain.Currency]int) bool {
	if len(a) != len(b) {
		return false
	}
	for currency, amount := range a {
		if b[currency] != amount {
			return false
		}
	}
	return true
}

func (f *fakeStore) GetMission(_ context.Context, missionID string) (domain.Mission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mission, ok := f.missions[missionID]
	if !ok {
		return domain.Mission{}, errors.New(errors.CodeMissionNotFound, "mission "+missionID+" not found")
	}
	return mission, nil
}

func (f *fakeStore) ListMissions(_ context.Context, playerID, storyID string) ([]domain.Mission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var missions []domain.Mission
	for _, mission := range f.missions {
		if mission.PlayerID == playerID && mission.StoryID == storyID {
			missions = append(missions, mission)
		}
	}
	sort.Slice(missions, func(i, j int) bool { return missions[i].ID < missions[j].ID })
	return missions, nil
}

func (f *fakeStore) PutCharacter(_ context.Context, character domain.Character) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.characters[character.ID] = character
	return nil
}

func (f *fakeStore) GetCharacter(_ context.Context, characterID string) (domain.Character, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	character, ok := f.characters[characterID]
	if !ok {
		return domain.Character{}, errors.New(errors.CodeCharacterNotFound, "character not found")
	}
	return character, nil
}

func (f *fakeStore) ListCharacters(_ context.Context) ([]domain.Character, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var characters []domain.Character
	for _, character := range f.characters {
		characters = append(characters, character)
	}
	sort.Slice(characters, func(i, j int) bool { return characters[i].ID < characters[j].ID })
	return characters, nil
}

func (f *fakeStore) CommitTransition(ctx context.Context, commit storage.TransitionCommit) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, f.lastCommitHadDeadline = ctx.Deadline()

	if f.beforeCommit != nil {
		hook := f.beforeCommit
		f.beforeCommit = nil
		hook()
	}

	key := progressKey(commit.Progress.PlayerID, commit.Progress.StoryID)
	stored, ok := f.progress[key]
	if !ok {
		return errors.New(errors.CodePlayerNotFound, "no progress")
	}
	if stored.CurrentNodeID != commit.ExpectedNodeID {
		return errors.New(errors.CodeConcurrentModification, "current node moved")
	}
	if commit.ResolveChoice != nil {
		found := false
		for _, choice := range f.choices[commit.ResolveChoice.SourceNodeID] {
			if choice.ID == commit.ResolveChoice.ID {
				if choice.Resolved() {
					return errors.New(errors.CodeChoiceAlreadyResolved, "choice already resolved")
				}
				found = true
			}
		}
		if !found {
			return errors.New(errors.CodeChoiceNotFound, "resolve target missing")
		}
	}

	// All checks passed; apply everything.
	if commit.NewNode != nil {
		f.nodes[commit.NewNode.ID] = *commit.NewNode
	}
	for _, choice := range commit.NewChoices {
		f.choices[choice.SourceNodeID] = append(f.choices[choice.SourceNodeID], choice)
	}
	if commit.ResolveChoice != nil {
		edges := f.choices[commit.ResolveChoice.SourceNodeID]
		for i := range edges {
			if edges[i].ID == commit.ResolveChoice.ID {
				edges[i].DestinationNodeID = commit.ResolveChoice.DestinationNodeID
			}
		}
	}
	for _, mission := range commit.NewMissions {
		f.missions[mission.ID] = mission
	}
	for _, mission := range commit.UpdatedMissions {
		f.missions[mission.ID] = mission
	}
	f.progress[key] = commit.Progress
	return nil
}

// fakeGenerator returns queued segments, recording how often it ran.
type fakeGenerator struct {
	mu       sync.Mutex
	segments []generate.Segment
	err      error
	calls    int
	lastReq  generate.Request
}

func (g *fakeGenerator) Generate(_ context.Context, req generate.Request) (generate.Segment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastReq = req
	if g.err != nil {
		return generate.Segment{}, g.err
	}
	if len(g.segments) == 0 {
		return generate.Segment{NarrativeText: "A quiet beat passes."}, nil
	}
	segment := g.segments[0]
	if len(g.segments) > 1 {
		g.segments = g.segments[1:]
	}
	return segment, nil
}
