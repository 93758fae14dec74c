package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/oleandergames/tradecraft/internal/story/domain"
	"github.com/oleandergames/tradecraft/internal/story/engine"
)

type nodeDTO struct {
	ID            string    `json:"node_id"`
	StoryID       string    `json:"story_id"`
	ParentID      string    `json:"parent_node_id,omitempty"`
	NarrativeText string    `json:"narrative_text"`
	IsEndpoint    bool      `json:"is_endpoint"`
	CreatedAt     time.Time `json:"created_at"`
}

type choiceDTO struct {
	ID          string                  `json:"choice_id"`
	Text        string                  `json:"text"`
	Consequence string                  `json:"consequence,omitempty"`
	Kind        domain.ChoiceKind       `json:"type"`
	Cost        map[domain.Currency]int `json:"currency_requirements,omitempty"`
	CharacterID string                  `json:"character_id,omitempty"`
	Resolved    bool                    `json:"resolved"`
}

type missionDTO struct {
	ID             string               `json:"mission_id"`
	Title          string               `json:"title"`
	Objective      string               `json:"objective"`
	GiverID        string               `json:"giver_id,omitempty"`
	Status         domain.MissionStatus `json:"status"`
	Progress       int                  `json:"progress"`
	RewardCurrency domain.Currency      `json:"reward_currency,omitempty"`
	RewardAmount   int                  `json:"reward_amount,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	CompletedAt    *time.Time           `json:"completed_at,omitempty"`
}

type stateResponse struct {
	Node     nodeDTO                 `json:"node"`
	Choices  []choiceDTO             `json:"choices"`
	Balances map[domain.Currency]int `json:"balances"`
	Missions missionSetsDTO          `json:"missions"`
}

type missionSetsDTO struct {
	Active    []string `json:"active"`
	Completed []string `json:"completed"`
	Failed    []string `json:"failed"`
}

type transitionResponse struct {
	Node     nodeDTO                 `json:"node"`
	Choices  []choiceDTO             `json:"choices"`
	StoryID  string                  `json:"story_id"`
	Balances map[domain.Currency]int `json:"balances"`
	Missions missionSetsDTO          `json:"missions"`
	Replayed bool                    `json:"replayed"`
}

func toNodeDTO(node domain.StoryNode) nodeDTO {
	return nodeDTO{
		ID:            node.ID,
		StoryID:       node.StoryID,
		ParentID:      node.ParentID,
		NarrativeText: node.NarrativeText,
		IsEndpoint:    node.IsEndpoint,
		CreatedAt:     node.CreatedAt,
	}
}

func toChoiceDTOs(choices []domain.Choice) []choiceDTO {
	out := make([]choiceDTO, 0, len(choices))
	for _, c := range choices {
		out = append(out, choiceDTO{
			ID:          c.ID,
			Text:        c.Text,
			Consequence: c.Consequence,
			Kind:        c.Kind,
			Cost:        c.Cost,
			CharacterID: c.CharacterID,
			Resolved:    c.Resolved(),
		})
	}
	return out
}

func toMissionDTOs(missions []domain.Mission) []missionDTO {
	out := make([]missionDTO, 0, len(missions))
	for _, m := range missions {
		dto := missionDTO{
			ID:             m.ID,
			Title:          m.Title,
			Objective:      m.Objective,
			GiverID:        m.GiverID,
			Status:         m.Status,
			Progress:       m.Progress,
			RewardCurrency: m.RewardCurrency,
			RewardAmount:   m.RewardAmount,
			CreatedAt:      m.CreatedAt,
		}
		if !m.CompletedAt.IsZero() {
			completed := m.CompletedAt
			dto.CompletedAt = &completed
		}
		out = append(out, dto)
	}
	return out
}

func toMissionSetsDTO(sets engine.MissionSets) missionSetsDTO {
	return missionSetsDTO{
		Active:    sets.Active,
		Completed: sets.Completed,
		Failed:    sets.Failed,
	}
}

func toTransitionResponse(result engine.TransitionResult) transitionResponse {
	return transitionResponse{
		Node:     toNodeDTO(result.Node),
		Choices:  toChoiceDTOs(result.Choices),
		StoryID:  result.Node.StoryID,
		Balances: result.Progress.Balances,
		Missions: missionSetsDTO{
			Active:    result.Progress.ActiveMissions,
			Completed: result.Progress.CompletedMissions,
			Failed:    result.Progress.FailedMissions,
		},
		Replayed: result.Replayed,
	}
}

func playerAndStory(r *http.Request) (string, string, error) {
	playerID := strings.TrimSpace(r.URL.Query().Get("player_id"))
	if playerID == "" {
		return "", "", invalidRequest("player_id is required")
	}
	storyID := strings.TrimSpace(r.URL.Query().Get("story_id"))
	if storyID == "" {
		return "", "", invalidRequest("story_id is required")
	}
	return playerID, storyID, nil
}

func (s *Server) handleResolveState(w http.ResponseWriter, r *http.Request) {
	playerID, storyID, err := playerAndStory(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	summary, err := s.engine.ResolveState(r.Context(), playerID, storyID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, stateResponse{
		Node:     toNodeDTO(summary.Node),
		Choices:  toChoiceDTOs(summary.Choices),
		Balances: summary.Balances,
		Missions: toMissionSetsDTO(summary.Missions),
	})
}

type applyChoiceRequest struct {
	PlayerID string `json:"player_id"`
	StoryID  string `json:"story_id"`
	ChoiceID string `json:"choice_id"`
	FreeText string `json:"free_text"`
}

func (s *Server) handleApplyChoice(w http.ResponseWriter, r *http.Request) {
	var req applyChoiceRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.PlayerID) == "" {
		respondError(w, r, invalidRequest("player_id is required"))
		return
	}
	if strings.TrimSpace(req.StoryID) == "" {
		respondError(w, r, invalidRequest("story_id is required"))
		return
	}

	result, err := s.engine.ApplyChoice(r.Context(), req.PlayerID, req.StoryID, engine.ApplyChoiceInput{
		ChoiceID: req.ChoiceID,
		FreeText: req.FreeText,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	respondSuccess(w, status, toTransitionResponse(result))
}

type startStoryRequest struct {
	PlayerID    string `json:"player_id"`
	Title       string `json:"title"`
	Protagonist struct {
		Name   string `json:"name"`
		Gender string `json:"gender"`
	} `json:"protagonist"`
	Parameters struct {
		Conflict       string `json:"conflict"`
		Setting        string `json:"setting"`
		NarrativeStyle string `json:"narrative_style"`
		Mood           string `json:"mood"`
	} `json:"story_parameters"`
	Mission struct {
		Objective string `json:"objective"`
		GiverID   string `json:"giver_id"`
	} `json:"mission"`
}

func (s *Server) handleStartStory(w http.ResponseWriter, r *http.Request) {
	var req startStoryRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.PlayerID) == "" {
		respondError(w, r, invalidRequest("player_id is required"))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		respondError(w, r, invalidRequest("title is required"))
		return
	}

	result, err := s.engine.StartStory(r.Context(), req.PlayerID, engine.StartStoryInput{
		Title: req.Title,
		Protagonist: domain.Protagonist{
			Name:   req.Protagonist.Name,
			Gender: req.Protagonist.Gender,
		},
		Parameters: domain.StoryParameters{
			Conflict:       req.Parameters.Conflict,
			Setting:        req.Parameters.Setting,
			NarrativeStyle: req.Parameters.NarrativeStyle,
			Mood:           req.Parameters.Mood,
		},
		MissionObjective: req.Mission.Objective,
		MissionGiverID:   req.Mission.GiverID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusCreated, toTransitionResponse(result))
}

type missionsResponse struct {
	Active    []missionDTO `json:"active"`
	Completed []missionDTO `json:"completed"`
	Failed    []missionDTO `json:"failed"`
}

func (s *Server) handleMissions(w http.ResponseWriter, r *http.Request) {
	playerID, storyID, err := playerAndStory(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	list, err := s.engine.Missions(r.Context(), playerID, storyID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, missionsResponse{
		Active:    toMissionDTOs(list.Active),
		Completed: toMissionDTOs(list.Completed),
		Failed:    toMissionDTOs(list.Failed),
	})
}

type exchangeRequest struct {
	PlayerID string `json:"player_id"`
	StoryID  string `json:"story_id"`
	From     string `json:"from_currency"`
	To       string `json:"to_currency"`
	Amount   int    `json:"amount"`
}

type exchangeResponse struct {
	Converted int             `json:"converted"`
	From      domain.Currency `json:"from_currency"`
	To        domain.Currency `json:"to_currency"`
}

func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.PlayerID) == "" {
		respondError(w, r, invalidRequest("player_id is required"))
		return
	}
	if strings.TrimSpace(req.StoryID) == "" {
		respondError(w, r, invalidRequest("story_id is required"))
		return
	}
	if req.Amount <= 0 {
		respondError(w, r, invalidRequest("amount must be positive"))
		return
	}

	from := domain.Currency(strings.TrimSpace(req.From))
	to := domain.Currency(strings.TrimSpace(req.To))
	converted, err := s.engine.ExchangeCurrency(r.Context(), req.PlayerID, req.StoryID, from, to, req.Amount)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, exchangeResponse{
		Converted: converted,
		From:      from,
		To:        to,
	})
}
