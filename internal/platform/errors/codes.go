// Package errors provides structured error handling for the story engine.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"
	// CodeInvalidRequest represents a malformed or incomplete request.
	CodeInvalidRequest Code = "INVALID_REQUEST"

	// Graph errors
	CodeStoryNotFound     Code = "STORY_NOT_FOUND"
	CodeNodeNotFound      Code = "NODE_NOT_FOUND"
	CodeNodeEmptyText     Code = "NODE_EMPTY_NARRATIVE_TEXT"
	CodeNodeParentMissing Code = "NODE_PARENT_MISSING"
	CodeNodeWrongStory    Code = "NODE_WRONG_STORY"

	// Choice errors
	CodeChoiceNotFound        Code = "CHOICE_NOT_FOUND"
	CodeChoiceAlreadyResolved Code = "CHOICE_ALREADY_RESOLVED"
	CodeChoiceEmptyText       Code = "CHOICE_EMPTY_TEXT"

	// Player and character errors
	CodePlayerNotFound    Code = "PLAYER_NOT_FOUND"
	CodeCharacterNotFound Code = "CHARACTER_NOT_FOUND"
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"
	CodeInvalidExchange   Code = "INVALID_CURRENCY_EXCHANGE"

	// Consistency errors
	CodeConsistencyMissionUnknown      Code = "CONSISTENCY_MISSION_NOT_ACTIVE"
	CodeConsistencyMissionBothTerminal Code = "CONSISTENCY_MISSION_COMPLETED_AND_FAILED"
	CodeConsistencyProgressRegressed   Code = "CONSISTENCY_MISSION_PROGRESS_REGRESSED"
	CodeConsistencyGiverNoMission      Code = "CONSISTENCY_MISSION_GIVER_WITHOUT_MISSION"
	CodeConsistencyVillainNoOpposition Code = "CONSISTENCY_VILLAIN_WITHOUT_OPPOSITION"

	// Mission errors
	CodeMissionNotFound         Code = "MISSION_NOT_FOUND"
	CodeMissionStatusFinal      Code = "MISSION_STATUS_FINAL"
	CodeMissionInvalidProgress  Code = "MISSION_INVALID_PROGRESS"
	CodeMissionEmptyObjective   Code = "MISSION_EMPTY_OBJECTIVE"

	// Transition errors
	CodeGenerationFailed       Code = "GENERATION_FAILED"
	CodeConcurrentModification Code = "CONCURRENT_MODIFICATION"
)

// HTTPStatus maps an error code to an HTTP status for the API layer.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeStoryNotFound, CodeNodeNotFound, CodeChoiceNotFound,
		CodePlayerNotFound, CodeCharacterNotFound, CodeMissionNotFound:
		return http.StatusNotFound
	case CodeInsufficientFunds:
		return http.StatusPaymentRequired
	case CodeConcurrentModification, CodeChoiceAlreadyResolved,
		CodeConsistencyMissionUnknown, CodeConsistencyMissionBothTerminal,
		CodeConsistencyProgressRegressed, CodeConsistencyGiverNoMission,
		CodeConsistencyVillainNoOpposition:
		return http.StatusConflict
	case CodeGenerationFailed:
		return http.StatusBadGateway
	case CodeUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// Retryable reports whether a caller may retry the failed operation
// without changing its input. Consistency rejections are retryable
// because a fresh generation attempt may produce compliant metadata;
// concurrent modifications and lost choice races are retryable after
// re-resolving state.
func (c Code) Retryable() bool {
	switch c {
	case CodeConcurrentModification, CodeChoiceAlreadyResolved,
		CodeConsistencyMissionUnknown, CodeConsistencyMissionBothTerminal,
		CodeConsistencyProgressRegressed, CodeConsistencyGiverNoMission,
		CodeConsistencyVillainNoOpposition:
		return true
	default:
		return false
	}
}
