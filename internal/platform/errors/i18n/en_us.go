package i18n

// Message templates for en-US. Codes must match the constants declared
// in internal/platform/errors/codes.go; template keys must match the
// metadata keys attached at the error site.
var enUS = map[Code]string{
	"UNKNOWN":         "Something went wrong. Please try again.",
	"INVALID_REQUEST": "The request could not be understood: {{.reason}}.",

	"STORY_NOT_FOUND":           "Story {{.story_id}} was not found.",
	"NODE_NOT_FOUND":            "Story node {{.node_id}} was not found.",
	"NODE_EMPTY_NARRATIVE_TEXT": "A story node requires narrative text.",
	"NODE_PARENT_MISSING":       "Parent node {{.parent_id}} was not found.",
	"NODE_WRONG_STORY":          "Node {{.node_id}} does not belong to story {{.story_id}}.",

	"CHOICE_NOT_FOUND":        "That choice is not available here.",
	"CHOICE_ALREADY_RESOLVED": "That choice has already been taken.",
	"CHOICE_EMPTY_TEXT":       "A choice requires display text.",

	"PLAYER_NOT_FOUND":          "No progress found for this player.",
	"CHARACTER_NOT_FOUND":       "Character {{.character_id}} was not found.",
	"INSUFFICIENT_FUNDS":        "Not enough {{.currency}}: need {{.required}}, have {{.available}}.",
	"INVALID_CURRENCY_EXCHANGE": "{{.from}} cannot be exchanged for {{.to}}.",

	"CONSISTENCY_MISSION_NOT_ACTIVE":           "Mission {{.mission_id}} is not in the active set.",
	"CONSISTENCY_MISSION_COMPLETED_AND_FAILED": "Mission {{.mission_id}} cannot be completed and failed in the same scene.",
	"CONSISTENCY_MISSION_PROGRESS_REGRESSED":   "Mission {{.mission_id}} progress cannot decrease while active.",
	"CONSISTENCY_MISSION_GIVER_WITHOUT_MISSION": "{{.character}} gives missions but assigned none on this path.",
	"CONSISTENCY_VILLAIN_WITHOUT_OPPOSITION":    "{{.character}} is a villain but appears without opposition.",

	"MISSION_NOT_FOUND":        "Mission {{.mission_id}} was not found.",
	"MISSION_STATUS_FINAL":     "Mission {{.mission_id}} has already ended.",
	"MISSION_INVALID_PROGRESS": "Mission progress must stay between 0 and 100.",
	"MISSION_EMPTY_OBJECTIVE":  "A mission requires an objective.",

	"GENERATION_FAILED":       "The storyteller is unavailable right now. Please try again.",
	"CONCURRENT_MODIFICATION": "Your story has moved on; refresh and choose again.",
}
