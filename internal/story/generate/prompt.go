package generate

import (
	"fmt"
	"strings"
)

const responseShape = `{
  "narrative_text": "Continuation narrative text",
  "choices": [
    {
      "choice_id": "unique_choice_id",
      "text": "Choice description",
      "consequence": "Brief outcome description",
      "type": "direct/risky/social",
      "currency_requirements": {"💎": 10},
      "character_id": null
    }
  ],
  "character_interactions": [
    {
      "character_id": "id",
      "character_name": "Name",
      "role": "undetermined/neutral/villain/mission-giver",
      "opposition": false,
      "summary": "One sentence on what they did"
    }
  ],
  "mission_update": {
    "mission_id": "id",
    "status": "unchanged/progressed/completed/failed",
    "note": "What moved the mission"
  },
  "is_endpoint": false
}`

// BuildPrompt renders the full generation prompt from the context
// digest and the player's choice.
func BuildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("You are the narrator of an interactive espionage fiction story.\n")
	if req.Parameters.Setting != "" {
		fmt.Fprintf(&b, "Setting: %s\n", req.Parameters.Setting)
	}
	if req.Parameters.Conflict != "" {
		fmt.Fprintf(&b, "Central conflict: %s\n", req.Parameters.Conflict)
	}
	if req.Parameters.NarrativeStyle != "" {
		fmt.Fprintf(&b, "Narrative style: %s\n", req.Parameters.NarrativeStyle)
	}
	if req.Parameters.Mood != "" {
		fmt.Fprintf(&b, "Mood: %s\n", req.Parameters.Mood)
	}
	if req.Protagonist.Name != "" {
		fmt.Fprintf(&b, "Protagonist: %s (%s)\n", req.Protagonist.Name, req.Protagonist.Gender)
	}

	if len(req.Characters) > 0 {
		b.WriteString("\nKnown characters:\n")
		for _, character := range req.Characters {
			fmt.Fprintf(&b, "- %s (%s)", character.Name, character.Role)
			if character.Backstory != "" {
				fmt.Fprintf(&b, ": %s", character.Backstory)
			}
			b.WriteString("\n")
		}
	}

	if req.ActiveMission != nil {
		fmt.Fprintf(&b, "\nActive mission %q: %s (progress %d%%)\n",
			req.ActiveMission.Title, req.ActiveMission.Objective, req.ActiveMission.Progress)
	}

	if req.ContextDigest != "" {
		b.WriteString("\nStory so far:\n")
		b.WriteString(req.ContextDigest)
		b.WriteString("\n")
	}

	if req.Opening {
		b.WriteString("\nWrite the opening scene of this story.\n")
	} else {
		fmt.Fprintf(&b, "\nThe player chose: %s\nContinue the story from that choice.\n", req.ChoiceText)
	}

	b.WriteString("\nRespond with a single JSON object of this exact shape, and nothing else:\n")
	b.WriteString(responseShape)
	return b.String()
}
