package generate

import (
	"context"
	"fmt"

	"github.com/oleandergames/tradecraft/internal/story/domain"
)

// Static is a deterministic Generator for seeding and local play
// without a provider. Its output always passes consistency checks.
type Static struct {
	counter int
}

// NewStatic returns a fresh deterministic generator.
func NewStatic() *Static {
	return &Static{}
}

// Generate produces a fixed-shape segment derived from the request.
func (s *Static) Generate(_ context.Context, req Request) (Segment, error) {
	s.counter++

	text := fmt.Sprintf("The night market smells of rain and solder. %s weighs the options while the crowd closes in.", protagonistName(req))
	if req.Opening {
		text = fmt.Sprintf("%s arrives with nothing but a borrowed name and a contact who never showed. %s", protagonistName(req), settingLine(req))
	} else if req.ChoiceText != "" {
		text = fmt.Sprintf("Having decided to %s, %s moves before doubt can catch up. The city obliges with complications.", lowerFirst(req.ChoiceText), protagonistName(req))
	}

	return Segment{
		NarrativeText: text,
		Choices: []domain.ChoiceRecord{
			{
				ID:          fmt.Sprintf("static-%d-press", s.counter),
				Text:        "Press forward and confront the contact",
				Consequence: "Forces the issue into the open",
				Kind:        domain.ChoiceDirect,
			},
			{
				ID:          fmt.Sprintf("static-%d-bribe", s.counter),
				Text:        "Buy a way through the checkpoint",
				Consequence: "Quiet, but it will cost",
				Kind:        domain.ChoiceRisky,
				Cost:        map[domain.Currency]int{domain.CurrencyDollar: 100},
			},
			{
				ID:          fmt.Sprintf("static-%d-listen", s.counter),
				Text:        "Hang back and listen to the room",
				Consequence: "Slower, safer, something may surface",
				Kind:        domain.ChoiceSocial,
			},
		},
	}, nil
}

func protagonistName(req Request) string {
	if req.Protagonist.Name != "" {
		return req.Protagonist.Name
	}
	return "The agent"
}

func settingLine(req Request) string {
	if req.Parameters.Setting != "" {
		return fmt.Sprintf("Somewhere in %s, the first thread waits to be pulled.", req.Parameters.Setting)
	}
	return "The first thread waits to be pulled."
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] += 'a' - 'A'
	}
	return string(r)
}
