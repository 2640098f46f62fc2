package evaluation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

const debriefSystemPrompt = `You are the head chef reviewing a shift in a small simulated kitchen.
Cooks are bots that commit to one order at a time, prepare one ingredient per plan
and deliver finished dishes. Given the numbers of a shift, write a short debrief:
what went well, what went wrong, and one concrete change for the next shift.
Keep it under 120 words.`

// Debriefer writes a post-service summary of a run with a language model
type Debriefer struct {
	model       llms.Model
	MaxTokens   int
	Temperature float64
}

// NewDebriefer wraps any langchaingo model
func NewDebriefer(model llms.Model) *Debriefer {
	return &Debriefer{
		model:       model,
		MaxTokens:   300,
		Temperature: 0.3,
	}
}

// Debrief asks the model for a summary of the result
func (d *Debriefer) Debrief(ctx context.Context, result *EvaluationResult) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, debriefSystemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, debriefPrompt(result)),
	}

	resp, err := d.model.GenerateContent(ctx, messages,
		llms.WithMaxTokens(d.MaxTokens),
		llms.WithTemperature(d.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate debrief: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("empty response from debrief model")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// debriefPrompt lists the run's metrics and the journal entries that
// explain them
func debriefPrompt(result *EvaluationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scenario: %s (seed %d, %d cooks)\n", result.Scenario, result.Seed, result.Bots)
	fmt.Fprintf(&b, "Shift length: %s\n", result.Elapsed)
	fmt.Fprintf(&b, "Final score: %d\n", result.Score)

	keys := make([]string, 0, len(result.Metrics))
	for k := range result.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteString("Metrics:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %v\n", k, result.Metrics[k])
	}

	players := make([]int, 0, len(result.Memories))
	for p := range result.Memories {
		players = append(players, p)
	}
	sort.Ints(players)
	for _, p := range players {
		events := result.Memories[p]
		if len(events) > 10 {
			events = events[len(events)-10:]
		}
		fmt.Fprintf(&b, "Last decisions of cook %d:\n", p)
		for _, e := range events {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	return b.String()
}
