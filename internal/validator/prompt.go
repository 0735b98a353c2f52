package validator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hetulpatel/crossarb/internal/matches"
)

type promptPayload struct {
	PairKey          string      `json:"pair_key"`
	GeneratedAtUTC   string      `json:"generated_at_utc"`
	Similarity       float64     `json:"similarity"`
	ProfitPercentage float64     `json:"profit_percentage"`
	Legs             [2]legInput `json:"legs"`
}

type legInput struct {
	Venue          string         `json:"venue"`
	Question       string         `json:"question"`
	Action         string         `json:"action"`
	Price          float64        `json:"price"`
	OutcomeMapping outcomeMapping `json:"outcome_mapping"`
}

type outcomeMapping struct {
	Yes string `json:"yes_means"`
	No  string `json:"no_means"`
}

const maxQuestionLen = 600

func buildPromptPayload(opp matches.Opportunity, now time.Time) promptPayload {
	counter := opp.CounterQuestion
	if counter == "" {
		counter = opp.Question
	}
	return promptPayload{
		PairKey:          opp.Key(),
		GeneratedAtUTC:   formatTime(now),
		Similarity:       opp.Similarity,
		ProfitPercentage: opp.ProfitPercentage,
		Legs: [2]legInput{
			buildLeg(string(opp.Venue1), opp.Question, opp.Action1, opp.Odds1),
			buildLeg(string(opp.Venue2), counter, opp.Action2, opp.Odds2),
		},
	}
}

func buildLeg(venue, question string, action matches.Action, price float64) legInput {
	question = truncateText(question, maxQuestionLen)
	return legInput{
		Venue:    venue,
		Question: question,
		Action:   string(action),
		Price:    price,
		OutcomeMapping: outcomeMapping{
			Yes: fmt.Sprintf("YES when the question \"%s\" resolves positively.", question),
			No:  "NO covers all other outcomes or when the YES condition fails.",
		},
	}
}

func buildUserPrompt(p promptPayload) (string, error) {
	inputJSON, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("validator: marshal prompt input: %w", err)
	}
	return strings.Join([]string{
		fmt.Sprintf("Compare the following %s and %s markets. You are helping a cross-venue arbitrage detector.", p.Legs[0].Venue, p.Legs[1].Venue),
		"The hedge below is only risk-free if both markets resolve identically.",
		"They must represent the exact same binary outcome with the same cutoff and resolution criteria.",
		"Different resolution sources are fine as long as they agree on the exact definition.",
		"Pay special attention to timing, thresholds, definitions, tiebreakers, cancellations, or alternate clauses.",
		"If unsure, treat it as invalid. Answer concisely.",
		"Return EXACTLY this JSON format:\n{\n  \"ValidResolution\": true|false,\n  \"ResolutionReason\": \"short explanation\"\n}\n\nInput JSON:\n" + string(inputJSON),
	}, "\n"), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func truncateText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	return text[:limit] + " ... (truncated)"
}

func parseResult(raw string) (*Result, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("validator: empty llm response")
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		raw = raw[start : end+1]
	}
	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, err
	}
	return &res, nil
}
