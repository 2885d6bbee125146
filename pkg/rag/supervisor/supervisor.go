package supervisor

import (
	"regexp"
	"strings"
)

// Decision is the closed set of routing labels the supervisor can emit.
type Decision string

const (
	DecisionPlanAndRetrieve Decision = "plan_and_retrieve"
	DecisionAnswerDirectly  Decision = "answer_directly"
	DecisionClarify         Decision = "clarify"
	DecisionRefuse          Decision = "refuse"
)

// Normalize maps any label to a valid Decision, defaulting unknown values to
// the retrieval path as the safe fallback.
func Normalize(raw string) Decision {
	switch Decision(raw) {
	case DecisionPlanAndRetrieve, DecisionAnswerDirectly, DecisionClarify, DecisionRefuse:
		return Decision(raw)
	default:
		return DecisionPlanAndRetrieve
	}
}

var smalltalkRe = regexp.MustCompile(`^(hi|hello|hey|thanks|thank you)\b`)

var referentialWords = map[string]bool{
	"it": true, "this": true, "that": true, "they": true, "them": true,
}

// shortMessageThreshold marks a prior user message too short to anchor a
// referential pronoun.
const shortMessageThreshold = 5

// Decide picks the workflow branch for a turn from the current question and
// the most recent user message. This is a heuristic gate, not a classifier;
// the rules are approximate and designed to be replaced wholesale without
// touching the orchestrator.
func Decide(question, lastUserMessage string) Decision {
	q := strings.TrimSpace(question)
	if q == "" {
		return DecisionClarify
	}

	lower := strings.ToLower(q)
	if smalltalkRe.MatchString(lower) ||
		strings.Contains(lower, "how does this work") ||
		strings.Contains(lower, "what can you do") {
		return DecisionAnswerDirectly
	}

	referential := false
	for _, w := range strings.Fields(lower) {
		if referentialWords[w] {
			referential = true
			break
		}
	}
	if referential && len(strings.TrimSpace(lastUserMessage)) < shortMessageThreshold {
		return DecisionClarify
	}

	return DecisionPlanAndRetrieve
}
