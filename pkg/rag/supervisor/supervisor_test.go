package supervisor

import (
	"testing"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		question string
		lastUser string
		want     Decision
	}{
		{
			name:     "empty question clarifies",
			question: "",
			lastUser: "anything",
			want:     DecisionClarify,
		},
		{
			name:     "whitespace question clarifies",
			question: "   ",
			lastUser: "",
			want:     DecisionClarify,
		},
		{
			name:     "greeting answers directly",
			question: "hello there",
			lastUser: "hello there",
			want:     DecisionAnswerDirectly,
		},
		{
			name:     "thanks answers directly",
			question: "thank you",
			lastUser: "thank you",
			want:     DecisionAnswerDirectly,
		},
		{
			name:     "meta question answers directly",
			question: "what can you do for me?",
			lastUser: "what can you do for me?",
			want:     DecisionAnswerDirectly,
		},
		{
			name:     "referential pronoun with short prior context clarifies",
			question: "what about it",
			lastUser: "ok",
			want:     DecisionClarify,
		},
		{
			name:     "referential pronoun with enough prior context retrieves",
			question: "what does it say about uptime",
			lastUser: "summarize the SLA document",
			want:     DecisionPlanAndRetrieve,
		},
		{
			name:     "regular question retrieves",
			question: "what is the refund policy?",
			lastUser: "what is the refund policy?",
			want:     DecisionPlanAndRetrieve,
		},
		{
			name:     "greeting word mid-sentence does not trigger direct",
			question: "where do we say hello to new customers in the docs",
			lastUser: "where do we say hello to new customers in the docs",
			want:     DecisionPlanAndRetrieve,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.question, tt.lastUser)
			if got != tt.want {
				t.Errorf("Decide(%q, %q) = %q, want %q", tt.question, tt.lastUser, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want Decision
	}{
		{"plan_and_retrieve", DecisionPlanAndRetrieve},
		{"answer_directly", DecisionAnswerDirectly},
		{"clarify", DecisionClarify},
		{"refuse", DecisionRefuse},
		{"", DecisionPlanAndRetrieve},
		{"garbage", DecisionPlanAndRetrieve},
	}

	for _, tt := range tests {
		if got := Normalize(tt.raw); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
