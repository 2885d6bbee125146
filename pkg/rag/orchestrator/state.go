package orchestrator

import (
	"rag-chat-be/pkg/rag/message"
	"rag-chat-be/pkg/rag/supervisor"
	"rag-chat-be/pkg/store"
)

// node labels the steps of a turn. The zero value is not a valid node.
type node string

const (
	nodeLoadMemory   node = "load_memory"
	nodeSupervisor   node = "supervisor"
	nodeClarify      node = "clarify"
	nodeDirectAnswer node = "direct_answer"
	nodePlan         node = "plan"
	nodeRetrieve     node = "retrieve"
	nodeQualityGate  node = "quality_gate"
	nodeReason       node = "reason"
	nodeCitation     node = "citation"
	nodeSaveMemory   node = "save_memory"
	nodeDone         node = "done"
)

// TurnState carries everything one conversational turn accumulates as it
// moves through the pipeline. A fresh state is built per request; nodes
// mutate it in place.
type TurnState struct {
	SessionID string
	// Messages starts as the caller-provided history plus injected memory
	// context and grows one trace entry per executed node.
	Messages  []message.Message
	Question  string
	Plan      string
	Documents []store.Document
	Answer    string
	Citations []store.Citation

	RetryCount         int
	SupervisorDecision supervisor.Decision
}

func (s *TurnState) trace(origin, content string) {
	s.Messages = append(s.Messages, message.Trace(origin, content))
}
