package orchestrator

import (
	"context"
	"fmt"

	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/rag/memory"
	"rag-chat-be/pkg/rag/message"
	"rag-chat-be/pkg/rag/supervisor"
	"rag-chat-be/pkg/store"
)

const (
	// minDocsForAnswer is the evidence floor below which the quality gate
	// sends the turn back for one replanned retrieval.
	minDocsForAnswer = 2
	// maxRetrievalAttempts bounds the plan/retrieve loop.
	maxRetrievalAttempts = 2
)

type Planner interface {
	Plan(ctx context.Context, question string, history []message.Message, retryCount int) (string, error)
}

type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]store.Document, error)
}

type Responder interface {
	Reason(ctx context.Context, question string, documents []store.Document, history []message.Message) (string, error)
	DirectAnswer(ctx context.Context, question string, history []message.Message) (string, error)
	Clarify(question string) string
}

type CitationValidator interface {
	Validate(ctx context.Context, answerDraft string, documents []store.Document) (string, []store.Citation, string, error)
}

type MemoryManager interface {
	Load(ctx context.Context, sessionID string) memory.Snapshot
	Save(ctx context.Context, sessionID string, existing memory.Snapshot, turnMessages []message.Message, finalAnswer string) error
	BuildContext(snap memory.Snapshot, incomingHistoryLen, injectThreshold int) []message.Message
}

// DecideFunc routes a question to one of the supervisor decisions. It is a
// field rather than a hard call so deployments can swap the heuristic for a
// model-backed router without touching the turn loop.
type DecideFunc func(question, lastUserMessage string) supervisor.Decision

// Orchestrator runs the full question-answering turn: memory load, routing,
// planned hybrid retrieval with one quality-gated retry, grounded reasoning,
// citation validation, and memory persistence.
type Orchestrator struct {
	planner   Planner
	retriever Retriever
	responder Responder
	citations CitationValidator
	memory    MemoryManager
	logger    logger.ILogger

	Decide DecideFunc
	// HistoryInjectThreshold controls when the stored recent window is
	// injected alongside the caller-provided history.
	HistoryInjectThreshold int
}

func NewOrchestrator(
	planner Planner,
	retriever Retriever,
	responder Responder,
	citations CitationValidator,
	memoryManager MemoryManager,
	log logger.ILogger,
) *Orchestrator {
	return &Orchestrator{
		planner:                planner,
		retriever:              retriever,
		responder:              responder,
		citations:              citations,
		memory:                 memoryManager,
		Decide:                 supervisor.Decide,
		HistoryInjectThreshold: 1,
		logger:                 log,
	}
}

// RunTurn drives the state machine to completion. Retrieval and generation
// failures abort the turn; memory persistence failures are logged and the
// answer is returned anyway.
func (o *Orchestrator) RunTurn(ctx context.Context, state *TurnState) error {
	snapshot := memory.Snapshot{}
	incomingHistory := len(state.Messages)
	injectedLen := 0

	current := nodeLoadMemory
	for current != nodeDone {
		switch current {

		case nodeLoadMemory:
			// Anonymous turns carry no session identity, so there is no
			// memory to load or share.
			if state.SessionID == "" {
				state.trace(message.OriginMemory, "no session id, memory skipped")
				current = nodeSupervisor
				break
			}
			snapshot = o.memory.Load(ctx, state.SessionID)
			injected := o.memory.BuildContext(snapshot, incomingHistory, o.HistoryInjectThreshold)
			injectedLen = len(injected)
			state.Messages = append(injected, state.Messages...)
			state.trace(message.OriginMemory, fmt.Sprintf(
				"loaded session memory: summary=%dB recent=%d injected=%d",
				len(snapshot.Summary), len(snapshot.Recent), len(injected)))
			current = nodeSupervisor

		case nodeSupervisor:
			decision := supervisor.Normalize(string(o.Decide(state.Question, message.LastUserContent(state.Messages))))
			state.SupervisorDecision = decision
			state.trace(message.OriginSupervisor, "decision: "+string(decision))
			switch decision {
			case supervisor.DecisionClarify:
				current = nodeClarify
			case supervisor.DecisionAnswerDirectly:
				current = nodeDirectAnswer
			default:
				current = nodePlan
			}

		case nodeClarify:
			state.Answer = o.responder.Clarify(state.Question)
			state.trace(message.OriginClarify, "asked for clarification")
			current = nodeSaveMemory

		case nodeDirectAnswer:
			answer, err := o.responder.DirectAnswer(ctx, state.Question, state.Messages)
			if err != nil {
				return fmt.Errorf("direct answer: %w", err)
			}
			state.Answer = answer
			state.trace(message.OriginDirectAnswer, "answered without retrieval")
			current = nodeSaveMemory

		case nodePlan:
			plan, err := o.planner.Plan(ctx, state.Question, state.Messages, state.RetryCount)
			if err != nil {
				return fmt.Errorf("query planning: %w", err)
			}
			state.Plan = plan
			state.trace(message.OriginQueryPlanner, "search query: "+plan)
			current = nodeRetrieve

		case nodeRetrieve:
			query := state.Plan
			if query == "" {
				query = state.Question
			}
			docs, err := o.retriever.Retrieve(ctx, query)
			if err != nil {
				return fmt.Errorf("retrieval: %w", err)
			}
			state.Documents = docs
			state.trace(message.OriginRetrieval, fmt.Sprintf("retrieved %d documents", len(docs)))
			current = nodeQualityGate

		case nodeQualityGate:
			attempt := state.RetryCount + 1
			if len(state.Documents) < minDocsForAnswer && attempt < maxRetrievalAttempts {
				state.RetryCount++
				state.trace(message.OriginQualityGate, fmt.Sprintf(
					"insufficient evidence (%d documents), replanning", len(state.Documents)))
				current = nodePlan
				break
			}
			state.trace(message.OriginQualityGate, fmt.Sprintf(
				"proceeding with %d documents after %d attempt(s)", len(state.Documents), attempt))
			current = nodeReason

		case nodeReason:
			draft, err := o.responder.Reason(ctx, state.Question, state.Documents, state.Messages)
			if err != nil {
				return fmt.Errorf("reasoning: %w", err)
			}
			state.Answer = draft
			state.trace(message.OriginReasoning, "draft answer generated")
			current = nodeCitation

		case nodeCitation:
			answer, citations, traceMsg, err := o.citations.Validate(ctx, state.Answer, state.Documents)
			if err != nil {
				return fmt.Errorf("citation validation: %w", err)
			}
			state.Answer = answer
			state.Citations = citations
			state.trace(message.OriginCitation, traceMsg)
			current = nodeSaveMemory

		case nodeSaveMemory:
			if state.SessionID == "" {
				state.trace(message.OriginMemory, "no session id, memory not persisted")
				current = nodeDone
				break
			}
			// The full caller history (minus the injected memory prefix and
			// this turn's trace entries) goes to the manager, which
			// deduplicates against the already-persisted window. The final
			// answer reaches the window through Save itself.
			turnMessages := make([]message.Message, 0, len(state.Messages)+1)
			for _, m := range state.Messages[injectedLen:] {
				if m.Origin == "" {
					turnMessages = append(turnMessages, m)
				}
			}
			turnMessages = append(turnMessages, message.User(state.Question))
			if err := o.memory.Save(ctx, state.SessionID, snapshot, turnMessages, state.Answer); err != nil {
				o.logger.Warn("Orchestrator", "Memory save failed", map[string]interface{}{
					"session_id": state.SessionID, "error": err.Error(),
				})
			}
			state.trace(message.OriginMemory, "session memory saved")
			current = nodeDone

		default:
			return fmt.Errorf("unknown pipeline node %q", current)
		}
	}

	return nil
}
