package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/rag/memory"
	"rag-chat-be/pkg/rag/message"
	"rag-chat-be/pkg/rag/supervisor"
	"rag-chat-be/pkg/store"
)

type fakePlanner struct {
	calls   int
	retries []int
	err     error
}

func (f *fakePlanner) Plan(ctx context.Context, question string, history []message.Message, retryCount int) (string, error) {
	f.calls++
	f.retries = append(f.retries, retryCount)
	if f.err != nil {
		return "", f.err
	}
	return "refined: " + question, nil
}

type fakeRetriever struct {
	results [][]store.Document
	calls   int
	err     error
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string) ([]store.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	idx := f.calls
	f.calls++
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	return f.results[idx], nil
}

type fakeResponder struct {
	direct string
}

func (f *fakeResponder) Reason(ctx context.Context, question string, documents []store.Document, history []message.Message) (string, error) {
	return "draft for " + question, nil
}

func (f *fakeResponder) DirectAnswer(ctx context.Context, question string, history []message.Message) (string, error) {
	return f.direct, nil
}

func (f *fakeResponder) Clarify(question string) string {
	if question == "" {
		return "What would you like to know?"
	}
	return "Could you clarify?"
}

type fakeValidator struct {
	citations []store.Citation
}

func (f *fakeValidator) Validate(ctx context.Context, draft string, documents []store.Document) (string, []store.Citation, string, error) {
	return draft + " [cited]", f.citations, "validated", nil
}

type fakeMemory struct {
	snapshot  memory.Snapshot
	saveErr   error
	saved     []message.Message
	savedWith string
	loadCalls int
	saveCalls int
}

func (f *fakeMemory) Load(ctx context.Context, sessionID string) memory.Snapshot {
	f.loadCalls++
	return f.snapshot
}

func (f *fakeMemory) Save(ctx context.Context, sessionID string, existing memory.Snapshot, turnMessages []message.Message, finalAnswer string) error {
	f.saveCalls++
	f.saved = turnMessages
	f.savedWith = finalAnswer
	return f.saveErr
}

func (f *fakeMemory) BuildContext(snap memory.Snapshot, incomingHistoryLen, injectThreshold int) []message.Message {
	var out []message.Message
	if incomingHistoryLen <= injectThreshold {
		out = append(out, snap.Recent...)
	}
	return out
}

func docs(n int) []store.Document {
	out := make([]store.Document, n)
	for i := range out {
		out[i] = store.Document{DocID: "d", ChunkID: i, Content: "content"}
	}
	return out
}

func newTestOrchestrator(planner *fakePlanner, retriever *fakeRetriever, mem *fakeMemory, citations []store.Citation) *Orchestrator {
	return NewOrchestrator(
		planner,
		retriever,
		&fakeResponder{direct: "Hi there!"},
		&fakeValidator{citations: citations},
		mem,
		logger.NewNop(),
	)
}

func TestRunTurnEmptyQuestionClarifies(t *testing.T) {
	mem := &fakeMemory{}
	o := newTestOrchestrator(&fakePlanner{}, &fakeRetriever{}, mem, nil)

	state := &TurnState{SessionID: "s1", Question: ""}
	require.NoError(t, o.RunTurn(context.Background(), state))

	assert.Equal(t, supervisor.DecisionClarify, state.SupervisorDecision)
	assert.Equal(t, "What would you like to know?", state.Answer)
	assert.Empty(t, state.Citations)
	assert.Equal(t, "What would you like to know?", mem.savedWith)
}

func TestRunTurnGreetingAnswersDirectly(t *testing.T) {
	mem := &fakeMemory{}
	planner := &fakePlanner{}
	retriever := &fakeRetriever{results: [][]store.Document{docs(3)}}
	o := newTestOrchestrator(planner, retriever, mem, nil)

	state := &TurnState{SessionID: "s1", Question: "hello there"}
	require.NoError(t, o.RunTurn(context.Background(), state))

	assert.Equal(t, supervisor.DecisionAnswerDirectly, state.SupervisorDecision)
	assert.Equal(t, "Hi there!", state.Answer)
	assert.Equal(t, 0, planner.calls)
	assert.Equal(t, 0, retriever.calls)
}

func TestRunTurnFullRetrievalPath(t *testing.T) {
	mem := &fakeMemory{}
	planner := &fakePlanner{}
	retriever := &fakeRetriever{results: [][]store.Document{docs(3)}}
	citations := []store.Citation{{Index: 0}, {Index: 2}}
	o := newTestOrchestrator(planner, retriever, mem, citations)

	state := &TurnState{SessionID: "s1", Question: "how do I configure retention?"}
	require.NoError(t, o.RunTurn(context.Background(), state))

	assert.Equal(t, supervisor.DecisionPlanAndRetrieve, state.SupervisorDecision)
	assert.Equal(t, "draft for how do I configure retention? [cited]", state.Answer)
	require.Len(t, state.Citations, 2)
	assert.Equal(t, 1, planner.calls)
	assert.Equal(t, 1, retriever.calls)
	assert.Len(t, state.Documents, 3)
}

func TestRunTurnQualityGateRetriesOnce(t *testing.T) {
	mem := &fakeMemory{}
	planner := &fakePlanner{}
	retriever := &fakeRetriever{results: [][]store.Document{docs(1), docs(1)}}
	o := newTestOrchestrator(planner, retriever, mem, nil)

	state := &TurnState{SessionID: "s1", Question: "obscure question with no coverage"}
	require.NoError(t, o.RunTurn(context.Background(), state))

	// One replan at most, even though evidence stays thin.
	assert.Equal(t, 2, planner.calls)
	assert.Equal(t, 2, retriever.calls)
	assert.Equal(t, 1, state.RetryCount)
	assert.Equal(t, []int{0, 1}, planner.retries)
	assert.NotEmpty(t, state.Answer)
}

func TestRunTurnNoRetryWhenEvidenceSufficient(t *testing.T) {
	mem := &fakeMemory{}
	planner := &fakePlanner{}
	retriever := &fakeRetriever{results: [][]store.Document{docs(2)}}
	o := newTestOrchestrator(planner, retriever, mem, nil)

	state := &TurnState{SessionID: "s1", Question: "what is the retention policy?"}
	require.NoError(t, o.RunTurn(context.Background(), state))

	assert.Equal(t, 1, planner.calls)
	assert.Equal(t, 0, state.RetryCount)
}

func TestRunTurnRetrievalFailureIsFatal(t *testing.T) {
	mem := &fakeMemory{}
	retriever := &fakeRetriever{err: errors.New("vector store unreachable")}
	o := newTestOrchestrator(&fakePlanner{}, retriever, mem, nil)

	state := &TurnState{SessionID: "s1", Question: "what is the retention policy?"}
	err := o.RunTurn(context.Background(), state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval")
}

func TestRunTurnMemorySaveFailureIsNotFatal(t *testing.T) {
	mem := &fakeMemory{saveErr: errors.New("redis write timeout")}
	retriever := &fakeRetriever{results: [][]store.Document{docs(3)}}
	o := newTestOrchestrator(&fakePlanner{}, retriever, mem, nil)

	state := &TurnState{SessionID: "s1", Question: "what is the retention policy?"}
	require.NoError(t, o.RunTurn(context.Background(), state))
	assert.NotEmpty(t, state.Answer)
}

func TestRunTurnInjectsStoredMemory(t *testing.T) {
	mem := &fakeMemory{snapshot: memory.Snapshot{
		Recent: []message.Message{message.User("earlier question"), message.Assistant("earlier answer")},
	}}
	retriever := &fakeRetriever{results: [][]store.Document{docs(3)}}
	o := newTestOrchestrator(&fakePlanner{}, retriever, mem, nil)

	state := &TurnState{SessionID: "s1", Question: "and what about backups?"}
	require.NoError(t, o.RunTurn(context.Background(), state))

	require.NotEmpty(t, state.Messages)
	assert.Equal(t, "earlier question", state.Messages[0].Content)
}

func TestRunTurnAnonymousSessionSkipsMemory(t *testing.T) {
	mem := &fakeMemory{snapshot: memory.Snapshot{
		Recent: []message.Message{message.User("someone else's question")},
	}}
	retriever := &fakeRetriever{results: [][]store.Document{docs(3)}}
	o := newTestOrchestrator(&fakePlanner{}, retriever, mem, nil)

	state := &TurnState{SessionID: "", Question: "what is the retention policy?"}
	require.NoError(t, o.RunTurn(context.Background(), state))

	assert.Equal(t, 0, mem.loadCalls)
	assert.Equal(t, 0, mem.saveCalls)
	assert.NotEmpty(t, state.Answer)
	for _, m := range state.Messages {
		assert.NotEqual(t, "someone else's question", m.Content)
	}
}

func TestRunTurnPersistsCallerHistory(t *testing.T) {
	mem := &fakeMemory{}
	retriever := &fakeRetriever{results: [][]store.Document{docs(3)}}
	o := newTestOrchestrator(&fakePlanner{}, retriever, mem, nil)

	state := &TurnState{
		SessionID: "s1",
		Question:  "and the backups?",
		Messages: []message.Message{
			message.User("earlier question"),
			message.Assistant("earlier answer"),
		},
	}
	require.NoError(t, o.RunTurn(context.Background(), state))

	require.Len(t, mem.saved, 3)
	assert.Equal(t, "earlier question", mem.saved[0].Content)
	assert.Equal(t, "earlier answer", mem.saved[1].Content)
	assert.Equal(t, "and the backups?", mem.saved[2].Content)
	for _, m := range mem.saved {
		assert.Empty(t, m.Origin)
	}
}

func TestRunTurnEveryNodeLeavesTrace(t *testing.T) {
	mem := &fakeMemory{}
	retriever := &fakeRetriever{results: [][]store.Document{docs(3)}}
	o := newTestOrchestrator(&fakePlanner{}, retriever, mem, nil)

	state := &TurnState{SessionID: "s1", Question: "what is the retention policy?"}
	require.NoError(t, o.RunTurn(context.Background(), state))

	origins := map[string]bool{}
	for _, m := range state.Messages {
		if m.Origin != "" {
			origins[m.Origin] = true
		}
	}
	for _, want := range []string{
		message.OriginMemory,
		message.OriginSupervisor,
		message.OriginQueryPlanner,
		message.OriginRetrieval,
		message.OriginQualityGate,
		message.OriginReasoning,
		message.OriginCitation,
	} {
		assert.True(t, origins[want], "missing trace from %s", want)
	}
}
