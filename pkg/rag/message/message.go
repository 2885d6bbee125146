package message

// Role discriminates the three message variants. Branching is always on
// Role/Origin values, never on structural types.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Origin tags identify which internal step produced an assistant message.
// Messages carrying one of these tags are trace output, not user-visible
// conversation content.
const (
	OriginSupervisor   = "supervisor"
	OriginQueryPlanner = "query_planner"
	OriginRetrieval    = "retrieval_agent"
	OriginQualityGate  = "quality_gate"
	OriginReasoning    = "reasoning_agent"
	OriginCitation     = "citation_agent"
	OriginMemory       = "memory_agent"
	OriginDirectAnswer = "direct_answer"
	OriginClarify      = "clarify_agent"
)

// internalOrigins is the exclusion set for persistence: assistant messages
// from these steps never reach the stored conversation window. Direct-answer
// and clarify output is the actual reply, so it stays visible.
var internalOrigins = map[string]bool{
	OriginSupervisor:   true,
	OriginQueryPlanner: true,
	OriginRetrieval:    true,
	OriginQualityGate:  true,
	OriginReasoning:    true,
	OriginCitation:     true,
	OriginMemory:       true,
}

// Message is one entry of a turn's conversation history. Origin is empty for
// client-supplied messages and set to the producing step's tag for traces.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Origin  string `json:"origin,omitempty"`
}

func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Trace builds an internal assistant message tagged with the producing step.
func Trace(origin, content string) Message {
	return Message{Role: RoleAssistant, Content: content, Origin: origin}
}

// IsUserVisible reports whether a message belongs in persisted conversation
// memory. System and user messages always do; assistant messages do unless
// they originate from an internal orchestration step.
func IsUserVisible(m Message) bool {
	switch m.Role {
	case RoleSystem, RoleUser:
		return true
	case RoleAssistant:
		return !internalOrigins[m.Origin]
	default:
		return false
	}
}

// Tail returns up to the last n messages.
func Tail(messages []Message, n int) []Message {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}

// LastUserContent returns the content of the most recent user message,
// or "" when none exists.
func LastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
