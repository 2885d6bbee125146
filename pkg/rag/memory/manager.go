package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/rag/message"
	"rag-chat-be/pkg/store"
)

const (
	summaryKeySuffix  = ":summary"
	messagesKeySuffix = ":messages"

	// bulletMaxChars bounds each folded line in the rolling summary.
	bulletMaxChars = 200
)

// Config holds the window and retention tuning for conversation memory.
type Config struct {
	TTL             time.Duration
	MaxMessages     int
	SummaryMaxChars int
}

func DefaultConfig() Config {
	return Config{
		TTL:             7 * 24 * time.Hour,
		MaxMessages:     12,
		SummaryMaxChars: 2000,
	}
}

// Snapshot is the durable view of one conversation: a rolling summary of
// older exchanges plus the most recent visible messages.
type Snapshot struct {
	Summary string
	Recent  []message.Message
}

// Manager maintains per-session conversation memory in a SessionStore.
// Older messages fold into a bounded text summary so a session never grows
// without limit. Loads degrade to a cold start on any store error; saves
// report the error and leave the caller's answer untouched.
type Manager struct {
	sessions store.SessionStore
	config   Config
	logger   logger.ILogger
}

func NewManager(sessions store.SessionStore, config Config, log logger.ILogger) *Manager {
	if config.MaxMessages <= 0 {
		config.MaxMessages = DefaultConfig().MaxMessages
	}
	if config.SummaryMaxChars <= 0 {
		config.SummaryMaxChars = DefaultConfig().SummaryMaxChars
	}
	if config.TTL <= 0 {
		config.TTL = DefaultConfig().TTL
	}
	return &Manager{sessions: sessions, config: config, logger: log}
}

func summaryKey(sessionID string) string  { return "chat:" + sessionID + summaryKeySuffix }
func messagesKey(sessionID string) string { return "chat:" + sessionID + messagesKeySuffix }
func legacyKey(sessionID string) string   { return "chat:" + sessionID }

// Load restores the session snapshot. Any storage failure or decode failure
// yields an empty snapshot: a corrupt memory record must never block a turn.
func (m *Manager) Load(ctx context.Context, sessionID string) Snapshot {
	if sessionID == "" {
		return Snapshot{}
	}
	snap := Snapshot{}

	summary, found, err := m.sessions.Get(ctx, summaryKey(sessionID))
	if err != nil {
		m.logger.Warn("Memory", "Summary load failed, starting cold", map[string]interface{}{
			"session_id": sessionID, "error": err.Error(),
		})
		return Snapshot{}
	}
	if found {
		snap.Summary = summary
	}

	raw, found, err := m.sessions.Get(ctx, messagesKey(sessionID))
	if err != nil {
		m.logger.Warn("Memory", "Messages load failed, starting cold", map[string]interface{}{
			"session_id": sessionID, "error": err.Error(),
		})
		return Snapshot{}
	}
	if !found {
		// Older deployments stored the whole history under the bare key.
		raw, found, err = m.sessions.Get(ctx, legacyKey(sessionID))
		if err != nil || !found {
			return snap
		}
	}

	var msgs []message.Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		m.logger.Warn("Memory", "Stored messages undecodable, starting cold", map[string]interface{}{
			"session_id": sessionID,
		})
		return Snapshot{Summary: snap.Summary}
	}
	snap.Recent = msgs
	return snap
}

// Save persists the post-turn window. The turn's messages are filtered to
// user-visible entries, deduplicated against the already-persisted window
// and the final answer, merged after the existing window, and the overflow
// folds into the summary.
func (m *Manager) Save(ctx context.Context, sessionID string, existing Snapshot, turnMessages []message.Message, finalAnswer string) error {
	if sessionID == "" {
		return fmt.Errorf("session id required to persist memory")
	}

	// Stateful clients resend their history each turn; anything already in
	// the persisted window must not be appended a second time.
	persisted := make(map[string]bool, len(existing.Recent))
	for _, msg := range existing.Recent {
		persisted[messageKey(msg)] = true
	}

	visible := make([]message.Message, 0, len(turnMessages))
	for _, msg := range turnMessages {
		if message.IsUserVisible(msg) && !persisted[messageKey(msg)] {
			visible = append(visible, msg)
		}
	}

	// The final answer supersedes any trailing assistant drafts from the turn.
	if finalAnswer != "" {
		for len(visible) > 0 && visible[len(visible)-1].Role == message.RoleAssistant {
			visible = visible[:len(visible)-1]
		}
		visible = append(visible, message.Assistant(finalAnswer))
	}

	window := append(append([]message.Message{}, existing.Recent...), visible...)
	summary := existing.Summary

	if overflow := len(window) - m.config.MaxMessages; overflow > 0 {
		summary = m.foldIntoSummary(summary, window[:overflow])
		window = window[overflow:]
	}

	encoded, err := json.Marshal(window)
	if err != nil {
		return fmt.Errorf("encode session messages: %w", err)
	}

	if err := m.sessions.Set(ctx, messagesKey(sessionID), string(encoded), m.config.TTL); err != nil {
		return fmt.Errorf("persist session messages: %w", err)
	}
	if err := m.sessions.Set(ctx, summaryKey(sessionID), summary, m.config.TTL); err != nil {
		return fmt.Errorf("persist session summary: %w", err)
	}
	return nil
}

// BuildContext converts a snapshot into the message prefix injected into a
// turn. The summary rides along as a system message; the recent window is
// included only when the caller supplied little or no history of its own.
func (m *Manager) BuildContext(snap Snapshot, incomingHistoryLen, injectThreshold int) []message.Message {
	var out []message.Message
	if snap.Summary != "" {
		out = append(out, message.System("Conversation summary (for context):\n"+snap.Summary))
	}
	if incomingHistoryLen <= injectThreshold {
		out = append(out, snap.Recent...)
	}
	return out
}

// foldIntoSummary appends overflow messages as truncated bullets and keeps
// the summary inside its character budget by dropping its oldest lines.
func (m *Manager) foldIntoSummary(summary string, overflow []message.Message) string {
	var b strings.Builder
	b.WriteString(summary)
	for _, msg := range overflow {
		label := "- User: "
		if msg.Role == message.RoleAssistant {
			label = "- Assistant: "
		} else if msg.Role == message.RoleSystem {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(label)
		b.WriteString(truncate(msg.Content, bulletMaxChars))
	}

	folded := b.String()
	for len(folded) > m.config.SummaryMaxChars {
		cut := strings.Index(folded, "\n")
		if cut < 0 {
			folded = truncate(folded, m.config.SummaryMaxChars)
			break
		}
		folded = folded[cut+1:]
	}
	return folded
}

func messageKey(m message.Message) string {
	return string(m.Role) + "\x00" + m.Content
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
