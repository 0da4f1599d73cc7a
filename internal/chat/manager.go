// Package chat holds the in-memory transcript of one chat session and
// the ask round trip against the bot.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mfogaca/sabia/internal/api"
	"github.com/mfogaca/sabia/internal/session"
)

// MessageType distinguishes who produced a transcript entry.
type MessageType string

const (
	MessageUser   MessageType = "user"
	MessageBot    MessageType = "bot"
	MessageSystem MessageType = "system"
)

// Message is one transcript entry. IDs are generated client-side.
type Message struct {
	ID             string
	Type           MessageType
	Content        string
	Timestamp      time.Time
	Source         string
	ProcessingTime float64
	IsError        bool
}

// Asker is the slice of the API client the chat needs.
type Asker interface {
	AskQuestion(ctx context.Context, req api.QuestionRequest) (*api.QuestionResponse, error)
}

// Manager accumulates the transcript for the current session. It is
// discarded when the session ends; transcripts are not persisted.
type Manager struct {
	svc  Asker
	sess *session.Store

	mu       sync.Mutex
	messages []Message
}

// NewManager creates an empty transcript bound to the current identity.
func NewManager(svc Asker, sess *session.Store) *Manager {
	return &Manager{svc: svc, sess: sess}
}

// Ask appends the user's question, performs the round trip, and
// appends the bot's answer. On failure a system entry with the
// normalized error message is appended instead and the error is
// returned; prior transcript entries are never touched.
func (m *Manager) Ask(ctx context.Context, question string) (Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Message{}, nil
	}

	m.append(Message{
		ID:        uuid.NewString(),
		Type:      MessageUser,
		Content:   question,
		Timestamp: time.Now(),
	})

	req := api.QuestionRequest{Question: question}
	if id, ok := m.sess.UserID(); ok {
		req.UserID = id
	}

	resp, err := m.svc.AskQuestion(ctx, req)
	if err != nil {
		m.append(Message{
			ID:        uuid.NewString(),
			Type:      MessageSystem,
			Content:   api.ErrorMessage(err),
			Timestamp: time.Now(),
			IsError:   true,
		})
		return Message{}, err
	}

	answer := Message{
		ID:             uuid.NewString(),
		Type:           MessageBot,
		Content:        resp.Response,
		Timestamp:      time.Now(),
		Source:         resp.Source,
		ProcessingTime: resp.ProcessingTime,
	}
	if resp.Status == "error" {
		answer.IsError = true
		if resp.Message != "" {
			answer.Content = resp.Message
		}
	}
	m.append(answer)
	return answer, nil
}

func (m *Manager) append(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

// Messages returns a copy of the transcript in order.
func (m *Manager) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

// Reset drops the transcript, e.g. when a new identity logs in.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}
