package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/fitmind/fitmind/internal/common"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrEmptyMessage = errors.New("message is empty")

// Replier turns a rendered history prompt into reply text. It never fails;
// ai.Relay is the production implementation.
type Replier interface {
	Reply(ctx context.Context, prompt string) string
}

type Service struct {
	repo              *Repo
	relay             Replier
	contextWindowSize int
}

func NewService(repo *Repo, relay Replier, contextWindowSize int) *Service {
	if contextWindowSize <= 0 || contextWindowSize > 100 {
		contextWindowSize = 20
	}
	return &Service{repo: repo, relay: relay, contextWindowSize: contextWindowSize}
}

func (s *Service) ListSessions(ctx context.Context, userID uint64) ([]Session, error) {
	return s.repo.ListSessions(ctx, userID)
}

func (s *Service) CreateSession(ctx context.Context, userID uint64, title string) (*Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}

	sid, err := common.NewULID()
	if err != nil {
		return nil, err
	}

	session := &Session{
		SessionID: sid,
		UserID:    userID,
		Title:     title,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession returns gorm.ErrRecordNotFound for sessions owned by someone else.
func (s *Service) GetSession(ctx context.Context, userID uint64, sessionID string) (*Session, error) {
	sess, err := s.repo.GetSessionBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return sess, nil
}

func (s *Service) ListMessages(ctx context.Context, userID uint64, sessionID string) ([]Message, error) {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, sessionID)
}

func (s *Service) AppendUserMessage(ctx context.Context, userID uint64, sessionID string, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.insert(ctx, userID, sessionID, RoleUser, text)
}

func (s *Service) AppendAssistantMessage(ctx context.Context, userID uint64, sessionID string, text string) (*Message, error) {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.insert(ctx, userID, sessionID, RoleAssistant, text)
}

func (s *Service) insert(ctx context.Context, userID uint64, sessionID, role, content string) (*Message, error) {
	m := &Message{
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
		Content:   content,
	}
	if err := s.repo.InsertMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// SendMessage runs one synchronous turn: store the user line, relay the
// windowed history, store and return the assistant reply. Relay failures come
// back as reply text, not errors.
func (s *Service) SendMessage(ctx context.Context, userID uint64, sessionID string, text string) (string, *Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil, ErrEmptyMessage
	}

	// 1) verify session ownership
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return "", nil, err
	}

	// 2) history before the new line, so the prompt carries it exactly once
	prior, err := s.repo.ListMessages(ctx, sessionID)
	if err != nil {
		return "", nil, err
	}

	// 3) store user message
	if _, err := s.insert(ctx, userID, sessionID, RoleUser, text); err != nil {
		return "", nil, err
	}

	// 4) relay
	reply := s.relay.Reply(ctx, BuildPrompt(prior, text, s.contextWindowSize))

	// 5) store assistant message
	assistantMsg, err := s.insert(ctx, userID, sessionID, RoleAssistant, reply)
	if err != nil {
		return "", nil, err
	}
	return reply, assistantMsg, nil
}

// EnqueueReply stores the user line and a queued job for it. A repeated
// idempotency key returns the earlier job without storing the line again.
func (s *Service) EnqueueReply(ctx context.Context, userID uint64, sessionID string, text string, key string) (*Job, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false, ErrEmptyMessage
	}
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return nil, false, err
	}

	key = strings.TrimSpace(key)
	if key != "" {
		existing, err := s.repo.GetJobByUserAndIdempotencyKey(ctx, userID, key)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}

	userMsg, err := s.insert(ctx, userID, sessionID, RoleUser, text)
	if err != nil {
		return nil, false, err
	}

	jobID, err := common.NewULID()
	if err != nil {
		return nil, false, err
	}
	job := &Job{
		ID:            jobID,
		UserID:        userID,
		SessionID:     sessionID,
		UserMessageID: userMsg.ID,
		Status:        JobQueued,
	}
	if key != "" {
		job.IdempotencyKey = &key
	}
	return s.repo.CreateJobOrGetExisting(ctx, job)
}

// GetJob hides jobs of other users behind gorm.ErrRecordNotFound.
func (s *Service) GetJob(ctx context.Context, userID uint64, jobID string) (*Job, error) {
	job, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return job, nil
}

func (s *Service) GetJobByID(ctx context.Context, jobID string) (*Job, error) {
	return s.repo.GetJobByID(ctx, jobID)
}

func (s *Service) MarkJobRunning(ctx context.Context, jobID string) error {
	return s.repo.UpdateJobStatusRunning(ctx, jobID)
}

func (s *Service) MarkJobSucceeded(ctx context.Context, jobID string, assistantMsgID uint64) error {
	return s.repo.MarkJobSucceeded(ctx, jobID, assistantMsgID)
}

func (s *Service) MarkJobFailed(ctx context.Context, jobID string, errMsg string) error {
	return s.repo.MarkJobFailed(ctx, jobID, errMsg)
}

// GenerateAssistantReplyAndInsert answers the stored history of a session;
// the worker calls it after the user line is already persisted.
func (s *Service) GenerateAssistantReplyAndInsert(ctx context.Context, userID uint64, sessionID string) (string, uint64, error) {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return "", 0, err
	}

	history, err := s.repo.ListMessages(ctx, sessionID)
	if err != nil {
		return "", 0, err
	}

	reply := s.relay.Reply(ctx, PromptFromHistory(history, s.contextWindowSize))

	assistantMsg, err := s.insert(ctx, userID, sessionID, RoleAssistant, reply)
	if err != nil {
		return "", 0, err
	}
	return reply, assistantMsg.ID, nil
}

const maxLogEntries = 100

// LogExchange appends one single-turn question/answer to the user's log.
// A nil sections is stored as JSON null.
func (s *Service) LogExchange(ctx context.Context, userID uint64, message, response, topic string, sections *ReplySections) (*LogEntry, error) {
	raw, err := json.Marshal(sections)
	if err != nil {
		return nil, err
	}
	e := &LogEntry{
		UserID:   userID,
		Message:  message,
		Response: response,
		Topic:    topic,
		Sections: datatypes.JSON(raw),
	}
	if err := s.repo.InsertLogEntry(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) ListLog(ctx context.Context, userID uint64, limit int) ([]LogEntry, error) {
	if limit <= 0 || limit > maxLogEntries {
		limit = maxLogEntries
	}
	return s.repo.ListLogEntries(ctx, userID, limit)
}

// SetHelpful records the user's rating; nil clears it.
func (s *Service) SetHelpful(ctx context.Context, userID, entryID uint64, helpful *bool) error {
	return s.repo.SetLogHelpful(ctx, userID, entryID, helpful)
}
