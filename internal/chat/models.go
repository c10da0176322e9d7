package chat

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"

	DefaultTitle = "New chat"
)

type Session struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID string    `gorm:"type:varchar(26);uniqueIndex;not null" json:"session_id"`
	UserID    uint64    `gorm:"index;not null" json:"-"`
	Title     string    `gorm:"type:varchar(200);not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []Message `gorm:"foreignKey:SessionID;references:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Session) TableName() string { return "chat_sessions" }

// Message belongs to exactly one session and is read back in (created_at, id) order.
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"type:varchar(26);not null;index:idx_chat_msg_session_created,priority:1" json:"session_id"`
	UserID    uint64    `gorm:"index;not null" json:"-"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_chat_msg_session_created,priority:2" json:"created_at"`
}

func (Message) TableName() string { return "chat_messages" }

// LogEntry is the single-turn chatbot audit log, independent of sessions.
// Helpful is nil until the user rates the answer.
type LogEntry struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64         `gorm:"index;not null" json:"-"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Response  string         `gorm:"type:text;not null" json:"response"`
	Topic     string         `gorm:"type:varchar(32)" json:"topic"`
	Sections  datatypes.JSON `gorm:"not null" json:"sections"`
	Helpful   *bool          `json:"is_helpful"`
	Timestamp time.Time      `gorm:"autoCreateTime;index" json:"timestamp"`
}

// ReplySections is the structured copy of a logged reply, kept next to the
// rendered text so ratings can be analysed per section.
type ReplySections struct {
	Direct     string `json:"direct"`
	Guidance   string `json:"guidance,omitempty"`
	Motivation string `json:"motivation"`
}

func (LogEntry) TableName() string { return "chat_logs" }
