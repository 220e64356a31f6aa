package standup

import "time"

// State is the lifecycle position of one user's daily standup session.
type State string

const (
	StateIdle      State = "idle"
	StateActive    State = "active"
	StateAnswering State = "answering"
	StateCompleted State = "completed"
)

// User is a channel member as last seen in the Slack roster.
type User struct {
	ID        string
	SlackID   string
	FullName  string
	Nickname  string
	AvatarURL string
	IsBot     bool
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Channel maps one Slack channel to one standup room.
type Channel struct {
	ID        string
	SlackID   string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Standup is one user's session for one channel and calendar day.
// Yesterday is nil until the user answers (or an admin marks them away);
// delete and edit clear it rather than removing the row.
type Standup struct {
	ID        string
	UserID    string
	ChannelID string
	State     State
	Yesterday *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open reports whether the session still needs attention today.
func (s *Standup) Open() bool {
	return s != nil && s.State != StateCompleted
}

// Sentinel answers written by the admin-only away commands.
const (
	AnswerVacation     = "Vacation"
	AnswerNotAvailable = "Not Available"
)
