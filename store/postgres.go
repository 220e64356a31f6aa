package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/asalkeld/fetchbot/common"
	"github.com/asalkeld/fetchbot/standup"
)

// Postgres implements standup.Store plus the roster sync and reporting
// queries the bot and web layers need.
type Postgres struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

var _ standup.Store = (*Postgres)(nil)

const userColumns = "id, slack_id, full_name, nickname, avatar_url, is_bot, is_admin, created_at, updated_at"

func scanUser(row interface{ Scan(...interface{}) error }) (*standup.User, error) {
	u := &standup.User{}
	err := row.Scan(&u.ID, &u.SlackID, &u.FullName, &u.Nickname, &u.AvatarURL,
		&u.IsBot, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindUserBySlackID returns nil when the user is unknown.
func (p *Postgres) FindUserBySlackID(ctx context.Context, slackID string) (*standup.User, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE slack_id = $1`, slackID)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding user by slack id: %w", err)
	}
	return u, nil
}

// FindChannelBySlackID returns nil when the channel is unknown.
func (p *Postgres) FindChannelBySlackID(ctx context.Context, slackID string) (*standup.Channel, error) {
	c := &standup.Channel{}
	err := p.db.QueryRowContext(ctx,
		`SELECT id, slack_id, name, created_at, updated_at FROM channels WHERE slack_id = $1`,
		slackID,
	).Scan(&c.ID, &c.SlackID, &c.Name, &c.CreatedAt, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding channel by slack id: %w", err)
	}
	return c, nil
}

const standupColumns = "id, user_id, channel_id, state, yesterday, created_at, updated_at"

func scanStandup(row interface{ Scan(...interface{}) error }) (*standup.Standup, error) {
	s := &standup.Standup{}
	var state string
	err := row.Scan(&s.ID, &s.UserID, &s.ChannelID, &state, &s.Yesterday, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.State = standup.State(state)
	return s, nil
}

// MostRecentStandup returns the newest session for the pair on the given
// calendar day, or nil.
func (p *Postgres) MostRecentStandup(ctx context.Context, userID, channelID string, day time.Time) (*standup.Standup, error) {
	from, to := common.DayBounds(day)
	row := p.db.QueryRowContext(ctx,
		`SELECT `+standupColumns+` FROM standups
		 WHERE user_id = $1 AND channel_id = $2 AND created_at >= $3 AND created_at < $4
		 ORDER BY created_at DESC LIMIT 1`,
		userID, channelID, from, to)

	s, err := scanStandup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding most recent standup: %w", err)
	}
	return s, nil
}

// stampNew assigns the identity and timestamps of a new row.
func (p *Postgres) stampNew(s *standup.Standup) {
	now := p.now()
	s.ID = uuid.NewString()
	s.CreatedAt = now
	s.UpdatedAt = now
}

func (p *Postgres) CreateStandup(ctx context.Context, s *standup.Standup) error {
	p.stampNew(s)

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO standups (id, user_id, channel_id, state, yesterday, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.UserID, s.ChannelID, string(s.State), s.Yesterday, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting standup: %w", err)
	}
	return nil
}

// SaveStandup updates the mutable fields of one session row.
func (p *Postgres) SaveStandup(ctx context.Context, s *standup.Standup) error {
	s.UpdatedAt = p.now()
	result, err := p.db.ExecContext(ctx,
		`UPDATE standups SET state = $1, yesterday = $2, updated_at = $3 WHERE id = $4`,
		string(s.State), s.Yesterday, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("updating standup: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating standup: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("standup not found: %s", s.ID)
	}
	return nil
}

func (p *Postgres) ListMembers(ctx context.Context, channelID string) ([]*standup.User, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT u.id, u.slack_id, u.full_name, u.nickname, u.avatar_url, u.is_bot, u.is_admin, u.created_at, u.updated_at
		 FROM users u
		 JOIN channel_users cu ON cu.user_id = u.id
		 WHERE cu.channel_id = $1
		 ORDER BY u.nickname`,
		channelID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	members := []*standup.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("listing members: %w", err)
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

// ListStandupsForDay returns the day's sessions oldest first, so a caller
// indexing by user keeps the most recent one.
func (p *Postgres) ListStandupsForDay(ctx context.Context, channelID string, day time.Time) ([]*standup.Standup, error) {
	from, to := common.DayBounds(day)
	return p.listStandups(ctx,
		`SELECT `+standupColumns+` FROM standups
		 WHERE channel_id = $1 AND created_at >= $2 AND created_at < $3
		 ORDER BY created_at`,
		channelID, from, to)
}

// ListStandupsInWeek returns every session created inside the bounds,
// for the weekly report.
func (p *Postgres) ListStandupsInWeek(ctx context.Context, from, to time.Time) ([]*standup.Standup, error) {
	return p.listStandups(ctx,
		`SELECT `+standupColumns+` FROM standups
		 WHERE created_at >= $1 AND created_at < $2
		 ORDER BY created_at`,
		from, to)
}

func (p *Postgres) listStandups(ctx context.Context, query string, args ...interface{}) ([]*standup.Standup, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing standups: %w", err)
	}
	defer rows.Close()

	standups := []*standup.Standup{}
	for rows.Next() {
		s, err := scanStandup(rows)
		if err != nil {
			return nil, fmt.Errorf("listing standups: %w", err)
		}
		standups = append(standups, s)
	}
	return standups, rows.Err()
}

// SyncRoster reconciles the channel and its member list in one
// transaction, so message dispatch never observes a half-written roster.
// Members are matched by slack_id; profile fields are refreshed in place.
func (p *Postgres) SyncRoster(ctx context.Context, channelSlackID, channelName string, members []*standup.User) (*standup.Channel, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning roster sync: %w", err)
	}
	defer tx.Rollback()

	now := p.now()

	channel := &standup.Channel{}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO channels (id, slack_id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (slack_id) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at
		 RETURNING id, slack_id, name, created_at, updated_at`,
		uuid.NewString(), channelSlackID, channelName, now,
	).Scan(&channel.ID, &channel.SlackID, &channel.Name, &channel.CreatedAt, &channel.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upserting channel: %w", err)
	}

	for _, m := range members {
		var userID string
		err = tx.QueryRowContext(ctx,
			`INSERT INTO users (id, slack_id, full_name, nickname, avatar_url, is_bot, is_admin, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			 ON CONFLICT (slack_id) DO UPDATE SET
				full_name = EXCLUDED.full_name,
				nickname = EXCLUDED.nickname,
				avatar_url = EXCLUDED.avatar_url,
				is_bot = EXCLUDED.is_bot,
				updated_at = EXCLUDED.updated_at
			 RETURNING id`,
			uuid.NewString(), m.SlackID, m.FullName, m.Nickname, m.AvatarURL, m.IsBot, m.IsAdmin, now,
		).Scan(&userID)
		if err != nil {
			return nil, fmt.Errorf("upserting user %s: %w", m.SlackID, err)
		}
		m.ID = userID

		_, err = tx.ExecContext(ctx,
			`INSERT INTO channel_users (channel_id, user_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			channel.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("linking member %s: %w", m.SlackID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing roster sync: %w", err)
	}
	return channel, nil
}
