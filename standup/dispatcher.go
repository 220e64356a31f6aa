package standup

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Event is one incoming message as delivered by the host listener, in
// arrival order. Tokens are opaque Slack IDs.
type Event struct {
	ChannelToken string
	UserToken    string
	Text         string
}

// Store is the persistence collaborator the dispatcher needs. Lookups
// return nil without error when no record exists; every mutation must be
// atomic per row.
type Store interface {
	FindUserBySlackID(ctx context.Context, slackID string) (*User, error)
	FindChannelBySlackID(ctx context.Context, slackID string) (*Channel, error)
	MostRecentStandup(ctx context.Context, userID, channelID string, day time.Time) (*Standup, error)
	CreateStandup(ctx context.Context, s *Standup) error
	SaveStandup(ctx context.Context, s *Standup) error
	ListMembers(ctx context.Context, channelID string) ([]*User, error)
	ListStandupsForDay(ctx context.Context, channelID string, day time.Time) ([]*Standup, error)
}

// Notifier is the outbound side of the chat transport.
type Notifier interface {
	Send(ctx context.Context, channelToken, text string) error
	StopListening()
}

// Metrics receives dispatch activity. The metrics package provides the
// prometheus-backed implementation.
type Metrics interface {
	RecordEvent()
	RecordCommand(kind string)
	RecordDenied(kind string)
	RecordOutbound()
	RecordFailure(op string)
	RecordDispatchLatency(d time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) RecordEvent()                        {}
func (nopMetrics) RecordCommand(string)                {}
func (nopMetrics) RecordDenied(string)                 {}
func (nopMetrics) RecordOutbound()                     {}
func (nopMetrics) RecordFailure(string)                {}
func (nopMetrics) RecordDispatchLatency(time.Duration) {}

// CollaboratorError is the only failure kind HandleEvent returns: a storage
// or notifier call failed. The current event is abandoned; state already
// committed stays committed. Retrying is the transport's business.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// Dispatcher turns one incoming message into at most one transition and one
// outbound notification. It is not safe for concurrent use on the same
// channel; the listener must await each HandleEvent before the next.
type Dispatcher struct {
	store    Store
	notifier Notifier
	logger   *log.Logger
	metrics  Metrics

	// botSlackID is this bot's own user, so it never answers itself.
	botSlackID string

	// admins grants the admin role by Slack ID on top of the stored
	// is_admin flag.
	admins map[string]bool

	// onChannelComplete, when set, runs after the day's last session
	// completes (the bot posts the digest from it).
	onChannelComplete func(ctx context.Context, channel *Channel, members []*User, standups []*Standup) error

	now func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics attaches a metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithAdmins grants the admin role to the given Slack IDs.
func WithAdmins(ids []string) Option {
	return func(d *Dispatcher) {
		for _, id := range ids {
			d.admins[id] = true
		}
	}
}

// WithClock overrides the dispatcher's notion of now.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(store Store, notifier Notifier, logger *log.Logger, botSlackID string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:      store,
		notifier:   notifier,
		logger:     logger,
		metrics:    nopMetrics{},
		botSlackID: botSlackID,
		admins:     map[string]bool{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetChannelCompleteHook registers fn to run after the final session of the
// day completes. It exists as a setter because the hook's owner (the bot)
// needs the dispatcher first.
func (d *Dispatcher) SetChannelCompleteHook(fn func(ctx context.Context, channel *Channel, members []*User, standups []*Standup) error) {
	d.onChannelComplete = fn
}

// HandleEvent processes one incoming message end to end. Unrecognized text,
// denied commands and dangling references are silent no-ops; only a
// collaborator failure comes back as an error.
func (d *Dispatcher) HandleEvent(ctx context.Context, ev Event) error {
	started := d.now()
	d.metrics.RecordEvent()

	user, err := d.store.FindUserBySlackID(ctx, ev.UserToken)
	if err != nil {
		return d.failure("find user", err)
	}
	if user == nil || user.IsBot || user.SlackID == d.botSlackID {
		return nil
	}

	channel, err := d.store.FindChannelBySlackID(ctx, ev.ChannelToken)
	if err != nil {
		return d.failure("find channel", err)
	}
	if channel == nil {
		return nil
	}

	session, err := d.store.MostRecentStandup(ctx, user.ID, channel.ID, started)
	if err != nil {
		return d.failure("find standup", err)
	}

	cmd := Parse(ev.Text, session != nil && session.State == StateAnswering)
	if cmd.Kind == CmdNone {
		return nil
	}
	d.metrics.RecordCommand(cmd.Kind.String())

	actor := *user
	if d.admins[actor.SlackID] {
		actor.IsAdmin = true
	}

	if !Allowed(cmd, session, &actor) {
		d.metrics.RecordDenied(cmd.Kind.String())
		d.logger.WithFields(log.Fields{
			"user":    actor.SlackID,
			"command": cmd.Kind.String(),
		}).Debug("Command denied, staying silent.")
		return nil
	}

	err = d.applyCommand(ctx, cmd, channel, &actor, session, ev.ChannelToken)
	d.metrics.RecordDispatchLatency(d.now().Sub(started))
	return err
}

func (d *Dispatcher) applyCommand(ctx context.Context, cmd Command, channel *Channel, actor *User, session *Standup, channelToken string) error {
	switch cmd.Kind {
	case CmdStart:
		return d.startSession(ctx, channel, actor, channelToken)

	case CmdHelp:
		// Help needs no session at all.
		return d.send(ctx, channelToken, HelpText)

	case CmdSkipOther, CmdVacation, CmdNotAvailable:
		return d.applyToTarget(ctx, cmd, channel, channelToken)
	}

	if session == nil {
		return nil
	}

	ef := Apply(cmd, session)
	return d.runEffect(ctx, ef, channel, session, channelToken)
}

func (d *Dispatcher) startSession(ctx context.Context, channel *Channel, actor *User, channelToken string) error {
	complete, _, _, err := d.channelComplete(ctx, channel)
	if err != nil {
		return err
	}
	if complete {
		return d.send(ctx, channelToken, MsgAlreadyCompleted)
	}

	session := &Standup{UserID: actor.ID, ChannelID: channel.ID}
	ef := Apply(Command{Kind: CmdStart}, session)
	if err := d.store.CreateStandup(ctx, session); err != nil {
		return d.failure("create standup", err)
	}
	d.logger.WithFields(log.Fields{
		"user":    actor.SlackID,
		"channel": channel.Name,
	}).Info("Standup session started.")

	if ef.Outbound != "" {
		return d.send(ctx, channelToken, ef.Outbound)
	}
	return nil
}

// applyToTarget runs the admin-only commands against the mentioned user's
// session. A mention that resolves to no user, or a target that is not
// mid-standup, is a silent no-op.
func (d *Dispatcher) applyToTarget(ctx context.Context, cmd Command, channel *Channel, channelToken string) error {
	target, err := d.store.FindUserBySlackID(ctx, cmd.Target)
	if err != nil {
		return d.failure("find target user", err)
	}
	if target == nil {
		return nil
	}

	session, err := d.store.MostRecentStandup(ctx, target.ID, channel.ID, d.now())
	if err != nil {
		return d.failure("find target standup", err)
	}
	if !TargetActionable(session) {
		return nil
	}

	ef := Apply(cmd, session)
	return d.runEffect(ctx, ef, channel, session, channelToken)
}

func (d *Dispatcher) runEffect(ctx context.Context, ef Effect, channel *Channel, session *Standup, channelToken string) error {
	if ef.Stop {
		d.logger.WithFields(log.Fields{"channel": channel.Name}).Info("Quit received, stopping listener.")
		d.notifier.StopListening()
		return nil
	}

	if ef.Save {
		if err := d.store.SaveStandup(ctx, session); err != nil {
			return d.failure("save standup", err)
		}
	}

	outbound := ef.Outbound
	if ef.CheckCompletion {
		complete, members, standups, err := d.channelComplete(ctx, channel)
		if err != nil {
			return err
		}
		if complete {
			outbound = MsgChannelComplete
			if d.onChannelComplete != nil {
				if err := d.onChannelComplete(ctx, channel, members, standups); err != nil {
					return d.failure("channel complete hook", err)
				}
			}
		}
	}

	if outbound != "" {
		return d.send(ctx, channelToken, outbound)
	}
	return nil
}

// ChannelComplete reports whether every human member of the channel has a
// COMPLETED session today. The bot uses it at connect time and before a
// kickoff announcement.
func (d *Dispatcher) ChannelComplete(ctx context.Context, channel *Channel) (bool, error) {
	complete, _, _, err := d.channelComplete(ctx, channel)
	return complete, err
}

// channelComplete reports whether every human member has a COMPLETED
// session today.
func (d *Dispatcher) channelComplete(ctx context.Context, channel *Channel) (bool, []*User, []*Standup, error) {
	members, err := d.store.ListMembers(ctx, channel.ID)
	if err != nil {
		return false, nil, nil, d.failure("list members", err)
	}
	standups, err := d.store.ListStandupsForDay(ctx, channel.ID, d.now())
	if err != nil {
		return false, nil, nil, d.failure("list standups", err)
	}

	byUser := make(map[string]*Standup, len(standups))
	for _, s := range standups {
		byUser[s.UserID] = s
	}

	humans := 0
	for _, m := range members {
		if m.IsBot {
			continue
		}
		humans++
		s, ok := byUser[m.ID]
		if !ok || s.State != StateCompleted {
			return false, members, standups, nil
		}
	}

	return humans > 0, members, standups, nil
}

func (d *Dispatcher) send(ctx context.Context, channelToken, text string) error {
	if err := d.notifier.Send(ctx, channelToken, text); err != nil {
		return d.failure("notify", err)
	}
	d.metrics.RecordOutbound()
	return nil
}

func (d *Dispatcher) failure(op string, err error) error {
	d.metrics.RecordFailure(op)
	return &CollaboratorError{Op: op, Err: err}
}
