// Package bot connects the standup core to Slack: it owns the RTM
// listener, the roster sync performed at connect time and the digest
// posted when a channel finishes its standup.
package bot

import (
	"context"
	"fmt"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"github.com/asalkeld/fetchbot/config"
	"github.com/asalkeld/fetchbot/standup"
)

// RosterStore is the slice of storage the bot itself needs; everything else
// goes through the dispatcher.
type RosterStore interface {
	SyncRoster(ctx context.Context, channelSlackID, channelName string, members []*standup.User) (*standup.Channel, error)
}

const MsgWelcome = "Welcome to standup! Type `-start` to get started."

type Bot struct {
	slackBotAPI *slack.Client
	rtm         *slack.RTM

	dispatcher *standup.Dispatcher
	store      RosterStore
	rooms      *config.Rooms

	name string
	id   string

	stopped atomic.Bool

	logger *log.Logger
}

func New(slackAPIClient *slack.Client, logger *log.Logger, dispatcher *standup.Dispatcher, store RosterStore, rooms *config.Rooms, name string) *Bot {
	return &Bot{
		slackBotAPI: slackAPIClient,
		rtm:         slackAPIClient.NewRTM(),
		dispatcher:  dispatcher,
		store:       store,
		rooms:       rooms,
		name:        name,
		logger:      logger,
	}
}

// Stop makes the bot drop any queued events and disconnect. It is what the
// core's Notifier.StopListening ends up calling.
func (b *Bot) Stop() {
	if b.stopped.CompareAndSwap(false, true) {
		b.rtm.Disconnect()
	}
}

// Run consumes RTM events one at a time, in arrival order, until the
// connection closes or Stop is called. Every message is fully dispatched
// before the next one is read, so a channel's sessions never race.
func (b *Bot) Run(ctx context.Context) error {
	go b.rtm.ManageConnection()

	for msg := range b.rtm.IncomingEvents {
		if b.stopped.Load() {
			break
		}

		switch ev := msg.Data.(type) {
		case *slack.ConnectedEvent:
			b.id = ev.Info.User.ID
			b.logger.WithFields(log.Fields{"botID": b.id, "name": b.name}).Info("Connected to slack.")
			if err := b.bootstrap(ctx); err != nil {
				b.logger.WithFields(log.Fields{"error": err}).Error("Roster sync failed.")
			}

		case *slack.MessageEvent:
			b.handleMessage(ctx, ev)

		case *slack.RTMError:
			b.logger.WithFields(log.Fields{"error": ev.Error()}).Error("RTM error.")

		case *slack.InvalidAuthEvent:
			return fmt.Errorf("invalid slack credentials")
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, event *slack.MessageEvent) {
	if event.BotID != "" || event.User == b.id {
		// Ignore messages coming from bots, ourselves included.
		return
	}

	err := b.dispatcher.HandleEvent(ctx, standup.Event{
		ChannelToken: event.Channel,
		UserToken:    event.User,
		Text:         event.Text,
	})
	if err != nil {
		b.logSlackRelatedError(event, err, "Fail to dispatch message.")
	}
}

// bootstrap runs the roster sync for every configured room and posts the
// greeting, before any message is dispatched. This mirrors what the core
// expects: users and channels exist by the time commands arrive.
func (b *Bot) bootstrap(ctx context.Context) error {
	for _, room := range b.rooms.Rooms {
		channel, err := b.syncRoom(ctx, &room)
		if err != nil {
			return err
		}

		complete, err := b.dispatcher.ChannelComplete(ctx, channel)
		if err != nil {
			return err
		}

		text := MsgWelcome
		if complete {
			text = standup.MsgAlreadyCompleted
		}
		b.postMessage(channel.SlackID, text)

		if complete {
			b.Stop()
			return nil
		}
	}
	return nil
}

// syncRoom reconciles one room's channel and member list into storage.
func (b *Bot) syncRoom(ctx context.Context, room *config.Room) (*standup.Channel, error) {
	channelID, err := b.findChannelID(ctx, room.Channel)
	if err != nil {
		return nil, err
	}

	memberIDs := []string{}
	params := &slack.GetUsersInConversationParameters{ChannelID: channelID}
	for {
		page, cursor, err := b.slackBotAPI.GetUsersInConversationContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("listing conversation members: %w", err)
		}
		memberIDs = append(memberIDs, page...)
		if cursor == "" {
			break
		}
		params.Cursor = cursor
	}

	slackUsers, err := b.slackBotAPI.GetUsersContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing workspace users: %w", err)
	}
	byID := map[string]slack.User{}
	for _, u := range slackUsers {
		byID[u.ID] = u
	}

	members := []*standup.User{}
	for _, id := range memberIDs {
		su, ok := byID[id]
		if !ok {
			continue
		}
		members = append(members, &standup.User{
			SlackID:   su.ID,
			FullName:  su.Profile.RealNameNormalized,
			Nickname:  su.Name,
			AvatarURL: su.Profile.Image72,
			IsBot:     su.IsBot || su.ID == b.id,
		})
	}

	channel, err := b.store.SyncRoster(ctx, channelID, room.Channel, members)
	if err != nil {
		return nil, err
	}

	b.logger.WithFields(log.Fields{
		"channel": room.Channel,
		"members": len(members),
	}).Info("Roster synced.")
	return channel, nil
}

func (b *Bot) findChannelID(ctx context.Context, name string) (string, error) {
	params := &slack.GetConversationsParameters{
		Types: []string{"public_channel", "private_channel"},
	}
	for {
		channels, cursor, err := b.slackBotAPI.GetConversationsContext(ctx, params)
		if err != nil {
			return "", fmt.Errorf("listing conversations: %w", err)
		}
		for _, c := range channels {
			if c.Name == name {
				return c.ID, nil
			}
		}
		if cursor == "" {
			return "", fmt.Errorf("channel not found: %s", name)
		}
		params.Cursor = cursor
	}
}

func (b *Bot) postMessage(channel, text string) {
	_, _, err := b.slackBotAPI.PostMessage(channel,
		slack.MsgOptionText(text, true),
		slack.MsgOptionAsUser(true))
	if err != nil {
		b.logger.WithFields(log.Fields{
			"channel": channel,
			"error":   err,
		}).Error("Fail to post message to slack.")
	}
}

func (b *Bot) logSlackRelatedError(event *slack.MessageEvent, err error, logMessage string) {
	b.logger.WithFields(log.Fields{
		"text":     event.Text,
		"user":     event.User,
		"username": event.Username,
		"error":    err,
	}).Error(logMessage)
}
