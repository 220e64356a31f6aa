package bot

import (
	"context"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	log "github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"github.com/asalkeld/fetchbot/standup"
)

// DigestHook returns the dispatcher hook that posts the day's digest once a
// channel completes its standup.
func (b *Bot) DigestHook() func(ctx context.Context, channel *standup.Channel, members []*standup.User, standups []*standup.Standup) error {
	return func(ctx context.Context, channel *standup.Channel, members []*standup.User, standups []*standup.Standup) error {
		attachments := GenerateDigest(members, standups)
		if len(attachments) == 0 {
			return nil
		}

		_, _, err := b.slackBotAPI.PostMessageContext(ctx, channel.SlackID,
			slack.MsgOptionText("Here's today's standup digest!", true),
			slack.MsgOptionAsUser(true),
			slack.MsgOptionAttachments(attachments...))
		if err != nil {
			return err
		}

		b.logger.WithFields(log.Fields{"channel": channel.Name}).Info("Posted standup digest.")
		return nil
	}
}

// GenerateDigest formats everyone's answer as one attachment per member.
// Members marked away by an admin are collected into a single trailing
// attachment instead.
func GenerateDigest(members []*standup.User, standups []*standup.Standup) []slack.Attachment {
	byUser := make(map[string]*standup.Standup, len(standups))
	for _, s := range standups {
		byUser[s.UserID] = s
	}

	attachments := []slack.Attachment{}
	away := []string{}

	for _, member := range members {
		if member.IsBot {
			continue
		}
		s, ok := byUser[member.ID]
		if !ok || s.Yesterday == nil {
			continue
		}

		switch *s.Yesterday {
		case standup.AnswerVacation, standup.AnswerNotAvailable:
			away = append(away, "@"+member.Nickname)
			continue
		}

		attachments = append(attachments, slack.Attachment{
			Color:      colorful.FastHappyColor().Hex(),
			MarkdownIn: []string{"text", "pretext"},
			Pretext:    "@" + member.Nickname,
			Text:       standup.MsgQuestion + "\n" + *s.Yesterday,
		})
	}

	if len(away) > 0 {
		attachments = append(attachments, slack.Attachment{
			Color:      colorful.FastHappyColor().Hex(),
			MarkdownIn: []string{"text", "pretext"},
			Pretext:    "Away today",
			Text:       strings.Join(away, ", "),
		})
	}

	return attachments
}
