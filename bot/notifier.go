package bot

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

// Notifier posts messages through the Slack Web API, throttled so a chatty
// channel cannot trip Slack's rate limits.
type Notifier struct {
	slackBotAPI *slack.Client
	limiter     *rate.Limiter
	logger      *log.Logger
	stop        func()
}

// NewNotifier wires the notifier to the Slack client. stop is invoked when
// the core requests the listener to quit.
func NewNotifier(slackAPIClient *slack.Client, sendRatePerSecond float64, logger *log.Logger, stop func()) *Notifier {
	return &Notifier{
		slackBotAPI: slackAPIClient,
		limiter:     rate.NewLimiter(rate.Limit(sendRatePerSecond), 1),
		logger:      logger,
		stop:        stop,
	}
}

func (n *Notifier) Send(ctx context.Context, channelToken, text string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}

	_, _, err := n.slackBotAPI.PostMessageContext(ctx, channelToken,
		slack.MsgOptionText(text, true),
		slack.MsgOptionAsUser(true))
	if err != nil {
		n.logger.WithFields(log.Fields{
			"channel": channelToken,
			"error":   err,
		}).Error("Fail to post message to slack.")
		return err
	}
	return nil
}

func (n *Notifier) StopListening() {
	n.stop()
}
