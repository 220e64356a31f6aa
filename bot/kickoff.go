package bot

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// RunKickoffs wakes up periodically and announces the standup in each room
// once its scheduled time has passed, at most once per day. It runs in its
// own goroutine and shares nothing with the dispatch loop but storage.
func (b *Bot) RunKickoffs(ctx context.Context, interval time.Duration) {
	announced := map[string]string{}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if b.stopped.Load() {
			return
		}

		for _, room := range b.rooms.Rooms {
			if room.KickoffCron == "" {
				continue
			}

			day, err := room.KickoffDay()
			if err != nil {
				b.logger.WithFields(log.Fields{"room": room.Name, "error": err}).Warn("Bad room timezone.")
				continue
			}
			if announced[room.Name] == day {
				continue
			}

			ready, err := room.ReadyToKickoff()
			if err != nil {
				b.logger.WithFields(log.Fields{"room": room.Name, "error": err}).Warn("Bad kickoff schedule.")
				continue
			}
			if !ready {
				continue
			}

			channelID, err := b.findChannelID(ctx, room.Channel)
			if err != nil {
				b.logger.WithFields(log.Fields{"room": room.Name, "error": err}).Warn("Kickoff channel lookup failed.")
				continue
			}

			b.postMessage(channelID, MsgWelcome)
			announced[room.Name] = day
			b.logger.WithFields(log.Fields{"room": room.Name, "day": day}).Info("Standup announced.")
		}
	}
}
