package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/slack-go/slack"

	"github.com/asalkeld/fetchbot/standup"
)

func TestHandleMessageIgnoresBotMessages(t *testing.T) {
	bot := &Bot{}

	// Must return before touching the dispatcher.
	bot.handleMessage(context.Background(), &slack.MessageEvent{Msg: slack.Msg{BotID: "B1"}})
}

func TestHandleMessageIgnoresOwnMessages(t *testing.T) {
	bot := &Bot{id: "UBOT"}

	bot.handleMessage(context.Background(), &slack.MessageEvent{Msg: slack.Msg{User: "UBOT", Text: "-start"}})
}

func strptr(s string) *string { return &s }

func TestGenerateDigest(t *testing.T) {
	members := []*standup.User{
		{ID: "alice", Nickname: "alice"},
		{ID: "bob", Nickname: "bob"},
		{ID: "carol", Nickname: "carol"},
		{ID: "robot", Nickname: "fetchbot", IsBot: true},
	}
	standups := []*standup.Standup{
		{UserID: "alice", State: standup.StateCompleted, Yesterday: strptr("Worked on X")},
		{UserID: "bob", State: standup.StateCompleted, Yesterday: strptr(standup.AnswerVacation)},
		{UserID: "carol", State: standup.StateCompleted, Yesterday: strptr(standup.AnswerNotAvailable)},
	}

	attachments := GenerateDigest(members, standups)

	// One answer attachment plus the away roll-up.
	if len(attachments) != 2 {
		t.Fatalf("got %d attachments, want 2", len(attachments))
	}

	if attachments[0].Pretext != "@alice" {
		t.Errorf("pretext = %q", attachments[0].Pretext)
	}
	if !strings.Contains(attachments[0].Text, "Worked on X") {
		t.Errorf("text = %q", attachments[0].Text)
	}
	if attachments[0].Color == "" {
		t.Error("expected a color on the attachment")
	}

	away := attachments[1]
	if away.Pretext != "Away today" {
		t.Errorf("away pretext = %q", away.Pretext)
	}
	if !strings.Contains(away.Text, "@bob") || !strings.Contains(away.Text, "@carol") {
		t.Errorf("away text = %q", away.Text)
	}
}

func TestGenerateDigestSkipsUnanswered(t *testing.T) {
	members := []*standup.User{{ID: "alice", Nickname: "alice"}}
	standups := []*standup.Standup{
		{UserID: "alice", State: standup.StateIdle},
	}

	if got := GenerateDigest(members, standups); len(got) != 0 {
		t.Errorf("got %d attachments, want 0", len(got))
	}
}
