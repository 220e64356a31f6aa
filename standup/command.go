package standup

import (
	"regexp"
	"strconv"
	"strings"
)

// CommandKind enumerates every message the bot understands. Parse produces
// a Command exactly once per incoming message; policy and the state machine
// both switch on Kind instead of re-reading the text.
type CommandKind int

const (
	CmdNone CommandKind = iota
	CmdStart
	CmdHelp
	CmdSkipSelf
	CmdSkipOther
	CmdVacation
	CmdNotAvailable
	CmdEdit
	CmdDelete
	CmdQuit
	CmdResume
	CmdAnswerText
)

func (k CommandKind) String() string {
	switch k {
	case CmdStart:
		return "start"
	case CmdHelp:
		return "help"
	case CmdSkipSelf:
		return "skip"
	case CmdSkipOther:
		return "skip-other"
	case CmdVacation:
		return "vacation"
	case CmdNotAvailable:
		return "not-available"
	case CmdEdit:
		return "edit"
	case CmdDelete:
		return "delete"
	case CmdQuit:
		return "quit"
	case CmdResume:
		return "resume"
	case CmdAnswerText:
		return "answer"
	}
	return "none"
}

// Command is the parsed form of one incoming message.
type Command struct {
	Kind CommandKind

	// Target is the raw Slack ID from a <@U...> mention. The dispatcher
	// resolves it to a User; the parser does not.
	Target string

	// Index is the answer number for edit/delete.
	Index int

	// Text carries the literal message for CmdAnswerText.
	Text string
}

var mentionRegex = regexp.MustCompile(`^<@([A-Za-z0-9._-]+)>$`)

const quitMarker = "-quit"

// Parse interprets raw message text. Prefixes are case sensitive; anything
// unrecognized is the user's answer while they are answering, and silence
// otherwise.
func Parse(text string, answering bool) Command {
	trimmed := strings.TrimSpace(text)

	switch trimmed {
	case "-start":
		return Command{Kind: CmdStart}
	case "-help":
		return Command{Kind: CmdHelp}
	case "-skip":
		return Command{Kind: CmdSkipSelf}
	case "-yes":
		return Command{Kind: CmdResume}
	}

	if strings.Contains(trimmed, quitMarker) {
		return Command{Kind: CmdQuit}
	}

	if prefix, arg, ok := splitArg(trimmed); ok {
		switch prefix {
		case "-skip":
			if target, ok := parseMention(arg); ok {
				return Command{Kind: CmdSkipOther, Target: target}
			}
		case "-vacation":
			if target, ok := parseMention(arg); ok {
				return Command{Kind: CmdVacation, Target: target}
			}
		case "-n/a":
			if target, ok := parseMention(arg); ok {
				return Command{Kind: CmdNotAvailable, Target: target}
			}
		case "-edit":
			if idx, err := strconv.Atoi(arg); err == nil {
				return Command{Kind: CmdEdit, Index: idx}
			}
		case "-delete":
			if idx, err := strconv.Atoi(arg); err == nil {
				return Command{Kind: CmdDelete, Index: idx}
			}
		}
		// A malformed argument falls through: it is just text.
	}

	if answering {
		return Command{Kind: CmdAnswerText, Text: text}
	}

	return Command{Kind: CmdNone}
}

func splitArg(text string) (prefix, arg string, ok bool) {
	if !strings.HasPrefix(text, "-") {
		return "", "", false
	}
	prefix, arg, ok = strings.Cut(text, ":")
	if !ok {
		return "", "", false
	}
	return prefix, strings.TrimSpace(arg), true
}

func parseMention(arg string) (string, bool) {
	m := mentionRegex.FindStringSubmatch(arg)
	if m == nil {
		return "", false
	}
	return m[1], true
}
