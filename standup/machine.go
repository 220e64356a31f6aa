package standup

// Effect is what applying one command asks the dispatcher to do. A zero
// Effect is a no-op: nothing saved, nothing sent.
type Effect struct {
	// Save indicates the session was mutated and must be persisted.
	Save bool

	// Outbound is the single notification to post to the channel, if any.
	Outbound string

	// Stop asks the host listener to stop consuming events.
	Stop bool

	// CheckCompletion asks the dispatcher to re-evaluate whether every
	// member's session for the day is now completed.
	CheckCompletion bool
}

// Apply advances one session through the standup lifecycle. The command has
// already passed policy; session is the record the command acts on (the
// target's for admin commands, the actor's otherwise). Apply never touches
// storage or the network.
func Apply(cmd Command, session *Standup) Effect {
	switch cmd.Kind {
	case CmdStart:
		session.State = StateActive
		return Effect{Save: true, Outbound: MsgStarted}

	case CmdHelp:
		return Effect{Outbound: HelpText}

	case CmdSkipSelf, CmdSkipOther:
		if session.State != StateActive {
			return Effect{}
		}
		session.State = StateIdle
		return Effect{Save: true}

	case CmdVacation:
		return away(session, AnswerVacation)

	case CmdNotAvailable:
		return away(session, AnswerNotAvailable)

	case CmdResume:
		if session.State != StateIdle {
			return Effect{}
		}
		session.State = StateAnswering
		return Effect{Save: true, Outbound: MsgQuestion}

	case CmdAnswerText:
		if session.State != StateAnswering {
			return Effect{}
		}
		text := cmd.Text
		session.Yesterday = &text
		session.State = StateCompleted
		return Effect{Save: true, Outbound: MsgAnswerSaved, CheckCompletion: true}

	case CmdEdit:
		if !hasAnswerSlot(session, cmd.Index) {
			return Effect{}
		}
		session.Yesterday = nil
		// Edit reopens a completed session; Delete deliberately does not.
		if session.State == StateCompleted {
			session.State = StateAnswering
		}
		return Effect{Save: true, Outbound: MsgQuestion}

	case CmdDelete:
		if !hasAnswerSlot(session, cmd.Index) {
			return Effect{}
		}
		session.Yesterday = nil
		return Effect{Save: true}

	case CmdQuit:
		return Effect{Stop: true}
	}

	return Effect{}
}

// away finalizes an ACTIVE session with a sentinel answer on behalf of an
// absent member.
func away(session *Standup, sentinel string) Effect {
	if session.State != StateActive {
		return Effect{}
	}
	answer := sentinel
	session.Yesterday = &answer
	session.State = StateCompleted
	return Effect{Save: true, CheckCompletion: true}
}

// hasAnswerSlot reports whether the edit/delete index refers to a stored
// answer. The session holds a single answer, so only index 1 resolves;
// anything else is a reference to nothing and a no-op.
func hasAnswerSlot(session *Standup, index int) bool {
	if session.State != StateAnswering && session.State != StateCompleted {
		return false
	}
	return index == 1
}
