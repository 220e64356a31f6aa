package standup

// Allowed decides whether a parsed command may act given the actor's current
// session and role. Denials are deliberate silence: the dispatcher performs
// no mutation and sends nothing for a command this rejects.
//
// session is the actor's most recent standup for the day and may be nil.
// For the admin commands (skip-other, vacation, n/a) the state checked here
// is the target's, which the dispatcher looks up before applying; this
// function only gates on the actor's role.
func Allowed(cmd Command, session *Standup, actor *User) bool {
	switch cmd.Kind {
	case CmdStart:
		return !session.Open()
	case CmdHelp:
		return true
	case CmdSkipSelf:
		return session != nil && session.State == StateActive
	case CmdResume:
		return session != nil && session.State == StateIdle
	case CmdAnswerText:
		return session != nil && session.State == StateAnswering
	case CmdEdit, CmdDelete:
		return session != nil &&
			(session.State == StateAnswering || session.State == StateCompleted)
	case CmdSkipOther, CmdVacation, CmdNotAvailable:
		return actor != nil && actor.IsAdmin
	case CmdQuit:
		return session.Open()
	}
	return false
}

// TargetActionable reports whether an admin command may touch the target's
// session. All three admin commands act only on an ACTIVE session.
func TargetActionable(target *Standup) bool {
	return target != nil && target.State == StateActive
}
