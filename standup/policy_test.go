package standup

import "testing"

func session(state State) *Standup {
	return &Standup{ID: "s1", UserID: "u1", ChannelID: "c1", State: state}
}

func TestAllowedStart(t *testing.T) {
	actor := &User{ID: "u1"}

	if !Allowed(Command{Kind: CmdStart}, nil, actor) {
		t.Error("start with no session should be allowed")
	}
	if !Allowed(Command{Kind: CmdStart}, session(StateCompleted), actor) {
		t.Error("start after a completed session should be allowed")
	}
	for _, st := range []State{StateIdle, StateActive, StateAnswering} {
		if Allowed(Command{Kind: CmdStart}, session(st), actor) {
			t.Errorf("start with an open %s session should be denied", st)
		}
	}
}

func TestAllowedHelpAnyState(t *testing.T) {
	actor := &User{ID: "u1"}

	if !Allowed(Command{Kind: CmdHelp}, nil, actor) {
		t.Error("help should be allowed without a session")
	}
	for _, st := range []State{StateIdle, StateActive, StateAnswering, StateCompleted} {
		if !Allowed(Command{Kind: CmdHelp}, session(st), actor) {
			t.Errorf("help should be allowed in %s", st)
		}
	}
}

func TestAllowedPerState(t *testing.T) {
	actor := &User{ID: "u1"}
	admin := &User{ID: "u2", IsAdmin: true}

	cases := []struct {
		name  string
		cmd   Command
		actor *User
		allow map[State]bool
	}{
		{
			name:  "skip self only when active",
			cmd:   Command{Kind: CmdSkipSelf},
			actor: actor,
			allow: map[State]bool{StateActive: true},
		},
		{
			name:  "resume only when idle",
			cmd:   Command{Kind: CmdResume},
			actor: actor,
			allow: map[State]bool{StateIdle: true},
		},
		{
			name:  "answer only when answering",
			cmd:   Command{Kind: CmdAnswerText, Text: "x"},
			actor: actor,
			allow: map[State]bool{StateAnswering: true},
		},
		{
			name:  "edit when answering or completed",
			cmd:   Command{Kind: CmdEdit, Index: 1},
			actor: actor,
			allow: map[State]bool{StateAnswering: true, StateCompleted: true},
		},
		{
			name:  "delete when answering or completed",
			cmd:   Command{Kind: CmdDelete, Index: 1},
			actor: actor,
			allow: map[State]bool{StateAnswering: true, StateCompleted: true},
		},
		{
			name:  "quit in any open state",
			cmd:   Command{Kind: CmdQuit},
			actor: actor,
			allow: map[State]bool{StateIdle: true, StateActive: true, StateAnswering: true},
		},
		{
			name:  "vacation for admin regardless of own state",
			cmd:   Command{Kind: CmdVacation, Target: "U9"},
			actor: admin,
			allow: map[State]bool{StateIdle: true, StateActive: true, StateAnswering: true, StateCompleted: true},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for _, st := range []State{StateIdle, StateActive, StateAnswering, StateCompleted} {
				got := Allowed(c.cmd, session(st), c.actor)
				if got != c.allow[st] {
					t.Errorf("state %s: allowed = %v, want %v", st, got, c.allow[st])
				}
			}
		})
	}
}

func TestAllowedAdminCommandsRequireAdmin(t *testing.T) {
	actor := &User{ID: "u1"}

	for _, kind := range []CommandKind{CmdSkipOther, CmdVacation, CmdNotAvailable} {
		if Allowed(Command{Kind: kind, Target: "U9"}, session(StateActive), actor) {
			t.Errorf("%s should be denied for a regular member", kind)
		}
	}
}

func TestAllowedNoSession(t *testing.T) {
	actor := &User{ID: "u1"}

	for _, kind := range []CommandKind{CmdSkipSelf, CmdResume, CmdAnswerText, CmdEdit, CmdDelete, CmdQuit} {
		if Allowed(Command{Kind: kind}, nil, actor) {
			t.Errorf("%s with no session should be denied", kind)
		}
	}
}

func TestTargetActionable(t *testing.T) {
	if TargetActionable(nil) {
		t.Error("nil target session should not be actionable")
	}
	if !TargetActionable(session(StateActive)) {
		t.Error("active target should be actionable")
	}
	for _, st := range []State{StateIdle, StateAnswering, StateCompleted} {
		if TargetActionable(session(st)) {
			t.Errorf("%s target should not be actionable", st)
		}
	}
}
