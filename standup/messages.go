package standup

// Outbound texts. The connection greeting lives with the bot; everything the
// state machine says is here so the tests can assert on it.
const (
	MsgStarted          = "Standup started! Type `-yes` when you are ready to report."
	MsgAlreadyCompleted = "Today's standup is already completed."
	MsgQuestion         = "What did you do yesterday?"
	MsgAnswerSaved      = "Thanks! Your report is saved for today."
	MsgChannelComplete  = "That's everyone. Today's standup is complete!"

	HelpText = "- `-start`: open your standup session for today\n" +
		"- `-yes`: begin answering when it is your turn\n" +
		"- `-skip`: postpone your turn\n" +
		"- `-skip: <@user>`: postpone someone else's turn (admin)\n" +
		"- `-vacation: <@user>`: mark someone on vacation (admin)\n" +
		"- `-n/a: <@user>`: mark someone not available (admin)\n" +
		"- `-edit: <n>`: reopen an answer for correction\n" +
		"- `-delete: <n>`: remove an answer\n" +
		"- `-quit`: stop the standup listener\n" +
		"- `-help`: this message"
)
