package events

// Journal is an EventLog view bound to one session.
type Journal struct {
	log       *EventLog
	sessionID string
}

// For returns a journal that stamps every event with sessionID.
func (el *EventLog) For(sessionID string) *Journal {
	return &Journal{log: el, sessionID: sessionID}
}

// SessionID returns the bound session id.
func (j *Journal) SessionID() string {
	return j.sessionID
}

// Append records an event for the bound session.
func (j *Journal) Append(event GameEvent) GameEvent {
	event.SessionID = j.sessionID
	return j.log.Append(event)
}

// Log records a LOG_LINE for the bound session.
func (j *Journal) Log(actorID, message string) GameEvent {
	return j.log.Log(j.sessionID, actorID, message)
}

// LastLogLine returns the latest status line for the bound session.
func (j *Journal) LastLogLine() string {
	msg, _, _ := j.log.LastLogLine(j.sessionID)
	return msg
}

// Events returns every event recorded for the bound session.
func (j *Journal) Events() []GameEvent {
	return j.log.GetBySession(j.sessionID)
}
