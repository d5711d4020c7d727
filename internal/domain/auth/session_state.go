package auth

// SessionStatus is what the session provider knows about the current viewer.
type SessionStatus string

const (
	SessionUnknown SessionStatus = "unknown"
	SessionPresent SessionStatus = "present"
	SessionAbsent  SessionStatus = "absent"
)

// SessionState is the value exposed by the session provider to its readers.
// Session is set only when Status is SessionPresent.
type SessionState struct {
	Status  SessionStatus
	Session *Session
}

// Present reports whether a live session is attached.
func (s SessionState) Present() bool {
	return s.Status == SessionPresent && s.Session != nil
}

// Identity returns the identity for a present session, or nil.
func (s SessionState) Identity() *Identity {
	if !s.Present() {
		return nil
	}
	id := s.Session.Identity()
	return &id
}

// AccessToken returns the mirrored token for a present session.
func (s SessionState) AccessToken() string {
	if !s.Present() {
		return ""
	}
	return s.Session.AccessToken
}

// SessionEventKind classifies out-of-band session changes.
type SessionEventKind string

const (
	SessionStarted   SessionEventKind = "started"
	SessionRefreshed SessionEventKind = "refreshed"
	SessionEnded     SessionEventKind = "ended"
)

// SessionEvent is pushed by the auth side whenever a session begins, is refreshed or ends.
type SessionEvent struct {
	Kind      SessionEventKind `json:"kind"`
	SessionID string           `json:"session_id"`
	Session   *Session         `json:"session,omitempty"`
}
