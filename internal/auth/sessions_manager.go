package auth

import "context"

// SessionInfo annotates a session with whether it backs the caller's own
// refresh token.
type SessionInfo struct {
	Session
	IsCurrent bool `json:"is_current"`
}

func (s *Service) ListSessions(ctx context.Context, userID, currentToken string) ([]SessionInfo, error) {
	sessions, err := s.sessions.ListForUser(ctx, userID)
	if err != nil {
		return nil, Internal("failed to list sessions")
	}

	infos := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, SessionInfo{Session: sess, IsCurrent: sess.Token == currentToken})
	}
	return infos, nil
}

// RevokeOtherSessions deletes every session of the user except the current
// one and returns how many were removed.
func (s *Service) RevokeOtherSessions(ctx context.Context, userID, currentToken string) (int64, error) {
	current, err := s.sessions.FindByToken(ctx, currentToken)
	if err != nil {
		return 0, Internal("failed to look up current session")
	}
	if current == nil {
		return 0, Unauthorized("current session not found")
	}
	if current.UserID != userID {
		return 0, Forbidden("session does not belong to you")
	}

	count, err := s.sessions.DeleteAllExceptOne(ctx, userID, currentToken)
	if err != nil {
		return 0, Internal("failed to revoke sessions")
	}
	s.auditLog(ctx, AuditEvent{EventType: EventSessionsRevoked, UserID: userID, Meta: map[string]interface{}{"count": count}})
	return count, nil
}

// RevokeSession deletes one of the user's sessions by id. currentToken is
// the caller's refresh token when the cookie flow is in use; a caller
// authenticated by bearer access token alone carries no current session
// here and may revoke any session it owns, including the one that minted
// its access token.
func (s *Service) RevokeSession(ctx context.Context, userID, sessionID, currentToken string) error {
	target, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return Internal("failed to look up session")
	}
	if target == nil {
		return NotFound("session not found")
	}
	if target.UserID != userID {
		return Forbidden("you can only revoke your own sessions")
	}
	if target.Token == currentToken {
		return Forbidden("use logout to end the current session")
	}

	if err := s.sessions.Delete(ctx, target.ID); err != nil {
		return Internal("failed to revoke session")
	}
	s.auditLog(ctx, AuditEvent{EventType: EventSessionsRevoked, UserID: userID, Meta: map[string]interface{}{"session_id": sessionID}})
	return nil
}
