package play

import "github.com/park285/chess-session-server/internal/session"

// Evaluate moves an in-progress session to its terminal result once the position ends the game.
// Terminal sessions are left as they are.
func Evaluate(s *session.Session) session.Result {
	if s.Result != session.InProgress {
		return s.Result
	}
	pos := s.Position
	switch {
	case pos.IsGameOver() && pos.IsCheckmate():
		// the side to move is the side that was mated
		_ = s.Decide(session.WinFor(pos.Turn().Opposite()))
	case pos.IsDraw():
		_ = s.Decide(session.Draw)
	}
	return s.Result
}
