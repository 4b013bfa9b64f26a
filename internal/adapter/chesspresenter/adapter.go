// Package chesspresenter converts session state into wire DTOs.
package chesspresenter

import (
	"github.com/park285/chess-session-server/internal/play"
	"github.com/park285/chess-session-server/internal/session"
	"github.com/park285/chess-session-server/pkg/chessdto"
)

func ToDTOSession(v session.View) *chessdto.Session {
	out := &chessdto.Session{
		ID:        v.ID,
		CreatedAt: v.CreatedAt,
		FEN:       v.FEN,
		Moves:     append([]string{}, v.Moves...),
		Player1:   ToDTOPlayer(v.Player1),
		Result:    ToDTOResult(v.Result),
	}
	if v.Player2 != nil {
		out.Player2 = ToDTOPlayer(*v.Player2)
	}
	if v.LastMoveAt != nil {
		at := *v.LastMoveAt
		out.LastMoveAt = &at
	}
	return out
}

func ToDTOSessions(list []session.View) []*chessdto.Session {
	out := make([]*chessdto.Session, 0, len(list))
	for _, v := range list {
		out = append(out, ToDTOSession(v))
	}
	return out
}

func ToDTOPlayer(p session.Player) *chessdto.Player {
	return &chessdto.Player{ID: p.ID, Color: string(p.Color), Type: string(p.Kind)}
}

// ToDTOResult is nil while the session is waiting for its second player.
func ToDTOResult(r session.Result) *string {
	token, ok := r.PGN()
	if !ok {
		return nil
	}
	return &token
}

func ToDTOMove(r play.Record) *chessdto.Move {
	flags := make([]string, 0, len(r.Flags))
	for _, f := range r.Flags {
		flags = append(flags, string(f))
	}
	return &chessdto.Move{
		Color:     string(r.Color),
		From:      r.From,
		To:        r.To,
		Promotion: r.Promotion,
		Flags:     flags,
		SAN:       r.SAN,
		Move:      r.Long,
		ExtraFrom: r.ExtraFrom,
		ExtraTo:   r.ExtraTo,
		ExtraMove: r.ExtraMove,
		EnPassant: r.EnPassant,
	}
}
