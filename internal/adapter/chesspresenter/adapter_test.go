package chesspresenter

import (
	"testing"
	"time"

	"github.com/park285/chess-session-server/internal/play"
	"github.com/park285/chess-session-server/internal/rules"
	"github.com/park285/chess-session-server/internal/session"
)

func TestToDTOSessionResultEncoding(t *testing.T) {
	v := session.View{
		ID:      "g",
		FEN:     "fen",
		Player1: session.Player{ID: "p1", Color: rules.White, Kind: session.Human},
		Result:  session.Unknown,
	}
	dto := ToDTOSession(v)
	if dto.Result != nil || dto.Player2 != nil {
		t.Fatalf("unknown result must encode as null: %+v", dto)
	}
	if dto.Player1.Color != "w" || dto.Player1.Type != "human" {
		t.Fatalf("player encoding: %+v", dto.Player1)
	}

	at := time.Now()
	v.Player2 = &session.Player{ID: "p2", Color: rules.Black, Kind: session.Automated}
	v.LastMoveAt = &at
	for r, want := range map[session.Result]string{
		session.InProgress: "*",
		session.WhiteWin:   "1-0",
		session.BlackWin:   "0-1",
		session.Draw:       "1/2-1/2",
	} {
		v.Result = r
		dto = ToDTOSession(v)
		if dto.Result == nil || *dto.Result != want {
			t.Fatalf("%v encoded as %v", r, dto.Result)
		}
	}
	if dto.Player2 == nil || dto.Player2.Type != "ai" || dto.LastMoveAt == nil {
		t.Fatalf("player2 encoding: %+v", dto)
	}
}

func TestToDTOMove(t *testing.T) {
	rec := play.Record{
		Move: rules.Move{
			Color: rules.White, From: "e1", To: "g1", SAN: "O-O", UCI: "e1g1",
			Flags: []rules.Flag{rules.FlagKingsideCastle},
		},
		Long: "e1g1", ExtraFrom: "h1", ExtraTo: "f1", ExtraMove: "h1f1",
	}
	dto := ToDTOMove(rec)
	if dto.Move != "e1g1" || dto.ExtraMove != "h1f1" || len(dto.Flags) != 1 || dto.Flags[0] != "kingside_castle" {
		t.Fatalf("move dto: %+v", dto)
	}
}
