package guard

import (
	"errors"
	"testing"
	"time"

	"github.com/park285/chess-session-server/internal/rules"
	"github.com/park285/chess-session-server/internal/session"
	"github.com/park285/chess-session-server/pkg/chessdto"
)

func TestSubmitMoveOrdering(t *testing.T) {
	lone := session.New("g", time.Now(), session.Player{ID: "p1", Color: rules.White, Kind: session.Human})
	full := session.New("g", time.Now(), session.Player{ID: "p1", Color: rules.White, Kind: session.Human})
	_ = full.Join(session.Player{ID: "p2", Color: rules.Black, Kind: session.Human})

	cases := []struct {
		name string
		s    *session.Session
		in   Input
		want error
	}{
		{"missing game beats everything", nil, Input{}, chessdto.ErrGameNotFound},
		{"unknown player", full, Input{PlayerID: "x", Move: "e2e4"}, chessdto.ErrPlayerNotInGame},
		{"player checked before seats", lone, Input{PlayerID: "x"}, chessdto.ErrPlayerNotInGame},
		{"need two players", lone, Input{PlayerID: "p1", Move: "e2e4"}, chessdto.ErrNeedTwoPlayers},
		{"move required", full, Input{PlayerID: "p2", Move: "  "}, chessdto.ErrMoveRequired},
		{"ok", full, Input{PlayerID: "p1", Move: "e2e4"}, nil},
	}
	for _, tc := range cases {
		err := Run(tc.s, tc.in, SubmitMove...)
		if tc.want == nil {
			if err != nil {
				t.Fatalf("%s: unexpected %v", tc.name, err)
			}
			continue
		}
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, err, tc.want)
		}
	}
}

func TestPlayerKindPresent(t *testing.T) {
	if err := Run(nil, Input{}, Create...); !errors.Is(err, chessdto.ErrPlayerTypeRequired) {
		t.Fatalf("got %v", err)
	}
	if err := Run(nil, Input{PlayerType: "robot"}, Create...); !errors.Is(err, chessdto.ErrUnknownPlayerType) {
		t.Fatalf("got %v", err)
	}
	if err := Run(nil, Input{PlayerType: "AI"}, Create...); err != nil {
		t.Fatalf("got %v", err)
	}
	if err := Run(nil, Input{PlayerType: "human"}, Join...); !errors.Is(err, chessdto.ErrGameNotFound) {
		t.Fatalf("join should check the game first, got %v", err)
	}
}
