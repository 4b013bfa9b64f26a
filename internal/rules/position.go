// Package rules adapts github.com/corentings/chess to the narrow capability the session layer needs:
// apply a move, report the side to move, and answer terminal-state predicates.
package rules

import (
	"errors"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// Color identifies a side. Values match the first field of FEN's active color.
type Color string

const (
	White Color = "w"
	Black Color = "b"
)

func (c Color) Valid() bool { return c == White || c == Black }

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Name() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return ""
	}
}

// Flag tags the kind of a move.
type Flag string

const (
	FlagCapture         Flag = "capture"
	FlagKingsideCastle  Flag = "kingside_castle"
	FlagQueensideCastle Flag = "queenside_castle"
	FlagEnPassant       Flag = "en_passant"
	FlagPromotion       Flag = "promotion"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrInvalidFEN  = errors.New("invalid fen")
)

// Move describes an applied move in board coordinates.
type Move struct {
	Color     Color
	From      string
	To        string
	Promotion string
	SAN       string
	UCI       string
	Flags     []Flag
}

func (m Move) Has(f Flag) bool {
	for _, x := range m.Flags {
		if x == f {
			return true
		}
	}
	return false
}

// Position is the opaque handle a session holds. It is not safe for concurrent use;
// callers serialize access through the owning session.
type Position struct {
	game *nchess.Game
}

func NewPosition() *Position {
	return &Position{game: nchess.NewGame()}
}

// ParsePosition starts a position from a FEN string ("startpos" or empty means the initial position).
func ParsePosition(fen string) (*Position, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" || fen == "startpos" {
		return NewPosition(), nil
	}
	option, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	return &Position{game: nchess.NewGame(option)}, nil
}

func (p *Position) FEN() string { return p.game.FEN() }

func (p *Position) Turn() Color { return colorFrom(p.game.Position().Turn()) }

func (p *Position) MoveCount() int { return len(p.game.Moves()) }

func (p *Position) Clone() *Position { return &Position{game: p.game.Clone()} }

// Apply decodes text leniently (UCI long algebraic first, then SAN, then long algebraic with
// piece letters) and plays it. A rejected move leaves the position untouched.
func (p *Position) Apply(text string) (Move, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return Move{}, ErrIllegalMove
	}
	before := p.game.Position()
	mv, err := decodeLenient(before, raw)
	if err != nil {
		return Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, raw)
	}
	if err := p.game.Move(mv, nil); err != nil {
		return Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, raw)
	}
	return describe(before, mv), nil
}

// History returns every applied move in order.
func (p *Position) History() []Move {
	moves := p.game.Moves()
	positions := p.game.Positions()
	out := make([]Move, 0, len(moves))
	for i, mv := range moves {
		if i >= len(positions) {
			break
		}
		out = append(out, describe(positions[i], mv))
	}
	return out
}

func (p *Position) IsCheckmate() bool {
	return p.game.Method() == nchess.Checkmate
}

// IsDraw covers automatic draws (stalemate, insufficient material, fivefold, seventy-five moves)
// and the claimable ones (threefold repetition, fifty moves), which end the game here.
func (p *Position) IsDraw() bool {
	if p.game.Outcome() == nchess.Draw {
		return true
	}
	return p.claimableDraw()
}

func (p *Position) IsGameOver() bool {
	return p.game.Outcome() != nchess.NoOutcome || p.claimableDraw()
}

func (p *Position) claimableDraw() bool {
	for _, m := range p.game.EligibleDraws() {
		if m == nchess.ThreefoldRepetition || m == nchess.FiftyMoveRule {
			return true
		}
	}
	return false
}

func decodeLenient(pos *nchess.Position, raw string) (*nchess.Move, error) {
	uci := strings.ToLower(strings.ReplaceAll(raw, "-", ""))
	if mv, err := (nchess.UCINotation{}).Decode(pos, uci); err == nil {
		return mv, nil
	}
	if mv, err := (nchess.AlgebraicNotation{}).Decode(pos, raw); err == nil {
		return mv, nil
	}
	return (nchess.LongAlgebraicNotation{}).Decode(pos, raw)
}

// describe derives flags from board geometry of the position before the move so the result does not
// depend on which notation produced the move.
func describe(before *nchess.Position, mv *nchess.Move) Move {
	board := before.Board()
	mover := board.Piece(mv.S1())
	target := board.Piece(mv.S2())

	out := Move{
		Color: colorFrom(before.Turn()),
		From:  mv.S1().String(),
		To:    mv.S2().String(),
		SAN:   nchess.AlgebraicNotation{}.Encode(before, mv),
		UCI:   strings.ToLower(nchess.UCINotation{}.Encode(before, mv)),
	}

	fileStep := int(mv.S2().File()) - int(mv.S1().File())
	switch {
	case mover.Type() == nchess.King && fileStep == 2:
		out.Flags = append(out.Flags, FlagKingsideCastle)
	case mover.Type() == nchess.King && fileStep == -2:
		out.Flags = append(out.Flags, FlagQueensideCastle)
	case mover.Type() == nchess.Pawn && fileStep != 0 && target == nchess.NoPiece:
		out.Flags = append(out.Flags, FlagCapture, FlagEnPassant)
	case target != nchess.NoPiece:
		out.Flags = append(out.Flags, FlagCapture)
	}
	if promo := promotionLetter(mv.Promo()); promo != "" {
		out.Promotion = promo
		out.Flags = append(out.Flags, FlagPromotion)
	}
	return out
}

func promotionLetter(pt nchess.PieceType) string {
	switch pt {
	case nchess.Queen:
		return "q"
	case nchess.Rook:
		return "r"
	case nchess.Bishop:
		return "b"
	case nchess.Knight:
		return "n"
	default:
		return ""
	}
}

func colorFrom(c nchess.Color) Color {
	if c == nchess.Black {
		return Black
	}
	return White
}
