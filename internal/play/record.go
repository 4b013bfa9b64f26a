package play

import "github.com/park285/chess-session-server/internal/rules"

// Record is an applied move plus presentation extras. The extras never feed back into game state.
type Record struct {
	rules.Move
	Long      string
	ExtraFrom string
	ExtraTo   string
	ExtraMove string
	EnPassant string
}

// Augment describes the last entry of history. history must include mv as its final element.
func Augment(history []rules.Move) (Record, bool) {
	if len(history) == 0 {
		return Record{}, false
	}
	mv := history[len(history)-1]
	rec := Record{Move: mv, Long: mv.From + mv.To}

	switch {
	case mv.Has(rules.FlagKingsideCastle):
		rec.ExtraFrom, rec.ExtraTo = "h1", "f1"
		if mv.Color == rules.Black {
			rec.ExtraFrom, rec.ExtraTo = "h8", "f8"
		}
	case mv.Has(rules.FlagQueensideCastle):
		rec.ExtraFrom, rec.ExtraTo = "a1", "d1"
		if mv.Color == rules.Black {
			rec.ExtraFrom, rec.ExtraTo = "a8", "d8"
		}
	}
	if rec.ExtraFrom != "" {
		rec.ExtraMove = rec.ExtraFrom + rec.ExtraTo
	}

	if mv.Has(rules.FlagEnPassant) && len(history) >= 2 {
		rec.EnPassant = history[len(history)-2].To
	}
	return rec, true
}
