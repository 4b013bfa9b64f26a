package chessdto

// Move is an applied move with the presentation extras a board UI needs: the rook's
// squares when castling and the captured pawn's square for en passant.
type Move struct {
	Color     string   `json:"color"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	Promotion string   `json:"promotion,omitempty"`
	Flags     []string `json:"flags"`
	SAN       string   `json:"san"`
	Move      string   `json:"move"`
	ExtraFrom string   `json:"extra_from,omitempty"`
	ExtraTo   string   `json:"extra_to,omitempty"`
	ExtraMove string   `json:"extra_move,omitempty"`
	EnPassant string   `json:"en_passant,omitempty"`
}
