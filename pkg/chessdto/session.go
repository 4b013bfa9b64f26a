package chessdto

import "time"

// Player is the wire form of a participant.
type Player struct {
	ID    string `json:"id"`
	Color string `json:"color"`
	Type  string `json:"type"`
}

// Session is the wire form of a game session. Result is null until two players are present.
type Session struct {
	ID         string     `json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	FEN        string     `json:"fen"`
	Moves      []string   `json:"moves"`
	Player1    *Player    `json:"player1"`
	Player2    *Player    `json:"player2,omitempty"`
	Result     *string    `json:"result"`
	LastMoveAt *time.Time `json:"last_move_at,omitempty"`
}
