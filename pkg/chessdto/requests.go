package chessdto

type CreateGameRequest struct {
	PlayerType   string `json:"player_type"`
	OpponentType string `json:"opponent_type,omitempty"`
}

type JoinGameRequest struct {
	PlayerType string `json:"player_type"`
}

type MoveRequest struct {
	Move string `json:"move"`
}

type GameOverResponse struct {
	GameOver bool `json:"game_over"`
}

type ResultResponse struct {
	Result *string `json:"result"`
}

type TurnResponse struct {
	Turn bool `json:"turn"`
}

type FENResponse struct {
	FEN string `json:"fen"`
}

type BestMoveResponse struct {
	BestMove string `json:"bestmove"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Event is pushed to stream subscribers whenever a session changes.
type Event struct {
	Type    string   `json:"type"`
	GameID  string   `json:"game_id"`
	Session *Session `json:"session,omitempty"`
	Move    *Move    `json:"move,omitempty"`
}

const (
	EventSnapshot = "game_snapshot"
	EventCreated  = "game_created"
	EventJoined   = "game_joined"
	EventMoved    = "game_moved"
	EventDeleted  = "game_deleted"
)
