package chessdto

import "errors"

// ErrorKind classifies a DomainError. The transport layer maps each kind to one status code.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindPreconditionFailed ErrorKind = "precondition_failed"
	KindBadRequest         ErrorKind = "bad_request"
	KindValidationFailed   ErrorKind = "validation_failed"
	KindConflict           ErrorKind = "conflict"
	KindEngineUnavailable  ErrorKind = "engine_unavailable"
	KindInternal           ErrorKind = "internal"
)

type DomainError struct {
	Kind      ErrorKind
	Code      string
	Message   string
	Retryable bool
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "chess service error"
}

// Is matches on Code so sentinels still match after WithMessage.
func (e DomainError) Is(target error) bool {
	t, ok := target.(DomainError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithMessage returns a copy carrying a more specific message.
func (e DomainError) WithMessage(msg string) DomainError {
	e.Message = msg
	return e
}

var (
	ErrGameNotFound       = DomainError{Kind: KindNotFound, Code: "game_not_found", Message: "game not found"}
	ErrPlayerNotInGame    = DomainError{Kind: KindNotFound, Code: "player_not_in_game", Message: "player not in game"}
	ErrNoSuchGame         = DomainError{Kind: KindNotFound, Code: "no_such_game", Message: "no such game"}
	ErrNeedTwoPlayers     = DomainError{Kind: KindPreconditionFailed, Code: "need_two_players", Message: "need two players"}
	ErrGameOver           = DomainError{Kind: KindPreconditionFailed, Code: "game_over", Message: "game is over"}
	ErrNotYourTurn        = DomainError{Kind: KindPreconditionFailed, Code: "not_your_turn", Message: "not your turn"}
	ErrPositionChanged    = DomainError{Kind: KindPreconditionFailed, Code: "position_changed", Message: "position changed"}
	ErrNoMoves            = DomainError{Kind: KindPreconditionFailed, Code: "no_moves", Message: "no moves played"}
	ErrMoveRequired       = DomainError{Kind: KindBadRequest, Code: "move_required", Message: "move required"}
	ErrPlayerTypeRequired = DomainError{Kind: KindBadRequest, Code: "player_type_required", Message: "player_type required"}
	ErrUnknownPlayerType  = DomainError{Kind: KindBadRequest, Code: "unknown_player_type", Message: "unknown player_type"}
	ErrBadSkillLevel      = DomainError{Kind: KindBadRequest, Code: "bad_skill_level", Message: "skill level must be between 0 and 20"}
	ErrBadRequestBody     = DomainError{Kind: KindBadRequest, Code: "bad_request_body", Message: "malformed request body"}
	ErrInvalidMove        = DomainError{Kind: KindValidationFailed, Code: "invalid_move", Message: "invalid move"}
	ErrGameFull           = DomainError{Kind: KindConflict, Code: "game_full", Message: "cannot join game, two players already playing"}
	ErrDuplicateID        = DomainError{Kind: KindConflict, Code: "duplicate_id", Message: "duplicate id"}
	ErrEngineUnavailable  = DomainError{Kind: KindEngineUnavailable, Code: "engine_unavailable", Message: "engine unavailable", Retryable: true}
)

// KindOf reports the kind of the first DomainError in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var de DomainError
	if errors.As(err, &de) && de.Kind != "" {
		return de.Kind
	}
	return KindInternal
}
