// Package api exposes game sessions over HTTP.
package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/park285/chess-session-server/internal/adapter/chesspresenter"
	"github.com/park285/chess-session-server/internal/events"
	"github.com/park285/chess-session-server/internal/play"
	"github.com/park285/chess-session-server/internal/session"
	"github.com/park285/chess-session-server/pkg/chessdto"
)

// SessionService is the operation set the HTTP layer needs.
type SessionService interface {
	Create(ctx context.Context, playerType, opponentType string) (session.View, error)
	Get(ctx context.Context, id string) (session.View, error)
	Delete(ctx context.Context, id string) error
	Join(ctx context.Context, id, playerType string) (session.View, error)
	Move(ctx context.Context, id, playerID, move string) (play.Record, session.View, error)
	BestMove(ctx context.Context, id, playerID string, level *int) (string, error)
	Turn(ctx context.Context, id string) (session.Player, error)
	PlayerTurn(ctx context.Context, id, playerID string) (bool, error)
	GameOver(ctx context.Context, id string) (bool, error)
	Result(ctx context.Context, id string) (session.Result, error)
	LastMove(ctx context.Context, id string) (play.Record, error)
	FEN(ctx context.Context, id string) (string, error)
	List(ctx context.Context) []session.View
	NeedingOpponent(ctx context.Context) []session.View
	InProgress(ctx context.Context) []session.View
	InCheckmate(ctx context.Context) []session.View
	InDraw(ctx context.Context) []session.View
	NeedingOpponentAt(ctx context.Context, idx int) (session.View, error)
}

type Server struct {
	service SessionService
	bus     *events.Bus
	router  *mux.Router
	logger  *zap.Logger
}

// NewServer wires routes. bus may be nil, in which case the event stream route is not served.
func NewServer(svc SessionService, bus *events.Bus, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service: svc,
		bus:     bus,
		router:  mux.NewRouter(),
		logger:  logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(requestLogger(s.logger))

	s.router.HandleFunc("/", s.handleRoot).Methods("GET")

	s.router.HandleFunc("/game", s.handleCreate).Methods("POST")
	s.router.HandleFunc("/game/{id}", s.handleGet).Methods("GET")
	s.router.HandleFunc("/game/{id}", s.handleDelete).Methods("DELETE")
	s.router.HandleFunc("/game/{id}/join", s.handleJoin).Methods("POST")
	s.router.HandleFunc("/game/{id}/game-over", s.handleGameOver).Methods("GET")
	s.router.HandleFunc("/game/{id}/result", s.handleResult).Methods("GET")
	s.router.HandleFunc("/game/{id}/turn", s.handleTurn).Methods("GET")
	s.router.HandleFunc("/game/{id}/last-move", s.handleLastMove).Methods("GET")
	s.router.HandleFunc("/game/{id}/fen", s.handleFEN).Methods("GET")
	if s.bus != nil {
		s.router.HandleFunc("/game/{id}/events", s.handleEvents).Methods("GET")
	}

	s.router.HandleFunc("/game/{id}/player/{pid}/move", s.handleMove).Methods("POST")
	s.router.HandleFunc("/game/{id}/player/{pid}/bestmove", s.handleBestMove).Methods("GET")
	s.router.HandleFunc("/game/{id}/player/{pid}/turn", s.handlePlayerTurn).Methods("GET")

	s.router.HandleFunc("/games", s.listHandler(s.service.List)).Methods("GET")
	s.router.HandleFunc("/games/needing-opponent", s.listHandler(s.service.NeedingOpponent)).Methods("GET")
	s.router.HandleFunc("/games/needing-opponent/{idx}", s.handleNeedingOpponentAt).Methods("GET")
	s.router.HandleFunc("/games/in-progress", s.listHandler(s.service.InProgress)).Methods("GET")
	s.router.HandleFunc("/games/in-checkmate", s.listHandler(s.service.InCheckmate)).Methods("GET")
	s.router.HandleFunc("/games/in-draw", s.listHandler(s.service.InDraw)).Methods("GET")
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/games", http.StatusFound)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req chessdto.CreateGameRequest
	err := bind(r, &req, func(f url.Values) {
		req.PlayerType = f.Get("player_type")
		req.OpponentType = f.Get("opponent_type")
	})
	if err != nil {
		respondError(w, err)
		return
	}
	view, err := s.service.Create(r.Context(), req.PlayerType, req.OpponentType)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chesspresenter.ToDTOSession(view))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chesspresenter.ToDTOSession(view))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.service.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req chessdto.JoinGameRequest
	if err := bind(r, &req, func(f url.Values) { req.PlayerType = f.Get("player_type") }); err != nil {
		respondError(w, err)
		return
	}
	view, err := s.service.Join(r.Context(), mux.Vars(r)["id"], req.PlayerType)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chesspresenter.ToDTOSession(view))
}

func (s *Server) handleGameOver(w http.ResponseWriter, r *http.Request) {
	over, err := s.service.GameOver(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chessdto.GameOverResponse{GameOver: over})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Result(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chessdto.ResultResponse{Result: chesspresenter.ToDTOResult(res)})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	p, err := s.service.Turn(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chesspresenter.ToDTOPlayer(p))
}

func (s *Server) handleLastMove(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.LastMove(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chesspresenter.ToDTOMove(rec))
}

func (s *Server) handleFEN(w http.ResponseWriter, r *http.Request) {
	fen, err := s.service.FEN(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chessdto.FENResponse{FEN: fen})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req chessdto.MoveRequest
	if err := bind(r, &req, func(f url.Values) { req.Move = f.Get("move") }); err != nil {
		respondError(w, err)
		return
	}
	rec, _, err := s.service.Move(r.Context(), vars["id"], vars["pid"], req.Move)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chesspresenter.ToDTOMove(rec))
}

func (s *Server) handleBestMove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var level *int
	if raw := strings.TrimSpace(r.URL.Query().Get("level")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, chessdto.ErrBadSkillLevel)
			return
		}
		level = &n
	}
	move, err := s.service.BestMove(r.Context(), vars["id"], vars["pid"], level)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chessdto.BestMoveResponse{BestMove: move})
}

func (s *Server) handlePlayerTurn(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mine, err := s.service.PlayerTurn(r.Context(), vars["id"], vars["pid"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chessdto.TurnResponse{Turn: mine})
}

func (s *Server) listHandler(list func(context.Context) []session.View) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, chesspresenter.ToDTOSessions(list(r.Context())))
	}
}

func (s *Server) handleNeedingOpponentAt(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(mux.Vars(r)["idx"])
	if err != nil {
		respondError(w, chessdto.ErrNoSuchGame)
		return
	}
	view, err := s.service.NeedingOpponentAt(r.Context(), idx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chesspresenter.ToDTOSession(view))
}
