package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"battleship/internal/app"
	"battleship/internal/codec"
	"battleship/internal/game"
	"battleship/internal/zk"
)

// DefaultMaxSessions is the session cap New installs.
const DefaultMaxSessions = 1024

// ErrTooManyGames is returned when every stored session is still in play.
var ErrTooManyGames = errors.New("too many games in progress")

// Server hosts in-memory human-vs-CPU sessions.
type Server struct {
	cfg    app.Config
	prover *zk.Prover
	log    zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*session
	// MaxSessions caps stored games. When full, finished games are dropped
	// to make room; if every game is still running, creation fails.
	MaxSessions int

	upgrader websocket.Upgrader
	// ReadTimeout bounds how long a WebSocket player may think per turn.
	ReadTimeout time.Duration
}

type session struct {
	mu   sync.Mutex
	id   string
	ctrl *app.Controller
}

// New builds a server whose sessions use cfg. prover may be nil.
func New(cfg app.Config, prover *zk.Prover, log zerolog.Logger) *Server {
	return &Server{
		cfg:         cfg,
		prover:      prover,
		log:         log,
		sessions:    make(map[string]*session),
		upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		ReadTimeout: 10 * time.Minute,
		MaxSessions: DefaultMaxSessions,
	}
}

func (s *Server) Routes(r *mux.Router) {
	r.HandleFunc("/v1/games", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/v1/games/{id}", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/v1/games/{id}/attack", s.handleAttack).Methods(http.MethodPost)
	r.HandleFunc("/v1/verify", s.handleVerify).Methods(http.MethodPost)
	r.HandleFunc("/v1/play", s.handlePlay).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
}

// Handler returns the full router wrapped with CORS.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.Routes(r)
	return WithCORS(r)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	resp := codec.ErrorResponse{Error: err.Error()}
	var ge *game.Error
	if errors.As(err, &ge) {
		resp.Code = ge.Code.String()
	}
	writeJSON(w, code, resp)
}

// === Sessions ===

func (s *Server) newController() (*app.Controller, error) {
	opts := []app.Option{app.WithLogger(s.log)}
	if s.prover != nil {
		opts = append(opts, app.WithProver(s.prover))
	}
	c, err := app.New(s.cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.PlaceInitialShips(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Server) lookup(r *http.Request) (*session, bool) {
	id := mux.Vars(r)["id"]
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) commitmentView(c *app.Controller) *codec.Commitment {
	cm := c.Commitment()
	if cm == nil {
		return nil
	}
	view := &codec.Commitment{RootHex: cm.RootHex(), Depth: cm.Depth(), Size: cm.Size()}
	if vk, err := c.Prover().VerifyingKeyBytes(); err == nil {
		view.VKB64 = base64.StdEncoding.EncodeToString(vk)
	}
	return view
}

func boards(c *app.Controller) codec.BoardsView {
	return codec.BoardsView{Enemy: c.CPU().Board.Rows(true), Own: c.Human().Board.Rows(false)}
}

func (s *Server) gameView(sess *session) codec.GameView {
	return codec.GameView{
		ID:         sess.id,
		Status:     sess.ctrl.Status().String(),
		Rounds:     sess.ctrl.Rounds(),
		Boards:     boards(sess.ctrl),
		Commitment: s.commitmentView(sess.ctrl),
	}
}

// store adds sess, evicting finished games once the cap is reached.
func (s *Server) store(sess *session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.MaxSessions > 0 && len(s.sessions) >= s.MaxSessions {
		for id, old := range s.sessions {
			old.mu.Lock()
			over := old.ctrl.Status().Over()
			old.mu.Unlock()
			if over {
				delete(s.sessions, id)
			}
		}
		if len(s.sessions) >= s.MaxSessions {
			return ErrTooManyGames
		}
		s.log.Debug().Int("sessions", len(s.sessions)).Msg("evicted finished games")
	}
	s.sessions[sess.id] = sess
	return nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	c, err := s.newController()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	sess := &session{id: uuid.NewString(), ctrl: c}
	if err := s.store(sess); err != nil {
		s.log.Warn().Int("max", s.MaxSessions).Msg("session cap reached")
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.log.Info().Str("game", sess.id).Msg("game created")

	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusCreated, s.gameView(sess))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, codec.ErrorResponse{Error: "game not found"})
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusOK, s.gameView(sess))
}

func turnView(t app.Turn) codec.TurnView {
	return codec.TurnView{Row: t.Coord.Row, Col: t.Coord.Col, Outcome: t.Outcome.String(), Proof: t.Proof}
}

func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, codec.ErrorResponse{Error: "game not found"})
		return
	}
	var req codec.AttackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, codec.ErrorResponse{Error: "bad json", Code: game.CodeInvalidInput.String()})
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	round, err := sess.ctrl.PlayRound(game.Coord{Row: req.Row, Col: req.Col})
	switch {
	case errors.Is(err, game.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err)
		return
	case errors.Is(err, app.ErrGameOver):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  err.Error(),
			"status": sess.ctrl.Status().String(),
		})
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := codec.RoundView{
		Human:  turnView(round.Human),
		Status: round.Status.String(),
		Boards: boards(sess.ctrl),
	}
	if round.CPU != nil {
		cpu := turnView(*round.CPU)
		resp.CPU = &cpu
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req codec.VerifyRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, codec.ErrorResponse{Error: "bad json: " + err.Error()})
		return
	}
	if req.Size <= 0 || req.Size > app.MaxVerifySize {
		writeJSON(w, http.StatusBadRequest, codec.ErrorResponse{Error: fmt.Sprintf("size must be in [1, %d]", app.MaxVerifySize)})
		return
	}
	if req.Row < 0 || req.Row >= req.Size || req.Col < 0 || req.Col >= req.Size {
		writeJSON(w, http.StatusBadRequest, codec.ErrorResponse{Error: "cell is off the board"})
		return
	}
	if strings.TrimSpace(req.VKB64) == "" {
		writeJSON(w, http.StatusBadRequest, codec.ErrorResponse{Error: "vkB64 required"})
		return
	}
	rawVK, err := base64.StdEncoding.DecodeString(req.VKB64)
	if err != nil || len(rawVK) == 0 {
		writeJSON(w, http.StatusBadRequest, codec.ErrorResponse{Error: "invalid vkB64"})
		return
	}
	vk, err := zk.ReadVerifyingKey(bytes.NewReader(rawVK))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, codec.ErrorResponse{Error: "invalid verifying key: " + err.Error()})
		return
	}
	root, err := codec.ParseHex(req.RootHex)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, codec.ErrorResponse{Error: "invalid rootHex"})
		return
	}

	res, err := app.VerifyShot(vk, root, req.Size, game.Coord{Row: req.Row, Col: req.Col}, req.Payload)
	if err != nil {
		writeJSON(w, http.StatusOK, codec.VerifyResponse{Valid: false})
		return
	}
	writeJSON(w, http.StatusOK, codec.VerifyResponse{Valid: res.Valid, Hit: res.Hit})
}

// === CORS ===

func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// In dev we allow any origin. For production, set this to the specific origin(s).
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
