package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var (
	errCellRequired = errors.New("cell is required")
	errBadBody      = errors.New("invalid request body")
	errInternal     = errors.New("internal server error")
)

type sessionUseCase interface {
	CreateSession(ctx context.Context, mode entity.GameMode, level entity.Difficulty) (*entity.Snapshot, error)
	GetSession(ctx context.Context, id string) (*entity.Snapshot, error)
	SubmitMove(ctx context.Context, id string, cell int) (*entity.Snapshot, error)
	Reset(ctx context.Context, id string) (*entity.Snapshot, error)
	SetMode(ctx context.Context, id string, mode entity.GameMode) (*entity.Snapshot, error)
	SetDifficulty(ctx context.Context, id string, level entity.Difficulty) (*entity.Snapshot, error)
	DeleteSession(ctx context.Context, id string) error
}

type SessionHandlers interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Move(w http.ResponseWriter, r *http.Request)
	Reset(w http.ResponseWriter, r *http.Request)
	SetMode(w http.ResponseWriter, r *http.Request)
	SetDifficulty(w http.ResponseWriter, r *http.Request)
}

type createRequest struct {
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty"`
}

type moveRequest struct {
	Cell *int `json:"cell"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type difficultyRequest struct {
	Difficulty string `json:"difficulty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type sessionHandlers struct {
	logger   *slog.Logger
	sessions sessionUseCase
}

func NewSessionHandlers(logger *slog.Logger, sessions sessionUseCase) SessionHandlers {
	return &sessionHandlers{
		logger:   logger.With("component", "rest"),
		sessions: sessions,
	}
}

func (that *sessionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeBody(r, &req, true); err != nil {
		that.writeError(w, http.StatusBadRequest, err)
		return
	}

	var (
		mode  entity.GameMode
		level entity.Difficulty
		err   error
	)

	if req.Mode != "" {
		if mode, err = entity.ParseGameMode(req.Mode); err != nil {
			that.writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
	}

	if req.Difficulty != "" {
		if level, err = entity.ParseDifficulty(req.Difficulty); err != nil {
			that.writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
	}

	snapshot, err := that.sessions.CreateSession(r.Context(), mode, level)
	if err != nil {
		that.writeUseCaseError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, snapshot)
}

func (that *sessionHandlers) Get(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
	that.respond(w, snapshot, err)
}

func (that *sessionHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := that.sessions.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeUseCaseError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *sessionHandlers) Move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeBody(r, &req, false); err != nil {
		that.writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.Cell == nil {
		that.writeError(w, http.StatusBadRequest, errCellRequired)
		return
	}

	snapshot, err := that.sessions.SubmitMove(r.Context(), chi.URLParam(r, "id"), *req.Cell)
	that.respond(w, snapshot, err)
}

func (that *sessionHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.sessions.Reset(r.Context(), chi.URLParam(r, "id"))
	that.respond(w, snapshot, err)
}

func (that *sessionHandlers) SetMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decodeBody(r, &req, false); err != nil {
		that.writeError(w, http.StatusBadRequest, err)
		return
	}

	mode, err := entity.ParseGameMode(req.Mode)
	if err != nil {
		that.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	snapshot, err := that.sessions.SetMode(r.Context(), chi.URLParam(r, "id"), mode)
	that.respond(w, snapshot, err)
}

func (that *sessionHandlers) SetDifficulty(w http.ResponseWriter, r *http.Request) {
	var req difficultyRequest
	if err := decodeBody(r, &req, false); err != nil {
		that.writeError(w, http.StatusBadRequest, err)
		return
	}

	level, err := entity.ParseDifficulty(req.Difficulty)
	if err != nil {
		that.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	snapshot, err := that.sessions.SetDifficulty(r.Context(), chi.URLParam(r, "id"), level)
	that.respond(w, snapshot, err)
}

func (that *sessionHandlers) respond(w http.ResponseWriter, snapshot *entity.Snapshot, err error) {
	if err != nil {
		that.writeUseCaseError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *sessionHandlers) writeUseCaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		that.writeError(w, http.StatusNotFound, apperror.ErrSessionNotFound)
	case errors.Is(err, apperror.ErrInvalidConfiguration):
		that.writeError(w, http.StatusUnprocessableEntity, err)
	default:
		that.logger.Error("request failed", "error", err)
		that.writeError(w, http.StatusInternalServerError, errInternal)
	}
}

func (that *sessionHandlers) writeError(w http.ResponseWriter, status int, err error) {
	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (that *sessionHandlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

// decodeBody - decodes a JSON body into dst. An empty body is accepted only when optional is set.
func decodeBody(r *http.Request, dst any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) && optional {
		return nil
	}

	if err != nil {
		return errBadBody
	}

	return nil
}
