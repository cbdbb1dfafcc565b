package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nijaru/yt-transcript/db"
	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/middleware"
	"github.com/nijaru/yt-transcript/nodes/youtubetranscript"
	"github.com/nijaru/yt-transcript/transcription"
	"github.com/nijaru/yt-transcript/utils"
	"github.com/nijaru/yt-transcript/validation"
	"github.com/nijaru/yt-transcript/workflow"
	"gopkg.in/yaml.v3"
)

type Executor interface {
	Execute(ctx context.Context, req transcription.Request) (*transcription.Run, error)
}

type RunStore interface {
	GetRun(ctx context.Context, id string) (*db.Run, error)
	ListRuns(ctx context.Context, limit int) ([]db.Run, error)
	DeleteRun(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type Handler struct {
	service      Executor
	registry     *workflow.Registry
	validator    *validation.Validator
	store        RunStore
	maxBodyBytes int64
}

func NewHandler(service Executor, registry *workflow.Registry, validator *validation.Validator, store RunStore, maxBodyBytes int64) *Handler {
	return &Handler{
		service:      service,
		registry:     registry,
		validator:    validator,
		store:        store,
		maxBodyBytes: maxBodyBytes,
	}
}

// Routes mounts the API. The limiter guards /api/execute only; metrics may be nil.
func (h *Handler) Routes(limiter *middleware.RateLimiter, metrics http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.Recovery)

	r.Get("/health", h.Health)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/api", func(ar chi.Router) {
		ar.Group(func(g chi.Router) {
			if limiter != nil {
				g.Use(limiter.Middleware)
			}
			g.Use(middleware.BodyLimit(h.maxBodyBytes))
			g.Post("/execute", h.Execute)
		})
		ar.Get("/nodes", h.ListNodes)
		ar.Get("/nodes/{name}", h.GetNode)
		ar.Get("/runs", h.ListRuns)
		ar.Get("/runs/{id}", h.GetRun)
		ar.Delete("/runs/{id}", h.DeleteRun)
	})
	return r
}

type executeFailure struct {
	Error     string `json:"error"`
	ItemIndex *int   `json:"item_index,omitempty"`
	RunID     string `json:"run_id"`
}

func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	const op = "Handler.Execute"
	log := middleware.GetLogger(r.Context())

	err := h.validator.ValidateRequest(r, validation.RequestValidationOpts{
		MaxContentLength: h.maxBodyBytes,
		AllowedMethods:   []string{http.MethodPost},
		RequireJSON:      true,
	})
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	var req transcription.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			utils.RespondWithError(w, errors.New(http.StatusRequestEntityTooLarge, op, err, "Request body too large"))
			return
		}
		utils.RespondWithError(w, errors.InvalidInput(op, err, "Invalid JSON body"))
		return
	}
	if req.Node == "" {
		req.Node = youtubetranscript.NodeName
	}

	if _, err := h.validator.ValidateExecute(req.Node, req.Parameters, req.Items); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	log.WithField("items", len(req.Items)).Info("Executing node")
	run, err := h.service.Execute(r.Context(), req)
	if err != nil {
		appErr, ok := errors.As(err)
		if ok && appErr.Code == http.StatusUnprocessableEntity && run != nil {
			resp := executeFailure{Error: appErr.Message, RunID: run.ID}
			if idx, ok := workflow.ItemIndex(err); ok {
				resp.ItemIndex = &idx
			}
			utils.RespondWithJSON(w, http.StatusUnprocessableEntity, resp)
			return
		}
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, run)
}

func (h *Handler) ListNodes(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, h.registry.Descriptions())
}

func (h *Handler) GetNode(w http.ResponseWriter, r *http.Request) {
	const op = "Handler.GetNode"

	name := chi.URLParam(r, "name")
	node, ok := h.registry.Get(name)
	if !ok {
		utils.RespondWithError(w, errors.NotFound(op, nil, fmt.Sprintf("Unknown node %q", name)))
		return
	}
	desc := node.Description()

	if r.URL.Query().Get("format") == "yaml" {
		out, err := yaml.Marshal(desc)
		if err != nil {
			utils.RespondWithError(w, errors.Internal(op, err, "Failed to encode descriptor"))
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		w.Write(out)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, desc)
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	const op = "Handler.ListRuns"

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			utils.RespondWithError(w, errors.InvalidInput(op, err, "limit must be between 1 and 1000"))
			return
		}
		limit = n
	}

	runs, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, runs)
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, run)
}

func (h *Handler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteRun(r.Context(), chi.URLParam(r, "id")); err != nil {
		utils.RespondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	const op = "Handler.Health"

	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			utils.RespondWithError(w, errors.New(http.StatusServiceUnavailable, op, err, "Database unavailable"))
			return
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
