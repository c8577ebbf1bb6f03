package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"laurel/internal/achievement/models"
	"laurel/internal/platform/middleware"
	dErrors "laurel/pkg/domain-errors"
	"laurel/pkg/requestcontext"
)

// Service defines the interface for registry operations.
type Service interface {
	Issue(ctx context.Context, courseID, userID uint32, metadataURI string) (models.Achievement, error)
	Verify(ctx context.Context, achievementID, userID uint32) (bool, error)
	ListUserAchievements(ctx context.Context, userID uint32) ([]models.Achievement, error)
}

// Handler exposes the registry over HTTP. It delegates to the service
// without embedding registry logic so transport concerns stay isolated.
type Handler struct {
	logger      *slog.Logger
	registry    Service
	issuerGuard func(http.Handler) http.Handler
}

// Option configures a Handler.
type Option func(*Handler)

// WithIssuerGuard wraps the issuance route in an authorization middleware.
// Without it, issuance stays open to any caller.
func WithIssuerGuard(guard func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.issuerGuard = guard
	}
}

// New creates a new registry Handler.
func New(registry Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger:   logger,
		registry: registry,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the registry routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	registryRouter := chi.NewRouter()
	registryRouter.Use(middleware.Recovery(h.logger))
	registryRouter.Use(middleware.RequestID)
	registryRouter.Use(middleware.RequestTime)
	registryRouter.Use(middleware.Logger(h.logger))

	registryRouter.Group(func(issue chi.Router) {
		if h.issuerGuard != nil {
			issue.Use(h.issuerGuard)
		}
		issue.Post("/achievements", h.handleIssue)
	})
	registryRouter.Get("/achievements/{achievementID}/verify", h.handleVerify)
	registryRouter.Get("/users/{userID}/achievements", h.handleListUserAchievements)

	r.Mount("/", registryRouter)
}

type issueRequest struct {
	CourseID    uint32 `json:"course_id"`
	UserID      uint32 `json:"user_id"`
	MetadataURI string `json:"metadata_uri"`
}

type verifyResponse struct {
	AchievementID uint32 `json:"achievement_id"`
	UserID        uint32 `json:"user_id"`
	Verified      bool   `json:"verified"`
}

type listResponse struct {
	UserID       uint32               `json:"user_id"`
	Achievements []models.Achievement `json:"achievements"`
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warn(ctx, "invalid issue request", err)
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	achievement, err := h.registry.Issue(ctx, req.CourseID, req.UserID, req.MetadataURI)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeBadRequest) || dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			h.warn(ctx, "issue rejected", err)
			writeError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to issue achievement",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, dErrors.New(dErrors.CodeInternal, "failed to issue achievement"))
		return
	}

	writeJSON(w, http.StatusCreated, achievement)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	achievementID, ok := parseU32(chi.URLParam(r, "achievementID"))
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "achievement id must be a 32-bit unsigned integer"))
		return
	}
	userID, ok := parseU32(r.URL.Query().Get("user_id"))
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "user_id must be a 32-bit unsigned integer"))
		return
	}

	verified, err := h.registry.Verify(ctx, achievementID, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to verify achievement",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, dErrors.New(dErrors.CodeInternal, "failed to verify achievement"))
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{
		AchievementID: achievementID,
		UserID:        userID,
		Verified:      verified,
	})
}

func (h *Handler) handleListUserAchievements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := parseU32(chi.URLParam(r, "userID"))
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "user id must be a 32-bit unsigned integer"))
		return
	}

	achievements, err := h.registry.ListUserAchievements(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list achievements",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, dErrors.New(dErrors.CodeInternal, "failed to list achievements"))
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		UserID:       userID,
		Achievements: achievements,
	})
}

func (h *Handler) warn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}

func parseU32(raw string) (uint32, bool) {
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(value), true
}
