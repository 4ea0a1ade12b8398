package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/mtlprog/taskreview/docs" // Import generated docs
	"github.com/mtlprog/taskreview/internal/domain"
	"github.com/mtlprog/taskreview/internal/handler/dto"
	"github.com/mtlprog/taskreview/internal/middleware"
	"github.com/mtlprog/taskreview/internal/repository"
	"github.com/mtlprog/taskreview/internal/service"
	"github.com/mtlprog/taskreview/internal/static"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool           *pgxpool.Pool
	taskService    *service.TaskService
	taskRepo       *repository.TaskRepository
	penaltyRepo    *repository.PenaltyLogRepository
	authMiddleware *middleware.AuthMiddleware
	now            func() time.Time
}

// New creates a new Handler instance with all dependencies.
func New(pool *pgxpool.Pool) *Handler {
	// Create repositories
	taskRepo := repository.NewTaskRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	automationRepo := repository.NewAutomationRepository(pool)
	penaltyRepo := repository.NewPenaltyLogRepository(pool)

	// Create services
	taskService := service.NewTaskService(taskRepo, userRepo, orderRepo, automationRepo, penaltyRepo)

	// Create middleware
	authMiddleware := middleware.NewAuthMiddleware(userRepo)

	return &Handler{
		pool:           pool,
		taskService:    taskService,
		taskRepo:       taskRepo,
		penaltyRepo:    penaltyRepo,
		authMiddleware: authMiddleware,
		now:            time.Now,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Integrator guide
	mux.HandleFunc("GET /guide.md", h.handleGuideMd)

	// Swagger UI
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())

	// API v1 routes with authentication
	mux.Handle("GET /api/v1/tasks/{id}", h.authenticated(h.handleGetTask))
	mux.Handle("DELETE /api/v1/tasks/{id}", h.authenticated(h.handleDeleteTask))
	mux.Handle("POST /api/v1/tasks/{id}/submit", h.authenticated(h.handleSubmitTask))
	mux.Handle("POST /api/v1/tasks/{id}/approve", h.authenticated(h.handleApproveTask))
	mux.Handle("POST /api/v1/tasks/{id}/return", h.authenticated(h.handleReturnTask))
	mux.Handle("POST /api/v1/tasks/{id}/penalty", h.authenticated(h.handlePenalty))
	mux.Handle("GET /api/v1/review-queue", h.authenticated(h.handleReviewQueue))
	mux.Handle("GET /api/v1/stats", h.authenticated(h.handleGetStats))
	mux.Handle("GET /api/v1/orders/{id}/tasks", h.authenticated(h.handleOrderTasks))
}

func (h *Handler) authenticated(fn http.HandlerFunc) http.Handler {
	return h.authMiddleware.Authenticate(fn)
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pool.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleGuideMd serves the embedded integrator guide.
func (h *Handler) handleGuideMd(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(static.GuideMd)); err != nil {
		slog.Error("failed to write guide", "error", err)
	}
}

// Ping checks if the database is reachable (used for testing).
func (h *Handler) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps a workflow error to its HTTP form.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// currentActor returns the authenticated caller or writes a 401.
func currentActor(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, err := middleware.GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return nil, false
	}
	return user, true
}

// extractID extracts and validates a positive integer path parameter.
// Returns (id, true) if valid, (0, false) if invalid (error already sent to client).
func extractID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.PathValue("id")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", name+" id is required")
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		err = fmt.Errorf("%w: %s id must be a positive integer", domain.ErrInvalidTaskID, name)
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return 0, false
	}

	return id, true
}
