package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dtroode/taskflow-server/internal/api/http/handler"
	"github.com/dtroode/taskflow-server/internal/api/http/middleware"
	"github.com/dtroode/taskflow-server/internal/api/http/response"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

// AdminService manages accounts and gates the admin routes.
type AdminService interface {
	handler.AdminService
	middleware.AdminChecker
}

// Services lists the dependencies behind the routes. Export may be nil, in
// which case the export routes are not registered.
type Services struct {
	Auth     handler.AuthService
	Sessions middleware.SessionResolver
	Tasks    handler.TaskService
	History  handler.HistoryService
	Settings handler.SettingsService
	Assist   handler.AssistService
	Admin    AdminService
	Export   handler.ExportService
	DB       handler.Pinger
}

// Router builds the HTTP routing tree.
type Router struct {
	services       Services
	contextManager model.ContextManager
	maxBodyBytes   int64
	logger         *logger.Logger
}

func New(services Services, contextManager model.ContextManager, maxBodyBytes int64, logger *logger.Logger) *Router {
	return &Router{
		services:       services,
		contextManager: contextManager,
		maxBodyBytes:   maxBodyBytes,
		logger:         logger,
	}
}

// Register wires middleware and every route.
func (r *Router) Register() http.Handler {
	mux := chi.NewRouter()

	mux.Use(
		middleware.CORS,
		middleware.NewLogging(r.logger).Handle,
		middleware.Metrics,
		middleware.BodyLimit(r.maxBodyBytes),
	)
	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "Not found")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	authenticate := middleware.NewAuthenticate(r.services.Sessions, r.contextManager, r.logger)

	mux.Get("/healthz", handler.NewHealth(r.services.DB, r.logger).Check)
	mux.Handle("/metrics", promhttp.Handler())

	r.registerAuthRoutes(mux)
	mux.With(authenticate.Optional).Post("/api/categorize", handler.NewAssist(r.services.Assist, r.contextManager, r.logger).Categorize)

	mux.Group(func(g chi.Router) {
		g.Use(authenticate.Handle)
		r.registerTaskRoutes(g)
		r.registerHistoryRoutes(g)
		r.registerSettingsRoutes(g)
		r.registerBriefingRoutes(g)
		r.registerAdminRoutes(g)
		if r.services.Export != nil {
			r.registerExportRoutes(g)
		}
	})

	return mux
}

func (r *Router) registerAuthRoutes(mux chi.Router) {
	h := handler.NewAuth(r.services.Auth, r.logger)
	mux.Post("/api/auth", h.Login)
	mux.Post("/api/auth/set", h.SetPIN)
}

func (r *Router) registerTaskRoutes(mux chi.Router) {
	h := handler.NewTask(r.services.Tasks, r.contextManager, r.logger)
	mux.Get("/api/tasks", h.List)
	mux.Post("/api/tasks", h.Create)
	mux.Patch("/api/tasks", h.Update)
	mux.Delete("/api/tasks", h.Delete)
	mux.Patch("/api/tasks/{id}", h.Update)
	mux.Delete("/api/tasks/{id}", h.Delete)
}

func (r *Router) registerHistoryRoutes(mux chi.Router) {
	h := handler.NewHistory(r.services.History, r.contextManager, r.logger)
	mux.Get("/api/history", h.List)
	mux.Post("/api/history", h.Append)
	mux.Delete("/api/history", h.Clear)
}

func (r *Router) registerSettingsRoutes(mux chi.Router) {
	h := handler.NewSettings(r.services.Settings, r.contextManager, r.logger)
	mux.Get("/api/settings", h.Get)
	mux.Post("/api/settings", h.Save)
}

func (r *Router) registerBriefingRoutes(mux chi.Router) {
	h := handler.NewAssist(r.services.Assist, r.contextManager, r.logger)
	mux.Post("/api/briefing", h.Briefing)
	mux.Post("/api/chatgpt-briefing", h.Briefing)
}

func (r *Router) registerAdminRoutes(mux chi.Router) {
	h := handler.NewAdmin(r.services.Admin, r.logger)
	requireAdmin := middleware.NewRequireAdmin(r.services.Admin, r.contextManager, r.logger)

	mux.With(requireAdmin.Handle).Get("/api/admin", h.ListUsers)
	mux.With(requireAdmin.Handle).Post("/api/admin", h.CreateUser)
	mux.With(requireAdmin.Handle).Put("/api/admin", h.UpdateUser)
}

func (r *Router) registerExportRoutes(mux chi.Router) {
	h := handler.NewExport(r.services.Export, r.contextManager, r.logger)
	mux.Post("/api/export", h.Create)
	mux.Get("/api/export/{name}", h.Download)
}
