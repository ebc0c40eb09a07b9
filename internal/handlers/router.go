package handlers

import (
	"net/http"

	"earnings/internal/config"
	"earnings/internal/db"
	"earnings/internal/middleware"
	"earnings/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner  db.TxRunner
	cfg       config.Config
	users     UserStore
	earnings  EarningStore
	periods   PeriodStore
	snapshots SnapshotStore
	audit     AuditStore
	periodSvc PeriodService
	statsSvc  StatsService
	hub       *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, earnings EarningStore, periods PeriodStore, snapshots SnapshotStore, audit AuditStore, periodSvc PeriodService, statsSvc StatsService, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:  txRunner,
		cfg:       cfg,
		users:     users,
		earnings:  earnings,
		periods:   periods,
		snapshots: snapshots,
		audit:     audit,
		periodSvc: periodSvc,
		statsSvc:  statsSvc,
		hub:       hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})
	router.Route("/earnings", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Post("/", h.CreateEarning)
		r.Get("/", h.ListEarnings)
		r.Get("/{id}", h.GetEarning)
		r.Put("/{id}", h.UpdateEarning)
		r.Delete("/{id}", h.DeleteEarning)
	})
	router.Route("/top", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Post("/start", h.StartPeriod)
		r.Post("/stop", h.StopPeriod)
		r.Post("/set-day", h.SetPeriodDay)
		r.Get("/current", h.CurrentPeriod)
		r.Get("/history", h.PeriodHistory)
	})
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/stats/weekly", h.WeeklyStats)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/snapshots", h.ListSnapshots)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/snapshots/{weekStart}", h.GetSnapshot)
	router.Get("/ws/stats", h.WSStats)

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Use(middleware.RequireAdmin(h.users))
		r.Get("/users", h.AdminListUsers)
		// One wildcard name per segment: the GET takes a user ID, the write
		// aliases an earning ID. The write handlers already let admins act on
		// any user's entries; the aliases keep the admin surface
		// self-contained.
		r.Get("/earnings/{id}", h.AdminListUserEarnings)
		r.Put("/earnings/{id}", h.UpdateEarning)
		r.Delete("/earnings/{id}", h.DeleteEarning)
		r.Get("/audit", h.ListAuditLogs)
		r.Post("/sweep", h.TriggerSweep)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
