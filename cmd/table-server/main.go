package main

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"card-room/internal/config"
	"card-room/internal/logging"
	"card-room/internal/store"
	"card-room/internal/table"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func main() {
	app, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	closeLog := logging.Init(app.Log)
	defer closeLog()
	cfg := app.Server

	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	svc := table.New(table.NewStorage(st), app.Table)

	r := newRouter(st, svc, cfg)
	logRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

func newRouter(st *store.Store, svc *table.Service, cfg config.ServerConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(apiLogMiddleware()).Get("/healthz", healthHandler(st))

	r.Route("/api", func(r chi.Router) {
		r.Use(apiLogMiddleware())
		r.Use(bodyCaptureMiddleware(4096))

		r.Post("/users/register", registerUserHandler(st))

		r.Group(func(r chi.Router) {
			r.Use(userAuthMiddleware(st))
			r.Get("/users/me", meHandler())
			r.Get("/users/me/balance", balanceHandler(st))

			r.Get("/tables", listTablesHandler(st))
			r.Post("/tables", createTableHandler(svc))
			r.Post("/tables/{table_id}/join", joinTableHandler(svc))
			r.Post("/tables/{table_id}/leave", leaveTableHandler(svc))
			r.Post("/tables/{table_id}/start", startHandHandler(svc))
			r.Post("/tables/{table_id}/act", actHandler(svc))
			r.Post("/tables/{table_id}/heartbeat", heartbeatHandler(svc))
			r.Get("/tables/{table_id}/state", tableStateHandler(svc))
			r.Get("/tables/{table_id}/hands/{hand_id}/cards", holeCardsHandler(svc))
		})

		r.Group(func(r chi.Router) {
			r.Use(adminAuthMiddleware(cfg.AdminAPIKey))
			r.Post("/admin/deposit", depositHandler(st))
			r.Post("/admin/tables/{table_id}/bots", addBotHandler(st, svc))
			r.Get("/admin/ledger", ledgerHandler(st))
			r.Post("/admin/requests/release", releaseRequestHandler(st))
		})
	})

	return r
}

func logRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 16)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
