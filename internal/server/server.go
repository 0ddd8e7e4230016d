// Package server exposes the web-dashboard HTTP API: guild listing, automod
// settings, and the build/edit flows. Dashboard requests skip the chat-side
// confirmation gate; the dashboard is its own deliberate surface.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cruxy/internal/executor"
	"cruxy/internal/guild"
	"cruxy/internal/plan"
	"cruxy/internal/store"
)

// Planner abstracts plan synthesis for the API handlers.
type Planner interface {
	SynthesizeBuild(ctx context.Context, snap guild.Snapshot, theme string) (*plan.BuildPlan, error)
	SynthesizeEdit(ctx context.Context, snap guild.Snapshot, request string) (*plan.EditPlan, error)
}

// GuildSummary is one entry of the guild list.
type GuildSummary struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Icon *string `json:"icon"`
}

// Registry resolves the guilds currently served by the bot.
type Registry interface {
	Guilds() []GuildSummary
	Graph(guildID string) (guild.Graph, bool)
}

// Server is the dashboard API.
type Server struct {
	registry Registry
	store    *store.Store
	planner  Planner
	execCfg  executor.Config
	logger   *zap.Logger
}

// New assembles the dashboard API around the bot's collaborators.
func New(reg Registry, st *store.Store, planner Planner, execCfg executor.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		registry: reg,
		store:    st,
		planner:  planner,
		execCfg:  execCfg,
		logger:   logger,
	}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/guilds", s.handleGuilds)
	r.Get("/api/automod_settings/{guildID}", s.handleGetAutomod)
	r.Post("/api/automod_settings/{guildID}", s.handleSetAutomod)
	r.Post("/api/buildserver", s.handleBuildServer)
	r.Post("/api/serveredit", s.handleServerEdit)

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("dashboard API listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleGuilds(w http.ResponseWriter, _ *http.Request) {
	guilds := s.registry.Guilds()
	if guilds == nil {
		guilds = []GuildSummary{}
	}
	writeJSON(w, http.StatusOK, guilds)
}

func (s *Server) handleGetAutomod(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")
	settings, err := s.store.AutomodSettings(r.Context(), guildID)
	if err != nil {
		s.logger.Error("failed to load automod settings", zap.String("guild", guildID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSetAutomod(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")
	var settings store.AutomodSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.store.SetAutomodSettings(r.Context(), guildID, settings); err != nil {
		s.logger.Error("failed to save automod settings", zap.String("guild", guildID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Settings updated successfully"})
}

type buildRequest struct {
	GuildID     string `json:"guildId"`
	Prompt      string `json:"prompt"`
	ResetServer bool   `json:"resetServer"`
}

func (s *Server) handleBuildServer(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	g, ok := s.registry.Graph(req.GuildID)
	if !ok {
		writeError(w, http.StatusNotFound, "Guild not found")
		return
	}
	ctx := r.Context()

	fb, err := firstWritableChannel(ctx, g)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Bot could not find a channel to send messages in."})
		return
	}
	_ = fb.Send(ctx, "🤖 Received `/buildserver` request from the web dashboard for theme: **'"+req.Prompt+"'**")

	snap, err := guild.TakeSnapshot(ctx, g)
	if err != nil {
		s.logger.Error("snapshot failed", zap.String("guild", req.GuildID), zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}
	p, err := s.planner.SynthesizeBuild(ctx, snap, req.Prompt)
	if err != nil {
		_ = fb.Send(ctx, synthesisFailureMessage(err))
		writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}

	exec := executor.New(g, s.execCfg, s.logger)
	if _, err := exec.ExecuteBuild(ctx, p, fb, req.ResetServer); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Build process started successfully! Check your Discord server for updates.",
	})
}

type editRequest struct {
	GuildID string `json:"guildId"`
	Prompt  string `json:"prompt"`
}

func (s *Server) handleServerEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	g, ok := s.registry.Graph(req.GuildID)
	if !ok {
		writeError(w, http.StatusNotFound, "Guild not found")
		return
	}
	ctx := r.Context()

	fb, err := firstWritableChannel(ctx, g)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Bot could not find a channel to send messages in."})
		return
	}

	snap, err := guild.TakeSnapshot(ctx, g)
	if err != nil {
		s.logger.Error("snapshot failed", zap.String("guild", req.GuildID), zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}
	p, err := s.planner.SynthesizeEdit(ctx, snap, req.Prompt)
	if err != nil {
		_ = fb.Send(ctx, synthesisFailureMessage(err))
		writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}

	exec := executor.New(g, s.execCfg, s.logger)
	if _, err := exec.ExecuteEdit(ctx, p, fb); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Edit process completed! Check your Discord server for updates.",
	})
}

// firstWritableChannel picks the feedback destination for dashboard-initiated
// runs: the first text channel of the guild.
func firstWritableChannel(ctx context.Context, g guild.Graph) (guild.Feedback, error) {
	channels, err := g.Channels(ctx)
	if err != nil {
		return nil, err
	}
	for _, ch := range channels {
		if ch.Kind == guild.KindText {
			return guild.NewChannelFeedback(g, ch.ID), nil
		}
	}
	return nil, errors.New("no writable text channel")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
