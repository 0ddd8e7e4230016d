package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"cruxy/internal/executor"
	"cruxy/internal/guild"
	"cruxy/internal/plan"
	"cruxy/internal/store"
	"cruxy/internal/synthesis"
)

type mockRegistry struct {
	guilds []GuildSummary
	graphs map[string]guild.Graph
}

func (m *mockRegistry) Guilds() []GuildSummary { return m.guilds }

func (m *mockRegistry) Graph(id string) (guild.Graph, bool) {
	g, ok := m.graphs[id]
	return g, ok
}

type mockPlanner struct {
	buildPlan *plan.BuildPlan
	editPlan  *plan.EditPlan
	err       error
	calls     int
}

func (m *mockPlanner) SynthesizeBuild(context.Context, guild.Snapshot, string) (*plan.BuildPlan, error) {
	m.calls++
	return m.buildPlan, m.err
}

func (m *mockPlanner) SynthesizeEdit(context.Context, guild.Snapshot, string) (*plan.EditPlan, error) {
	m.calls++
	return m.editPlan, m.err
}

func newTestServer(t *testing.T, reg *mockRegistry, planner *mockPlanner) *Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	cfg := executor.DefaultConfig()
	cfg.SettlePause = 0
	return New(reg, st, planner, cfg, nil)
}

func seedGuild(t *testing.T) *guild.MemoryGraph {
	t.Helper()
	g := guild.NewMemoryGraph("guild-1", "Test Guild")
	if _, err := g.CreateChannel(context.Background(), guild.CreateChannelRequest{Name: "general", Kind: guild.KindText}); err != nil {
		t.Fatal(err)
	}
	return g
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGuildsEndpoint(t *testing.T) {
	reg := &mockRegistry{guilds: []GuildSummary{{ID: "1", Name: "One"}, {ID: "2", Name: "Two"}}}
	srv := newTestServer(t, reg, &mockPlanner{})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/guilds", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []GuildSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "One" {
		t.Errorf("guilds = %+v", got)
	}
}

func TestGuildsEndpointEmptyListIsArray(t *testing.T) {
	srv := newTestServer(t, &mockRegistry{}, &mockPlanner{})
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/guilds", nil)
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAutomodSettingsRoundTrip(t *testing.T) {
	srv := newTestServer(t, &mockRegistry{}, &mockPlanner{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/api/automod_settings/g1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	var settings store.AutomodSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatal(err)
	}
	if settings != store.DefaultAutomodSettings() {
		t.Errorf("fresh settings = %+v", settings)
	}

	update := store.AutomodSettings{ProfanityFilter: true, WarningLimit: 5, LimitAction: "kick", MuteDuration: 15}
	rec = doJSON(t, h, http.MethodPost, "/api/automod_settings/g1", update)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/automod_settings/g1", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatal(err)
	}
	if settings != update {
		t.Errorf("settings = %+v, want %+v", settings, update)
	}
}

func TestBuildServerEndpoint(t *testing.T) {
	g := seedGuild(t)
	reg := &mockRegistry{graphs: map[string]guild.Graph{"guild-1": g}}
	planner := &mockPlanner{buildPlan: &plan.BuildPlan{
		Roles: []string{"Member"},
		Tasks: []plan.Task{
			{Kind: plan.TaskCreateCategory, Name: "Info"},
			{Kind: plan.TaskCreateChannel, Name: "rules", Category: "Info", ChannelKind: guild.KindText,
				Permissions: plan.PermissionSpec{Kind: plan.PermissionPublic}},
		},
	}}
	srv := newTestServer(t, reg, planner)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/buildserver",
		map[string]any{"guildId": "guild-1", "prompt": "gaming", "resetServer": false})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp["message"], "Build process started") {
		t.Errorf("response = %+v", resp)
	}

	channels, _ := g.Channels(context.Background())
	var found bool
	for _, ch := range channels {
		if ch.Name == "rules" {
			found = true
		}
	}
	if !found {
		t.Errorf("plan was not executed, channels = %+v", channels)
	}
	// dashboard runs announce themselves in the feedback channel
	msgs := g.Messages(channels[0].ID)
	if len(msgs) == 0 || !strings.Contains(msgs[0], "web dashboard") {
		t.Errorf("feedback messages = %v", msgs)
	}
}

func TestBuildServerUnknownGuild(t *testing.T) {
	srv := newTestServer(t, &mockRegistry{}, &mockPlanner{})
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/buildserver",
		map[string]any{"guildId": "nope", "prompt": "gaming"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestBuildServerNoWritableChannel(t *testing.T) {
	// voice-only guild: nowhere for the run's feedback to land
	g := guild.NewMemoryGraph("guild-1", "Test Guild")
	if _, err := g.CreateChannel(context.Background(), guild.CreateChannelRequest{Name: "lounge", Kind: guild.KindVoice}); err != nil {
		t.Fatal(err)
	}
	reg := &mockRegistry{graphs: map[string]guild.Graph{"guild-1": g}}
	planner := &mockPlanner{buildPlan: &plan.BuildPlan{Tasks: []plan.Task{{Kind: plan.TaskCreateCategory, Name: "Main"}}}}
	srv := newTestServer(t, reg, planner)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/buildserver",
		map[string]any{"guildId": "guild-1", "prompt": "gaming"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["error"] != "Bot could not find a channel to send messages in." {
		t.Errorf("response = %+v", resp)
	}
	if planner.calls != 0 {
		t.Errorf("planner calls = %d", planner.calls)
	}

	// nothing was executed
	channels, _ := g.Channels(context.Background())
	categories, _ := g.Categories(context.Background())
	if len(channels) != 1 || len(categories) != 0 {
		t.Errorf("guild mutated: channels=%+v categories=%+v", channels, categories)
	}
}

func TestBuildServerSynthesisFailure(t *testing.T) {
	g := seedGuild(t)
	reg := &mockRegistry{graphs: map[string]guild.Graph{"guild-1": g}}
	planner := &mockPlanner{err: &synthesis.SynthesisError{Kind: synthesis.ErrNoJSONFound, Reason: "no object"}}
	srv := newTestServer(t, reg, planner)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/buildserver",
		map[string]any{"guildId": "guild-1", "prompt": "gaming"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["error"] == "" {
		t.Errorf("response = %+v", resp)
	}

	channels, _ := g.Channels(context.Background())
	msgs := g.Messages(channels[0].ID)
	var sawFormat bool
	for _, m := range msgs {
		if strings.Contains(m, "could not find JSON") {
			sawFormat = true
		}
	}
	if !sawFormat {
		t.Errorf("failure was not reported to feedback channel: %v", msgs)
	}
}

func TestServerEditEndpoint(t *testing.T) {
	g := seedGuild(t)
	reg := &mockRegistry{graphs: map[string]guild.Graph{"guild-1": g}}
	planner := &mockPlanner{editPlan: &plan.EditPlan{Actions: []plan.Action{
		{Kind: plan.ActionRenameChannel, CurrentName: "general", NewName: "lobby"},
	}}}
	srv := newTestServer(t, reg, planner)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/serveredit",
		map[string]any{"guildId": "guild-1", "prompt": "rename general"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	channels, _ := g.Channels(context.Background())
	if len(channels) != 1 || channels[0].Name != "lobby" {
		t.Errorf("channels = %+v", channels)
	}
}
