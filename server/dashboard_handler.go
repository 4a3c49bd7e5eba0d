package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-adventure-bff/cookies"
	"github.com/jrsteele09/go-adventure-bff/sessions"
	"github.com/jrsteele09/go-adventure-bff/users"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DashboardData is the landing page payload. Sections that could not be
// loaded are empty and named in Degraded.
type DashboardData struct {
	User             *users.User     `json:"user"`
	DisplayName      string          `json:"display_name"`
	Stats            json.RawMessage `json:"stats"`
	RecentAdventures json.RawMessage `json:"recent_adventures"`
	Collections      json.RawMessage `json:"collections"`
	Degraded         []string        `json:"degraded"`
}

type dashboardSection struct {
	name     string
	path     string
	query    string
	fallback string
	target   *json.RawMessage
}

// DashboardHandler loads the dashboard sections concurrently (GET /dashboard).
// A failing section degrades to empty instead of failing the page.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user := users.FromContext(ctx)
		data := DashboardData{
			User:        user,
			DisplayName: user.DisplayName(),
			Degraded:    []string{},
		}

		sections := []dashboardSection{
			{name: "stats", path: "/api/stats/counts/", fallback: "{}", target: &data.Stats},
			{name: "recent_adventures", path: "/api/adventures/", query: "page_size=5", fallback: "[]", target: &data.RecentAdventures},
			{name: "collections", path: "/api/collections/", query: "page_size=5", fallback: "[]", target: &data.Collections},
		}

		jar := cookies.NewJar()
		jar.Set(s.policy.AccessName, sessions.AccessFromContext(ctx))

		var (
			g  errgroup.Group
			mu sync.Mutex
		)
		for _, section := range sections {
			g.Go(func() error {
				raw, err := s.loadSection(ctx, section, jar)
				if err != nil {
					zerolog.Ctx(ctx).Warn().Err(err).Str("section", section.name).Msg("dashboard section degraded")
					raw = json.RawMessage(section.fallback)
					mu.Lock()
					data.Degraded = append(data.Degraded, section.name)
					mu.Unlock()
				}
				*section.target = raw
				return nil
			})
		}
		_ = g.Wait()

		writeJSON(w, http.StatusOK, data)
	}
}

// loadSection fetches one section. Paginated list responses are reduced to
// their results array.
func (s *Server) loadSection(ctx context.Context, section dashboardSection, jar *cookies.Jar) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := s.upstream.GetJSON(ctx, section.path, section.query, "dashboard_"+section.name, jar, &raw); err != nil {
		return nil, err
	}
	if section.fallback != "[]" || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return raw, nil
	}
	var page struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil || page.Results == nil {
		return raw, nil
	}
	return page.Results, nil
}
