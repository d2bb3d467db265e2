package connector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/FJ-cyberzilla/mailzilla/internal/model"
	"github.com/FJ-cyberzilla/mailzilla/internal/source"
)

// buildConfig returns a BuilderConfig pointing connectors at a test server.
func buildConfig(platform, baseURL string) source.BuilderConfig {
	return source.BuilderConfig{
		ID:          platform + "-1",
		Platform:    platform,
		Category:    model.CategoryCode,
		Reliability: 0.8,
		EmailSearch: true,
		Options:     map[string]string{"base_url": baseURL},
	}
}

// TestRegisterDefaults tests that built-in connectors land in the factory.
func TestRegisterDefaults(t *testing.T) {
	t.Parallel()

	f := source.NewFactory()
	RegisterDefaults(f)

	for _, platform := range []string{"gravatar", "github"} {
		if !f.Registered(platform) {
			t.Errorf("expected %s connector registered", platform)
		}
	}
	if f.Registered("linkedin") {
		t.Error("no built-in linkedin connector expected")
	}
}

// TestGravatarQuery tests the profile lookup path.
func TestGravatarQuery(t *testing.T) {
	t.Parallel()

	t.Run("match", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Profiles are addressed by hash, never by the raw address.
			if len(r.URL.Path) != len("/")+64+len(".json") {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			w.Write([]byte(`{"entry":[{
				"preferredUsername":"jsmith",
				"displayName":"John Smith",
				"currentLocation":"Lisbon",
				"aboutMe":"engineer",
				"profileUrl":"https://gravatar.com/jsmith",
				"thumbnailUrl":"https://gravatar.com/avatar/abc"
			}]}`))
		}))
		defer srv.Close()

		g := newGravatar(buildConfig("gravatar", srv.URL), srv.Client())
		obs, err := g.Query(context.Background(), model.NewEmailQuery("john@example.com"), time.Second)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(obs) != 1 {
			t.Fatalf("expected 1 observation, got %d", len(obs))
		}
		if obs[0].Username != "jsmith" || obs[0].FullName != "John Smith" {
			t.Errorf("unexpected observation %+v", obs[0])
		}
		if obs[0].Platform != "gravatar" {
			t.Errorf("unexpected platform %q", obs[0].Platform)
		}
	})

	t.Run("no profile", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		g := newGravatar(buildConfig("gravatar", srv.URL), srv.Client())
		if _, err := g.Query(context.Background(), model.NewEmailQuery("john@example.com"), time.Second); !errors.Is(err, source.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("phone queries never match", func(t *testing.T) {
		t.Parallel()

		g := newGravatar(buildConfig("gravatar", "http://unused.invalid"), http.DefaultClient)
		if _, err := g.Query(context.Background(), model.NewPhoneQuery("+12025550101"), time.Second); !errors.Is(err, source.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("server errors classify as unavailable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		g := newGravatar(buildConfig("gravatar", srv.URL), srv.Client())
		if _, err := g.Query(context.Background(), model.NewEmailQuery("john@example.com"), time.Second); !errors.Is(err, source.ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("context expiry classifies as timeout", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		g := newGravatar(buildConfig("gravatar", srv.URL), srv.Client())
		if _, err := g.Query(ctx, model.NewEmailQuery("john@example.com"), time.Second); !errors.Is(err, source.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})
}

// TestGitHubQuery tests the two-step search-then-profile path.
func TestGitHubQuery(t *testing.T) {
	t.Parallel()

	t.Run("match", func(t *testing.T) {
		t.Parallel()

		var srv *httptest.Server
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/search/users":
				w.Write([]byte(`{"items":[{"login":"jsmith","url":"` + srv.URL + `/users/jsmith"}]}`))
			case "/users/jsmith":
				w.Write([]byte(`{
					"login":"jsmith","name":"John Smith","location":"Lisbon",
					"company":"Acme","bio":"engineer",
					"html_url":"https://github.com/jsmith",
					"avatar_url":"https://avatars.github.com/jsmith",
					"updated_at":"2025-05-01T10:00:00Z"
				}`))
			default:
				t.Errorf("unexpected path %q", r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		g := newGitHub(buildConfig("github", srv.URL), srv.Client())
		obs, err := g.Query(context.Background(), model.NewEmailQuery("john@example.com"), time.Second)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(obs) != 1 {
			t.Fatalf("expected 1 observation, got %d", len(obs))
		}
		if obs[0].Username != "jsmith" || obs[0].Company != "Acme" {
			t.Errorf("unexpected observation %+v", obs[0])
		}
		if obs[0].LastActivity.IsZero() {
			t.Error("expected parsed last activity")
		}
	})

	t.Run("no items means not found", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"items":[]}`))
		}))
		defer srv.Close()

		g := newGitHub(buildConfig("github", srv.URL), srv.Client())
		if _, err := g.Query(context.Background(), model.NewEmailQuery("john@example.com"), time.Second); !errors.Is(err, source.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("exhausted quota classifies as rate limited", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("X-Ratelimit-Remaining", "0")
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		g := newGitHub(buildConfig("github", srv.URL), srv.Client())
		if _, err := g.Query(context.Background(), model.NewEmailQuery("john@example.com"), time.Second); !errors.Is(err, source.ErrRateLimited) {
			t.Errorf("expected ErrRateLimited, got %v", err)
		}
	})

	t.Run("plain forbidden classifies as auth failure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("X-Ratelimit-Remaining", "42")
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		g := newGitHub(buildConfig("github", srv.URL), srv.Client())
		if _, err := g.Query(context.Background(), model.NewEmailQuery("john@example.com"), time.Second); !errors.Is(err, source.ErrAuthFailure) {
			t.Errorf("expected ErrAuthFailure, got %v", err)
		}
	})

	t.Run("token is attached when configured", func(t *testing.T) {
		t.Parallel()

		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{"items":[]}`))
		}))
		defer srv.Close()

		cfg := buildConfig("github", srv.URL)
		cfg.Options["token"] = "secret"
		g := newGitHub(cfg, srv.Client())

		_, _ = g.Query(context.Background(), model.NewEmailQuery("john@example.com"), time.Second)
		if gotAuth != "Bearer secret" {
			t.Errorf("expected bearer token header, got %q", gotAuth)
		}
	})
}
