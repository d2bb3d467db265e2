package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/FJ-cyberzilla/mailzilla/internal/model"
	"github.com/FJ-cyberzilla/mailzilla/internal/source"
)

// githubBaseURL is the REST API endpoint. Overridable in tests.
const githubBaseURL = "https://api.github.com"

// github resolves email addresses to GitHub accounts through the user
// search API. Works unauthenticated at a low rate limit; an API token
// can be supplied through the inventory options to raise it.
type github struct {
	cfg     source.BuilderConfig
	client  *http.Client
	baseURL string
	token   string
}

func newGitHub(cfg source.BuilderConfig, client *http.Client) *github {
	base := githubBaseURL
	if override, ok := cfg.Options["base_url"]; ok {
		base = override
	}
	return &github{cfg: cfg, client: client, baseURL: base, token: cfg.Options["token"]}
}

// ID implements source.Source.
func (g *github) ID() string { return g.cfg.ID }

// Platform implements source.Source.
func (g *github) Platform() string { return g.cfg.Platform }

// Close implements source.Source.
func (g *github) Close() error {
	g.client.CloseIdleConnections()
	return nil
}

type githubSearchResult struct {
	Items []struct {
		Login string `json:"login"`
		URL   string `json:"url"`
	} `json:"items"`
}

type githubUser struct {
	Login    string `json:"login"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Company  string `json:"company"`
	Bio      string `json:"bio"`
	HTMLURL  string `json:"html_url"`
	Avatar   string `json:"avatar_url"`
	Updated  string `json:"updated_at"`
}

// Query implements source.Source. The search call finds the account;
// a second call fetches the public profile fields. Both run inside the
// caller's context, which the engine bounds by the per-call budget.
func (g *github) Query(ctx context.Context, q model.Query, _ time.Duration) ([]model.Observation, error) {
	if q.Kind != model.QueryEmail {
		return nil, source.ErrNotFound
	}

	searchURL := fmt.Sprintf("%s/search/users?q=%s", g.baseURL,
		url.QueryEscape(q.Value+" in:email"))

	var result githubSearchResult
	if err := g.getJSON(ctx, searchURL, &result); err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, source.ErrNotFound
	}

	var user githubUser
	if err := g.getJSON(ctx, result.Items[0].URL, &user); err != nil {
		return nil, err
	}

	obs := model.Observation{
		SourceID:    g.cfg.ID,
		Platform:    g.cfg.Platform,
		Category:    g.cfg.Category,
		ProfileURL:  user.HTMLURL,
		Username:    user.Login,
		FullName:    user.Name,
		Location:    user.Location,
		Company:     user.Company,
		Bio:         user.Bio,
		PictureURL:  user.Avatar,
		CollectedAt: time.Now(),
	}
	if t, err := time.Parse(time.RFC3339, user.Updated); err == nil {
		obs.LastActivity = t
	}
	return []model.Observation{obs}, nil
}

// getJSON performs one authenticated GET and decodes the JSON body.
func (g *github) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%v: %w", err, source.ErrUnavailable)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "mailzilla")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return wrapTransportErr(ctx, err)
	}
	defer resp.Body.Close()

	// GitHub signals an exhausted unauthenticated quota with 403 plus a
	// zeroed rate-limit header, not 429.
	if resp.StatusCode == http.StatusForbidden {
		if resp.Header.Get("X-Ratelimit-Remaining") == "0" {
			return source.ErrRateLimited
		}
		return source.ErrAuthFailure
	}
	if err := classifyStatus(resp.StatusCode); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", source.ErrUnavailable)
	}
	return nil
}
