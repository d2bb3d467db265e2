package connector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/FJ-cyberzilla/mailzilla/internal/model"
	"github.com/FJ-cyberzilla/mailzilla/internal/source"
)

// gravatarBaseURL is the profile API endpoint. Overridable in tests.
const gravatarBaseURL = "https://gravatar.com"

// gravatar resolves email addresses to Gravatar profiles. The profile
// API is public and keyed by the SHA-256 of the lower-cased address, so
// no credentials are needed.
type gravatar struct {
	cfg     source.BuilderConfig
	client  *http.Client
	baseURL string
}

func newGravatar(cfg source.BuilderConfig, client *http.Client) *gravatar {
	base := gravatarBaseURL
	if override, ok := cfg.Options["base_url"]; ok {
		base = override
	}
	return &gravatar{cfg: cfg, client: client, baseURL: base}
}

// ID implements source.Source.
func (g *gravatar) ID() string { return g.cfg.ID }

// Platform implements source.Source.
func (g *gravatar) Platform() string { return g.cfg.Platform }

// Close implements source.Source.
func (g *gravatar) Close() error {
	g.client.CloseIdleConnections()
	return nil
}

// gravatarProfile is the subset of the profile document we consume.
type gravatarProfile struct {
	Entry []struct {
		PreferredUsername string `json:"preferredUsername"`
		DisplayName       string `json:"displayName"`
		CurrentLocation   string `json:"currentLocation"`
		AboutMe           string `json:"aboutMe"`
		ProfileURL        string `json:"profileUrl"`
		ThumbnailURL      string `json:"thumbnailUrl"`
	} `json:"entry"`
}

// Query implements source.Source. Phone queries never match; Gravatar
// is keyed by email only.
func (g *gravatar) Query(ctx context.Context, q model.Query, _ time.Duration) ([]model.Observation, error) {
	if q.Kind != model.QueryEmail {
		return nil, source.ErrNotFound
	}

	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(q.Value))))
	url := fmt.Sprintf("%s/%s.json", g.baseURL, hex.EncodeToString(sum[:]))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, source.ErrUnavailable)
	}
	req.Header.Set("User-Agent", "mailzilla")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, wrapTransportErr(ctx, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	var profile gravatarProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", source.ErrUnavailable)
	}
	if len(profile.Entry) == 0 {
		return nil, source.ErrNotFound
	}

	entry := profile.Entry[0]
	return []model.Observation{{
		SourceID:    g.cfg.ID,
		Platform:    g.cfg.Platform,
		Category:    g.cfg.Category,
		ProfileURL:  entry.ProfileURL,
		Username:    entry.PreferredUsername,
		FullName:    entry.DisplayName,
		Location:    entry.CurrentLocation,
		Bio:         entry.AboutMe,
		PictureURL:  entry.ThumbnailURL,
		CollectedAt: time.Now(),
	}}, nil
}
