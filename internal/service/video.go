package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"roomgate-backend/internal/config"
	"roomgate-backend/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NewVideoProvider constructs the configured provider. Config validation
// has already rejected unknown provider names, so the default branch is a
// programming error.
func NewVideoProvider(cfg config.VideoConfig) (VideoProvider, error) {
	switch cfg.Provider {
	case "livekit":
		return &livekitProvider{apiKey: cfg.APIKey, apiSecret: cfg.APISecret}, nil
	case "http":
		return &httpProvider{
			endpoint: cfg.Endpoint,
			client:   &http.Client{Timeout: cfg.MintTimeout()},
		}, nil
	default:
		return nil, fmt.Errorf("unknown video provider: %s", cfg.Provider)
	}
}

// livekitProvider signs LiveKit-compatible room join tokens locally with
// the project's API key pair. No network call is involved, so minting can
// only fail on a broken key configuration.
type livekitProvider struct {
	apiKey    string
	apiSecret string
}

func (p *livekitProvider) Mint(ctx context.Context, roomName, displayName string, ttl time.Duration) (*MintedToken, error) {
	now := time.Now()
	expiresOn := now.Add(ttl)
	claims := jwt.MapClaims{
		"iss": p.apiKey,
		"sub": displayName,
		"jti": uuid.NewString(),
		"nbf": now.Unix(),
		"exp": expiresOn.Unix(),
		"video": map[string]any{
			"room":     roomName,
			"roomJoin": true,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(p.apiSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign video token: %w", err)
	}
	return &MintedToken{Token: signed, ExpiresOn: expiresOn}, nil
}

// httpProvider mints tokens by calling an external token endpoint. The
// client carries a bounded timeout; a timed-out mint is a failed mint.
type httpProvider struct {
	endpoint string
	client   *http.Client
}

type mintRequest struct {
	Room       string `json:"room"`
	Identity   string `json:"identity"`
	TTLMinutes int    `json:"ttl_minutes"`
}

type mintResponse struct {
	Token     string    `json:"token"`
	ExpiresOn time.Time `json:"expires_on"`
}

func (p *httpProvider) Mint(ctx context.Context, roomName, displayName string, ttl time.Duration) (*MintedToken, error) {
	logger.ExternalServiceCall("video", "mint", "room", roomName)

	body, err := json.Marshal(mintRequest{
		Room:       roomName,
		Identity:   displayName,
		TTLMinutes: int(ttl.Minutes()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode mint request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build mint request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		logger.ExternalServiceResult("video", "mint", err)
		return nil, fmt.Errorf("video provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("video provider returned status %d", resp.StatusCode)
		logger.ExternalServiceResult("video", "mint", err)
		return nil, err
	}

	var minted mintResponse
	if err := json.NewDecoder(resp.Body).Decode(&minted); err != nil {
		return nil, fmt.Errorf("failed to decode mint response: %w", err)
	}
	if minted.Token == "" {
		return nil, fmt.Errorf("video provider returned an empty token")
	}
	if minted.ExpiresOn.IsZero() {
		minted.ExpiresOn = time.Now().Add(ttl)
	}

	logger.ExternalServiceResult("video", "mint", nil)
	return &MintedToken{Token: minted.Token, ExpiresOn: minted.ExpiresOn}, nil
}
