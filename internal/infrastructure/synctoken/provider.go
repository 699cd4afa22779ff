// Package synctoken exchanges a verified session for access tokens of the
// hosted local-first sync service that holds client cart state.
package synctoken

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/storefront-api/internal/config"
	"github.com/storefront-api/internal/domain"
)

// Provider performs the client-credentials grant against the sync service.
// When no service URL is configured it falls back to minting a local HS256
// token so development setups work without the hosted service.
type Provider struct {
	url          string
	clientID     string
	clientSecret string
	client       *http.Client
}

func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		url:          strings.TrimRight(cfg.SyncDBURL, "/"),
		clientID:     cfg.SyncClientID,
		clientSecret: cfg.SyncClientSecret,
		client:       &http.Client{Timeout: 15 * time.Second},
	}
}

type grantRequest struct {
	GrantType    string            `json:"grant_type"`
	Scopes       []string          `json:"scopes"`
	PublicKey    string            `json:"public_key,omitempty"`
	ClientID     string            `json:"client_id"`
	ClientSecret string            `json:"client_secret"`
	Claims       map[string]string `json:"claims"`
}

// FetchTokens obtains sync tokens scoped to the given user. The service's
// response body is passed through untouched.
func (p *Provider) FetchTokens(ctx context.Context, publicKey string, user domain.SessionUser) (json.RawMessage, error) {
	if p.url == "" {
		return p.mintLocal(user)
	}

	payload, err := json.Marshal(grantRequest{
		GrantType:    "client_credentials",
		Scopes:       []string{"ACCESS_DB"},
		PublicKey:    publicKey,
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		Claims:       map[string]string{"sub": user.Email, "email": user.Email, "name": user.Name},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url+"/token", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sync token exchange: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sync token exchange returned %d: %s", res.StatusCode, string(body))
	}
	return json.RawMessage(body), nil
}

// mintLocal signs a short-lived HS256 token with the client secret. Only
// reachable when SYNC_DB_URL is unset; the hosted service never sees these.
func (p *Provider) mintLocal(user domain.SessionUser) (json.RawMessage, error) {
	if p.clientSecret == "" {
		return nil, fmt.Errorf("sync service not configured")
	}
	exp := time.Now().Add(time.Hour)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.Email,
		"email": user.Email,
		"name":  user.Name,
		"iat":   jwt.NewNumericDate(time.Now()),
		"exp":   jwt.NewNumericDate(exp),
	})
	signed, err := tok.SignedString([]byte(p.clientSecret))
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(map[string]interface{}{
		"accessToken":           signed,
		"accessTokenExpiration": exp.UnixMilli(),
		"claims":                map[string]string{"sub": user.Email, "email": user.Email, "name": user.Name},
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(out), nil
}
