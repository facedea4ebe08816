package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drivev3 "google.golang.org/api/drive/v3"
)

// ErrNoToken means the one-time authorization has not been done yet.
var ErrNoToken = errors.New("drive: oauth token not found")

// LoadOAuthConfig reads a Google "installed app" client secret file.
func LoadOAuthConfig(secretPath string) (*oauth2.Config, error) {
	b, err := os.ReadFile(secretPath)
	if err != nil {
		return nil, fmt.Errorf("read client secret %s: %w", secretPath, err)
	}
	cfg, err := google.ConfigFromJSON(b, drivev3.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secret %s: %w", secretPath, err)
	}
	return cfg, nil
}

// LoadToken reads a token written by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoToken, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read token %s: %w", path, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", path, err)
	}
	if tok.RefreshToken == "" && tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoToken, path)
	}
	return &tok, nil
}

// SaveToken writes tok as JSON, readable by the owner only.
func SaveToken(path string, tok *oauth2.Token) error {
	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write token %s: %w", path, err)
	}
	return nil
}

// NewHTTPClient returns an authorized client. Refreshed tokens are written
// back to tokenPath so a restart picks up the latest one.
func NewHTTPClient(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token, tokenPath string, log *zap.Logger) *http.Client {
	if log == nil {
		log = zap.NewNop()
	}
	src := &savingSource{
		base: cfg.TokenSource(ctx, tok),
		path: tokenPath,
		last: tok.AccessToken,
		log:  log,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src))
}

type savingSource struct {
	base oauth2.TokenSource
	path string
	log  *zap.Logger

	mu   sync.Mutex
	last string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := SaveToken(s.path, tok); err != nil {
			s.log.Warn("persist refreshed token", zap.Error(err))
		}
	}
	return tok, nil
}
