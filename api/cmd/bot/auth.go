package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"sorubank-bot/api/internal/config"
	"sorubank-bot/api/internal/drive"
)

func newAuthCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Drive access once and write the token file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			cfg := config.LoadAuth()
			log, err := newLogger(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			out := cmd.OutOrStdout()

			if !force {
				if _, err := drive.LoadToken(cfg.TokenFile); err == nil {
					fmt.Fprintf(out, "%s already exists; use --force to authorize again\n", cfg.TokenFile)
					return nil
				}
			}
			oc, err := drive.LoadOAuthConfig(cfg.ClientSecretFile)
			if err != nil {
				return err
			}
			tok, err := authorize(ctx, oc, out, log)
			if err != nil {
				return err
			}
			if err := drive.SaveToken(cfg.TokenFile, tok); err != nil {
				return err
			}
			fmt.Fprintf(out, "✅ Authentication successful! %s created.\n", cfg.TokenFile)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing token file")
	return cmd
}

// authorize runs the installed-app flow with a loopback redirect.
func authorize(ctx context.Context, oc *oauth2.Config, out io.Writer, log *zap.Logger) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("callback listener: %w", err)
	}
	oc.RedirectURL = "http://" + ln.Addr().String() + "/"

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	codes := make(chan string, 1)
	errs := make(chan error, 1)

	srv := &http.Server{Handler: callbackHandler(state, codes, errs), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("callback server", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	url := oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce, oauth2.S256ChallengeOption(verifier))
	fmt.Fprintf(out, "Open this URL in your browser to authorize Google Drive access:\n\n%s\n\n", url)

	select {
	case code := <-codes:
		tok, err := oc.Exchange(ctx, code, oauth2.VerifierOption(verifier))
		if err != nil {
			return nil, fmt.Errorf("exchange code: %w", err)
		}
		return tok, nil
	case err := <-errs:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func callbackHandler(state string, codes chan<- string, errs chan<- error) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		if c.Query("state") != state {
			c.String(http.StatusBadRequest, "state mismatch")
			return
		}
		if e := c.Query("error"); e != "" {
			select {
			case errs <- fmt.Errorf("authorization denied: %s", e):
			default:
			}
			c.String(http.StatusBadRequest, "authorization failed: "+e)
			return
		}
		code := c.Query("code")
		if code == "" {
			c.String(http.StatusBadRequest, "missing code")
			return
		}
		select {
		case codes <- code:
		default:
		}
		c.String(http.StatusOK, "Authorization complete. You can close this window.")
	})
	return r
}
