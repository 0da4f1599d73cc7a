package main

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/mfogaca/sabia/internal/api"
	"github.com/mfogaca/sabia/internal/config"
	"github.com/mfogaca/sabia/internal/history"
	"github.com/mfogaca/sabia/internal/session"
	"github.com/mfogaca/sabia/internal/terminal"
)

type runtimeEnv struct {
	Config  *config.Config
	Session *session.Store
	Client  *api.Client
	Engine  *history.Engine
	Display *terminal.Display

	dataDir string
}

// archivePath is where the local history mirror lives.
func (r *runtimeEnv) archivePath() string {
	return filepath.Join(r.dataDir, "archive.db")
}

// prepareRuntimeEnv loads configuration, hydrates the persisted
// session, and wires the API client to it. Hydration runs to
// completion here, before any command touches identity-gated state.
func prepareRuntimeEnv() (*runtimeEnv, error) {
	manager, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config manager: %w", err)
	}

	cfg, err := manager.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	sess := session.NewStore(filepath.Join(manager.Dir(), "session"))
	sess.Hydrate()

	client := api.NewClient(cfg.BaseURL, cfg.Timeout(),
		api.WithTokenSource(sess.Token),
		api.WithUnauthorizedHook(func() {
			// Rejected credential anywhere: drop the persisted session
			// and send the user back through login.
			sess.Logout()
			log.Println("session expired, run 'sabia login' to sign in again")
		}),
	)

	engine := history.New(client, sess, cfg.PageSize, cfg.SearchLimit)

	return &runtimeEnv{
		Config:  cfg,
		Session: sess,
		Client:  client,
		Engine:  engine,
		Display: terminal.NewDisplay(),
		dataDir: manager.Dir(),
	}, nil
}

// requireLogin returns the current identity or an instructive error.
func (r *runtimeEnv) requireLogin() (*session.Identity, error) {
	id := r.Session.Identity()
	if id == nil {
		return nil, fmt.Errorf("not logged in (run 'sabia login' first)")
	}
	return id, nil
}
