package cli

import (
	"context"
	"fmt"

	"github.com/taskmate/taskmate/internal/client/config"
	"github.com/taskmate/taskmate/internal/client/credential"
	"github.com/taskmate/taskmate/internal/client/pipeline"
	"github.com/taskmate/taskmate/internal/client/realtime"
	"github.com/taskmate/taskmate/internal/client/session"
	"github.com/taskmate/taskmate/internal/client/task"
)

// app wires the client components together for one command invocation. The
// credential store is constructed once and shared by the pipeline and the
// session manager, preserving single-instance token semantics.
type app struct {
	cfg     *config.Config
	store   credential.Store
	client  *pipeline.Client
	session *session.Manager
	tasks   *task.Manager
}

// newApp loads configuration and constructs the client stack.
func newApp() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	tokenFile, err := cfg.TokenFile()
	if err != nil {
		return nil, err
	}

	store := credential.NewFileStore(tokenFile)
	client := pipeline.New(cfg.APIURL, store)

	return &app{
		cfg:     cfg,
		store:   store,
		client:  client,
		session: session.New(client, store),
		tasks:   task.New(client),
	}, nil
}

// requireSession resolves the persisted session and fails when none is
// active. Commands operating on tasks or the profile call this first.
func (a *app) requireSession(ctx context.Context) error {
	a.session.Resume(ctx)
	if a.session.State() != session.Authenticated {
		return fmt.Errorf("not signed in. Run \"taskmate login\" first")
	}
	return nil
}

// realtimeConn constructs a realtime connection for the configured endpoint.
func (a *app) realtimeConn() *realtime.Conn {
	return realtime.New(a.cfg.WSURL)
}
