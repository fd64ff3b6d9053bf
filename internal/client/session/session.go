// Package session orchestrates the authenticated-user lifecycle: startup
// resume, login, registration, logout, and profile maintenance. Failures never
// escape as errors; operations report success with a boolean or nil result and
// leave a human-readable message on the side channel (LastError). Session
// transitions are serialized by an operation mutex, since interleaved token
// writes are a correctness hazard; state reads take a separate lock so the
// Loading state stays observable while a transition is in flight.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taskmate/taskmate/internal/client/credential"
	"github.com/taskmate/taskmate/internal/client/pipeline"
	"github.com/taskmate/taskmate/internal/common/logtrace"
	"github.com/taskmate/taskmate/pkg/types"
)

// State is the session lifecycle state.
type State int

const (
	Uninitialized State = iota
	Loading
	Authenticated
	Anonymous
)

// String returns the state name for logs and status output.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// REST paths for the user endpoints.
const (
	signinPath        = "/users/signin"
	signupPath        = "/users/signup"
	signoutPath       = "/users/signout"
	profilePath       = "/users/get-user-profile"
	updateProfilePath = "/users/update-user-profile/c/"
	deleteAccountPath = "/users/delete-user-profile"
)

// Manager owns the session. The credential store only persists the token; the
// user profile lives here and is present iff the token has been validated.
type Manager struct {
	opMu   sync.Mutex // serializes session transitions
	client *pipeline.Client
	store  credential.Store

	mu      sync.Mutex // guards state, user, lastErr
	state   State
	user    *types.UserProfile
	lastErr string
	logger  zerolog.Logger
}

// New creates a session manager in the Uninitialized state. Call Resume to
// resolve any persisted session.
func New(client *pipeline.Client, store credential.Store) *Manager {
	return &Manager{
		client: client,
		store:  store,
		state:  Uninitialized,
		logger: logtrace.Component("session"),
	}
}

// authResponse is the payload returned by the sign-in and sign-up endpoints.
// Some server builds report the token as accessToken and omit the user.
type authResponse struct {
	Token       string            `json:"token"`
	AccessToken string            `json:"accessToken"`
	User        types.UserProfile `json:"user"`
}

func (r *authResponse) token() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

// Resume resolves a persisted session at startup. A stored token is validated
// by fetching the current user: success yields Authenticated, any failure
// clears the token and yields Anonymous. Without a stored token the session
// is immediately Anonymous.
func (m *Manager) Resume(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if !m.store.Active() {
		m.setAnonymous("")
		return
	}

	m.setState(Loading)
	data, err := m.client.Get(ctx, profilePath)
	if err != nil {
		m.logger.Debug().Err(err).Msg("stored session could not be resumed")
		m.store.Clear()
		m.setAnonymous(err.Error())
		return
	}

	var user types.UserProfile
	if err := json.Unmarshal(data, &user); err != nil {
		m.store.Clear()
		m.setAnonymous("invalid profile response")
		return
	}

	m.setAuthenticated(user)
}

// Login authenticates with the server and persists the returned token.
// Returns true on success. On failure the session stays Anonymous, the stored
// token is untouched (unless the server reported an auth failure), and the
// reason is available via LastError.
func (m *Manager) Login(ctx context.Context, creds types.Credentials) bool {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := types.V().Struct(creds); err != nil {
		m.setAnonymous("email and password are required")
		return false
	}
	return m.authenticate(ctx, signinPath, creds)
}

// Register creates an account and treats a successful registration as an
// implicit login: the returned token is stored immediately.
func (m *Manager) Register(ctx context.Context, reg types.Registration) bool {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := types.V().Struct(reg); err != nil {
		if reg.ConfirmPassword != reg.Password {
			m.setAnonymous("passwords do not match")
		} else {
			m.setAnonymous("invalid registration details")
		}
		return false
	}
	return m.authenticate(ctx, signupPath, reg)
}

func (m *Manager) authenticate(ctx context.Context, path string, payload any) bool {
	m.setState(Loading)
	data, err := m.client.Post(ctx, path, payload)
	if err != nil {
		m.setAnonymous(err.Error())
		return false
	}

	var resp authResponse
	if err := json.Unmarshal(data, &resp); err != nil || resp.token() == "" {
		m.setAnonymous("invalid authentication response")
		return false
	}

	if err := m.store.Set(resp.token()); err != nil {
		m.logger.Error().Err(err).Msg("failed to persist session token")
		m.setAnonymous("failed to persist session")
		return false
	}

	// Sign-in may return only the token. Resolve the identity from the
	// profile endpoint so Authenticated always carries the server-asserted
	// user.
	user := resp.User
	if user.UserID == "" {
		profileData, err := m.client.Get(ctx, profilePath)
		if err != nil {
			m.store.Clear()
			m.setAnonymous(err.Error())
			return false
		}
		if err := json.Unmarshal(profileData, &user); err != nil {
			m.store.Clear()
			m.setAnonymous("invalid profile response")
			return false
		}
	}

	m.setAuthenticated(user)
	m.logger.Info().Str("user", user.Email).Msg("session established")
	return true
}

// Logout signs out server-side best-effort and always clears local state.
// Even under network failure the client never keeps a dangling session.
func (m *Manager) Logout(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if _, err := m.client.Get(ctx, signoutPath); err != nil {
		m.logger.Warn().Err(err).Msg("server signout failed, clearing local session anyway")
	}

	m.store.Clear()
	m.setAnonymous("")
}

// UpdateProfile patches the current user's profile. Returns the updated
// profile, or nil on failure with the session state unchanged.
func (m *Manager) UpdateProfile(ctx context.Context, patch json.RawMessage) *types.UserProfile {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	cur := m.user
	m.mu.Unlock()
	if cur == nil {
		m.setErr("not signed in")
		return nil
	}

	data, err := m.client.Patch(ctx, updateProfilePath+cur.UserID, patch)
	if err != nil {
		m.setErr(err.Error())
		return nil
	}

	var user types.UserProfile
	if err := json.Unmarshal(data, &user); err != nil {
		m.setErr("invalid profile response")
		return nil
	}

	m.mu.Lock()
	m.user = &user
	m.lastErr = ""
	m.mu.Unlock()
	cp := user
	return &cp
}

// DeleteAccount deletes the account server-side and, on success, tears down
// the local session. Returns whether the deletion succeeded.
func (m *Manager) DeleteAccount(ctx context.Context) bool {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if _, err := m.client.Delete(ctx, deleteAccountPath); err != nil {
		m.setErr(err.Error())
		return false
	}

	m.store.Clear()
	m.setAnonymous("")
	return true
}

// State returns the current session state. Non-blocking while a transition is
// in flight, so callers can observe Loading.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser returns a copy of the signed-in user, or nil when anonymous.
func (m *Manager) CurrentUser() *types.UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	cp := *m.user
	return &cp
}

// LastError returns the most recent failure message. Empty after a success.
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Manager) setErr(msg string) {
	m.mu.Lock()
	m.lastErr = msg
	m.mu.Unlock()
}

func (m *Manager) setAnonymous(msg string) {
	m.mu.Lock()
	m.state = Anonymous
	m.user = nil
	m.lastErr = msg
	m.mu.Unlock()
}

func (m *Manager) setAuthenticated(user types.UserProfile) {
	m.mu.Lock()
	m.user = &user
	m.state = Authenticated
	m.lastErr = ""
	m.mu.Unlock()
}
