// Package local provides an in-process identity.Client backed by an
// in-memory user pool. It reproduces the provider's challenge-response
// protocol faithfully enough to drive the auth component in tests and
// single-node deployments: users created with a temporary password are
// forced through the NEW_PASSWORD_REQUIRED challenge before tokens are
// issued, and issued tokens are real HS256-signed JWTs.
package local

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rhuss/buchung/pkg/identity"
)

// Config holds settings for the local provider.
type Config struct {
	// PoolName is the display name of the single pool the provider hosts.
	PoolName string

	// ClientName is the display name of the single app client.
	ClientName string

	// SigningKey is the HMAC secret for issued tokens.
	SigningKey string

	// TokenTTL is the validity of issued tokens. Default: 1 hour.
	TokenTTL time.Duration

	// SessionTTL is the validity of challenge sessions. Default: 3 minutes.
	SessionTTL time.Duration
}

func (c *Config) defaults() {
	if c.TokenTTL == 0 {
		c.TokenTTL = time.Hour
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 3 * time.Minute
	}
}

// user is an account in the local pool.
type user struct {
	sub       string
	attrs     map[string]string
	password  string
	confirmed bool
}

// challengeSession is a pending NEW_PASSWORD_REQUIRED exchange.
type challengeSession struct {
	username  string
	expiresAt time.Time
}

// Provider is an in-memory identity provider hosting a single pool with a
// single app client. It is safe for concurrent use.
type Provider struct {
	cfg      Config
	poolID   string
	clientID string

	mu       sync.Mutex
	users    map[string]*user
	sessions map[string]*challengeSession
	now      func() time.Time
}

// Ensure Provider implements identity.Client at compile time.
var _ identity.Client = (*Provider)(nil)

// New creates a local provider with a fresh pool and app client.
func New(cfg Config) *Provider {
	cfg.defaults()
	return &Provider{
		cfg:      cfg,
		poolID:   "local_" + uuid.New().String()[:8],
		clientID: uuid.New().String(),
		users:    make(map[string]*user),
		sessions: make(map[string]*challengeSession),
		now:      time.Now,
	}
}

// ListPools returns the single hosted pool.
func (p *Provider) ListPools(_ context.Context, maxResults int) ([]identity.Pool, error) {
	if maxResults < 1 {
		return nil, nil
	}
	return []identity.Pool{{ID: p.poolID, Name: p.cfg.PoolName}}, nil
}

// ListPoolClients returns the single app client of the hosted pool.
func (p *Provider) ListPoolClients(_ context.Context, poolID string, maxResults int) ([]identity.PoolClient, error) {
	if poolID != p.poolID {
		return nil, identity.ErrPoolNotFound
	}
	if maxResults < 1 {
		return nil, nil
	}
	return []identity.PoolClient{{ID: p.clientID, Name: p.cfg.ClientName}}, nil
}

// AdminCreateUser provisions a user in FORCE_CHANGE_PASSWORD state.
func (p *Provider) AdminCreateUser(_ context.Context, poolID, username string, attrs []identity.UserAttribute, tempPassword string, _ bool) error {
	if poolID != p.poolID {
		return identity.ErrPoolNotFound
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.users[username]; exists {
		return fmt.Errorf("%w: %s", identity.ErrUserExists, username)
	}

	attrMap := make(map[string]string, len(attrs))
	for _, a := range attrs {
		attrMap[a.Name] = a.Value
	}

	p.users[username] = &user{
		sub:      uuid.New().String(),
		attrs:    attrMap,
		password: tempPassword,
	}

	return nil
}

// AdminSetUserPassword sets a user's password. With permanent=true the
// user is confirmed and no password challenge is pending afterwards.
func (p *Provider) AdminSetUserPassword(_ context.Context, poolID, username, password string, permanent bool) error {
	if poolID != p.poolID {
		return identity.ErrPoolNotFound
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.users[username]
	if !ok {
		return fmt.Errorf("%w: %s", identity.ErrUserNotFound, username)
	}

	u.password = password
	u.confirmed = permanent
	return nil
}

// AdminInitiateAuth starts an authentication exchange. An unconfirmed user
// with matching credentials receives the NEW_PASSWORD_REQUIRED challenge;
// a confirmed user receives tokens.
func (p *Provider) AdminInitiateAuth(_ context.Context, poolID, clientID, flow string, params map[string]string) (*identity.AuthOutcome, error) {
	if poolID != p.poolID {
		return nil, identity.ErrPoolNotFound
	}
	if clientID != p.clientID {
		return nil, fmt.Errorf("unknown client id %q", clientID)
	}
	if flow != identity.FlowAdminUserPassword && flow != identity.FlowAdminNoSRP {
		return nil, fmt.Errorf("unsupported auth flow %q", flow)
	}

	username := params[identity.ParamUsername]
	password := params[identity.ParamPassword]

	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.users[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", identity.ErrUserNotFound, username)
	}
	if u.password != password {
		return nil, identity.ErrNotAuthorized
	}

	if !u.confirmed {
		sessionID := uuid.New().String()
		p.sessions[sessionID] = &challengeSession{
			username:  username,
			expiresAt: p.now().Add(p.cfg.SessionTTL),
		}
		return &identity.AuthOutcome{
			Challenge: identity.ChallengeNewPasswordRequired,
			Session:   sessionID,
		}, nil
	}

	tokens, err := p.issueTokens(u)
	if err != nil {
		return nil, err
	}
	return &identity.AuthOutcome{Tokens: tokens}, nil
}

// AdminRespondToAuthChallenge completes a pending NEW_PASSWORD_REQUIRED
// exchange: the new password becomes permanent and tokens are issued.
func (p *Provider) AdminRespondToAuthChallenge(_ context.Context, poolID, clientID, challenge, session string, responses map[string]string) (*identity.AuthOutcome, error) {
	if poolID != p.poolID {
		return nil, identity.ErrPoolNotFound
	}
	if clientID != p.clientID {
		return nil, fmt.Errorf("unknown client id %q", clientID)
	}
	if challenge != identity.ChallengeNewPasswordRequired {
		return nil, fmt.Errorf("unsupported challenge %q", challenge)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	sess, ok := p.sessions[session]
	if !ok || p.now().After(sess.expiresAt) {
		delete(p.sessions, session)
		return nil, identity.ErrSessionExpired
	}
	delete(p.sessions, session)

	u, ok := p.users[sess.username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", identity.ErrUserNotFound, sess.username)
	}

	newPassword := responses[identity.ParamNewPassword]
	if newPassword == "" {
		return nil, fmt.Errorf("missing %s challenge response", identity.ParamNewPassword)
	}

	u.password = newPassword
	u.confirmed = true

	tokens, err := p.issueTokens(u)
	if err != nil {
		return nil, err
	}
	return &identity.AuthOutcome{Tokens: tokens}, nil
}

// issueTokens mints the ID and access tokens for a user.
// Must be called with p.mu held.
func (p *Provider) issueTokens(u *user) (*identity.TokenSet, error) {
	now := p.now()

	idClaims := jwt.MapClaims{
		"sub":       u.sub,
		"aud":       p.clientID,
		"iss":       "buchung-local/" + p.poolID,
		"token_use": "id",
		"iat":       now.Unix(),
		"exp":       now.Add(p.cfg.TokenTTL).Unix(),
	}
	for name, value := range u.attrs {
		idClaims[name] = value
	}

	idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, idClaims).
		SignedString([]byte(p.cfg.SigningKey))
	if err != nil {
		return nil, fmt.Errorf("signing id token: %w", err)
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       u.sub,
		"iss":       "buchung-local/" + p.poolID,
		"token_use": "access",
		"iat":       now.Unix(),
		"exp":       now.Add(p.cfg.TokenTTL).Unix(),
	}).SignedString([]byte(p.cfg.SigningKey))
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	return &identity.TokenSet{IDToken: idToken, AccessToken: accessToken}, nil
}
