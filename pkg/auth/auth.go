// Package auth implements signup and signin on top of a remote identity
// provider. The service holds no user state: accounts, credentials, and the
// challenge protocol all live in the provider, reached through
// identity.Client.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rhuss/buchung/pkg/api"
	"github.com/rhuss/buchung/pkg/identity"
)

const (
	// poolListLimit caps pool and client listing during resolution.
	poolListLimit = 50

	// clientAppFragment selects the app client by name-contains match.
	clientAppFragment = "client-app"

	// tempPassword seeds every new account. It is replaced in the same
	// signup call via the NEW_PASSWORD_REQUIRED challenge and never
	// becomes a working credential.
	tempPassword = "TempPassword123!"
)

// Config holds auth service settings.
type Config struct {
	// PoolNameFragment selects the user pool: the first pool whose name
	// contains this fragment wins.
	PoolNameFragment string
}

// Service implements the signup and signin operations.
type Service struct {
	client identity.Client
	logger *slog.Logger

	poolID   string
	clientID string
}

// NewService resolves the user pool and app client and returns a ready
// service. Resolution failures surface as configuration errors; the caller
// decides whether to fail startup or defer.
func NewService(ctx context.Context, client identity.Client, cfg Config, logger *slog.Logger) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("auth: identity client must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	poolID, err := resolvePool(ctx, client, cfg.PoolNameFragment)
	if err != nil {
		return nil, err
	}

	clientID, err := resolveClient(ctx, client, poolID)
	if err != nil {
		return nil, err
	}

	logger.Info("resolved identity pool",
		"pool_id", poolID,
		"client_id", clientID)

	return &Service{
		client:   client,
		logger:   logger,
		poolID:   poolID,
		clientID: clientID,
	}, nil
}

// resolvePool finds the first pool whose name contains the fragment.
func resolvePool(ctx context.Context, client identity.Client, fragment string) (string, error) {
	pools, err := client.ListPools(ctx, poolListLimit)
	if err != nil {
		return "", api.NewUpstreamError(fmt.Sprintf("listing user pools: %s", err.Error()))
	}

	for _, p := range pools {
		if strings.Contains(p.Name, fragment) {
			return p.ID, nil
		}
	}
	return "", api.NewConfigurationError(fmt.Sprintf("no user pool matching %q", fragment))
}

// resolveClient finds the first app client whose name contains the
// client-app fragment.
func resolveClient(ctx context.Context, client identity.Client, poolID string) (string, error) {
	clients, err := client.ListPoolClients(ctx, poolID, poolListLimit)
	if err != nil {
		return "", api.NewUpstreamError(fmt.Sprintf("listing pool clients: %s", err.Error()))
	}

	for _, pc := range clients {
		if strings.Contains(pc.Name, clientAppFragment) {
			return pc.ID, nil
		}
	}
	return "", api.NewConfigurationError(fmt.Sprintf("no app client matching %q in pool %s", clientAppFragment, poolID))
}

// SignUp registers a new account and immediately completes the forced
// password change, leaving the account confirmed with the caller's chosen
// password. The sequence is fixed: create with a suppressed temporary
// password, initiate auth with it, answer the NEW_PASSWORD_REQUIRED
// challenge. Any deviation by the provider is a protocol error.
func (s *Service) SignUp(ctx context.Context, req *api.SignUpRequest) error {
	if err := api.ValidateSignUpRequest(req); err != nil {
		return err
	}

	attrs := []identity.UserAttribute{
		{Name: identity.AttrEmail, Value: req.Email},
		{Name: identity.AttrGivenName, Value: req.FirstName},
		{Name: identity.AttrFamilyName, Value: req.LastName},
	}

	if err := s.client.AdminCreateUser(ctx, s.poolID, req.Email, attrs, tempPassword, true); err != nil {
		s.logger.Warn("signup: user creation failed", "email", req.Email, "error", err)
		return api.NewUpstreamError(err.Error())
	}

	outcome, err := s.client.AdminInitiateAuth(ctx, s.poolID, s.clientID, identity.FlowAdminNoSRP, map[string]string{
		identity.ParamUsername: req.Email,
		identity.ParamPassword: tempPassword,
	})
	if err != nil {
		return api.NewUpstreamError(err.Error())
	}

	if outcome.Challenge != identity.ChallengeNewPasswordRequired {
		return api.NewProtocolError(fmt.Sprintf("unexpected challenge %q during signup", outcome.Challenge))
	}

	outcome, err = s.client.AdminRespondToAuthChallenge(ctx, s.poolID, s.clientID,
		identity.ChallengeNewPasswordRequired, outcome.Session, map[string]string{
			identity.ParamUsername:    req.Email,
			identity.ParamPassword:    tempPassword,
			identity.ParamNewPassword: req.Password,
		})
	if err != nil {
		return api.NewUpstreamError(err.Error())
	}

	if outcome.Pending() {
		return api.NewProtocolError(fmt.Sprintf("unexpected challenge %q after password change", outcome.Challenge))
	}

	s.logger.Info("user signed up", "email", req.Email)
	return nil
}

// SignIn authenticates with username and password and returns the token
// response. The identity token is returned in the accessToken field; that
// is the contract clients depend on.
func (s *Service) SignIn(ctx context.Context, req *api.SignInRequest) (*api.SignInResponse, error) {
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		return nil, api.NewValidationError("Invalid signin request. Email and password must be non-empty")
	}

	outcome, err := s.client.AdminInitiateAuth(ctx, s.poolID, s.clientID, identity.FlowAdminUserPassword, map[string]string{
		identity.ParamUsername: req.Email,
		identity.ParamPassword: req.Password,
	})
	if err != nil {
		s.logger.Warn("signin failed", "email", req.Email, "error", err)
		return nil, api.NewUpstreamError(err.Error())
	}

	if outcome.Pending() {
		return nil, api.NewProtocolError(fmt.Sprintf("unexpected challenge %q during signin", outcome.Challenge))
	}
	if outcome.Tokens == nil || outcome.Tokens.IDToken == "" {
		return nil, api.NewUpstreamError("identity provider returned no token")
	}

	return &api.SignInResponse{AccessToken: outcome.Tokens.IDToken}, nil
}
