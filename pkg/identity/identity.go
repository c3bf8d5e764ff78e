package identity

import "context"

// Auth flows accepted by AdminInitiateAuth. The names follow the provider
// wire protocol.
const (
	// FlowAdminUserPassword is the admin-initiated username/password
	// exchange used for signin.
	FlowAdminUserPassword = "ADMIN_USER_PASSWORD_AUTH"

	// FlowAdminNoSRP is the admin-initiated plain-credential exchange
	// used during signup with the temporary password.
	FlowAdminNoSRP = "ADMIN_NO_SRP_AUTH"
)

// ChallengeNewPasswordRequired is the challenge the provider issues for a
// user that must replace a temporary password before receiving tokens.
const ChallengeNewPasswordRequired = "NEW_PASSWORD_REQUIRED"

// Parameter keys for auth parameters and challenge responses.
const (
	ParamUsername    = "USERNAME"
	ParamPassword    = "PASSWORD"
	ParamNewPassword = "NEW_PASSWORD"
)

// Pool identifies a user pool.
type Pool struct {
	ID   string
	Name string
}

// PoolClient identifies an app client registered with a pool.
type PoolClient struct {
	ID   string
	Name string
}

// UserAttribute is a named attribute attached to a user at creation.
type UserAttribute struct {
	Name  string
	Value string
}

// Standard user attribute names.
const (
	AttrEmail      = "email"
	AttrGivenName  = "given_name"
	AttrFamilyName = "family_name"
)

// TokenSet carries the tokens issued on successful authentication.
type TokenSet struct {
	// IDToken carries the user's identity claims. The gateway returns
	// this one to callers.
	IDToken string

	// AccessToken authorizes API calls on the user's behalf.
	AccessToken string
}

// AuthOutcome is the result of an authentication exchange. Exactly one of
// Challenge or Tokens is meaningful: a non-empty Challenge means the
// exchange is pending and must be continued with
// AdminRespondToAuthChallenge using Session; otherwise Tokens is set.
type AuthOutcome struct {
	Challenge string
	Session   string
	Tokens    *TokenSet
}

// Pending reports whether the outcome demands a further challenge response.
func (o *AuthOutcome) Pending() bool {
	return o.Challenge != ""
}

// Client is the remote user-pool management interface.
//
// All methods are synchronous round-trips to the provider. Implementations
// translate provider failures into the sentinel errors of this package
// where a sentinel applies and otherwise return the provider's message.
type Client interface {
	// ListPools returns up to maxResults user pools.
	ListPools(ctx context.Context, maxResults int) ([]Pool, error)

	// ListPoolClients returns up to maxResults app clients of a pool.
	ListPoolClients(ctx context.Context, poolID string, maxResults int) ([]PoolClient, error)

	// AdminCreateUser provisions a user with a temporary password. When
	// suppressMessage is true the provider sends no welcome message.
	AdminCreateUser(ctx context.Context, poolID, username string, attrs []UserAttribute, tempPassword string, suppressMessage bool) error

	// AdminSetUserPassword sets a user's password directly. With
	// permanent=true the user is confirmed and no challenge is pending.
	AdminSetUserPassword(ctx context.Context, poolID, username, password string, permanent bool) error

	// AdminInitiateAuth starts an authentication exchange.
	AdminInitiateAuth(ctx context.Context, poolID, clientID, flow string, params map[string]string) (*AuthOutcome, error)

	// AdminRespondToAuthChallenge continues a pending exchange.
	AdminRespondToAuthChallenge(ctx context.Context, poolID, clientID, challenge, session string, responses map[string]string) (*AuthOutcome, error)
}
