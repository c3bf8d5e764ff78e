// Package cognito implements identity.Client against an AWS
// Cognito-compatible identity-provider endpoint. It speaks the AWS JSON 1.1
// wire protocol directly: every operation is a POST to the service endpoint
// with an X-Amz-Target header naming the action.
//
// The client targets Cognito-compatible emulators and proxies that accept
// unsigned requests. Request signing is intentionally out of scope.
package cognito

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rhuss/buchung/pkg/debug"
	"github.com/rhuss/buchung/pkg/identity"
)

const (
	contentType  = "application/x-amz-json-1.1"
	targetPrefix = "AWSCognitoIdentityProviderService."
)

// Client performs HTTP requests against a Cognito identity-provider
// endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// Ensure Client implements identity.Client at compile time.
var _ identity.Client = (*Client)(nil)

// NewClient creates a Client for the given endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	endpoint = strings.TrimRight(endpoint, "/")

	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		endpoint: endpoint,
	}
}

// call performs one JSON 1.1 round-trip for the named action. The response
// body is decoded into out when out is non-nil.
func (c *Client) call(ctx context.Context, action string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", action, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", action, err)
	}

	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("X-Amz-Target", targetPrefix+action)

	debug.Log("identity", "provider request", "action", action, "endpoint", c.endpoint)
	if debug.TraceIsEnabled("identity") {
		debug.Raw("identity", string(body))
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("calling %s: %w", action, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return mapServiceError(action, httpResp)
	}

	if out == nil {
		io.Copy(io.Discard, httpResp.Body)
		return nil
	}
	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing %s response: %w", action, err)
	}
	return nil
}

// serviceError is the JSON 1.1 error body. The error type arrives either in
// the __type field or in the X-Amzn-ErrorType header.
type serviceError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

// mapServiceError translates a non-2xx response into a sentinel error where
// one applies, and otherwise surfaces the service's own message.
func mapServiceError(action string, resp *http.Response) error {
	var svcErr serviceError
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	_ = json.Unmarshal(body, &svcErr)

	errType := svcErr.Type
	if errType == "" {
		errType = resp.Header.Get("X-Amzn-ErrorType")
	}
	// The type may be namespaced ("com.amazon...#UsernameExistsException")
	// or carry a ":http-status" suffix.
	if i := strings.Index(errType, "#"); i >= 0 {
		errType = errType[i+1:]
	}
	if i := strings.Index(errType, ":"); i >= 0 {
		errType = errType[:i]
	}

	switch errType {
	case "UsernameExistsException":
		return fmt.Errorf("%w: %s", identity.ErrUserExists, svcErr.Message)
	case "UserNotFoundException":
		return fmt.Errorf("%w: %s", identity.ErrUserNotFound, svcErr.Message)
	case "NotAuthorizedException":
		return identity.ErrNotAuthorized
	case "ResourceNotFoundException":
		return fmt.Errorf("%w: %s", identity.ErrPoolNotFound, svcErr.Message)
	case "ExpiredCodeException", "CodeMismatchException":
		return identity.ErrSessionExpired
	}

	if svcErr.Message != "" {
		return fmt.Errorf("%s failed: %s (%s)", action, svcErr.Message, errType)
	}
	return fmt.Errorf("%s failed with status %d", action, resp.StatusCode)
}

type poolDescription struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

type listUserPoolsInput struct {
	MaxResults int `json:"MaxResults"`
}

type listUserPoolsOutput struct {
	UserPools []poolDescription `json:"UserPools"`
}

// ListPools returns up to maxResults user pools.
func (c *Client) ListPools(ctx context.Context, maxResults int) ([]identity.Pool, error) {
	var out listUserPoolsOutput
	err := c.call(ctx, "ListUserPools", listUserPoolsInput{MaxResults: maxResults}, &out)
	if err != nil {
		return nil, err
	}

	pools := make([]identity.Pool, 0, len(out.UserPools))
	for _, p := range out.UserPools {
		pools = append(pools, identity.Pool{ID: p.ID, Name: p.Name})
	}
	return pools, nil
}

type clientDescription struct {
	ID   string `json:"ClientId"`
	Name string `json:"ClientName"`
}

type listUserPoolClientsInput struct {
	UserPoolID string `json:"UserPoolId"`
	MaxResults int    `json:"MaxResults"`
}

type listUserPoolClientsOutput struct {
	UserPoolClients []clientDescription `json:"UserPoolClients"`
}

// ListPoolClients returns up to maxResults app clients of a pool.
func (c *Client) ListPoolClients(ctx context.Context, poolID string, maxResults int) ([]identity.PoolClient, error) {
	var out listUserPoolClientsOutput
	err := c.call(ctx, "ListUserPoolClients", listUserPoolClientsInput{
		UserPoolID: poolID,
		MaxResults: maxResults,
	}, &out)
	if err != nil {
		return nil, err
	}

	clients := make([]identity.PoolClient, 0, len(out.UserPoolClients))
	for _, pc := range out.UserPoolClients {
		clients = append(clients, identity.PoolClient{ID: pc.ID, Name: pc.Name})
	}
	return clients, nil
}

type attributeType struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

type adminCreateUserInput struct {
	UserPoolID        string          `json:"UserPoolId"`
	Username          string          `json:"Username"`
	UserAttributes    []attributeType `json:"UserAttributes,omitempty"`
	TemporaryPassword string          `json:"TemporaryPassword,omitempty"`
	MessageAction     string          `json:"MessageAction,omitempty"`
}

// AdminCreateUser provisions a user with a temporary password.
func (c *Client) AdminCreateUser(ctx context.Context, poolID, username string, attrs []identity.UserAttribute, tempPassword string, suppressMessage bool) error {
	in := adminCreateUserInput{
		UserPoolID:        poolID,
		Username:          username,
		TemporaryPassword: tempPassword,
	}
	for _, a := range attrs {
		in.UserAttributes = append(in.UserAttributes, attributeType{Name: a.Name, Value: a.Value})
	}
	if suppressMessage {
		in.MessageAction = "SUPPRESS"
	}

	return c.call(ctx, "AdminCreateUser", in, nil)
}

type adminSetUserPasswordInput struct {
	UserPoolID string `json:"UserPoolId"`
	Username   string `json:"Username"`
	Password   string `json:"Password"`
	Permanent  bool   `json:"Permanent"`
}

// AdminSetUserPassword sets a user's password directly.
func (c *Client) AdminSetUserPassword(ctx context.Context, poolID, username, password string, permanent bool) error {
	return c.call(ctx, "AdminSetUserPassword", adminSetUserPasswordInput{
		UserPoolID: poolID,
		Username:   username,
		Password:   password,
		Permanent:  permanent,
	}, nil)
}

type authenticationResult struct {
	IDToken     string `json:"IdToken"`
	AccessToken string `json:"AccessToken"`
}

type adminInitiateAuthInput struct {
	UserPoolID     string            `json:"UserPoolId"`
	ClientID       string            `json:"ClientId"`
	AuthFlow       string            `json:"AuthFlow"`
	AuthParameters map[string]string `json:"AuthParameters"`
}

type authOutput struct {
	ChallengeName        string                `json:"ChallengeName"`
	Session              string                `json:"Session"`
	AuthenticationResult *authenticationResult `json:"AuthenticationResult"`
}

func (o *authOutput) outcome() *identity.AuthOutcome {
	out := &identity.AuthOutcome{
		Challenge: o.ChallengeName,
		Session:   o.Session,
	}
	if o.AuthenticationResult != nil {
		out.Tokens = &identity.TokenSet{
			IDToken:     o.AuthenticationResult.IDToken,
			AccessToken: o.AuthenticationResult.AccessToken,
		}
	}
	return out
}

// AdminInitiateAuth starts an authentication exchange.
func (c *Client) AdminInitiateAuth(ctx context.Context, poolID, clientID, flow string, params map[string]string) (*identity.AuthOutcome, error) {
	var out authOutput
	err := c.call(ctx, "AdminInitiateAuth", adminInitiateAuthInput{
		UserPoolID:     poolID,
		ClientID:       clientID,
		AuthFlow:       flow,
		AuthParameters: params,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.outcome(), nil
}

type adminRespondToAuthChallengeInput struct {
	UserPoolID         string            `json:"UserPoolId"`
	ClientID           string            `json:"ClientId"`
	ChallengeName      string            `json:"ChallengeName"`
	Session            string            `json:"Session,omitempty"`
	ChallengeResponses map[string]string `json:"ChallengeResponses"`
}

// AdminRespondToAuthChallenge continues a pending exchange.
func (c *Client) AdminRespondToAuthChallenge(ctx context.Context, poolID, clientID, challenge, session string, responses map[string]string) (*identity.AuthOutcome, error) {
	var out authOutput
	err := c.call(ctx, "AdminRespondToAuthChallenge", adminRespondToAuthChallengeInput{
		UserPoolID:         poolID,
		ClientID:           clientID,
		ChallengeName:      challenge,
		Session:            session,
		ChallengeResponses: responses,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.outcome(), nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
