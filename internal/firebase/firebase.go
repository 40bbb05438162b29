// Package firebase adapts Firebase Authentication to the identity operations the
// services need: password sign-in, account administration and setup links.
package firebase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"stackassist-backend/internal/core"
	"stackassist-backend/internal/models"
)

// AdminClient is the part of the Admin SDK auth client the provider uses.
type AdminClient interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
	GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	PasswordResetLinkWithSettings(ctx context.Context, email string, settings *auth.ActionCodeSettings) (string, error)
}

type passwordSignIn func(ctx context.Context, email, password string) (*identitytoolkit.VerifyPasswordResponse, error)

// Sign-in failures reported by the Identity Toolkit REST API.
var invalidCredentialCodes = []string{
	"INVALID_PASSWORD",
	"EMAIL_NOT_FOUND",
	"INVALID_LOGIN_CREDENTIALS",
	"INVALID_EMAIL",
	"USER_DISABLED",
}

// IdentityProvider implements core.IdentityProvider on Firebase Authentication.
type IdentityProvider struct {
	admin        AdminClient
	signIn       passwordSignIn
	userNotFound func(error) bool
	emailInUse   func(error) bool
}

// NewIdentityProvider builds a provider. webAPIKey is the project's web API key used
// for password sign-in; it is sent to the Identity Toolkit API only.
func NewIdentityProvider(ctx context.Context, admin AdminClient, webAPIKey string) (*IdentityProvider, error) {
	if admin == nil {
		return nil, errors.New("firebase auth client is required")
	}
	if webAPIKey == "" {
		return nil, errors.New("FIREBASE_WEB_API_KEY must be set for password sign-in")
	}
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(webAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit service: %w", err)
	}
	signIn := func(ctx context.Context, email, password string) (*identitytoolkit.VerifyPasswordResponse, error) {
		return svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
			Email:             email,
			Password:          password,
			ReturnSecureToken: true,
		}).Context(ctx).Do()
	}
	return newIdentityProvider(admin, signIn), nil
}

func newIdentityProvider(admin AdminClient, signIn passwordSignIn) *IdentityProvider {
	return &IdentityProvider{
		admin:        admin,
		signIn:       signIn,
		userNotFound: auth.IsUserNotFound,
		emailInUse:   auth.IsEmailAlreadyExists,
	}
}

var _ core.IdentityProvider = (*IdentityProvider)(nil)

func (p *IdentityProvider) SignIn(ctx context.Context, email, password string) (*models.AuthTokens, error) {
	resp, err := p.signIn(ctx, email, password)
	if err != nil {
		return nil, signInError(err)
	}
	return &models.AuthTokens{
		UserID:       resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    int(resp.ExpiresIn),
	}, nil
}

// signInError maps Identity Toolkit failures onto the auth error taxonomy.
func signInError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: password sign-in: %v", core.ErrUnavailable, err)
	}
	if apiErr.Code >= http.StatusInternalServerError {
		return fmt.Errorf("%w: password sign-in: %v", core.ErrUnavailable, err)
	}
	reasons := []string{apiErr.Message}
	for _, item := range apiErr.Errors {
		reasons = append(reasons, item.Message, item.Reason)
	}
	for _, reason := range reasons {
		for _, code := range invalidCredentialCodes {
			if strings.HasPrefix(reason, code) {
				return core.ErrInvalidCredentials
			}
		}
		if strings.HasPrefix(reason, "TOO_MANY_ATTEMPTS_TRY_LATER") {
			return fmt.Errorf("%w: too many sign-in attempts", core.ErrUnavailable)
		}
	}
	return fmt.Errorf("password sign-in: %w", err)
}

func (p *IdentityProvider) CreateUser(ctx context.Context, email, password string) (string, error) {
	user, err := p.admin.CreateUser(ctx, (&auth.UserToCreate{}).Email(email).Password(password))
	if err != nil {
		if p.emailInUse(err) {
			return "", core.ErrEmailInUse
		}
		return "", fmt.Errorf("create firebase user: %w", err)
	}
	return user.UID, nil
}

func (p *IdentityProvider) DeleteUser(ctx context.Context, uid string) error {
	if err := p.admin.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("delete firebase user %s: %w", uid, err)
	}
	return nil
}

func (p *IdentityProvider) RevokeSessions(ctx context.Context, uid string) error {
	if err := p.admin.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("revoke refresh tokens of %s: %w", uid, err)
	}
	return nil
}

// InviteLink creates the account with a random password when it does not exist, then
// returns a password reset link that continues to continueURL.
func (p *IdentityProvider) InviteLink(ctx context.Context, email, continueURL string) (string, error) {
	if _, err := p.admin.GetUserByEmail(ctx, email); err != nil {
		if !p.userNotFound(err) {
			return "", fmt.Errorf("look up firebase user: %w", err)
		}
		password, err := randomPassword()
		if err != nil {
			return "", err
		}
		if _, err := p.admin.CreateUser(ctx, (&auth.UserToCreate{}).Email(email).Password(password)); err != nil && !p.emailInUse(err) {
			return "", fmt.Errorf("create invited firebase user: %w", err)
		}
	}
	link, err := p.admin.PasswordResetLinkWithSettings(ctx, email, &auth.ActionCodeSettings{URL: continueURL})
	if err != nil {
		return "", fmt.Errorf("generate password setup link: %w", err)
	}
	return link, nil
}

// VerifyIDToken checks a Firebase ID token, rejecting tokens issued before the user's
// refresh tokens were revoked, and returns the identity it carries.
func (p *IdentityProvider) VerifyIDToken(ctx context.Context, idToken string) (models.Identity, error) {
	token, err := p.admin.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return models.Identity{}, err
	}
	email, _ := token.Claims["email"].(string)
	verified, _ := token.Claims["email_verified"].(bool)
	return models.Identity{UserID: token.UID, Email: email, EmailVerified: verified}, nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
