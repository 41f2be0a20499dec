// README: Firebase Admin SDK initialisation and ID token verifier for API callers.
package infra

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"propertyapi/internal/config"
)

// Caller is the verified identity attached to a request.
type Caller struct {
	UID    string
	Claims map[string]interface{}
}

// TokenVerifier verifies a raw bearer token and returns the caller it belongs to.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*Caller, error)
}

type firebaseVerifier struct {
	client *auth.Client
}

// NewTokenVerifier returns nil, nil when no project is configured: the API then
// runs without authentication.
func NewTokenVerifier(ctx context.Context, cfg config.FirebaseConfig) (TokenVerifier, error) {
	if cfg.ProjectID == "" {
		return nil, nil
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase app.Auth: %w", err)
	}
	return &firebaseVerifier{client: client}, nil
}

func (v *firebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*Caller, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return &Caller{UID: token.UID, Claims: token.Claims}, nil
}
