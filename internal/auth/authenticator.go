// Package auth registers and authenticates group members and issues the
// bearer tokens every group, expense, payment and balance call carries.
package auth

import (
	"context"

	"github.com/mmynk/splitgroup/internal/models"
)

// Authenticator turns a credential into a member account. AuthService only
// talks to this interface, so password login can sit next to other schemes.
type Authenticator interface {
	// Register creates an account. Emails are unique after normalization.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account matching the email and credential, or
	// ErrInvalidCredentials without saying which of the two was wrong.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential rejects credentials too weak to register with.
	ValidateCredential(credential string) error
}

var _ Authenticator = (*PasswordAuthenticator)(nil)
