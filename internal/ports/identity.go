package ports

import "context"

// TokenVerifier resolves a bearer credential to a user identity. The
// settlement core only ever needs the answer to one question: which
// user is calling. Implementations return domain.ErrUnauthorized for
// missing, malformed, or expired credentials.
type TokenVerifier interface {
	// Verify validates the raw bearer token and returns the user id it
	// resolves to.
	Verify(ctx context.Context, token string) (userID string, err error)
}
