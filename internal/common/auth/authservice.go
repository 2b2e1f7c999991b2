package auth

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tidewatch/tidewatch/internal/common/tidewatcherrors"
)

// AuthService represents a method of authentication for the HTTP API.
// Each implementation represents a particular method, e.g., a JWT bearer token or basic auth.
// The server may be configured with multiple AuthServices to give several options for authentication.
type AuthService interface {
	Name() string
	Authenticate(ctx context.Context, authHeader string) (Principal, error)
}

// MultiAuthService tries each of the given auth services one at a time in sequence.
// Successful authentication short-circuits the process. Services reporting missing
// credentials are skipped; any other error aborts authentication.
type MultiAuthService struct {
	services []AuthService
}

func NewMultiAuthService(services []AuthService) *MultiAuthService {
	return &MultiAuthService{services: services}
}

func (multi *MultiAuthService) Name() string {
	return "Multi"
}

func (multi *MultiAuthService) Authenticate(ctx context.Context, authHeader string) (Principal, error) {
	for _, service := range multi.services {
		principal, err := service.Authenticate(ctx, authHeader)

		var missingCredsErr *tidewatcherrors.ErrMissingCredentials
		if errors.As(err, &missingCredsErr) {
			// try next auth service
			continue
		} else if err != nil {
			return nil, err
		}
		return principal, nil
	}
	return nil, &tidewatcherrors.ErrMissingCredentials{
		Message: "request could not be authenticated with any of the supported schemes",
	}
}
