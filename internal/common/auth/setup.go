package auth

import (
	"github.com/pkg/errors"

	"github.com/tidewatch/tidewatch/internal/common/auth/configuration"
	"github.com/tidewatch/tidewatch/internal/common/util"
)

// ConfigureAuth builds the list of auth services enabled by the given config.
// The order matters: services are tried in sequence until one recognises the
// request's credentials.
func ConfigureAuth(config configuration.AuthConfig, clock util.Clock) ([]AuthService, error) {
	var authServices []AuthService

	if config.Jwt.SecretKey != "" {
		authServices = append(authServices, NewJwtAuthService(config.Jwt, clock))
	}

	if len(config.BasicAuth.Users) > 0 {
		basicAuthService, err := NewBasicAuthService(config.BasicAuth.Users)
		if err != nil {
			return nil, errors.WithMessage(err, "error initialising basic auth")
		}
		authServices = append(authServices, basicAuthService)
	}

	if config.AnonymousAuth {
		authServices = append(authServices, &AnonymousAuthService{})
	}

	if len(authServices) == 0 {
		return nil, errors.New("auth config enables no authentication method")
	}

	return authServices, nil
}
