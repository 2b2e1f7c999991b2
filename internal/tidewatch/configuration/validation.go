package configuration

import (
	"github.com/hashicorp/go-multierror"

	"github.com/tidewatch/tidewatch/internal/common/tidewatcherrors"
)

// Validate reports every configuration problem at once rather than stopping
// at the first.
func (c TidewatchConfig) Validate() error {
	var result *multierror.Error

	if c.HttpPort == 0 {
		result = multierror.Append(result, &tidewatcherrors.ErrInvalidArgument{
			Name: "httpPort", Value: c.HttpPort, Message: "port must be non-zero",
		})
	}
	if c.MetricsPort == 0 {
		result = multierror.Append(result, &tidewatcherrors.ErrInvalidArgument{
			Name: "metricsPort", Value: c.MetricsPort, Message: "port must be non-zero",
		})
	}
	if c.Source.Path == "" {
		result = multierror.Append(result, &tidewatcherrors.ErrInvalidArgument{
			Name: "source.path", Value: c.Source.Path, Message: "a jobs spreadsheet path is required",
		})
	}
	if c.Source.PollInterval < 0 {
		result = multierror.Append(result, &tidewatcherrors.ErrInvalidArgument{
			Name: "source.pollInterval", Value: c.Source.PollInterval, Message: "must not be negative",
		})
	}

	if !c.Auth.AnonymousAuth && c.Auth.Jwt.SecretKey == "" && len(c.Auth.BasicAuth.Users) == 0 {
		result = multierror.Append(result, &tidewatcherrors.ErrInvalidArgument{
			Name: "auth", Value: "", Message: "at least one auth method must be configured",
		})
	}
	if c.Auth.Jwt.SecretKey != "" && c.Auth.Jwt.TokenLifetime <= 0 {
		result = multierror.Append(result, &tidewatcherrors.ErrInvalidArgument{
			Name: "auth.jwt.tokenLifetime", Value: c.Auth.Jwt.TokenLifetime, Message: "must be positive",
		})
	}
	for name, user := range c.Auth.BasicAuth.Users {
		if user.Password == "" {
			result = multierror.Append(result, &tidewatcherrors.ErrInvalidArgument{
				Name: "auth.basicAuth.users." + name, Value: "", Message: "password must not be empty",
			})
		}
		if user.Role == "" {
			result = multierror.Append(result, &tidewatcherrors.ErrInvalidArgument{
				Name: "auth.basicAuth.users." + name, Value: "", Message: "role must not be empty",
			})
		}
	}

	return result.ErrorOrNil()
}
