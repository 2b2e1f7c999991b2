package configuration

import (
	"time"

	"github.com/tidewatch/tidewatch/internal/common/auth/permission"
)

type AuthConfig struct {
	AnonymousAuth bool

	BasicAuth BasicAuthenticationConfig
	Jwt       JwtAuthenticationConfig

	PermissionGroupMapping map[permission.Permission][]string
}

// UserInfo describes a single user account. Passwords are configured in plaintext
// and hashed at startup; only the hash is kept in memory afterwards.
type UserInfo struct {
	Id       int
	Password string
	Role     string
	Email    string
	FullName string
}

type BasicAuthenticationConfig struct {
	Users map[string]UserInfo
}

type JwtAuthenticationConfig struct {
	SecretKey     string
	TokenLifetime time.Duration
}
