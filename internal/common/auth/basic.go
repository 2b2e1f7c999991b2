package auth

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/tidewatch/tidewatch/internal/common/auth/configuration"
	"github.com/tidewatch/tidewatch/internal/common/tidewatcherrors"
)

const BasicAuthServiceName = "Basic"

type BasicAuthService struct {
	users map[string]hashedUser
}

type hashedUser struct {
	passwordHash []byte
	info         configuration.UserInfo
}

// NewBasicAuthService hashes the configured plaintext passwords with bcrypt at construction.
// Only the hashes are kept in memory afterwards.
func NewBasicAuthService(users map[string]configuration.UserInfo) (*BasicAuthService, error) {
	hashed := make(map[string]hashedUser, len(users))
	for username, info := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(info.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.WithMessagef(err, "error hashing password of user %q", username)
		}
		info.Password = ""
		hashed[username] = hashedUser{passwordHash: hash, info: info}
	}
	return &BasicAuthService{users: hashed}, nil
}

func (authService *BasicAuthService) Name() string {
	return BasicAuthServiceName
}

func (authService *BasicAuthService) Authenticate(_ context.Context, authHeader string) (Principal, error) {
	authHeaderSplits := strings.SplitN(authHeader, " ", 2)
	if len(authHeaderSplits) < 2 || !strings.EqualFold(authHeaderSplits[0], "basic") {
		return nil, &tidewatcherrors.ErrMissingCredentials{
			AuthService: BasicAuthServiceName,
			Message:     "basic auth header not found",
		}
	}

	payload, err := base64.StdEncoding.DecodeString(authHeaderSplits[1])
	if err != nil {
		return nil, &tidewatcherrors.ErrInvalidCredentials{
			AuthService: BasicAuthServiceName,
			Message:     err.Error(),
		}
	}
	pair := strings.SplitN(string(payload), ":", 2)
	if len(pair) < 2 {
		return nil, &tidewatcherrors.ErrInvalidCredentials{
			AuthService: BasicAuthServiceName,
			Message:     "malformed basic auth payload",
		}
	}
	return authService.LoginUser(pair[0], pair[1])
}

// LoginUser validates a username/password pair and returns the authenticated principal.
// The user's role is recorded as a principal group.
func (authService *BasicAuthService) LoginUser(username string, password string) (Principal, error) {
	user, err := authService.VerifyPassword(username, password)
	if err != nil {
		return nil, err
	}
	return NewStaticPrincipal(username, BasicAuthServiceName, []string{user.Role}), nil
}

// VerifyPassword checks a username/password pair and returns the stored account details,
// with the password field cleared. Unknown users and wrong passwords are indistinguishable.
func (authService *BasicAuthService) VerifyPassword(username string, password string) (configuration.UserInfo, error) {
	user, ok := authService.users[username]
	if ok && bcrypt.CompareHashAndPassword(user.passwordHash, []byte(password)) == nil {
		return user.info, nil
	}
	return configuration.UserInfo{}, &tidewatcherrors.ErrInvalidCredentials{
		Username:    username,
		AuthService: BasicAuthServiceName,
	}
}
