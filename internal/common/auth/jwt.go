package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/tidewatch/tidewatch/internal/common/auth/configuration"
	"github.com/tidewatch/tidewatch/internal/common/tidewatcherrors"
	"github.com/tidewatch/tidewatch/internal/common/util"
)

const JwtAuthServiceName = "JWT"

// Claim names embedded in issued tokens beyond the registered ones.
const (
	roleClaim = "role"
	uidClaim  = "uid"
)

// JwtAuthService issues and validates HS256-signed bearer tokens.
// Validated tokens are cached so repeated requests skip signature verification.
type JwtAuthService struct {
	secretKey     []byte
	tokenLifetime time.Duration
	clock         util.Clock
	tokenCache    *cache.Cache
}

func NewJwtAuthService(config configuration.JwtAuthenticationConfig, clock util.Clock) *JwtAuthService {
	return &JwtAuthService{
		secretKey:     []byte(config.SecretKey),
		tokenLifetime: config.TokenLifetime,
		clock:         clock,
		tokenCache:    cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (authService *JwtAuthService) Name() string {
	return JwtAuthServiceName
}

// IssueToken returns a signed token for the given user. The subject claim carries the
// username; role and uid are included as custom claims.
func (authService *JwtAuthService) IssueToken(username string, user configuration.UserInfo) (string, error) {
	now := authService.clock.Now()
	claims := jwt.MapClaims{
		"sub":     username,
		"iat":     now.Unix(),
		"exp":     now.Add(authService.tokenLifetime).Unix(),
		roleClaim: user.Role,
		uidClaim:  user.Id,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(authService.secretKey)
	if err != nil {
		return "", errors.WithMessage(err, "error signing token")
	}
	return signed, nil
}

func (authService *JwtAuthService) Authenticate(_ context.Context, authHeader string) (Principal, error) {
	authHeaderSplits := strings.SplitN(authHeader, " ", 2)
	if len(authHeaderSplits) < 2 || !strings.EqualFold(authHeaderSplits[0], "bearer") {
		return nil, &tidewatcherrors.ErrMissingCredentials{
			AuthService: JwtAuthServiceName,
			Message:     "bearer token not found",
		}
	}
	rawToken := authHeaderSplits[1]

	if data, found := authService.tokenCache.Get(rawToken); found {
		if principal, ok := data.(Principal); ok {
			return principal, nil
		}
	}

	claims, err := authService.parseToken(rawToken)
	if err != nil {
		return nil, err
	}

	username, _ := claims["sub"].(string)
	if username == "" {
		return nil, &tidewatcherrors.ErrInvalidCredentials{
			AuthService: JwtAuthServiceName,
			Message:     "subject claim missing",
		}
	}

	groups := []string{}
	if role, ok := claims[roleClaim].(string); ok && role != "" {
		groups = append(groups, role)
	}
	principal := NewStaticPrincipal(username, JwtAuthServiceName, groups)

	// Cache the principal until the token expires.
	if exp, ok := claims["exp"].(float64); ok {
		ttl := time.Unix(int64(exp), 0).Sub(authService.clock.Now())
		if ttl > 0 {
			authService.tokenCache.Set(rawToken, Principal(principal), ttl)
		}
	}
	return principal, nil
}

// parseToken verifies the token signature and expiry and returns its claims.
// Expiry is checked against the service clock rather than the jwt package's global time
// function so that it can be controlled in tests.
func (authService *JwtAuthService) parseToken(rawToken string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(
		rawToken,
		func(token *jwt.Token) (interface{}, error) {
			return authService.secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, &tidewatcherrors.ErrInvalidCredentials{
			AuthService: JwtAuthServiceName,
			Message:     err.Error(),
		}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, &tidewatcherrors.ErrInvalidCredentials{
			AuthService: JwtAuthServiceName,
			Message:     "malformed claims",
		}
	}

	if !claims.VerifyExpiresAt(authService.clock.Now().Unix(), true) {
		return nil, &tidewatcherrors.ErrInvalidCredentials{
			AuthService: JwtAuthServiceName,
			Message:     "token expired",
		}
	}
	return claims, nil
}
