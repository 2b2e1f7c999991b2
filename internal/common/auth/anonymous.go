package auth

import "context"

const AnonymousAuthServiceName = "Anonymous"

// anonymousPrincipal stands in whenever a context carries no principal.
var anonymousPrincipal = NewStaticPrincipal("anonymous", AnonymousAuthServiceName, []string{})

// AnonymousAuthService accepts every request as the anonymous principal.
// It never rejects, so it must be ordered after every other service.
type AnonymousAuthService struct{}

func (AnonymousAuthService) Name() string {
	return AnonymousAuthServiceName
}

func (AnonymousAuthService) Authenticate(ctx context.Context, authHeader string) (Principal, error) {
	return anonymousPrincipal, nil
}
