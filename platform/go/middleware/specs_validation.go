package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3filter"

	platformauth "github.com/zenGate-Global/palmyra-rentals/platform/go/auth"
)

// ValidateAuthenticationViaSwagger enforces bearerAuth requirements declared in the contract.
// Scopes listed on a bearerAuth requirement are read as roles; holding any one of them is enough.
// Operations that allow anonymous access (security: [{}] or no security) never reach this func.
func ValidateAuthenticationViaSwagger(ctx context.Context, input *openapi3filter.AuthenticationInput) error {
	if input == nil || input.SecuritySchemeName != "bearerAuth" {
		return nil
	}

	r := input.RequestValidationInput.Request
	if r == nil {
		return fmt.Errorf("no request in validation input")
	}
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return fmt.Errorf("missing or invalid Authorization header")
	}

	if len(input.Scopes) == 0 {
		return nil
	}

	creds, ok := platformauth.UserFromContext(r.Context())
	if !ok || creds == nil {
		return fmt.Errorf("credentials missing from request context")
	}
	for _, scope := range input.Scopes {
		if role := platformauth.ParseRole(scope); role != "" && creds.HasRole(role) {
			return nil
		}
	}
	return fmt.Errorf("one of roles %v is required", input.Scopes)
}
