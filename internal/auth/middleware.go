package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/logging"
)

// TokenFromRequest reads the bearer token from the Authorization header, falling
// back to the token query parameter. A bare header value is accepted too.
func TokenFromRequest(header, query string) string {
	header = strings.TrimSpace(header)
	if header != "" {
		if scheme, token, found := strings.Cut(header, " "); found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return header
	}
	return strings.TrimSpace(query)
}

// Middleware rejects operations without a valid token, except those whose
// operation ids are listed in publicOperations. A missing token is 401 and a bad
// one 403.
func Middleware(api huma.API, issuer *Issuer, publicOperations ...string) func(huma.Context, func(huma.Context)) {
	public := make(map[string]struct{}, len(publicOperations))
	for _, id := range publicOperations {
		public[id] = struct{}{}
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		if op := ctx.Operation(); op != nil {
			if _, ok := public[op.OperationID]; ok {
				next(ctx)
				return
			}
		}

		claims, err := issuer.Verify(TokenFromRequest(ctx.Header("Authorization"), ctx.Query("token")))
		if err != nil {
			logging.GetLogData(ctx.Context()).AddData("authError", err.Error())
			if errors.Is(err, ErrMissingToken) {
				_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing token")
				return
			}
			_ = huma.WriteErr(api, ctx, http.StatusForbidden, "invalid token")
			return
		}

		logging.GetLogData(ctx.Context()).AddData("accountID", claims.IBAN)
		next(huma.WithContext(ctx, WithClaims(ctx.Context(), claims)))
	}
}

// CurrentIBAN returns the account the request is authenticated as.
func CurrentIBAN(ctx context.Context) (string, error) {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return "", huma.Error401Unauthorized("missing token")
	}
	return claims.IBAN, nil
}
