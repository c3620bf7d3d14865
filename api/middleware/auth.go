package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/orgshop-backend/api/responses"
	pkgAuth "github.com/angelmondragon/orgshop-backend/pkg/auth"
	"github.com/angelmondragon/orgshop-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/orgshop-backend/pkg/errors"
	"github.com/angelmondragon/orgshop-backend/pkg/logger"
)

// userIDHeader is the identity fallback used by local tooling and the
// legacy storefront; it only works when the feature flag allows it.
const userIDHeader = "X-User-Id"

// Auth resolves the caller's identity and seeds the request context with
// it. A bearer token wins; the plain user id header is accepted only
// when cfg enables the fallback. No resolvable identity is a 401.
func Auth(jwtCfg config.JWTConfig, flags config.FeatureFlagsConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolveIdentity(r, jwtCfg, flags)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithUserID(r.Context(), userID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveIdentity(r *http.Request, jwtCfg config.JWTConfig, flags config.FeatureFlagsConfig) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw != "" {
		token := raw
		if strings.HasPrefix(strings.ToLower(token), "bearer ") {
			token = strings.TrimSpace(token[7:])
		}
		if token == "" {
			return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
		}
		claims, err := pkgAuth.ParseAccessToken(jwtCfg, token)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
		}
		return claims.UserID, nil
	}

	if flags.AllowUserIDHeader {
		if userID := strings.TrimSpace(r.Header.Get(userIDHeader)); userID != "" {
			return userID, nil
		}
	}

	return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
}
