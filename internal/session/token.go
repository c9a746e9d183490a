package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether the stored bearer token is a JWT whose exp
// claim is already in the past. The signature is NOT verified — the client
// has no signing secret — so this is only a fail-fast: an expired token is
// purged without a round trip, while anything undecidable (opaque token,
// no exp claim) is left for remote validation to judge.
func tokenExpired(token string, now time.Time) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
