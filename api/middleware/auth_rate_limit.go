package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/shophub-backend/api/responses"
	pkgerrors "github.com/angelmondragon/shophub-backend/pkg/errors"
	"github.com/angelmondragon/shophub-backend/pkg/logger"
)

// Only the head of the body is inspected for credentials.
const maxCredentialBytes = 64 << 10

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy throttles one auth endpoint. The IP limit counts every
// request from an address; the account limit counts attempts per email and,
// on register, per requested username.
type AuthRateLimitPolicy struct {
	name         string
	window       time.Duration
	ipLimit      int
	accountLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, accountLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{
		name:         name,
		window:       window,
		ipLimit:      ipLimit,
		accountLimit: accountLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.accountLimit > 0)
}

// credentials is the subset of the login and register payloads that
// identifies the account being attempted.
type credentials struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// throttleKey is one counter a request is charged against. Scopes look like
// "login:ip:10.0.0.1" or "register:username:<sha256>".
type throttleKey struct {
	dimension string
	value     string
	limit     int
}

func (k throttleKey) scope(policy string) string {
	return policy + ":" + k.dimension + ":" + k.value
}

func (p AuthRateLimitPolicy) keys(ip string, creds credentials) []throttleKey {
	var keys []throttleKey
	if p.ipLimit > 0 && ip != "" {
		keys = append(keys, throttleKey{dimension: "ip", value: ip, limit: p.ipLimit})
	}
	if p.accountLimit <= 0 {
		return keys
	}
	if email := strings.ToLower(strings.TrimSpace(creds.Email)); email != "" {
		keys = append(keys, throttleKey{dimension: "email", value: hashValue(email), limit: p.accountLimit})
	}
	if username := strings.ToLower(strings.TrimSpace(creds.Username)); username != "" {
		keys = append(keys, throttleKey{dimension: "username", value: hashValue(username), limit: p.accountLimit})
	}
	return keys
}

// AuthRateLimit charges each request against its IP and account counters and
// rejects it with 429 once any of them is over its limit.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var creds credentials
			if policy.accountLimit > 0 {
				var err error
				if creds, err = peekCredentials(r); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
					return
				}
			}

			for _, key := range policy.keys(clientIP(r), creds) {
				allowed, attempts, err := store.FixedWindowAllow(ctx, key.scope(policy.name), int64(key.limit), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					rejectThrottled(ctx, logg, w, policy, key, attempts)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// peekCredentials decodes the account fields and leaves r.Body readable from
// the start for the handler.
func peekCredentials(r *http.Request) (credentials, error) {
	var creds credentials
	if r.Body == nil {
		return creds, nil
	}
	head, err := io.ReadAll(io.LimitReader(r.Body, maxCredentialBytes))
	if err != nil {
		return creds, err
	}
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}

	// Malformed JSON is left for the handler's validation to report.
	_ = json.Unmarshal(head, &creds)
	return creds, nil
}

func rejectThrottled(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, key throttleKey, attempts int64) {
	retryAfter := int(policy.window.Seconds())
	if logg != nil {
		fields := map[string]any{
			"policy":         policy.name,
			"dimension":      key.dimension,
			"attempts":       attempts,
			"limit":          key.limit,
			"window_seconds": retryAfter,
		}
		if key.dimension == "ip" {
			fields["ip"] = key.value
		} else {
			fields["key_hash"] = key.value
		}
		logg.Warn(logg.WithFields(ctx, fields), "auth.rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, please try again later"))
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
