package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"fambook-go/internal/config"
	userdomain "fambook-go/internal/domain/user"
	"fambook-go/pkg/logger"
)

// UserSyncer resolves an identity-provider principal into the internal user
// row, creating or refreshing it on the way in.
type UserSyncer interface {
	SyncUser(ctx context.Context, principal userdomain.Principal) (*userdomain.User, error)
}

// ProviderAuth verifies bearer tokens against the external identity provider
// and swaps the external identity for the internal user before the request
// reaches a handler.
type ProviderAuth struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	users    UserSyncer
	log      logger.Logger
	skipAuth bool
	mock     userdomain.Principal
}

type contextKey int

const userKey contextKey = iota

type providerUserResponse struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Sub          string                 `json:"sub"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

func NewProviderAuth(cfg config.AuthConfig, users UserSyncer, log logger.Logger) *ProviderAuth {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &ProviderAuth{
		baseURL:  strings.TrimRight(cfg.ProviderURL, "/"),
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
		users:    users,
		log:      log,
		skipAuth: cfg.SkipAuth,
		mock: userdomain.Principal{
			ExternalID: strings.TrimSpace(cfg.MockExternalID),
			Email:      strings.TrimSpace(cfg.MockEmail),
			Name:       strings.TrimSpace(cfg.MockName),
			AvatarURL:  strings.TrimSpace(cfg.MockAvatarURL),
		},
	}
}

func (a *ProviderAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.skipAuth {
			if a.mock.ExternalID == "" {
				writeAuthError(w, http.StatusInternalServerError, "auth mock user not configured")
				return
			}
			a.syncAndServe(w, r, next, a.mock)
			return
		}

		if a.baseURL == "" || a.apiKey == "" {
			writeAuthError(w, http.StatusInternalServerError, "auth not configured")
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		principal, ok := a.verify(r.Context(), token)
		if !ok {
			unauthorized(w)
			return
		}

		a.syncAndServe(w, r, next, principal)
	})
}

func (a *ProviderAuth) verify(ctx context.Context, token string) (userdomain.Principal, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return userdomain.Principal{}, false
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return userdomain.Principal{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return userdomain.Principal{}, false
	}

	var payload providerUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return userdomain.Principal{}, false
	}

	externalID := firstNonEmpty(payload.ID, payload.Sub)
	if externalID == "" {
		return userdomain.Principal{}, false
	}

	return userdomain.Principal{
		ExternalID: externalID,
		Email:      payload.Email,
		Name:       firstNonEmpty(stringFromMap(payload.UserMetadata, "name"), stringFromMap(payload.UserMetadata, "full_name")),
		AvatarURL:  stringFromMap(payload.UserMetadata, "avatar_url"),
	}, true
}

func (a *ProviderAuth) syncAndServe(w http.ResponseWriter, r *http.Request, next http.Handler, principal userdomain.Principal) {
	internal, err := a.users.SyncUser(r.Context(), principal)
	if err != nil {
		a.log.InternalError("auth: sync user failed", err, "external_id", principal.ExternalID)
		writeAuthError(w, http.StatusInternalServerError, "internal error")
		return
	}
	next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), internal)))
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeAuthError(w, http.StatusUnauthorized, "invalid token")
}

func WithUser(ctx context.Context, user *userdomain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (*userdomain.User, bool) {
	user, ok := ctx.Value(userKey).(*userdomain.User)
	if !ok || user == nil || user.ID == "" {
		return nil, false
	}
	return user, true
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func stringFromMap(values map[string]interface{}, key string) string {
	if values == nil {
		return ""
	}
	value, ok := values[key].(string)
	if !ok {
		return ""
	}
	return value
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
