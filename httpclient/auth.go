package httpclient

import "net/http"

// AuthConfig holds the credentials attached to every request.
type AuthConfig struct {
	// BearerToken is sent as "Authorization: Bearer <token>".
	BearerToken string
	// KeyHeader names a header that carries Key verbatim.
	KeyHeader string
	Key       string
}

// BearerAuth authenticates with a bearer token, as Hugging Face hosted
// sidecars expect.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{BearerToken: token}
}

// SupabaseAuth sends a project key both as the apikey header and as a
// bearer token, which Supabase REST and storage endpoints require.
func SupabaseAuth(key string) *AuthConfig {
	return &AuthConfig{BearerToken: key, KeyHeader: "apikey", Key: key}
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil {
		return
	}
	if a.KeyHeader != "" {
		req.Header.Set(a.KeyHeader, a.Key)
	}
	if a.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+a.BearerToken)
	}
}
