package chi

import "net/http"

/* APIKeyAuth checks the x-api-key header against the configured keys.
 * Keys come from configuration assembled at startup, not from a shared
 * mutable map. An empty key list disables authentication.
 */
func APIKeyAuth(keys []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		allowed[key] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := allowed[r.Header.Get("x-api-key")]; !ok {
				http.Error(w, "invalid API key", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
