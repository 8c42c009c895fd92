package middlewares

import (
	"net/http"
	"os"
)

const defaultFrontendOrigin = "https://lumaapp.site"

// CorsMiddleware allows credentialed requests from the configured frontend
// origin. The origin must be explicit, a wildcard breaks cookie auth.
func CorsMiddleware(next http.Handler) http.Handler {
	allowed := os.Getenv("FRONTEND_ORIGIN")
	if allowed == "" {
		allowed = defaultFrontendOrigin
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
