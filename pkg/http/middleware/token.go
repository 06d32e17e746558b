// Package middleware provides the HTTP middleware for the tool endpoints.
package middleware

import (
	"errors"
	"net/http"

	obcontext "github.com/octobridge/octobridge/pkg/context"
	"github.com/octobridge/octobridge/pkg/utils"
)

// ExtractUserToken pulls the bearer credential off the Authorization header
// and stashes it in the request context. Requests without a token are
// rejected with 401 before reaching any handler; malformed headers get 400.
func ExtractUserToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenType, token, err := utils.ParseAuthorizationHeader(r)
		if err != nil {
			if errors.Is(err, utils.ErrMissingAuthorizationHeader) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx := obcontext.WithTokenInfo(r.Context(), &obcontext.TokenInfo{
			Token:     token,
			TokenType: tokenType,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
