package handlers

import (
	"context"
	"net/http"

	"unirecords/internal/shared"
)

type contextKey string

const accountContextKey contextKey = "account"

// WithAccount stores the authenticated account on the request context.
func WithAccount(ctx context.Context, account *shared.Account) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}

// AccountFromContext returns the authenticated account, or nil on
// unauthenticated requests.
func AccountFromContext(r *http.Request) *shared.Account {
	account, ok := r.Context().Value(accountContextKey).(*shared.Account)
	if !ok {
		return nil
	}
	return account
}
