// internal/api/api.go
//
// HTTP handler set.
//
// Context
// -------
// One API value owns the handler dependencies: the store, the token manager,
// picture storage, and a logger.  Handlers are thin; they decode and
// validate input, call one store method, and write the uniform envelope.
// All authorization already happened in middleware (token verification) or
// in the store (ownership checks).

package api

import (
	"go.uber.org/zap"

	"github.com/saessac/soda-server/internal/store"
	"github.com/saessac/soda-server/internal/token"
	"github.com/saessac/soda-server/internal/upload"
)

// API bundles the handler dependencies.
type API struct {
	store    *store.Store
	tokens   *token.Manager
	pictures *upload.Storage
	log      *zap.SugaredLogger
}

// New builds the handler set.
func New(st *store.Store, tokens *token.Manager, pictures *upload.Storage, log *zap.SugaredLogger) *API {
	return &API{store: st, tokens: tokens, pictures: pictures, log: log}
}
