package usecase

import (
	"context"
	"log/slog"

	"ColdMailer/internal/ports"
)

// DuplicateGuard checks whether a lead was already contacted.
type DuplicateGuard struct {
	store  ports.OutreachStore
	logger *slog.Logger
}

// NewDuplicateGuard wires the outreach store.
func NewDuplicateGuard(store ports.OutreachStore, log *slog.Logger) *DuplicateGuard {
	return &DuplicateGuard{store: store, logger: log}
}

// IsDuplicate fails open: a store error counts as "not contacted yet", so a
// store hiccup never blocks outreach. The price is a possible double send.
func (g *DuplicateGuard) IsDuplicate(ctx context.Context, email string) bool {
	if g.store == nil {
		return false
	}

	exists, err := g.store.Exists(ctx, email)
	if err != nil {
		if g.logger != nil {
			g.logger.Warn("error checking duplicate email", "email", email, "error", err)
		}
		return false
	}
	return exists
}
