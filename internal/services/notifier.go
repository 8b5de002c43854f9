package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/raiyan37/Centinel/internal/amqp"
	"github.com/raiyan37/Centinel/internal/cache"
	"github.com/raiyan37/Centinel/internal/core"
	applog "github.com/raiyan37/Centinel/internal/log"
)

// ChangeNotifier fans a committed mutation out to the overview cache and the
// event stream. Neither step can fail the mutation.
//
// Every invalidation bumps a per-account generation. A reader that composed
// an overview under an older generation must not cache it.
type ChangeNotifier struct {
	overview  cache.Cache[core.Overview]
	publisher Publisher

	mu          sync.Mutex
	generations map[string]uint64
}

// NewChangeNotifier accepts nil for either collaborator.
func NewChangeNotifier(overview cache.Cache[core.Overview], publisher Publisher) *ChangeNotifier {
	return &ChangeNotifier{
		overview:    overview,
		publisher:   publisher,
		generations: make(map[string]uint64),
	}
}

// Notify invalidates the account's cached views and publishes the event.
func (n *ChangeNotifier) Notify(ctx context.Context, eventType amqp.EventType, accountID, entityID string) {
	n.Invalidate(ctx, accountID)

	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogLedgerMutation(ctx, eventComponent(eventType), string(eventType), accountID, entityID)

	if n.publisher == nil {
		return
	}
	if err := n.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(eventType, accountID, entityID)); err != nil {
		// Don't fail the request - the change is committed
		slog.WarnContext(ctx, "Failed to publish ledger event",
			"type", eventType, "account_id", accountID, "error", err)
	}
}

// Invalidate drops the cached overview of accountID.
func (n *ChangeNotifier) Invalidate(ctx context.Context, accountID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.generations[accountID]++
	if n.overview != nil {
		n.overview.Delete(ctx, cache.Key(overviewView, accountID))
	}
}

// generation returns the invalidation count of accountID. Read it before
// composing a view and hand it back to fill.
func (n *ChangeNotifier) generation(accountID string) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.generations[accountID]
}

// fill stores ov in c unless accountID was invalidated after gen was read.
// The check and the write hold the same lock as Invalidate, so a stale view
// is either skipped or deleted right after.
func (n *ChangeNotifier) fill(ctx context.Context, c cache.Cache[core.Overview], accountID string, gen uint64, ov core.Overview) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.generations[accountID] != gen {
		return false
	}
	c.Set(ctx, cache.Key(overviewView, accountID), ov)
	return true
}

// eventComponent maps "pot.deposited" to the pot component, and so on.
func eventComponent(eventType amqp.EventType) string {
	entity, _, _ := strings.Cut(string(eventType), ".")
	switch entity {
	case "transaction":
		return applog.ComponentTransaction
	case "budget":
		return applog.ComponentBudget
	case "pot":
		return applog.ComponentPot
	}
	return applog.ComponentApp
}
