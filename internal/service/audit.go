package service

import (
	"context"
	"log/slog"

	"buyback-pos/internal/backend"
	"buyback-pos/internal/models"
)

// AuditLog stores audit entries. The gorm store in internal/repository is
// the production implementation.
type AuditLog interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
}

type actorKey struct{}

// WithActor marks ctx with the operator performing the request.
func WithActor(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

func ActorFrom(ctx context.Context) uint {
	id, _ := ctx.Value(actorKey{}).(uint)
	return id
}

// auditor writes entries best effort: a failed write is logged and the
// backend action it describes still counts as done.
type auditor struct {
	log    AuditLog
	logger *slog.Logger
}

func (a auditor) record(ctx context.Context, action string, purchaseID uint, detail string) {
	if a.log == nil {
		return
	}
	entry := &models.AuditEntry{
		RequestID: backend.RequestID(ctx),
		UserID:    ActorFrom(ctx),
		Action:    action,
		Detail:    detail,
	}
	if purchaseID > 0 {
		entry.PurchaseID = &purchaseID
	}
	// Recorded even when the page request is abandoned right after the
	// backend accepted the change.
	if err := a.log.Record(context.WithoutCancel(ctx), entry); err != nil {
		a.logger.Warn("audit entry not stored", "action", action, "error", err)
	}
}
