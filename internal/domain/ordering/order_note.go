package ordering

import (
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// NoteKind identifies which transition produced an audit note
type NoteKind string

const (
	NoteKindCreate   NoteKind = "create"
	NoteKindConfirm  NoteKind = "confirm"
	NoteKindProcess  NoteKind = "process"
	NoteKindCancel   NoteKind = "cancel"
	NoteKindPayment  NoteKind = "payment"
	NoteKindShip     NoteKind = "ship"
	NoteKindDeliver  NoteKind = "deliver"
	NoteKindComplete NoteKind = "complete"
	NoteKindRefund   NoteKind = "refund"
	NoteKindFail     NoteKind = "fail"
)

// OrderNote is an immutable audit record appended to an order on every
// successful transition. Notes are never edited or deleted.
type OrderNote struct {
	shared.BaseEntity
	OrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	ActorID uuid.UUID `gorm:"type:uuid;not null"`
	Kind    NoteKind  `gorm:"type:varchar(20);not null"`
	Content string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (OrderNote) TableName() string {
	return "order_notes"
}

// NewOrderNote creates a new audit note
func NewOrderNote(orderID, actorID uuid.UUID, kind NoteKind, content string) *OrderNote {
	return &OrderNote{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		ActorID:    actorID,
		Kind:       kind,
		Content:    content,
	}
}
