package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Purchase order statuses
const (
	OrderStatusDraft             = "draft"
	OrderStatusPendingApproval   = "pending_approval"
	OrderStatusApproved          = "approved"
	OrderStatusRejected          = "rejected"
	OrderStatusChangesRequested  = "changes_requested"
	OrderStatusOrdered           = "ordered"
	OrderStatusPartiallyReceived = "partially_received"
	OrderStatusCompleted         = "completed"
	OrderStatusCancelled         = "cancelled"
)

// Priority constants
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// PurchaseOrder represents a replenishment purchase order, either auto-generated
// from stock-out alerts or created manually. Status transitions are the only
// mutation path after creation; Version backs optimistic locking so concurrent
// approval submissions cannot double-advance the order.
type PurchaseOrder struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID    string    `gorm:"type:varchar(255);not null;index" json:"tenantId"`
	OrderNumber string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"orderNumber"`

	SupplierID  *uuid.UUID `gorm:"type:uuid;index" json:"supplierId,omitempty"`
	WarehouseID uuid.UUID  `gorm:"type:uuid;not null;index" json:"warehouseId"`
	Department  string     `gorm:"type:varchar(100)" json:"department,omitempty"`

	Status   string `gorm:"type:varchar(30);not null;default:'draft';index" json:"status"`
	Priority string `gorm:"type:varchar(20);default:'normal'" json:"priority"`
	Version  int    `gorm:"not null;default:1" json:"version"` // Optimistic locking

	// Derived sum of item subtotals, fixed at creation.
	TotalAmount  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"totalAmount"`
	CurrencyCode string          `gorm:"type:varchar(3);not null;default:'AOA'" json:"currencyCode"`

	AutoGenerated bool   `gorm:"default:false" json:"autoGenerated"`
	Notes         string `gorm:"type:text" json:"notes,omitempty"`

	// Approval tracking
	RequiresApproval     bool           `gorm:"default:false" json:"requiresApproval"`
	WorkflowID           *uuid.UUID     `gorm:"type:uuid" json:"workflowId,omitempty"`
	CurrentApprovalLevel int            `gorm:"default:0" json:"currentApprovalLevel"`
	CompletedApprovers   pq.StringArray `gorm:"type:uuid[]" json:"completedApprovers"`

	RequestedBy *uuid.UUID `gorm:"type:uuid" json:"requestedBy,omitempty"`
	OrderedAt   *time.Time `json:"orderedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Items     []PurchaseOrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Approvals []Approval          `gorm:"foreignKey:OrderID" json:"approvals,omitempty"`
}

// TableName returns the table name for PurchaseOrder
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// IsTerminal returns true if the status is a terminal state
func (o *PurchaseOrder) IsTerminal() bool {
	return o.Status == OrderStatusCompleted ||
		o.Status == OrderStatusCancelled ||
		o.Status == OrderStatusRejected ||
		o.Status == OrderStatusChangesRequested
}

// IsCancellable reports whether the order is still in a pre-ordered state from
// which cancellation is allowed.
func (o *PurchaseOrder) IsCancellable() bool {
	switch o.Status {
	case OrderStatusDraft, OrderStatusPendingApproval, OrderStatusApproved:
		return true
	}
	return false
}

// ComputeTotal recomputes TotalAmount from the item subtotals.
func (o *PurchaseOrder) ComputeTotal() {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].Subtotal)
	}
	o.TotalAmount = total
}

// PurchaseOrderItem is a single product line on a purchase order.
type PurchaseOrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID  string    `gorm:"type:varchar(255);not null;index" json:"tenantId"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"orderId"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`

	Quantity         int             `gorm:"not null" json:"quantity"`
	QuantityReceived int             `gorm:"default:0" json:"quantityReceived"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unitPrice"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal"`

	// Rule that triggered this line when auto-generated.
	SourceRuleID *uuid.UUID `gorm:"type:uuid" json:"sourceRuleId,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for PurchaseOrderItem
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// Approval decision statuses
const (
	ApprovalStatusPending          = "pending"
	ApprovalStatusApproved         = "approved"
	ApprovalStatusRejected         = "rejected"
	ApprovalStatusChangesRequested = "changes_requested"
	// Moot marks approvals invalidated by cancellation or by a sibling's
	// terminal decision; rows are kept for the audit trail.
	ApprovalStatusMoot = "moot"
)

// Approval is one approver's slot at one level of a purchase order's approval
// cycle. Rows are seeded pending when a level becomes active and resolved by
// the approver's decision.
type Approval struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID       string    `gorm:"type:varchar(255);not null;index" json:"tenantId"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index" json:"orderId"`
	Level          int       `gorm:"not null" json:"level"`
	ApproverUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"approverUserId"`

	Status    string     `gorm:"type:varchar(30);not null;default:'pending'" json:"status"`
	Comments  string     `gorm:"type:text" json:"comments,omitempty"`
	DecidedAt *time.Time `json:"decidedAt,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for Approval
func (Approval) TableName() string {
	return "approvals"
}
