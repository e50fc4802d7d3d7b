package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
)

// OrderRepository handles database operations for purchase orders and their
// approval rows
type OrderRepository struct {
	db    *gorm.DB
	stock *StockRepository
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *gorm.DB, stock *StockRepository) *OrderRepository {
	return &OrderRepository{db: db, stock: stock}
}

// WithTransaction runs fn against transaction-scoped repositories. Approval
// submissions re-read and double-check order state inside the transaction so
// two concurrent decisions cannot resolve the same level twice, and stock
// movements booked during a receipt commit or roll back with the order.
func (r *OrderRepository) WithTransaction(ctx context.Context, fn func(txOrders OrderRepositoryInterface, txStock StockRepositoryInterface) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&OrderRepository{db: tx, stock: r.stock}, r.stock.withTx(tx))
	})
}

// --- Order Methods ---

// CreateOrder creates a purchase order with its items
func (r *OrderRepository) CreateOrder(ctx context.Context, order *models.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// GetOrderByID retrieves a tenant's order with its items and approvals
func (r *OrderRepository) GetOrderByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Approvals", func(db *gorm.DB) *gorm.DB {
			return db.Order("level ASC, created_at ASC")
		}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ListOrders retrieves orders for a tenant with an optional status filter
func (r *OrderRepository) ListOrders(ctx context.Context, tenantID string, statusFilter string, limit, offset int) ([]models.PurchaseOrder, int64, error) {
	var orders []models.PurchaseOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&models.PurchaseOrder{}).
		Where("tenant_id = ?", tenantID)
	if statusFilter != "" && statusFilter != "all" {
		query = query.Where("status = ?", statusFilter)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	return orders, total, err
}

// UpdateOrderStatus updates order status with optimistic locking
func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, order *models.PurchaseOrder, newStatus string) error {
	oldVersion := order.Version

	updates := map[string]interface{}{
		"status":     newStatus,
		"version":    oldVersion + 1,
		"updated_at": time.Now(),
	}
	switch newStatus {
	case models.OrderStatusOrdered:
		updates["ordered_at"] = time.Now()
	case models.OrderStatusCompleted:
		updates["completed_at"] = time.Now()
	}

	result := r.db.WithContext(ctx).Model(order).
		Where("id = ? AND version = ?", order.ID, oldVersion).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}

	order.Status = newStatus
	order.Version = oldVersion + 1
	return nil
}

// UpdateOrderApprovalState persists approval-cycle bookkeeping (workflow,
// current level, completed approvers) with optimistic locking
func (r *OrderRepository) UpdateOrderApprovalState(ctx context.Context, order *models.PurchaseOrder) error {
	oldVersion := order.Version

	result := r.db.WithContext(ctx).Model(order).
		Where("id = ? AND version = ?", order.ID, oldVersion).
		Updates(map[string]interface{}{
			"requires_approval":      order.RequiresApproval,
			"workflow_id":            order.WorkflowID,
			"current_approval_level": order.CurrentApprovalLevel,
			"completed_approvers":    order.CompletedApprovers,
			"version":                oldVersion + 1,
			"updated_at":             time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}

	order.Version = oldVersion + 1
	return nil
}

// --- Approval Methods ---

// CreateApprovals seeds pending approval rows for a level
func (r *OrderRepository) CreateApprovals(ctx context.Context, approvals []models.Approval) error {
	if len(approvals) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&approvals).Error
}

// GetApprovalsByLevel retrieves all approvals for an order at a given level
func (r *OrderRepository) GetApprovalsByLevel(ctx context.Context, orderID uuid.UUID, level int) ([]models.Approval, error) {
	var approvals []models.Approval
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND level = ?", orderID, level).
		Order("created_at ASC").
		Find(&approvals).Error
	return approvals, err
}

// UpdateApproval records an approver's decision. Only pending rows may be
// resolved; anything else is a conflict surfaced to the caller.
func (r *OrderRepository) UpdateApproval(ctx context.Context, approval *models.Approval) error {
	result := r.db.WithContext(ctx).Model(approval).
		Where("id = ? AND status = ?", approval.ID, models.ApprovalStatusPending).
		Updates(map[string]interface{}{
			"status":     approval.Status,
			"comments":   approval.Comments,
			"decided_at": approval.DecidedAt,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// MarkPendingApprovalsMoot invalidates all still-pending approvals for an
// order. Rows are kept, not deleted, to preserve the audit trail.
func (r *OrderRepository) MarkPendingApprovalsMoot(ctx context.Context, orderID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Approval{}).
		Where("order_id = ? AND status = ?", orderID, models.ApprovalStatusPending).
		Updates(map[string]interface{}{
			"status":     models.ApprovalStatusMoot,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// ListPendingApprovalsForUser retrieves approvals awaiting a given approver.
// Only approvals at their order's current level are actionable.
func (r *OrderRepository) ListPendingApprovalsForUser(ctx context.Context, tenantID string, approverID uuid.UUID, limit, offset int) ([]models.Approval, int64, error) {
	var approvals []models.Approval
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Approval{}).
		Joins("JOIN purchase_orders ON purchase_orders.id = approvals.order_id").
		Where("approvals.tenant_id = ? AND approvals.approver_user_id = ? AND approvals.status = ?",
			tenantID, approverID, models.ApprovalStatusPending).
		Where("purchase_orders.status = ? AND purchase_orders.current_approval_level = approvals.level",
			models.OrderStatusPendingApproval)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("approvals.created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&approvals).Error
	return approvals, total, err
}

// --- Item Methods ---

// UpdateItemReceived persists received quantities for an order line
func (r *OrderRepository) UpdateItemReceived(ctx context.Context, item *models.PurchaseOrderItem) error {
	result := r.db.WithContext(ctx).Model(item).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"quantity_received": item.QuantityReceived,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
