package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
	"github.com/pedro17pedroo/SGST-sub000/internal/repository"
)

var (
	ErrOrderNotFound       = errors.New("purchase order not found")
	ErrWorkflowNotFound    = errors.New("approval workflow not found")
	ErrApprovalNotFound    = errors.New("approval not found or already processed")
	ErrOrderNotDraft       = errors.New("only draft orders can be submitted for approval")
	ErrOrderNotPending     = errors.New("order is not pending approval")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
	ErrOrderNotApproved    = errors.New("order must be approved before being placed")
	ErrOrderNotReceivable  = errors.New("order must be ordered before receiving items")
	ErrNoMatchingWorkflow  = errors.New("no approval workflow matches this order; configure one before submitting")
	ErrInvalidDecision     = errors.New("decision must be approved, rejected or changes_requested")
)

// ItemReceipt records a quantity received against one order line.
type ItemReceipt struct {
	ItemID   uuid.UUID `json:"itemId" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,gt=0"`
}

// ApprovalService drives purchase orders through their approval cycle: workflow
// matching at submission, sequential level advancement, short-circuit on
// rejection, and the post-approval ordered/received transitions.
//
// Every decision runs inside a transaction that re-reads the order and
// double-checks its state, so concurrent submissions against the same order
// resolve to exactly one winner.
type ApprovalService struct {
	orderRepo    repository.OrderRepositoryInterface
	workflowRepo repository.WorkflowRepositoryInterface
	publisher    EventPublisher
	logger       *logrus.Entry

	// Orders at or below this amount are approved without entering a
	// workflow.
	autoApproveLimit decimal.Decimal
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(orderRepo repository.OrderRepositoryInterface, workflowRepo repository.WorkflowRepositoryInterface, publisher EventPublisher, autoApproveLimit decimal.Decimal, logger *logrus.Logger) *ApprovalService {
	if logger == nil {
		logger = logrus.New()
	}
	return &ApprovalService{
		orderRepo:        orderRepo,
		workflowRepo:     workflowRepo,
		publisher:        publisher,
		autoApproveLimit: autoApproveLimit,
		logger:           logger.WithField("component", "approval-service"),
	}
}

// GetOrder fetches a tenant's order with its items and approval history.
func (s *ApprovalService) GetOrder(ctx context.Context, tenantID string, id uuid.UUID) (*models.PurchaseOrder, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, tenantID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// ListOrders lists a tenant's orders with an optional status filter.
func (s *ApprovalService) ListOrders(ctx context.Context, tenantID, statusFilter string, limit, offset int) ([]models.PurchaseOrder, int64, error) {
	return s.orderRepo.ListOrders(ctx, tenantID, statusFilter, limit, offset)
}

// SubmitOrder moves a draft into its approval cycle. Orders at or below the
// auto-approval limit are approved immediately; everything else is matched
// against the tenant's active workflows and parked at the first applicable
// level. A large order with no matching workflow is a configuration error.
func (s *ApprovalService) SubmitOrder(ctx context.Context, tenantID string, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	order, err := s.GetOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusDraft {
		return nil, ErrOrderNotDraft
	}

	if order.TotalAmount.Cmp(s.autoApproveLimit) <= 0 {
		order.RequiresApproval = false
		err := s.orderRepo.WithTransaction(ctx, func(tx repository.OrderRepositoryInterface, _ repository.StockRepositoryInterface) error {
			if err := tx.UpdateOrderApprovalState(ctx, order); err != nil {
				return err
			}
			return tx.UpdateOrderStatus(ctx, order, models.OrderStatusApproved)
		})
		if err != nil {
			return nil, err
		}
		s.logger.WithFields(logrus.Fields{
			"orderId": order.ID,
			"amount":  order.TotalAmount,
		}).Info("Order auto-approved below limit")
		return order, nil
	}

	workflow, levels, err := s.matchWorkflow(ctx, tenantID, order)
	if err != nil {
		return nil, err
	}

	firstLevel := levels[0]
	order.RequiresApproval = true
	order.WorkflowID = &workflow.ID
	order.CurrentApprovalLevel = firstLevel.Level
	order.CompletedApprovers = nil

	err = s.orderRepo.WithTransaction(ctx, func(tx repository.OrderRepositoryInterface, _ repository.StockRepositoryInterface) error {
		if err := tx.UpdateOrderApprovalState(ctx, order); err != nil {
			return err
		}
		if err := tx.UpdateOrderStatus(ctx, order, models.OrderStatusPendingApproval); err != nil {
			return err
		}
		return tx.CreateApprovals(ctx, pendingApprovals(order, firstLevel))
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishApprovalRequested(order)
	}
	s.logger.WithFields(logrus.Fields{
		"orderId":    order.ID,
		"workflowId": workflow.ID,
		"level":      firstLevel.Level,
	}).Info("Order submitted for approval")
	return order, nil
}

// SubmitDecision records one approver's decision on the order's current level.
// Approval by all of a level's approvers advances to the next applicable level
// or approves the order; a single rejection or change request resolves the
// order immediately and moots the level's remaining pending approvals.
func (s *ApprovalService) SubmitDecision(ctx context.Context, tenantID string, orderID, approverID uuid.UUID, decision, comments string) (*models.PurchaseOrder, error) {
	switch decision {
	case models.ApprovalStatusApproved, models.ApprovalStatusRejected, models.ApprovalStatusChangesRequested:
	default:
		return nil, ErrInvalidDecision
	}

	var order *models.PurchaseOrder
	err := s.orderRepo.WithTransaction(ctx, func(tx repository.OrderRepositoryInterface, _ repository.StockRepositoryInterface) error {
		// Re-read inside the transaction; the state seen by the handler
		// may already be stale.
		var err error
		order, err = tx.GetOrderByID(ctx, tenantID, orderID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if order.Status != models.OrderStatusPendingApproval {
			return ErrOrderNotPending
		}

		siblings, err := tx.GetApprovalsByLevel(ctx, orderID, order.CurrentApprovalLevel)
		if err != nil {
			return err
		}
		var mine *models.Approval
		for i := range siblings {
			if siblings[i].ApproverUserID == approverID && siblings[i].Status == models.ApprovalStatusPending {
				mine = &siblings[i]
				break
			}
		}
		if mine == nil {
			return ErrApprovalNotFound
		}

		now := time.Now()
		mine.Status = decision
		mine.Comments = comments
		mine.DecidedAt = &now
		if err := tx.UpdateApproval(ctx, mine); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return ErrApprovalNotFound
			}
			return err
		}

		if decision != models.ApprovalStatusApproved {
			// Short-circuit: one rejection resolves the order and the
			// level's other pending approvals become moot.
			if _, err := tx.MarkPendingApprovalsMoot(ctx, orderID); err != nil {
				return err
			}
			newStatus := models.OrderStatusRejected
			if decision == models.ApprovalStatusChangesRequested {
				newStatus = models.OrderStatusChangesRequested
			}
			return tx.UpdateOrderStatus(ctx, order, newStatus)
		}

		order.CompletedApprovers = append(order.CompletedApprovers, approverID.String())

		for i := range siblings {
			if siblings[i].ID != mine.ID && siblings[i].Status == models.ApprovalStatusPending {
				// Level not yet resolved, just record the approver.
				return tx.UpdateOrderApprovalState(ctx, order)
			}
		}

		return s.advanceLevel(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		switch order.Status {
		case models.OrderStatusApproved:
			s.publisher.PublishApprovalGranted(order, approverID)
		case models.OrderStatusRejected, models.OrderStatusChangesRequested:
			s.publisher.PublishApprovalRejected(order, approverID, decision)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"orderId":    order.ID,
		"approverId": approverID,
		"decision":   decision,
		"status":     order.Status,
	}).Info("Approval decision recorded")
	return order, nil
}

// advanceLevel moves a fully approved level forward: seed the next applicable
// level's approvals, or approve the order when none remains.
func (s *ApprovalService) advanceLevel(ctx context.Context, tx repository.OrderRepositoryInterface, order *models.PurchaseOrder) error {
	if order.WorkflowID == nil {
		return tx.UpdateOrderStatus(ctx, order, models.OrderStatusApproved)
	}
	workflow, err := s.workflowRepo.GetWorkflowByID(ctx, *order.WorkflowID)
	if err != nil {
		return err
	}
	levels, err := applicableLevels(workflow, order)
	if err != nil {
		return err
	}

	for _, level := range levels {
		if level.Level > order.CurrentApprovalLevel {
			order.CurrentApprovalLevel = level.Level
			if err := tx.UpdateOrderApprovalState(ctx, order); err != nil {
				return err
			}
			return tx.CreateApprovals(ctx, pendingApprovals(order, level))
		}
	}

	if err := tx.UpdateOrderApprovalState(ctx, order); err != nil {
		return err
	}
	return tx.UpdateOrderStatus(ctx, order, models.OrderStatusApproved)
}

// CancelOrder cancels a pre-ordered purchase order and moots any pending
// approvals so they disappear from approver queues.
func (s *ApprovalService) CancelOrder(ctx context.Context, tenantID string, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	var order *models.PurchaseOrder
	err := s.orderRepo.WithTransaction(ctx, func(tx repository.OrderRepositoryInterface, _ repository.StockRepositoryInterface) error {
		var err error
		order, err = tx.GetOrderByID(ctx, tenantID, orderID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if !order.IsCancellable() {
			return ErrOrderNotCancellable
		}
		if _, err := tx.MarkPendingApprovalsMoot(ctx, orderID); err != nil {
			return err
		}
		return tx.UpdateOrderStatus(ctx, order, models.OrderStatusCancelled)
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishOrderCancelled(order)
	}
	s.logger.WithField("orderId", order.ID).Info("Order cancelled")
	return order, nil
}

// MarkOrdered records that an approved order was placed with the supplier.
func (s *ApprovalService) MarkOrdered(ctx context.Context, tenantID string, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	order, err := s.GetOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusApproved {
		return nil, ErrOrderNotApproved
	}
	if err := s.orderRepo.UpdateOrderStatus(ctx, order, models.OrderStatusOrdered); err != nil {
		return nil, err
	}
	return order, nil
}

// ReceiveItems records received quantities against an ordered purchase order,
// books the matching inbound stock movements, and completes the order once
// every line is fully received. Item updates, movements and the status write
// all commit or roll back together.
func (s *ApprovalService) ReceiveItems(ctx context.Context, tenantID string, orderID uuid.UUID, receipts []ItemReceipt) (*models.PurchaseOrder, error) {
	var order *models.PurchaseOrder
	err := s.orderRepo.WithTransaction(ctx, func(tx repository.OrderRepositoryInterface, txStock repository.StockRepositoryInterface) error {
		var err error
		order, err = tx.GetOrderByID(ctx, tenantID, orderID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if order.Status != models.OrderStatusOrdered && order.Status != models.OrderStatusPartiallyReceived {
			return ErrOrderNotReceivable
		}

		items := make(map[uuid.UUID]*models.PurchaseOrderItem, len(order.Items))
		for i := range order.Items {
			items[order.Items[i].ID] = &order.Items[i]
		}

		for _, receipt := range receipts {
			item, ok := items[receipt.ItemID]
			if !ok {
				return fmt.Errorf("%w: item %s does not belong to this order", ErrOrderNotFound, receipt.ItemID)
			}
			received := item.QuantityReceived + receipt.Quantity
			if received > item.Quantity {
				received = item.Quantity
			}
			booked := received - item.QuantityReceived
			if booked <= 0 {
				continue
			}
			item.QuantityReceived = received
			if err := tx.UpdateItemReceived(ctx, item); err != nil {
				return err
			}
			movement := &models.StockMovement{
				TenantID:    order.TenantID,
				ProductID:   item.ProductID,
				WarehouseID: order.WarehouseID,
				Direction:   models.MovementInbound,
				Quantity:    booked,
				Reference:   order.OrderNumber,
				OccurredAt:  time.Now(),
			}
			if err := txStock.RecordMovement(ctx, movement); err != nil {
				return err
			}
		}

		complete := true
		for i := range order.Items {
			if order.Items[i].QuantityReceived < order.Items[i].Quantity {
				complete = false
				break
			}
		}
		newStatus := models.OrderStatusPartiallyReceived
		if complete {
			newStatus = models.OrderStatusCompleted
		}
		if order.Status == newStatus {
			return nil
		}
		return tx.UpdateOrderStatus(ctx, order, newStatus)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"orderId": order.ID,
		"status":  order.Status,
	}).Info("Order receipt recorded")
	return order, nil
}

// ListPendingApprovals returns the approvals currently actionable by one
// approver.
func (s *ApprovalService) ListPendingApprovals(ctx context.Context, tenantID string, approverID uuid.UUID, limit, offset int) ([]models.Approval, int64, error) {
	return s.orderRepo.ListPendingApprovalsForUser(ctx, tenantID, approverID, limit, offset)
}

// --- Workflow management ---

// CreateWorkflow validates and persists a workflow template.
func (s *ApprovalService) CreateWorkflow(ctx context.Context, workflow *models.ApprovalWorkflow) error {
	rules, err := workflow.ParseRules()
	if err != nil {
		return err
	}
	if err := models.ValidateRules(rules); err != nil {
		return err
	}
	workflow.IsActive = true
	return s.workflowRepo.CreateWorkflow(ctx, workflow)
}

// GetWorkflow fetches a workflow by ID.
func (s *ApprovalService) GetWorkflow(ctx context.Context, id uuid.UUID) (*models.ApprovalWorkflow, error) {
	workflow, err := s.workflowRepo.GetWorkflowByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrWorkflowNotFound
	}
	return workflow, err
}

// ListWorkflows lists the active workflows visible to a tenant.
func (s *ApprovalService) ListWorkflows(ctx context.Context, tenantID string) ([]models.ApprovalWorkflow, error) {
	return s.workflowRepo.ListActiveWorkflows(ctx, tenantID)
}

// UpdateWorkflow replaces a workflow's rules and metadata after validation.
func (s *ApprovalService) UpdateWorkflow(ctx context.Context, id uuid.UUID, update *models.ApprovalWorkflow) (*models.ApprovalWorkflow, error) {
	workflow, err := s.GetWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	rules, err := update.ParseRules()
	if err != nil {
		return nil, err
	}
	if err := models.ValidateRules(rules); err != nil {
		return nil, err
	}

	workflow.DisplayName = update.DisplayName
	workflow.Description = update.Description
	workflow.Rules = update.Rules
	workflow.IsActive = update.IsActive
	if err := s.workflowRepo.UpdateWorkflow(ctx, workflow); err != nil {
		return nil, err
	}
	return workflow, nil
}

// --- Workflow matching ---

// matchWorkflow picks the first active workflow with at least one level whose
// condition matches the order.
func (s *ApprovalService) matchWorkflow(ctx context.Context, tenantID string, order *models.PurchaseOrder) (*models.ApprovalWorkflow, []models.WorkflowRule, error) {
	workflows, err := s.workflowRepo.ListActiveWorkflows(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	for i := range workflows {
		levels, err := applicableLevels(&workflows[i], order)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"workflowId": workflows[i].ID,
				"error":      err.Error(),
			}).Warn("Skipping workflow with malformed rules")
			continue
		}
		if len(levels) > 0 {
			return &workflows[i], levels, nil
		}
	}
	return nil, nil, ErrNoMatchingWorkflow
}

// applicableLevels returns the workflow levels whose conditions match the
// order, in level order.
func applicableLevels(workflow *models.ApprovalWorkflow, order *models.PurchaseOrder) ([]models.WorkflowRule, error) {
	rules, err := workflow.ParseRules()
	if err != nil {
		return nil, err
	}
	matched := make([]models.WorkflowRule, 0, len(rules))
	for _, rule := range rules {
		if conditionMatches(rule.Condition, order) {
			matched = append(matched, rule)
		}
	}
	return matched, nil
}

// conditionMatches evaluates one condition against the order's attributes.
// Unknown fields or malformed values never match.
func conditionMatches(cond models.RuleCondition, order *models.PurchaseOrder) bool {
	switch cond.Field {
	case models.ConditionFieldAmount:
		threshold, err := toDecimal(cond.Value)
		if err != nil {
			return false
		}
		switch cond.Operator {
		case models.OperatorEquals:
			return order.TotalAmount.Cmp(threshold) == 0
		case models.OperatorGreaterThan:
			return order.TotalAmount.Cmp(threshold) > 0
		case models.OperatorLessThan:
			return order.TotalAmount.Cmp(threshold) < 0
		}
		return false
	case models.ConditionFieldSupplier:
		actual := ""
		if order.SupplierID != nil {
			actual = order.SupplierID.String()
		}
		return stringMatches(cond, actual)
	case models.ConditionFieldDepartment:
		return stringMatches(cond, order.Department)
	case models.ConditionFieldPriority:
		return stringMatches(cond, order.Priority)
	}
	return false
}

func stringMatches(cond models.RuleCondition, actual string) bool {
	switch cond.Operator {
	case models.OperatorEquals:
		expected, ok := cond.Value.(string)
		return ok && strings.EqualFold(expected, actual)
	case models.OperatorIn:
		return valueListContains(cond.Value, actual)
	case models.OperatorNotIn:
		return !valueListContains(cond.Value, actual)
	}
	return false
}

func valueListContains(value interface{}, actual string) bool {
	list, ok := value.([]interface{})
	if !ok {
		return false
	}
	for _, v := range list {
		if s, ok := v.(string); ok && strings.EqualFold(s, actual) {
			return true
		}
	}
	return false
}

// toDecimal converts a JSON-decoded condition value to a decimal amount.
func toDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case string:
		return decimal.NewFromString(v)
	}
	return decimal.Zero, fmt.Errorf("unsupported amount value %v", value)
}

// pendingApprovals builds the pending rows seeded when a level becomes active.
func pendingApprovals(order *models.PurchaseOrder, level models.WorkflowRule) []models.Approval {
	approvals := make([]models.Approval, 0, len(level.Approvers))
	for _, approver := range level.Approvers {
		approvals = append(approvals, models.Approval{
			TenantID:       order.TenantID,
			OrderID:        order.ID,
			Level:          level.Level,
			ApproverUserID: approver,
			Status:         models.ApprovalStatusPending,
		})
	}
	return approvals
}
