package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
)

// Event subjects published by the replenishment engine
const (
	SubjectStockoutAlert    = "sgst.stockout.alert"
	SubjectOrderCreated     = "sgst.replenishment.order_created"
	SubjectApprovalRequired = "sgst.approval.requested"
	SubjectApprovalGranted  = "sgst.approval.granted"
	SubjectApprovalRejected = "sgst.approval.rejected"
	SubjectOrderCancelled   = "sgst.order.cancelled"
)

// Event is the envelope for all published events.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	TenantID  string      `json:"tenantId"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Publisher publishes replenishment and approval events to NATS. Publishing is
// fire-and-forget: downstream consumers (notifications, analytics) must never
// block or fail an order transition.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// NewPublisher connects to NATS and returns a publisher.
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	if logger == nil {
		logger = logrus.New()
	}

	conn, err := nats.Connect(natsURL,
		nats.Name("replenishment-service"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		conn:   conn,
		logger: logger.WithField("component", "events-publisher"),
	}, nil
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		if err := p.conn.Drain(); err != nil {
			p.logger.WithError(err).Warn("Failed to drain NATS connection")
		}
	}
}

// PublishStockoutAlert publishes a stockout.alert event
func (p *Publisher) PublishStockoutAlert(tenantID string, alert *models.StockoutAlert) {
	p.publish(SubjectStockoutAlert, tenantID, alert)
}

// PublishOrderCreated publishes a replenishment.order_created event
func (p *Publisher) PublishOrderCreated(order *models.PurchaseOrder) {
	p.publish(SubjectOrderCreated, order.TenantID, orderPayload(order))
}

// PublishApprovalRequested publishes an approval.requested event
func (p *Publisher) PublishApprovalRequested(order *models.PurchaseOrder) {
	p.publish(SubjectApprovalRequired, order.TenantID, orderPayload(order))
}

// PublishApprovalGranted publishes an approval.granted event
func (p *Publisher) PublishApprovalGranted(order *models.PurchaseOrder, approverID uuid.UUID) {
	payload := orderPayload(order)
	payload["approverId"] = approverID.String()
	p.publish(SubjectApprovalGranted, order.TenantID, payload)
}

// PublishApprovalRejected publishes an approval.rejected event
func (p *Publisher) PublishApprovalRejected(order *models.PurchaseOrder, approverID uuid.UUID, decision string) {
	payload := orderPayload(order)
	payload["approverId"] = approverID.String()
	payload["decision"] = decision
	p.publish(SubjectApprovalRejected, order.TenantID, payload)
}

// PublishOrderCancelled publishes an order.cancelled event
func (p *Publisher) PublishOrderCancelled(order *models.PurchaseOrder) {
	p.publish(SubjectOrderCancelled, order.TenantID, orderPayload(order))
}

func orderPayload(order *models.PurchaseOrder) map[string]interface{} {
	return map[string]interface{}{
		"orderId":     order.ID.String(),
		"orderNumber": order.OrderNumber,
		"warehouseId": order.WarehouseID.String(),
		"status":      order.Status,
		"priority":    order.Priority,
		"totalAmount": order.TotalAmount,
		"currency":    order.CurrencyCode,
	}
}

// publish serializes and sends the event asynchronously.
func (p *Publisher) publish(subject, tenantID string, data interface{}) {
	event := Event{
		ID:        uuid.New().String(),
		Type:      subject,
		TenantID:  tenantID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	}

	go func() {
		payload, err := json.Marshal(event)
		if err != nil {
			p.logger.WithError(err).WithField("subject", subject).Error("Failed to marshal event")
			return
		}
		if err := p.conn.Publish(subject, payload); err != nil {
			p.logger.WithError(err).WithField("subject", subject).Error("Failed to publish event")
			return
		}
		p.logger.WithFields(logrus.Fields{
			"subject":  subject,
			"tenantId": tenantID,
		}).Debug("Event published")
	}()
}
