package models

import (
	"time"

	"github.com/google/uuid"
)

// StockLevel is the current inventory snapshot for a (product, warehouse) pair.
type StockLevel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID    string    `gorm:"type:varchar(255);not null;index" json:"tenantId"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_pair" json:"productId"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_pair" json:"warehouseId"`

	QuantityOnHand    int `gorm:"not null;default:0" json:"quantityOnHand"`
	QuantityReserved  int `gorm:"not null;default:0" json:"quantityReserved"`
	QuantityAvailable int `gorm:"not null;default:0" json:"quantityAvailable"`

	LastRestockedAt *time.Time `json:"lastRestockedAt,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for StockLevel
func (StockLevel) TableName() string {
	return "stock_levels"
}

// Stock movement directions
const (
	MovementInbound  = "inbound"
	MovementOutbound = "outbound"
)

// StockMovement is a dated inventory movement. Daily outbound totals form the
// historical demand series consumed by the forecaster.
type StockMovement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID    string    `gorm:"type:varchar(255);not null;index" json:"tenantId"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index:idx_movement_pair" json:"productId"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;index:idx_movement_pair" json:"warehouseId"`

	Direction  string    `gorm:"type:varchar(10);not null" json:"direction"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	Reference  string    `gorm:"type:varchar(100)" json:"reference,omitempty"`
	OccurredAt time.Time `gorm:"not null;index" json:"occurredAt"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName returns the table name for StockMovement
func (StockMovement) TableName() string {
	return "stock_movements"
}

// DailyDemand is one aggregated day of outbound demand.
type DailyDemand struct {
	Day      time.Time `json:"day"`
	Quantity float64   `json:"quantity"`
}
