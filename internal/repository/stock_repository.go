package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
)

// Cache TTL constants
const (
	stockLevelCacheTTL = 5 * time.Minute // Stock levels change on every movement and receipt
	stockListCacheTTL  = 2 * time.Minute
)

// StockRepository exposes the inventory snapshot and demand history surfaces.
// Reads go through Redis when a client is configured; the repository degrades
// to plain database reads without one.
type StockRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewStockRepository creates a new StockRepository
func NewStockRepository(db *gorm.DB, redisClient *redis.Client) *StockRepository {
	return &StockRepository{db: db, redis: redisClient}
}

// withTx binds the repository to an in-flight transaction. Movements booked
// through it become visible only when that transaction commits; the nested
// transaction in RecordMovement degrades to a savepoint.
func (r *StockRepository) withTx(tx *gorm.DB) *StockRepository {
	return &StockRepository{db: tx, redis: r.redis}
}

func stockCacheKey(tenantID string, productID, warehouseID uuid.UUID) string {
	return fmt.Sprintf("sgst:stock:%s:%s:%s", tenantID, productID.String(), warehouseID.String())
}

func stockListCacheKey(tenantID string, warehouseID *uuid.UUID, limit, offset int) string {
	whID := "all"
	if warehouseID != nil {
		whID = warehouseID.String()
	}
	return fmt.Sprintf("sgst:stock:list:%s:%s:%d:%d", tenantID, whID, limit, offset)
}

// invalidateStockCaches drops the cached snapshot and list entries for a pair
func (r *StockRepository) invalidateStockCaches(ctx context.Context, tenantID string, productID, warehouseID uuid.UUID) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Del(ctx, stockCacheKey(tenantID, productID, warehouseID)).Err()

	iter := r.redis.Scan(ctx, 0, fmt.Sprintf("sgst:stock:list:%s:*", tenantID), 100).Iterator()
	for iter.Next(ctx) {
		_ = r.redis.Del(ctx, iter.Val()).Err()
	}
}

// GetStockLevel retrieves the current snapshot for a (product, warehouse) pair
func (r *StockRepository) GetStockLevel(ctx context.Context, tenantID string, productID, warehouseID uuid.UUID) (*models.StockLevel, error) {
	cacheKey := stockCacheKey(tenantID, productID, warehouseID)

	if r.redis != nil {
		if cached, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
			var level models.StockLevel
			if err := json.Unmarshal([]byte(cached), &level); err == nil {
				return &level, nil
			}
		}
	}

	var level models.StockLevel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ?", tenantID, productID, warehouseID).
		First(&level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(&level); err == nil {
			_ = r.redis.Set(ctx, cacheKey, data, stockLevelCacheTTL).Err()
		}
	}
	return &level, nil
}

// ListStockLevels retrieves snapshots for a tenant, optionally scoped to a warehouse
func (r *StockRepository) ListStockLevels(ctx context.Context, tenantID string, warehouseID *uuid.UUID, limit, offset int) ([]models.StockLevel, int64, error) {
	cacheKey := stockListCacheKey(tenantID, warehouseID, limit, offset)

	type cachedList struct {
		Levels []models.StockLevel `json:"levels"`
		Total  int64               `json:"total"`
	}

	if r.redis != nil {
		if cached, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
			var entry cachedList
			if err := json.Unmarshal([]byte(cached), &entry); err == nil {
				return entry.Levels, entry.Total, nil
			}
		}
	}

	var levels []models.StockLevel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.StockLevel{}).
		Where("tenant_id = ?", tenantID)
	if warehouseID != nil {
		query = query.Where("warehouse_id = ?", *warehouseID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&levels).Error; err != nil {
		return nil, 0, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(cachedList{Levels: levels, Total: total}); err == nil {
			_ = r.redis.Set(ctx, cacheKey, data, stockListCacheTTL).Err()
		}
	}
	return levels, total, nil
}

// RecordMovement applies an inventory movement atomically: it appends the
// movement row, adjusts the snapshot, and invalidates the cached entries.
func (r *StockRepository) RecordMovement(ctx context.Context, movement *models.StockMovement) error {
	if movement.Quantity <= 0 {
		return fmt.Errorf("movement quantity must be positive")
	}

	delta := movement.Quantity
	if movement.Direction == models.MovementOutbound {
		delta = -delta
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(movement).Error; err != nil {
			return err
		}

		var level models.StockLevel
		err := tx.Where("tenant_id = ? AND product_id = ? AND warehouse_id = ?",
			movement.TenantID, movement.ProductID, movement.WarehouseID).
			First(&level).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			level = models.StockLevel{
				TenantID:    movement.TenantID,
				ProductID:   movement.ProductID,
				WarehouseID: movement.WarehouseID,
			}
			if err := tx.Create(&level).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"quantity_on_hand":   gorm.Expr("quantity_on_hand + ?", delta),
			"quantity_available": gorm.Expr("quantity_available + ?", delta),
			"updated_at":         time.Now(),
		}
		if movement.Direction == models.MovementInbound {
			updates["last_restocked_at"] = time.Now()
		}
		return tx.Model(&models.StockLevel{}).
			Where("id = ?", level.ID).
			Updates(updates).Error
	})
	if err != nil {
		return err
	}

	r.invalidateStockCaches(ctx, movement.TenantID, movement.ProductID, movement.WarehouseID)
	return nil
}

// GetDailyDemand aggregates outbound movements into the per-day demand series
// consumed by the forecaster. Days without movements are absent from the result.
func (r *StockRepository) GetDailyDemand(ctx context.Context, tenantID string, productID, warehouseID uuid.UUID, since time.Time) ([]models.DailyDemand, error) {
	var rows []models.DailyDemand
	err := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Select("DATE(occurred_at) AS day, SUM(quantity) AS quantity").
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ? AND direction = ?",
			tenantID, productID, warehouseID, models.MovementOutbound).
		Where("occurred_at >= ?", since).
		Group("DATE(occurred_at)").
		Order("day ASC").
		Scan(&rows).Error
	return rows, err
}

// RedisHealth reports the health of the Redis connection
func (r *StockRepository) RedisHealth(ctx context.Context) error {
	if r.redis == nil {
		return fmt.Errorf("redis not configured")
	}
	return r.redis.Ping(ctx).Err()
}
