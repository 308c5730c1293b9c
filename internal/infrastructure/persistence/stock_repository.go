package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SpareStock is the on-hand quantity of one spare part per tenant. Rows
// are created on first receipt and only ever incremented here; issue and
// adjustment flows live outside this service.
type SpareStock struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_tenant_item"`
	ItemName  string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_stock_tenant_item"`
	Category  string          `gorm:"type:varchar(100);not null"`
	Unit      string          `gorm:"type:varchar(20);not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UpdatedAt time.Time       `gorm:"not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SpareStock) TableName() string {
	return "spare_stocks"
}

// GormStockRepository posts received order quantities into stock. It
// implements the application layer's StockUpdater.
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// IncreaseStock adds quantity to the tenant's stock row for the item,
// creating the row on first receipt
func (r *GormStockRepository) IncreaseStock(ctx context.Context, tenantID uuid.UUID, itemName, category, unit string, quantity decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stock SpareStock
		err := tx.Where("tenant_id = ? AND item_name = ?", tenantID, itemName).
			First(&stock).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			now := time.Now().UTC()
			return tx.Create(&SpareStock{
				ID:        uuid.New(),
				TenantID:  tenantID,
				ItemName:  itemName,
				Category:  category,
				Unit:      unit,
				Quantity:  quantity,
				CreatedAt: now,
				UpdatedAt: now,
			}).Error
		}
		if err != nil {
			return err
		}

		stock.Quantity = stock.Quantity.Add(quantity)
		stock.UpdatedAt = time.Now().UTC()
		return tx.Save(&stock).Error
	})
}
