package procurement

import (
	"github.com/google/uuid"

	"github.com/sparesuite/backend/internal/domain/shared"
)

// Supplier is referenced by purchase orders for enrichment in reports.
// Orders denormalize the name/category at creation time; the entity itself
// is owned elsewhere and only read here.
type Supplier struct {
	shared.TenantAggregateRoot
	Name     string `gorm:"type:varchar(200);not null"`
	Category string `gorm:"type:varchar(100);index"`
	Contact  string `gorm:"type:varchar(200)"`
	Email    string `gorm:"type:varchar(200)"`
	Active   bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier
func NewSupplier(tenantID uuid.UUID, name, category string) (*Supplier, error) {
	if name == "" {
		return nil, shared.NewInvalidArgument("Supplier name cannot be empty")
	}
	return &Supplier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Category:            category,
		Active:              true,
	}, nil
}
