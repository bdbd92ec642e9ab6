// Package orderrepo persists order aggregates in the orders table. The typed
// metadata document is stored as jsonb and migrated to the current version on read.
package orderrepo

import (
	"encoding/json"
	"time"

	"orderflow/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderDTO represents the database structure for persisting order aggregates.
// DeliveryID duplicates the courier job id from the metadata document so status
// webhooks can match on an indexed column.
type OrderDTO struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	CustomerID  int64           `gorm:"index;not null"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DeliveryFee decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status      *int            `gorm:"default:0"`
	DeliveryID  *string         `gorm:"index"`
	Metadata    datatypes.JSON  `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

func fromDomain(o *order.Order) (OrderDTO, error) {
	raw, err := json.Marshal(o.Metadata())
	if err != nil {
		return OrderDTO{}, err
	}

	status := int(o.Status())
	return OrderDTO{
		ID:          o.ID(),
		CustomerID:  o.CustomerID(),
		Total:       o.Total(),
		Subtotal:    o.Subtotal(),
		DeliveryFee: o.DeliveryFee(),
		Status:      &status,
		DeliveryID:  deliveryColumn(o),
		Metadata:    datatypes.JSON(raw),
		CreatedAt:   o.CreatedAt(),
	}, nil
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	md, err := decodeMetadata(dto.Metadata)
	if err != nil {
		return nil, err
	}

	status := order.StatusReceived
	if dto.Status != nil {
		status = order.StatusCode(*dto.Status)
	}

	return order.RestoreOrder(
		dto.ID,
		dto.CustomerID,
		dto.Total,
		dto.Subtotal,
		dto.DeliveryFee,
		status,
		md,
		dto.CreatedAt,
	)
}

func deliveryColumn(o *order.Order) *string {
	if !o.HasDelivery() {
		return nil
	}
	id := o.DeliveryID()
	return &id
}
