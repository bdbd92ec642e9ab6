package orderrepo

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository. db may be a transaction.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add inserts a new order and assigns the generated id to the aggregate.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	dto.ID = 0

	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	return aggregate.AssignID(dto.ID)
}

// Update writes the metadata document and the delivery id column. The status
// column belongs to the status repository and is left alone.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if aggregate.ID() <= 0 {
		return errs.NewValueIsRequiredError("order id")
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Updates(map[string]any{
			"metadata":    dto.Metadata,
			"delivery_id": dto.DeliveryID,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", dto.ID)
	}

	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	if id <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("order id", id, 1, "max int64")
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id)
		}
		return nil, err
	}

	return toDomain(dto)
}

// claimAwaitingDispatchSQL flips the selected rows to the claimed state in one
// statement. SKIP LOCKED keeps concurrent sweeps from claiming the same row.
const claimAwaitingDispatchSQL = `
WITH claimed AS (
	UPDATE orders
	SET metadata = jsonb_set(
		jsonb_set(metadata, '{dispatch,status}', to_jsonb(?::text)),
		'{dispatch,updatedAt}', to_jsonb(?::text))
	WHERE id IN (
		SELECT id FROM orders
		WHERE metadata->'dispatch'->>'provider' = ?
		  AND metadata->'dispatch'->>'status' = ?
		  AND (metadata->'delivery'->>'isDelivery')::boolean IS TRUE
		  AND COALESCE(metadata->'delivery'->>'address', '') <> ''
		  AND COALESCE((metadata->'dispatch'->>'attempts')::int, 0) >= 1
		  AND COALESCE((metadata->'dispatch'->>'attempts')::int, 0) < ?
		  AND COALESCE((metadata->'dispatch'->>'updatedAt')::timestamptz, '-infinity') < ?
		ORDER BY id
		LIMIT ?
		FOR UPDATE SKIP LOCKED)
	RETURNING *)
SELECT * FROM claimed ORDER BY id`

// ClaimAwaitingDispatch claims delivery orders whose courier booking failed
// earlier and has been idle since claim.IdleSince.
func (r *GormOrderRepository) ClaimAwaitingDispatch(ctx context.Context, claim ports.DispatchClaim) ([]*order.Order, error) {
	if claim.MaxAttempts <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("max attempts", claim.MaxAttempts, 1, "max int")
	}
	if claim.Limit <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("limit", claim.Limit, 1, "max int")
	}
	if claim.ClaimedAt.IsZero() {
		return nil, errs.NewValueIsRequiredError("claimed at")
	}

	var dtos []OrderDTO
	err := r.db.WithContext(ctx).Raw(claimAwaitingDispatchSQL,
		order.DispatchClaimed,
		claim.ClaimedAt.UTC().Format(time.RFC3339Nano),
		order.ProviderPending,
		order.DispatchPending,
		claim.MaxAttempts,
		claim.IdleSince.UTC(),
		claim.Limit,
	).Scan(&dtos).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}
