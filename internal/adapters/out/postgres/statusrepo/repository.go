// Package statusrepo is the persistence gateway for delivery status codes on the
// orders table. Orders are addressed either by id or by courier delivery id.
package statusrepo

import (
	"context"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
)

const ordersTable = "orders"

// deliveryIDMatch covers the indexed column, the current metadata document and
// unmigrated version-0 documents.
const deliveryIDMatch = "(delivery_id = ? OR metadata->'dispatch'->>'id' = ? OR metadata->'delivery'->>'id' = ?)"

// pushTokenExpr reads the device token from current and version-0 documents.
const pushTokenExpr = `COALESCE(
	NULLIF(metadata->'notifications'->>'pushToken', ''),
	NULLIF(metadata->'push'->>'fcmToken', ''),
	NULLIF(metadata->'notifications'->>'fcmToken', ''),
	'')`

// GormStatusRepository implements ports.StatusRepository using GORM.
type GormStatusRepository struct {
	db *gorm.DB
}

func NewGormStatusRepository(db *gorm.DB) *GormStatusRepository {
	return &GormStatusRepository{db: db}
}

// UpdateStatus writes code with a compare-and-swap predicate. Without correction
// only a higher code is written; with correction any different code is.
func (r *GormStatusRepository) UpdateStatus(
	ctx context.Context,
	ref ports.OrderRef,
	code order.StatusCode,
	correction bool,
) (int64, error) {
	if !code.IsRecognized() {
		return 0, errs.NewValueIsInvalidError("status code")
	}

	q, err := r.scoped(ctx, ref)
	if err != nil {
		return 0, err
	}

	if correction {
		q = q.Where("status IS DISTINCT FROM ?", int(code))
	} else {
		q = q.Where("(status IS NULL OR status < ?)", int(code))
	}

	result := q.UpdateColumn("status", int(code))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

type pushRow struct {
	ID     int64
	Token  string
	Status int
}

// ResolvePushTarget finds the order for ref, its stored device token and status.
// The token is empty when the customer did not register a device; a NULL status
// reads as received.
func (r *GormStatusRepository) ResolvePushTarget(ctx context.Context, ref ports.OrderRef) (ports.PushTarget, error) {
	q, err := r.scoped(ctx, ref)
	if err != nil {
		return ports.PushTarget{}, err
	}

	var row pushRow
	result := q.Select("id, " + pushTokenExpr + " AS token, COALESCE(status, 0) AS status").Order("id").Limit(1).Scan(&row)
	if result.Error != nil {
		return ports.PushTarget{}, result.Error
	}
	if result.RowsAffected == 0 {
		return ports.PushTarget{}, errs.NewObjectNotFoundError("order", refLabel(ref))
	}

	return ports.PushTarget{OrderID: row.ID, Token: row.Token, Status: order.StatusCode(row.Status)}, nil
}

func (r *GormStatusRepository) scoped(ctx context.Context, ref ports.OrderRef) (*gorm.DB, error) {
	q := r.db.WithContext(ctx).Table(ordersTable)
	switch {
	case ref.ByOrderID():
		return q.Where("id = ?", ref.OrderID), nil
	case ref.DeliveryID != "":
		return q.Where(deliveryIDMatch, ref.DeliveryID, ref.DeliveryID, ref.DeliveryID), nil
	default:
		return nil, errs.NewValueIsRequiredError("order id or delivery id")
	}
}

func refLabel(ref ports.OrderRef) any {
	if ref.ByOrderID() {
		return ref.OrderID
	}
	return ref.DeliveryID
}
