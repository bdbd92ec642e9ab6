package queries

import (
	"context"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetOrderDeliveryQueryHandler reads the delivery columns and the dispatch part of
// the metadata document straight from the orders table.
//
// Example:
//
//	handler := NewGetOrderDeliveryQueryHandler(db)
//	query, _ := NewGetOrderDeliveryQuery(42)
//
//	view, err := handler.Handle(ctx, query)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    // 404
//	}
//	fmt.Printf("%s job %s is %s\n", view.Provider, view.DeliveryID, view.Status)
type GetOrderDeliveryQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderDeliveryQueryHandler(db *gorm.DB) GetOrderDeliveryQueryHandler {
	return GetOrderDeliveryQueryHandler{db: db}
}

func (h GetOrderDeliveryQueryHandler) Handle(
	ctx context.Context,
	query GetOrderDeliveryQuery,
) (GetOrderDeliveryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderDeliveryQueryResponse{}, err
	}

	var row struct {
		ID               int64
		Status           int
		Provider         string
		DeliveryID       string
		DispatchStatus   string
		DispatchAttempts int
		LastError        string
	}

	result := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			COALESCE(status, 0) AS status,
			COALESCE(NULLIF(metadata->'dispatch'->>'provider', ''), ?) AS provider,
			COALESCE(delivery_id, metadata->'dispatch'->>'id', '') AS delivery_id,
			COALESCE(metadata->'dispatch'->>'status', '') AS dispatch_status,
			COALESCE((metadata->'dispatch'->>'attempts')::int, 0) AS dispatch_attempts,
			COALESCE(metadata->'dispatch'->>'lastError', '') AS last_error
		FROM orders
		WHERE id = ?
	`, order.ProviderPending, query.OrderID()).Scan(&row)
	if result.Error != nil {
		return GetOrderDeliveryQueryResponse{}, result.Error
	}
	if result.RowsAffected == 0 {
		return GetOrderDeliveryQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID())
	}

	return GetOrderDeliveryQueryResponse{
		OrderID:          row.ID,
		StatusCode:       row.Status,
		Status:           order.StatusCode(row.Status).String(),
		Provider:         row.Provider,
		DeliveryID:       row.DeliveryID,
		DispatchStatus:   row.DispatchStatus,
		DispatchAttempts: row.DispatchAttempts,
		LastError:        row.LastError,
	}, nil
}
