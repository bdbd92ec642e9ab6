// Package legacy mirrors orders into the MongoDB database read by the shop's
// older back-office tools. Legacy order ids come from a counters collection.
package legacy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/delivery"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CountersCollection  = "counters"
	CustomersCollection = "customers"
	OrdersCollection    = "orders"

	orderSequence = "orders"
	platform      = "ORDERFLOW"
)

type counter struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

type legacyAddress struct {
	Address  string  `bson:"address"`
	Postcode string  `bson:"postcode"`
	Lat      float64 `bson:"lat,omitempty"`
	Lng      float64 `bson:"lng,omitempty"`
	Name     string  `bson:"name,omitempty"`
	Phone    string  `bson:"phone,omitempty"`
	Notes    string  `bson:"dir,omitempty"`
}

type legacyBasketLine struct {
	ProductID string `bson:"productId"`
	Name      string `bson:"name,omitempty"`
	Amount    int    `bson:"amount"`
	Price     string `bson:"price"`
}

// LegacyOrder is the document shape the back-office tools expect. Money is
// stored as fixed two-decimal strings.
type LegacyOrder struct {
	ID           int64              `bson:"_id"`
	Shop         string             `bson:"shop"`
	Status       string             `bson:"status"`
	OldStatus    string             `bson:"oldStatus"`
	CustomerID   string             `bson:"customerId"`
	Address      *legacyAddress     `bson:"address,omitempty"`
	DeliveryTime *time.Time         `bson:"deliveryTime,omitempty"`
	ScheduledFor string             `bson:"scheduledFor,omitempty"`
	Subtotal     string             `bson:"subtotal"`
	DeliveryFee  string             `bson:"deliveryFee"`
	Total        string             `bson:"total"`
	Platform     string             `bson:"platform"`
	PaymentID    string             `bson:"paymentId,omitempty"`
	GophrID      string             `bson:"gophrId,omitempty"`
	DeliveryID   string             `bson:"deliveryId,omitempty"`
	Courier      string             `bson:"courier,omitempty"`
	Comment      string             `bson:"comment"`
	Basket       []legacyBasketLine `bson:"basket"`
	CreatedAt    time.Time          `bson:"createdAt"`
	LastModified time.Time          `bson:"lastModified"`
}

// MongoMirror implements ports.LegacyMirror.
type MongoMirror struct {
	db     *mongo.Database
	shopID string
	now    func() time.Time
}

func NewMongoMirror(db *mongo.Database, shopID string) *MongoMirror {
	if shopID == "" {
		shopID = "1"
	}
	return &MongoMirror{db: db, shopID: shopID, now: time.Now}
}

// Mirror upserts the customer, takes the next legacy id and inserts the order.
func (m *MongoMirror) Mirror(ctx context.Context, s ports.LegacyOrderSnapshot) (int64, error) {
	if s.OrderID <= 0 {
		return 0, errs.NewValueIsRequiredError("order id")
	}

	now := m.now().UTC()
	customerID, err := m.upsertCustomer(ctx, s, now)
	if err != nil {
		return 0, err
	}

	id, err := m.nextSequence(ctx, orderSequence)
	if err != nil {
		return 0, err
	}

	doc := LegacyOrder{
		ID:           id,
		Shop:         m.shopID,
		Status:       "1",
		OldStatus:    "0",
		CustomerID:   customerID,
		ScheduledFor: s.Delivery.ScheduledFor,
		DeliveryTime: s.Delivery.PickupTime,
		Subtotal:     s.Subtotal.StringFixed(2),
		DeliveryFee:  s.DeliveryFee.StringFixed(2),
		Total:        s.Total.StringFixed(2),
		Platform:     platform,
		PaymentID:    s.PaymentIntentID,
		Comment:      fmt.Sprintf("%s#%d", platform, s.OrderID),
		Basket:       make([]legacyBasketLine, 0, len(s.Basket)),
		CreatedAt:    s.PlacedAt.UTC(),
		LastModified: now,
	}
	if s.Delivery.Address != "" || s.Delivery.Postcode != "" {
		doc.Address = &legacyAddress{
			Address:  s.Delivery.Address,
			Postcode: s.Delivery.Postcode,
			Lat:      s.Delivery.Lat,
			Lng:      s.Delivery.Lng,
			Name:     firstNonEmpty(s.Delivery.RecipientName, s.Name),
			Phone:    firstNonEmpty(s.Delivery.RecipientPhone, s.Phone),
			Notes:    s.Delivery.Notes,
		}
	}
	for _, line := range s.Basket {
		doc.Basket = append(doc.Basket, legacyBasketLine{
			ProductID: line.ProductID,
			Name:      line.Name,
			Amount:    line.Quantity,
			Price:     line.UnitPrice.StringFixed(2),
		})
	}

	if _, err = m.db.Collection(OrdersCollection).InsertOne(ctx, doc); err != nil {
		return 0, fmt.Errorf("insert legacy order: %w", err)
	}
	return id, nil
}

// UpdateCourierIDs attaches the courier job. Gophr jobs are also written to
// the gophrId field the dispatch screen reads.
func (m *MongoMirror) UpdateCourierIDs(ctx context.Context, legacyOrderID int64, result delivery.JobResult) error {
	if legacyOrderID <= 0 {
		return errs.NewValueIsRequiredError("legacy order id")
	}
	if result.DeliveryID == "" {
		return errs.NewValueIsRequiredError("delivery id")
	}

	provider := strings.ToLower(result.Provider)
	set := bson.M{
		"deliveryId":   result.DeliveryID,
		"courier":      provider,
		"lastModified": m.now().UTC(),
	}
	if provider == "gophr" {
		set["gophrId"] = result.DeliveryID
	}

	res, err := m.db.Collection(OrdersCollection).UpdateOne(ctx, bson.M{"_id": legacyOrderID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update legacy courier ids: %w", err)
	}
	if res.MatchedCount == 0 {
		return errs.NewObjectNotFoundError("legacy order", legacyOrderID)
	}
	return nil
}

func (m *MongoMirror) nextSequence(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var c counter
	err := m.db.Collection(CountersCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).
		Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", name, err)
	}
	return c.Seq, nil
}

// upsertCustomer keys customers by UUID. Name and phone are only filled in
// when the stored document has none.
func (m *MongoMirror) upsertCustomer(ctx context.Context, s ports.LegacyOrderSnapshot, now time.Time) (string, error) {
	if s.CustomerUUID == "" {
		return "", errs.NewValueIsRequiredError("customer uuid")
	}

	name := firstNonEmpty(s.Name, "Customer")
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"email":        bson.M{"$ifNull": bson.A{nonEmptyOrNil(s.Email), "$email"}},
			"name":         bson.M{"$ifNull": bson.A{"$name", name}},
			"phone":        bson.M{"$ifNull": bson.A{"$phone", nonEmptyOrNil(s.Phone)}},
			"lastModified": now,
			"createdAt":    bson.M{"$ifNull": bson.A{"$createdAt", now}},
		}}},
	}

	_, err := m.db.Collection(CustomersCollection).UpdateOne(ctx,
		bson.M{"_id": s.CustomerUUID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return "", fmt.Errorf("upsert legacy customer: %w", err)
	}
	return s.CustomerUUID, nil
}

// FindOrder loads a mirrored order. Used by reconciliation tooling and tests.
func (m *MongoMirror) FindOrder(ctx context.Context, legacyOrderID int64) (LegacyOrder, error) {
	var doc LegacyOrder
	err := m.db.Collection(OrdersCollection).FindOne(ctx, bson.M{"_id": legacyOrderID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return LegacyOrder{}, errs.NewObjectNotFoundError("legacy order", legacyOrderID)
	}
	if err != nil {
		return LegacyOrder{}, err
	}
	return doc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonEmptyOrNil(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
