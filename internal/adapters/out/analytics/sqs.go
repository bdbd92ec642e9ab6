package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"orderflow/internal/core/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSAPI is the part of the SQS client used here. *sqs.Client satisfies it.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// OrderEvent is the message body published for every stored order.
type OrderEvent struct {
	Type          string      `json:"type"`
	OrderID       int64       `json:"orderId"`
	CustomerUUID  string      `json:"customerUuid"`
	CorrelationID string      `json:"correlationId,omitempty"`
	Currency      string      `json:"currency"`
	Total         string      `json:"total"`
	DeliveryFee   string      `json:"deliveryFee"`
	Items         []OrderItem `json:"items"`
	OccurredAt    time.Time   `json:"occurredAt"`
}

type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
}

// SQSPublisher publishes purchase events to the order events queue.
type SQSPublisher struct {
	client   SQSAPI
	queueURL string
}

func NewSQSPublisher(client SQSAPI, queueURL string) (*SQSPublisher, error) {
	if client == nil || queueURL == "" {
		return nil, errors.New("sqs: client and queue url are required")
	}
	return &SQSPublisher{client: client, queueURL: queueURL}, nil
}

func (p *SQSPublisher) TrackPurchase(ctx context.Context, e ports.PurchaseEvent) error {
	msg := OrderEvent{
		Type:          "order.purchased",
		OrderID:       e.OrderID,
		CustomerUUID:  e.ClientID,
		CorrelationID: e.CorrelationID,
		Currency:      e.Currency,
		Total:         e.Value.StringFixed(2),
		DeliveryFee:   e.Shipping.StringFixed(2),
		Items:         make([]OrderItem, 0, len(e.Items)),
		OccurredAt:    e.OccurredAt.UTC(),
	}
	for _, line := range e.Items {
		msg.Items = append(msg.Items, OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.StringFixed(2),
		})
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("sqs: encode: %w", err)
	}

	attrs := map[string]sqstypes.MessageAttributeValue{
		"eventType": {DataType: aws.String("String"), StringValue: aws.String(msg.Type)},
		"orderId":   {DataType: aws.String("Number"), StringValue: aws.String(strconv.FormatInt(e.OrderID, 10))},
	}
	if e.CorrelationID != "" {
		attrs["correlationId"] = sqstypes.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(e.CorrelationID)}
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("sqs: send message: %w", err)
	}
	return nil
}
