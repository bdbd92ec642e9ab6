// Package idempotency keeps the submission ledger in DynamoDB. One item per
// Idempotency-Key, claimed with a conditional put.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

const DefaultTTL = 48 * time.Hour

// DynamoDBAPI is the part of the DynamoDB client used here. *dynamodb.Client satisfies it.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type record struct {
	Key       string `dynamodbav:"idempotency_key"`
	State     string `dynamodbav:"state"`
	Response  []byte `dynamodbav:"response_body,omitempty"`
	CreatedAt int64  `dynamodbav:"created_at"`
	UpdatedAt int64  `dynamodbav:"updated_at"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
}

// DynamoLedger implements ports.SubmissionLedger. Items expire through the
// table's TTL attribute expires_at.
type DynamoLedger struct {
	client DynamoDBAPI
	table  string
	ttl    time.Duration
	now    func() time.Time
}

func NewDynamoLedger(client DynamoDBAPI, table string, ttl time.Duration) (*DynamoLedger, error) {
	if client == nil {
		return nil, errs.NewValueIsRequiredError("dynamodb client")
	}
	if table == "" {
		return nil, errs.NewValueIsRequiredError("idempotency table")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &DynamoLedger{client: client, table: table, ttl: ttl, now: time.Now}, nil
}

// WithClock replaces the time source.
func (l *DynamoLedger) WithClock(now func() time.Time) *DynamoLedger {
	l.now = now
	return l
}

func (l *DynamoLedger) keyAttr(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"idempotency_key": &types.AttributeValueMemberS{Value: key},
	}
}

func (l *DynamoLedger) Reserve(ctx context.Context, key string) (*ports.LedgerEntry, error) {
	if key == "" {
		return nil, errs.NewValueIsRequiredError("idempotency key")
	}

	now := l.now()
	item, err := attributevalue.MarshalMap(record{
		Key:       key,
		State:     ports.LedgerInProgress,
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
		ExpiresAt: now.Add(l.ttl).Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal ledger entry: %w", err)
	}

	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(l.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(idempotency_key)"),
	})
	if err == nil {
		return nil, nil
	}
	if !isConditionFailed(err) {
		return nil, fmt.Errorf("reserve idempotency key: %w", err)
	}

	return l.get(ctx, key)
}

func (l *DynamoLedger) get(ctx context.Context, key string) (*ports.LedgerEntry, error) {
	out, err := l.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(l.table),
		Key:            l.keyAttr(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}
	// Released between our put and get. Report it as in flight; the client retries.
	if len(out.Item) == 0 {
		return &ports.LedgerEntry{Key: key, State: ports.LedgerInProgress}, nil
	}

	var rec record
	if err = attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal ledger entry: %w", err)
	}
	return &ports.LedgerEntry{Key: rec.Key, State: rec.State, Response: rec.Response}, nil
}

func (l *DynamoLedger) Complete(ctx context.Context, key string, response []byte) error {
	if key == "" {
		return errs.NewValueIsRequiredError("idempotency key")
	}

	_, err := l.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(l.table),
		Key:              l.keyAttr(key),
		UpdateExpression: aws.String("SET #state = :completed, response_body = :body, updated_at = :now"),
		ExpressionAttributeNames: map[string]string{
			"#state": "state",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":completed": &types.AttributeValueMemberS{Value: ports.LedgerCompleted},
			":body":      &types.AttributeValueMemberB{Value: response},
			":now":       &types.AttributeValueMemberN{Value: fmt.Sprint(l.now().Unix())},
		},
	})
	if err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

// Release deletes the entry unless it already completed.
func (l *DynamoLedger) Release(ctx context.Context, key string) error {
	if key == "" {
		return errs.NewValueIsRequiredError("idempotency key")
	}

	_, err := l.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(l.table),
		Key:                 l.keyAttr(key),
		ConditionExpression: aws.String("#state = :inProgress"),
		ExpressionAttributeNames: map[string]string{
			"#state": "state",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":inProgress": &types.AttributeValueMemberS{Value: ports.LedgerInProgress},
		},
	})
	if err != nil && !isConditionFailed(err) {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

func isConditionFailed(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}
