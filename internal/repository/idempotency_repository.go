package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// IdempotencyRepository maps client-supplied checkout keys to the order they
// produced. Records carry an expires_at attribute consumed by DynamoDB TTL,
// so retention is enforced by the store, not by application polling.
type IdempotencyRepository struct {
	client    *dynamodb.Client
	tableName string
	retention time.Duration
}

func NewIdempotencyRepository(client *dynamodb.Client, tableName string, retention time.Duration) *IdempotencyRepository {
	return &IdempotencyRepository{
		client:    client,
		tableName: tableName,
		retention: retention,
	}
}

func idempotencyKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("IDEM#%s", key)},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

func (r *IdempotencyRepository) Lookup(ctx context.Context, key string) (string, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            idempotencyKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get idempotency record: %w", err)
	}
	if len(out.Item) == 0 {
		return "", ErrNotFound
	}

	// TTL deletion is lazy; an expired record may still be returned for a
	// while, so filter it here as well.
	if attr, ok := out.Item["expires_at"].(*types.AttributeValueMemberN); ok {
		expiresAt, err := strconv.ParseInt(attr.Value, 10, 64)
		if err == nil && time.Now().Unix() >= expiresAt {
			return "", ErrNotFound
		}
	}

	attr, ok := out.Item["order_id"].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("idempotency record for key %q has no order id", key)
	}
	return attr.Value, nil
}

// Store records the key -> order mapping. If a concurrent checkout already
// stored a record for the same key, the first writer wins and this write is
// silently dropped.
func (r *IdempotencyRepository) Store(ctx context.Context, key, orderID string) error {
	now := time.Now().UTC()
	item := idempotencyKey(key)
	item["order_id"] = &types.AttributeValueMemberS{Value: orderID}
	item["created_at"] = &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)}
	item["expires_at"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(r.retention).Unix(), 10)}

	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil
		}
		return fmt.Errorf("failed to put idempotency record: %w", err)
	}
	return nil
}
