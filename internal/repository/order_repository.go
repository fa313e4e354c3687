package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/domain"
	"github.com/google/uuid"
)

const customerIndex = "GSI1"

type OrderRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewOrderRepository(client *dynamodb.Client, tableName string) *OrderRepository {
	return &OrderRepository{
		client:    client,
		tableName: tableName,
	}
}

func orderKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("ORDER#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

func (r *OrderRepository) marshalOrder(order *domain.Order) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(order)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}
	for k, v := range orderKey(order.OrderID) {
		av[k] = v
	}
	av["GSI1PK"] = &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", order.CustomerID)}
	av["GSI1SK"] = &types.AttributeValueMemberS{Value: fmt.Sprintf("ORDER#%s", order.CreatedAt.Format(time.RFC3339))}
	return av, nil
}

// Create persists a new order and assigns its identifier. The conditional
// put guards against identifier collisions.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order.OrderID == "" {
		order.OrderID = uuid.New().String()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	av, err := r.marshalOrder(order)
	if err != nil {
		return nil, err
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put order: %w", err)
	}
	return order, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            orderKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var order domain.Order
	if err := attributevalue.UnmarshalMap(out.Item, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}
	return &order, nil
}

// FindAll lists orders, optionally restricted to one customer via the GSI.
func (r *OrderRepository) FindAll(ctx context.Context, customerID string) ([]domain.Order, error) {
	var items []map[string]types.AttributeValue

	if customerID != "" {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(customerIndex),
			KeyConditionExpression: aws.String("GSI1PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", customerID)},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query orders: %w", err)
		}
		items = out.Items
	} else {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(r.tableName),
			FilterExpression: aws.String("begins_with(PK, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":prefix": &types.AttributeValueMemberS{Value: "ORDER#"},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan orders: %w", err)
		}
		items = out.Items
	}

	orders := make([]domain.Order, 0, len(items))
	for _, item := range items {
		var order domain.Order
		if err := attributevalue.UnmarshalMap(item, &order); err != nil {
			return nil, fmt.Errorf("failed to unmarshal order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// ConditionalReplace writes the full replacement document, but only while the
// stored order has not reached SHIPPED. A concurrent shipment between the
// caller's read and this write makes the condition fail, surfaced as
// ErrConditionFailed. This is the race-safety mechanism for the order state
// machine; the lifecycle table check in the service is only a fast path.
func (r *OrderRepository) ConditionalReplace(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	order.UpdatedAt = time.Now().UTC()

	av, err := r.marshalOrder(order)
	if err != nil {
		return nil, err
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(PK) AND order_status <> :shipped"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":shipped": &types.AttributeValueMemberS{Value: string(domain.OrderStatusShipped)},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, ErrConditionFailed
		}
		return nil, fmt.Errorf("failed to replace order: %w", err)
	}
	return order, nil
}
