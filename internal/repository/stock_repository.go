package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/domain"
)

type StockRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewStockRepository(client *dynamodb.Client, tableName string) *StockRepository {
	return &StockRepository{
		client:    client,
		tableName: tableName,
	}
}

func productKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("PRODUCT#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

func (r *StockRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            productKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var product domain.Product
	if err := attributevalue.UnmarshalMap(out.Item, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return &product, nil
}

// ConditionalAdjust applies delta to the product's stock quantity as a single
// atomic update. For a negative delta the update only matches if the current
// quantity covers it, so stock can never be observed below zero. A non-match
// is reported as ErrConditionFailed; the store cannot say whether the product
// was absent or the guard failed, so callers that need to distinguish do a
// follow-up FindByID.
func (r *StockRepository) ConditionalAdjust(ctx context.Context, id string, delta int) (*domain.Product, error) {
	condition := "attribute_exists(PK)"
	values := map[string]types.AttributeValue{
		":d": &types.AttributeValueMemberN{Value: strconv.Itoa(delta)},
	}
	if delta < 0 {
		condition = "attribute_exists(PK) AND stock_quantity >= :need"
		values[":need"] = &types.AttributeValueMemberN{Value: strconv.Itoa(-delta)}
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       productKey(id),
		UpdateExpression:          aws.String("ADD stock_quantity :d"),
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, ErrConditionFailed
		}
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	var product domain.Product
	if err := attributevalue.UnmarshalMap(out.Attributes, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return &product, nil
}

// IncrementStock adds qty back without any guard. It is the compensation
// half of the checkout flow and must not be able to fail on a guard: the
// product was present moments ago when its stock was decremented.
func (r *StockRepository) IncrementStock(ctx context.Context, id string, qty int) (*domain.Product, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              productKey(id),
		UpdateExpression: aws.String("ADD stock_quantity :d"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberN{Value: strconv.Itoa(qty)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to increment stock: %w", err)
	}

	var product domain.Product
	if err := attributevalue.UnmarshalMap(out.Attributes, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return &product, nil
}

// PutProduct creates or replaces a product record. Used by the admin surface
// and by local seeding; not part of the checkout hot path.
func (r *StockRepository) PutProduct(ctx context.Context, product *domain.Product) error {
	av, err := attributevalue.MarshalMap(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	for k, v := range productKey(product.ProductID) {
		av[k] = v
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put product: %w", err)
	}
	return nil
}
