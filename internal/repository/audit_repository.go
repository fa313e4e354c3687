package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cloud-wave-best-zizon/checkout-service/internal/audit"
)

// AuditRepository appends audit entries to their own table. Entries are
// keyed per entity with a timestamp-ordered sort key; nothing ever updates or
// deletes them.
type AuditRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewAuditRepository(client *dynamodb.Client, tableName string) *AuditRepository {
	return &AuditRepository{
		client:    client,
		tableName: tableName,
	}
}

func (r *AuditRepository) Append(ctx context.Context, entry audit.Entry) error {
	av, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	av["PK"] = &types.AttributeValueMemberS{Value: fmt.Sprintf("AUDIT#%s#%s", entry.EntityType, entry.EntityID)}
	av["SK"] = &types.AttributeValueMemberS{Value: fmt.Sprintf("%s#%s", entry.Timestamp.Format(time.RFC3339Nano), entry.EntryID)}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put audit entry: %w", err)
	}
	return nil
}
