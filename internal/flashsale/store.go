package flashsale

import (
	"context"
	"errors"
	"strings"
	"time"

	"flashsale-backend/internal/db"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// StoreClient is the slice of the DynamoDB API the sale store needs, so
// tests can fake it.
type StoreClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store persists sale records in the flash-sales table, keyed by product gid.
type Store struct {
	ddb   StoreClient
	table string
}

func NewStore(ddb StoreClient) (*Store, error) {
	tbl := strings.TrimSpace(db.FlashSalesTableName())
	if tbl == "" {
		return nil, errors.New("FLASH_SALES_TABLE not configured")
	}
	return &Store{ddb: ddb, table: tbl}, nil
}

func (s *Store) key(productID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"ProductId": &types.AttributeValueMemberS{Value: productID},
	}
}

// Upsert creates or updates the record for productID in one request.
// if_not_exists keeps ProductName from the first write: a later edit moves
// EndsAt only, matching the create/update split callers rely on. endsAt is
// already validated RFC3339.
func (s *Store) Upsert(ctx context.Context, productID, productName, endsAt string) error {
	_, err := s.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.table),
		Key:              s.key(productID),
		UpdateExpression: aws.String("SET EndsAt = :e, UpdatedAt = :u, ProductName = if_not_exists(ProductName, :n)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: endsAt},
			":n": &types.AttributeValueMemberS{Value: productName},
			":u": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	return err
}

// Get returns the record for productID, or nil when none exists.
func (s *Store) Get(ctx context.Context, productID string) (*SaleRecord, error) {
	out, err := s.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(productID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, nil
	}

	var rec SaleRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// All returns every sale record. The table holds one row per configured
// product, so a paged scan is fine here.
func (s *Store) All(ctx context.Context) ([]SaleRecord, error) {
	records := make([]SaleRecord, 0, 16)

	var startKey map[string]types.AttributeValue
	for {
		out, err := s.ddb.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}

		var page []SaleRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		records = append(records, page...)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return records, nil
}

// Delete removes the record for productID. Deleting a key that does not
// exist succeeds; orphan cleanup depends on that.
func (s *Store) Delete(ctx context.Context, productID string) error {
	_, err := s.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(productID),
	})
	return err
}
