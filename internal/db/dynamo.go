package db

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// NewDynamoClient builds a DynamoDB client from the default chain
// (Lambda execution role creds in production).
func NewDynamoClient(ctx context.Context) (*dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg), nil
}

func FlashSalesTableName() string {
	return os.Getenv("FLASH_SALES_TABLE")
}

func SessionsTableName() string {
	return os.Getenv("SESSIONS_TABLE")
}
