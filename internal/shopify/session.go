package shopify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"flashsale-backend/internal/db"
	"flashsale-backend/internal/security"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// SessionClient is the slice of the DynamoDB API the session store needs,
// so tests can fake it.
type SessionClient interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// SessionItem mirrors the sessions table structure. The OAuth flow that
// creates these lives outside this service; we only read and delete them.
type SessionItem struct {
	PK             string `dynamodbav:"PK"` // SHOP#<domain>
	SK             string `dynamodbav:"SK"` // SESSION#<id>
	Shop           string `dynamodbav:"Shop"`
	AccessTokenEnc string `dynamodbav:"AccessTokenEnc"`
	Scope          string `dynamodbav:"Scope"`
	CreatedAt      string `dynamodbav:"CreatedAt"`
}

func shopPK(shopDomain string) string {
	return fmt.Sprintf("SHOP#%s", shopDomain)
}

// LoadOfflineSession returns an authenticated admin client for the shop,
// decrypting the stored offline access token.
func LoadOfflineSession(ctx context.Context, ddb SessionClient, shopDomain string) (Client, error) {
	if strings.TrimSpace(shopDomain) == "" {
		return Client{}, errors.New("missing shop domain")
	}

	tbl := strings.TrimSpace(db.SessionsTableName())
	if tbl == "" {
		return Client{}, errors.New("SESSIONS_TABLE not configured")
	}

	out, err := ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(tbl),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :pref)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":   &types.AttributeValueMemberS{Value: shopPK(shopDomain)},
			":pref": &types.AttributeValueMemberS{Value: "SESSION#"},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return Client{}, err
	}
	if len(out.Items) == 0 {
		return Client{}, fmt.Errorf("shop not installed: %s", shopDomain)
	}

	var sess SessionItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &sess); err != nil {
		return Client{}, err
	}

	enc := strings.TrimSpace(sess.AccessTokenEnc)
	if enc == "" {
		return Client{}, errors.New("no AccessTokenEnc on session record")
	}

	keyB64 := os.Getenv("TOKEN_ENC_KEY_B64")
	if keyB64 == "" {
		return Client{}, errors.New("TOKEN_ENC_KEY_B64 not set")
	}
	key, err := security.LoadKeyFromBase64(keyB64)
	if err != nil {
		return Client{}, fmt.Errorf("invalid TOKEN_ENC_KEY_B64: %w", err)
	}

	token, err := security.DecryptAESGCM(key, enc)
	if err != nil {
		return Client{}, fmt.Errorf("failed to decrypt token: %w", err)
	}

	return Client{
		Shop:        shopDomain,
		APIVersion:  APIVersion(),
		AccessToken: token,
	}, nil
}

// DeleteSessionsForShop removes every session record under the shop's
// partition. Invoked when the app is uninstalled. Returns the number of
// sessions removed; zero is not an error.
func DeleteSessionsForShop(ctx context.Context, ddb SessionClient, shopDomain string) (int, error) {
	if strings.TrimSpace(shopDomain) == "" {
		return 0, errors.New("missing shop domain")
	}

	tbl := strings.TrimSpace(db.SessionsTableName())
	if tbl == "" {
		return 0, errors.New("SESSIONS_TABLE not configured")
	}

	deleted := 0
	var startKey map[string]types.AttributeValue

	for {
		out, err := ddb.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(tbl),
			KeyConditionExpression: aws.String("PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: shopPK(shopDomain)},
			},
			ProjectionExpression: aws.String("PK, SK"),
			ExclusiveStartKey:    startKey,
		})
		if err != nil {
			return deleted, err
		}

		// BatchWriteItem caps at 25 requests per call.
		for i := 0; i < len(out.Items); i += 25 {
			end := i + 25
			if end > len(out.Items) {
				end = len(out.Items)
			}

			reqs := make([]types.WriteRequest, 0, end-i)
			for _, it := range out.Items[i:end] {
				reqs = append(reqs, types.WriteRequest{
					DeleteRequest: &types.DeleteRequest{
						Key: map[string]types.AttributeValue{
							"PK": it["PK"],
							"SK": it["SK"],
						},
					},
				})
			}

			if _, err := ddb.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{tbl: reqs},
			}); err != nil {
				return deleted, err
			}
			deleted += len(reqs)
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return deleted, nil
}
