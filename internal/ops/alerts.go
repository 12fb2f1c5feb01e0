package ops

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Publisher is the slice of the SNS API used for operator alerts.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// NotifyPropagationFailure tells an operator that a sale record was saved
// locally but the catalog metafield write failed, so the two are out of step
// until someone retries. Best effort: an unset topic or a publish error never
// fails the request that triggered it.
func NotifyPropagationFailure(ctx context.Context, snsClient Publisher, shop, productID string, cause error) error {
	topicArn := strings.TrimSpace(os.Getenv("ALERTS_TOPIC_ARN"))
	if topicArn == "" {
		return nil
	}

	msg := fmt.Sprintf(
		"Flash-sale metafield propagation failed\n\nShop: %s\nProduct: %s\nAt: %s\nError: %v\n\nThe local sale record was saved; the product metafield is stale until the edit is retried.",
		shop, productID, time.Now().UTC().Format(time.RFC3339), cause,
	)

	_, err := snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topicArn),
		Subject:  aws.String(fmt.Sprintf("Flash sale propagation failed (%s)", shop)),
		Message:  aws.String(msg),
	})
	return err
}
