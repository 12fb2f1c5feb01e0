package ops

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type fakePublisher struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sns.PublishOutput{}, f.err
}

func TestNotifyPropagationFailure(t *testing.T) {
	t.Setenv("ALERTS_TOPIC_ARN", "arn:aws:sns:us-east-1:123456789012:flashsale-alerts")

	pub := &fakePublisher{}
	cause := errors.New("shopify metafieldsSet: http 500")

	err := NotifyPropagationFailure(context.Background(), pub, "test-store.myshopify.com", "gid://shopify/Product/1", cause)
	require.NoError(t, err)

	require.Len(t, pub.inputs, 1)
	in := pub.inputs[0]
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:flashsale-alerts", aws.ToString(in.TopicArn))
	assert.Contains(t, aws.ToString(in.Message), "test-store.myshopify.com")
	assert.Contains(t, aws.ToString(in.Message), "gid://shopify/Product/1")
	assert.Contains(t, aws.ToString(in.Message), "http 500")
}

func TestNotifyPropagationFailure_NoTopicConfigured(t *testing.T) {
	t.Setenv("ALERTS_TOPIC_ARN", "")

	pub := &fakePublisher{}

	err := NotifyPropagationFailure(context.Background(), pub, "test-store.myshopify.com", "gid://shopify/Product/1", errors.New("x"))
	require.NoError(t, err)
	assert.Empty(t, pub.inputs, "alerting is opt-in")
}
