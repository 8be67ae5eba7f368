package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSPublisherSendSuccess(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   client,
		log:      noopLogger{},
	}

	if err := pub.Publish(context.Background(), Event{TargetID: "rates"}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["target_id"]
	if !ok || aws.ToString(attr.StringValue) != "rates" {
		t.Fatalf("target_id attribute missing or wrong: %#v", attr)
	}
	if aws.ToString(attr.DataType) != "String" {
		t.Fatalf("DataType should be String, got %#v", attr.DataType)
	}
	if !strings.Contains(aws.ToString(client.input.MessageBody), `"target_id":"rates"`) {
		t.Fatalf("MessageBody missing target_id: %s", aws.ToString(client.input.MessageBody))
	}
}

func TestSQSPublisherSendError(t *testing.T) {
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   &fakeSQSClient{err: errors.New("boom")},
		log:      noopLogger{},
	}

	if err := pub.Publish(context.Background(), Event{TargetID: "rates"}); err == nil {
		t.Fatalf("expected error from Publish")
	}
}

func TestNewSQSPublisherWithStaticCredentials(t *testing.T) {
	pub, err := newSQSPublisher(context.Background(), PublisherConfig{
		ID:   "local",
		Type: TypeSQS,
		SQS: &SQSPublisherConfig{
			QueueURL: "http://localhost:4566/000000000000/relay",
			Region:   "us-east-1",
			AWSConnection: AWSConnection{
				Endpoint:        "http://localhost:4566",
				AccessKeyID:     "test",
				SecretAccessKey: "test",
			},
		},
	}, nil)
	if err != nil {
		t.Fatalf("newSQSPublisher: %v", err)
	}
	if pub.Type() != TypeSQS || pub.ID() != "local" {
		t.Fatalf("unexpected publisher %s/%s", pub.Type(), pub.ID())
	}
}

func TestSQSPublisherFIFOSetsGroupAndDedup(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{
		id:       "fifo",
		queueURL: "https://sqs.us-east-1.amazonaws.com/000000000000/relay.fifo",
		fifo:     isFIFOQueue("https://sqs.us-east-1.amazonaws.com/000000000000/relay.fifo"),
		client:   client,
		log:      noopLogger{},
	}

	if err := pub.Publish(context.Background(), Event{TargetID: "rates", Digest: "d1"}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if got := aws.ToString(client.input.MessageGroupId); got != "rates" {
		t.Fatalf("MessageGroupId = %q", got)
	}
	if got := aws.ToString(client.input.MessageDeduplicationId); got != "d1" {
		t.Fatalf("MessageDeduplicationId = %q", got)
	}
	if attr := client.input.MessageAttributes["digest"]; aws.ToString(attr.StringValue) != "d1" {
		t.Fatalf("digest attribute = %#v", attr)
	}
}

func TestSQSPublisherStandardQueueSkipsFIFOFields(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{id: "std", queueURL: "https://example.com/queue", client: client, log: noopLogger{}}

	if err := pub.Publish(context.Background(), Event{TargetID: "rates"}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input.MessageGroupId != nil || client.input.MessageDeduplicationId != nil {
		t.Fatalf("standard queue should not carry FIFO fields")
	}
	if _, ok := client.input.MessageAttributes["digest"]; ok {
		t.Fatalf("empty digest should not be sent as attribute")
	}
}
