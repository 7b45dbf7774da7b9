package aws

import (
	"context"
	"errors"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSAPI is the subset of the SNS client the texter calls.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSClient struct {
	client SNSAPI
}

func NewSNSClient(cfg awsv2.Config) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg)}
}

func NewSNSClientWithAPI(api SNSAPI) *SNSClient {
	return &SNSClient{client: api}
}

// SendSMS publishes a transactional text message to an E.164 phone number.
func (s *SNSClient) SendSMS(ctx context.Context, phone, message string) (string, error) {
	if phone == "" {
		return "", errors.New("phone number is required")
	}
	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: awsv2.String(phone),
		Message:     awsv2.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {DataType: awsv2.String("String"), StringValue: awsv2.String("Transactional")},
		},
	})
	if err != nil {
		return "", err
	}
	return awsv2.ToString(out.MessageId), nil
}
