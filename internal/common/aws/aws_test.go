package aws

import (
	"context"
	"errors"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSES struct {
	mock.Mock
}

func (m *MockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*ses.SendEmailOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSNS struct {
	mock.Mock
}

func (m *MockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*sns.PublishOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSESClient_Send(t *testing.T) {
	api := new(MockSES)
	api.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return awsv2.ToString(in.Source) == "from@example.org" &&
			in.Destination.ToAddresses[0] == "student@example.org" &&
			awsv2.ToString(in.Message.Subject.Data) == "3 new matches" &&
			in.Message.Body.Html != nil && in.Message.Body.Text != nil
	})).Return(&ses.SendEmailOutput{MessageId: awsv2.String("msg-1")}, nil)

	id, err := NewSESClientWithAPI(api).Send(context.Background(), Email{
		From:     "from@example.org",
		To:       "student@example.org",
		Subject:  "3 new matches",
		HTMLBody: "<p>hi</p>",
		TextBody: "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	api.AssertExpectations(t)
}

func TestSESClient_SendErrors(t *testing.T) {
	api := new(MockSES)
	_, err := NewSESClientWithAPI(api).Send(context.Background(), Email{From: "a@b.c"})
	assert.Error(t, err)

	api.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))
	_, err = NewSESClientWithAPI(api).Send(context.Background(), Email{From: "a@b.c", To: "d@e.f", TextBody: "x"})
	assert.EqualError(t, err, "throttled")
}

func TestSNSClient_SendSMS(t *testing.T) {
	api := new(MockSNS)
	api.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return awsv2.ToString(in.PhoneNumber) == "+14155550100" &&
			awsv2.ToString(in.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue) == "Transactional"
	})).Return(&sns.PublishOutput{MessageId: awsv2.String("sms-1")}, nil)

	id, err := NewSNSClientWithAPI(api).SendSMS(context.Background(), "+14155550100", "New match")
	require.NoError(t, err)
	assert.Equal(t, "sms-1", id)

	_, err = NewSNSClientWithAPI(api).SendSMS(context.Background(), "", "x")
	assert.Error(t, err)
	api.AssertExpectations(t)
}
