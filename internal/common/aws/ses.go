package aws

import (
	"context"
	"errors"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the subset of the SES client the mailer calls.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Email is one message with both an HTML and a plain text body.
type Email struct {
	From     string
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

type SESClient struct {
	client SESAPI
}

func NewSESClient(cfg awsv2.Config) *SESClient {
	return &SESClient{client: ses.NewFromConfig(cfg)}
}

// NewSESClientWithAPI is used when the SES client is built elsewhere.
func NewSESClientWithAPI(api SESAPI) *SESClient {
	return &SESClient{client: api}
}

// Send delivers msg and returns the SES message id.
func (s *SESClient) Send(ctx context.Context, msg Email) (string, error) {
	if msg.To == "" || msg.From == "" {
		return "", errors.New("sender and recipient are required")
	}

	body := &types.Body{}
	if msg.HTMLBody != "" {
		body.Html = &types.Content{Data: awsv2.String(msg.HTMLBody), Charset: awsv2.String("UTF-8")}
	}
	if msg.TextBody != "" {
		body.Text = &types.Content{Data: awsv2.String(msg.TextBody), Charset: awsv2.String("UTF-8")}
	}

	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      awsv2.String(msg.From),
		Destination: &types.Destination{ToAddresses: []string{msg.To}},
		Message: &types.Message{
			Subject: &types.Content{Data: awsv2.String(msg.Subject), Charset: awsv2.String("UTF-8")},
			Body:    body,
		},
	})
	if err != nil {
		return "", err
	}
	return awsv2.ToString(out.MessageId), nil
}
