package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"eventreminder/internal/domain"
)

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
}

// TransportConfig holds configuration for creating a message transport.
type TransportConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	// SendTimeout bounds a single send; a timed-out send is recorded as
	// a failure for that recipient.
	SendTimeout time.Duration
	SES         SESConfig
}

const defaultSendTimeout = 15 * time.Second

// NewTransport creates a MessageTransport from config. Provider "ses"
// uses AWS SES; "noop" or unknown uses a no-op transport.
func NewTransport(config TransportConfig, logger *slog.Logger) (domain.MessageTransport, error) {
	timeout := config.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	switch config.Provider {
	case "ses":
		sesConfig := config.SES
		if sesConfig.InsecureSkipVerify {
			logger.Warn("TLS certificate verification is disabled for SES; use only in development")
		}
		httpClient := &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: sesConfig.InsecureSkipVerify,
					MinVersion:         tls.VersionTLS12,
				},
			},
		}
		awsCfg := aws.Config{
			Region: sesConfig.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					sesConfig.AccessKeyID,
					sesConfig.SecretAccessKey,
					"",
				),
			),
			HTTPClient: httpClient,
		}
		client := ses.NewFromConfig(awsCfg)
		return &sesTransport{
			client:      client,
			fromAddress: config.FromAddress,
			fromName:    config.FromName,
			timeout:     timeout,
			logger:      logger,
		}, nil
	case "noop":
		return &noopTransport{logger: logger}, nil
	default:
		logger.Warn("unknown transport provider, using noop", "provider", config.Provider)
		return &noopTransport{logger: logger}, nil
	}
}

type sesTransport struct {
	client      *ses.Client
	fromAddress string
	fromName    string
	timeout     time.Duration
	logger      *slog.Logger
}

func (s *sesTransport) Send(ctx context.Context, address, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	source := s.fromAddress
	if s.fromName != "" {
		source = fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
	}
	input := &ses.SendEmailInput{
		Source: aws.String(source),
		Destination: &types.Destination{
			ToAddresses: []string{address},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(body),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}
	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("send via SES: %w", err)
	}
	s.logger.Debug("message sent via SES", "message_id", aws.ToString(result.MessageId))
	return nil
}

type noopTransport struct {
	logger *slog.Logger
}

func (n *noopTransport) Send(ctx context.Context, address, subject, body string) error {
	n.logger.Info("message would be sent (noop)", "to", address, "subject", subject)
	return nil
}
