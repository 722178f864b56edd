package sms

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/pinpointsmsvoicev2"
	"github.com/aws/aws-sdk-go-v2/service/pinpointsmsvoicev2/types"
)

// textMessageAPI is the subset of the Pinpoint SMS Voice v2 client used here.
type textMessageAPI interface {
	SendTextMessage(ctx context.Context, params *pinpointsmsvoicev2.SendTextMessageInput, optFns ...func(*pinpointsmsvoicev2.Options)) (*pinpointsmsvoicev2.SendTextMessageOutput, error)
}

// Pinpoint sends transactional SMS through AWS Pinpoint SMS Voice v2.
type Pinpoint struct {
	api    textMessageAPI
	from   string
	logger *slog.Logger
}

// NewPinpoint loads the default AWS credential chain for region.
func NewPinpoint(ctx context.Context, region, from string, logger *slog.Logger) (*Pinpoint, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newPinpoint(pinpointsmsvoicev2.NewFromConfig(cfg), from, logger), nil
}

func newPinpoint(api textMessageAPI, from string, logger *slog.Logger) *Pinpoint {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pinpoint{api: api, from: from, logger: logger}
}

// Send delivers one message.
func (p *Pinpoint) Send(ctx context.Context, to, text string) (*Delivery, error) {
	if strings.TrimSpace(to) == "" || text == "" {
		return nil, ErrEmptyMessage
	}

	out, err := p.api.SendTextMessage(ctx, &pinpointsmsvoicev2.SendTextMessageInput{
		DestinationPhoneNumber: aws.String(to),
		OriginationIdentity:    aws.String(p.from),
		MessageBody:            aws.String(text),
		MessageType:            types.MessageTypeTransactional,
	})
	if err != nil {
		return nil, fmt.Errorf("pinpoint send text message: %w", err)
	}

	id := aws.ToString(out.MessageId)
	p.logger.Debug("Pinpoint message accepted", "to", to, "message_id", id)
	return &Delivery{Provider: "pinpoint", MessageID: id, To: to}, nil
}
