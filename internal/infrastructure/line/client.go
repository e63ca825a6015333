package line

import (
	"context"
	"fmt"
	"net/http"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"golang.org/x/time/rate"

	"remindbot/internal/domain/entity"
	"remindbot/internal/domain/gateway"
	appErrors "remindbot/internal/pkg/errors"
	"remindbot/internal/pkg/logger"
)

// Client wraps the linebot.Client.
type Client struct {
	*linebot.Client
	limiter *rate.Limiter
	log     logger.Logger
}

var _ gateway.DeliveryGateway = (*Client)(nil)

// NewClient creates a LINE Bot client. Push messages are throttled to
// pushPerSecond with a burst of the same size.
func NewClient(channelSecret, channelToken string, pushPerSecond float64, log logger.Logger) (*Client, error) {
	if channelSecret == "" || channelToken == "" {
		return nil, fmt.Errorf("%w: CHANNEL_SECRET and CHANNEL_ACCESS_TOKEN must be set", appErrors.ErrInvalidConfig)
	}
	bot, err := linebot.New(channelSecret, channelToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrLineAPI, err)
	}
	burst := int(pushPerSecond)
	if burst < 1 {
		burst = 1
	}
	log.Info("Successfully created LINE Bot client.")
	return &Client{
		Client:  bot,
		limiter: rate.NewLimiter(rate.Limit(pushPerSecond), burst),
		log:     log,
	}, nil
}

// SendMessages sends one or more messages using the ReplyMessage API.
func (c *Client) SendMessages(ctx context.Context, replyToken string, messages ...linebot.SendingMessage) error {
	if _, err := c.ReplyMessage(replyToken, messages...).WithContext(ctx).Do(); err != nil {
		return fmt.Errorf("%w: reply: %v", appErrors.ErrLineAPI, err)
	}
	c.log.Debug("Successfully sent reply message.")
	return nil
}

// PushMessages sends one or more messages using the PushMessage API. It waits
// for the push rate limiter first.
func (c *Client) PushMessages(ctx context.Context, to string, messages ...linebot.SendingMessage) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := c.PushMessage(to, messages...).WithContext(ctx).Do(); err != nil {
		return fmt.Errorf("%w: push to %s: %v", appErrors.ErrLineAPI, to, err)
	}
	c.log.Debug(fmt.Sprintf("Successfully sent push message to %s.", to))
	return nil
}

// Send delivers a reminder as a text push. User, group and room ids all go
// through the same push endpoint.
func (c *Client) Send(ctx context.Context, targetType entity.TargetType, targetID, content string) error {
	if targetType != entity.TargetDirect && targetType != entity.TargetGroup {
		return fmt.Errorf("%w: %q", appErrors.ErrUnknownTargetType, targetType)
	}
	return c.PushMessages(ctx, targetID, linebot.NewTextMessage(content))
}

// ParseRequest parses incoming webhook requests.
func (c *Client) ParseRequest(r *http.Request) ([]*linebot.Event, error) {
	return c.Client.ParseRequest(r)
}
