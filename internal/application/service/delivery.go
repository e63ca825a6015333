package service

import (
	"context"
	"fmt"
	"time"

	"remindbot/internal/domain/entity"
	"remindbot/internal/domain/gateway"
	appErrors "remindbot/internal/pkg/errors"
)

// Retry defaults.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 30 * time.Second
)

// RetryPolicy bounds delivery retries. After failed attempt k the next
// attempt waits k*BaseDelay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy returns 3 attempts with 30s, 60s waits between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	return p
}

// Delay returns the wait after failed attempt k (1-based).
func (p RetryPolicy) Delay(k int) time.Duration {
	return time.Duration(k) * p.BaseDelay
}

// Deliver sends content to the reminder's destination until the gateway
// accepts it or the attempts run out. It returns the number of attempts made.
// Exhaustion yields ErrDelivery; a cancelled ctx yields ctx.Err().
func (p RetryPolicy) Deliver(ctx context.Context, gw gateway.DeliveryGateway, r *entity.Reminder, content string) (int, error) {
	p = p.normalized()
	var lastErr error
	for k := 1; k <= p.MaxAttempts; k++ {
		lastErr = gw.Send(ctx, r.Destination.TargetType, r.Destination.TargetID, content)
		if lastErr == nil {
			return k, nil
		}
		if ctx.Err() != nil {
			return k, ctx.Err()
		}
		if k == p.MaxAttempts {
			break
		}
		t := time.NewTimer(p.Delay(k))
		select {
		case <-ctx.Done():
			t.Stop()
			return k, ctx.Err()
		case <-t.C:
		}
	}
	return p.MaxAttempts, fmt.Errorf("%w: reminder %s after %d attempts: %v", appErrors.ErrDelivery, r.ID, p.MaxAttempts, lastErr)
}

// RenderReminder formats the text pushed when a reminder fires.
func RenderReminder(locale, content string) string {
	if locale == "en" {
		return "⏰ Reminder: " + content
	}
	return "⏰ 提醒：" + content
}
