package gateway

import (
	"context"

	"remindbot/internal/domain/entity"
)

// DeliveryGateway sends a rendered reminder to its destination. A nil error
// means the channel accepted the message.
type DeliveryGateway interface {
	Send(ctx context.Context, targetType entity.TargetType, targetID string, content string) error
}

// DeliveryFunc adapts a function to DeliveryGateway.
type DeliveryFunc func(ctx context.Context, targetType entity.TargetType, targetID string, content string) error

// Send calls f.
func (f DeliveryFunc) Send(ctx context.Context, targetType entity.TargetType, targetID string, content string) error {
	return f(ctx, targetType, targetID, content)
}
