package mq

import (
	"context"
	"encoding/json"

	"servecart/models"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const Channel = "servecart-events"

// Publisher is the part of *redis.Client the emitter uses.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Emitter publishes domain events as JSON on a Redis channel.
type Emitter struct {
	Client  Publisher
	Channel string
}

func NewEmitter(client Publisher) *Emitter {
	return &Emitter{Client: client, Channel: Channel}
}

// Emit never fails the caller; publish errors are logged.
func (e *Emitter) Emit(ctx context.Context, ev models.Event) {
	if err := e.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", ev.Name).Msg("event not published")
	}
}

func (e *Emitter) Publish(ctx context.Context, ev models.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	if err := e.Client.Publish(ctx, e.Channel, data).Err(); err != nil {
		return errors.Wrapf(err, "publish to %s", e.Channel)
	}
	log.Debug().Str("event", ev.Name).Str("entity", ev.EntityID).Msg("event published")
	return nil
}
