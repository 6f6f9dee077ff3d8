package mq

import (
	"context"
	"encoding/json"

	"servecart/models"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Decode parses one channel payload.
func Decode(payload string) (models.Event, error) {
	var ev models.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, errors.Wrap(err, "decode event")
	}
	if ev.Name == "" {
		return ev, errors.New("event without a name")
	}
	return ev, nil
}

// StartWorker subscribes to the event channel and calls handle for every
// event until ctx is cancelled.
func StartWorker(ctx context.Context, client *redis.Client, channel string, handle func(context.Context, models.Event)) {
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()
	ch := sub.Channel()

	log.Info().Str("channel", channel).Msg("event worker listening")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("channel", channel).Msg("event worker stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			ev, err := Decode(msg.Payload)
			if err != nil {
				log.Warn().Err(err).Msg("skipping event")
				continue
			}
			handle(ctx, ev)
		}
	}
}
