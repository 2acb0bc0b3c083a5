// Package bus carries notifications about finished scoring passes to
// whoever presents the feed. For now it is backed by an in process go
// channel, it can be swapped for a broker backed watermill publisher later.
package bus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Luismorlan/tootmux/model"
	. "github.com/Luismorlan/tootmux/utils/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"
)

const (
	// Emitted after every completed scoring pass.
	TOPIC_FEED_SCORED = "topic.feed_scored"

	// Number of top ranked URIs carried on each event.
	TopURIsPerEvent = 10
)

type FeedScoredEvent struct {
	PassID   string    `json:"pass_id"`
	FeedWide bool      `json:"feed_wide"`
	NumToots int       `json:"num_toots"`
	TopURIs  []string  `json:"top_uris"`
	ScoredAt time.Time `json:"scored_at"`
}

// NewFeedScoredEvent summarizes a ranked feed.
func NewFeedScoredEvent(passID string, feedWide bool, ranked []*model.Toot, scoredAt time.Time) FeedScoredEvent {
	top := []string{}
	for i := 0; i < len(ranked) && i < TopURIsPerEvent; i++ {
		top = append(top, ranked[i].CanonicalURI())
	}
	return FeedScoredEvent{
		PassID:   passID,
		FeedWide: feedWide,
		NumToots: len(ranked),
		TopURIs:  top,
		ScoredAt: scoredAt,
	}
}

// NewEventBus returns the in process bus shared by publisher and subscribers.
func NewEventBus() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
}

type FeedScoredPublisher struct {
	EventBus message.Publisher
}

func NewFeedScoredPublisher(e message.Publisher) *FeedScoredPublisher {
	return &FeedScoredPublisher{EventBus: e}
}

func (p *FeedScoredPublisher) NotifyFeedScored(ctx context.Context, event FeedScoredEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "fail to marshal feed scored event")
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := p.EventBus.Publish(TOPIC_FEED_SCORED, msg); err != nil {
		return errors.Wrap(err, "fail to publish feed scored event "+event.PassID)
	}
	Log.WithField("pass_id", event.PassID).Debug("published feed scored event")
	return nil
}

// SubscribeFeedScored decodes events from the bus until ctx is done. Messages
// that fail to decode are acked and dropped.
func SubscribeFeedScored(ctx context.Context, sub message.Subscriber) (<-chan FeedScoredEvent, error) {
	msgs, err := sub.Subscribe(ctx, TOPIC_FEED_SCORED)
	if err != nil {
		return nil, errors.Wrap(err, "fail to subscribe to "+TOPIC_FEED_SCORED)
	}

	out := make(chan FeedScoredEvent)
	go func() {
		defer close(out)
		for msg := range msgs {
			var event FeedScoredEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				Log.WithError(err).Warn("dropping undecodable feed scored event")
				msg.Ack()
				continue
			}
			select {
			case out <- event:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return out, nil
}
