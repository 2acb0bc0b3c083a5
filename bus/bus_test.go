package bus

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Luismorlan/tootmux/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeedScoredEvent(t *testing.T) {
	ranked := []*model.Toot{}
	for i := 0; i < 15; i++ {
		ranked = append(ranked, &model.Toot{URI: fmt.Sprintf("uri-%d", i)})
	}
	ranked[0] = &model.Toot{URI: "reshare", Reblog: &model.Toot{URI: "orig"}}

	now := time.Now()
	e := NewFeedScoredEvent("pass", true, ranked, now)
	assert.Equal(t, 15, e.NumToots)
	require.Len(t, e.TopURIs, TopURIsPerEvent)
	assert.Equal(t, "orig", e.TopURIs[0])
	assert.Equal(t, "uri-9", e.TopURIs[9])
	assert.True(t, e.FeedWide)
}

func TestPublishAndSubscribe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	eventBus := NewEventBus()
	defer eventBus.Close()

	events, err := SubscribeFeedScored(ctx, eventBus)
	require.NoError(t, err)

	p := NewFeedScoredPublisher(eventBus)
	sent := FeedScoredEvent{PassID: "abc", NumToots: 2, TopURIs: []string{"a", "b"}, ScoredAt: time.Now().UTC()}
	require.NoError(t, p.NotifyFeedScored(ctx, sent))

	select {
	case got := <-events:
		assert.Equal(t, sent.PassID, got.PassID)
		assert.Equal(t, sent.TopURIs, got.TopURIs)
		assert.True(t, sent.ScoredAt.Equal(got.ScoredAt))
	case <-ctx.Done():
		t.Fatal("no feed scored event received")
	}
}
