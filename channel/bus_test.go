package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanreadbooks/codemaster/chat/event"
	"github.com/ryanreadbooks/codemaster/chat/model"
)

func TestSubscribersSeeEveryEventInOrder(t *testing.T) {
	bus := NewBus()

	var a, b []string
	bus.Subscribe(func(d event.Delivery) { a = append(a, d.Event.(*event.StreamChunkEvent).Content) })
	bus.Subscribe(func(d event.Delivery) { b = append(b, d.Event.(*event.StreamChunkEvent).Content) })

	for _, s := range []string{"1", "2", "3"} {
		bus.Publish(event.StreamChunk(s))
	}

	assert.Equal(t, []string{"1", "2", "3"}, a)
	assert.Equal(t, a, b)
}

func TestDeliveriesShareIDAcrossSubscribers(t *testing.T) {
	bus := NewBus()

	var ids []string
	bus.Subscribe(func(d event.Delivery) { ids = append(ids, d.ID) })
	bus.Subscribe(func(d event.Delivery) { ids = append(ids, d.ID) })

	d1 := bus.Publish(event.Done())
	d2 := bus.Publish(event.Done())

	require.Len(t, ids, 4)
	assert.Equal(t, d1.ID, ids[0])
	assert.Equal(t, d1.ID, ids[1])
	assert.Equal(t, d2.ID, ids[2])
	assert.NotEqual(t, d1.ID, d2.ID)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()

	n := 0
	unsubscribe := bus.Subscribe(func(event.Delivery) { n++ })
	bus.Publish(event.Done())
	unsubscribe()
	unsubscribe()
	bus.Publish(event.Done())

	assert.Equal(t, 1, n)
}

func TestPanickingSubscriberDoesNotStopOthers(t *testing.T) {
	bus := NewBus()

	got := 0
	bus.Subscribe(func(event.Delivery) { panic("boom") })
	bus.Subscribe(func(event.Delivery) { got++ })

	assert.NotPanics(t, func() { bus.Publish(event.Done()) })
	assert.Equal(t, 1, got)
}

func TestPublishFrame(t *testing.T) {
	bus := NewBus()

	d, err := bus.PublishFrame([]byte(`{"type":"Error","content":"boom"}`))
	require.NoError(t, err)
	assert.Equal(t, event.Error("boom"), d.Event)

	_, err = bus.PublishFrame([]byte(`{"type":"Nope"}`))
	assert.ErrorIs(t, err, event.ErrUnknownType)
}

func TestUserTurnFrame(t *testing.T) {
	data, err := EncodeUserTurn("hi", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"UserTurn","content":{"message":"hi","history":[]}}`, string(data))

	turn, err := DecodeUserTurn(data)
	require.NoError(t, err)
	assert.Equal(t, "hi", turn.Message)
	assert.Empty(t, turn.History)

	_, err = DecodeUserTurn([]byte(`{"type":"Done"}`))
	assert.ErrorIs(t, err, ErrNotUserTurn)

	data, err = EncodeUserTurn("again", []model.Message{model.AssistantMessage("x")})
	require.NoError(t, err)
	turn, err = DecodeUserTurn(data)
	require.NoError(t, err)
	assert.Equal(t, []model.Message{model.AssistantMessage("x")}, turn.History)
}
