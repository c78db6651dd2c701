package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"restaurant-order-service/internal/events"
	"restaurant-order-service/internal/model"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		name    string
		headers amqp.Table
		want    int
	}{
		{"nil", nil, 0},
		{"missing", amqp.Table{"other": "x"}, 0},
		{"int32", amqp.Table{retryHeader: int32(2)}, 2},
		{"int64", amqp.Table{retryHeader: int64(3)}, 3},
		{"wrong type", amqp.Table{retryHeader: "4"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getRetryCount(tt.headers))
		})
	}
}

func TestDecodeEvent(t *testing.T) {
	o := &model.Order{ID: "order_1", Status: model.StatusReady, Type: model.OrderTypeDelivery}
	body, err := json.Marshal(events.ForOrder(events.OrderStatusUpdated, o, model.StatusPreparing))
	require.NoError(t, err)

	e, err := DecodeEvent(body)
	require.NoError(t, err)
	assert.Equal(t, events.OrderStatusUpdated, e.Type)
	assert.Equal(t, "order_1", e.OrderID)
	assert.Equal(t, "preparing", e.PrevStatus)
	require.NotNil(t, e.Order)
	assert.Contains(t, e.Topics(), events.TopicRiderJobs)

	_, err = DecodeEvent([]byte(`{"orderId":"x"}`))
	assert.Error(t, err)
	_, err = DecodeEvent([]byte(`not json`))
	assert.Error(t, err)
}

func TestRelayHandleForwardsAndDropsGarbage(t *testing.T) {
	var got []events.Event
	target := events.PublisherFunc(func(_ context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	})
	r := NewRelay(nil, "q", target, zap.NewNop(), 3, 0)

	require.NoError(t, r.handle(context.Background(), []byte(`{"type":"voucher.updated","data":{"code":"SAVE10"}}`)))
	require.NoError(t, r.handle(context.Background(), []byte(`garbage`)))
	require.Len(t, got, 1)
	assert.Equal(t, events.VoucherUpdated, got[0].Type)

	failing := NewRelay(nil, "q", events.PublisherFunc(func(context.Context, events.Event) error {
		return errors.New("hub down")
	}), nil, 3, 0)
	assert.Error(t, failing.handle(context.Background(), []byte(`{"type":"voucher.updated"}`)))
}

func TestTopologyNames(t *testing.T) {
	top := topologyFor("restaurant.events")
	assert.Equal(t, "restaurant.events.dlx", top.DeadLetter)
	assert.Equal(t, "restaurant.events.dlq", top.DLQ)
}
