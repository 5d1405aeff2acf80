//go:build integration

package mqtt

import (
	"context"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evcharge/infra/journal"
	"github.com/kilianp07/evcharge/internal/testutil"
)

func TestPublisherMosquitto(t *testing.T) {
	testutil.RequireDocker(t)
	ctx := context.Background()
	broker, cleanup, err := testutil.StartMosquitto(ctx)
	require.NoError(t, err)
	defer cleanup()

	got := make(chan paho.Message, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("sub"))
	tok := sub.Connect()
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	defer sub.Disconnect(100)
	tok = sub.Subscribe("evcharge/plan", 1, func(_ paho.Client, m paho.Message) { got <- m })
	require.True(t, tok.WaitTimeout(5*time.Second))

	p, err := NewPublisher(Config{Broker: broker, ClientID: "pub", QoS: 1})
	require.NoError(t, err)
	defer p.Disconnect()

	rec, err := journal.NewRecord(journal.KindPlan, map[string]int{"stops": 2}, time.Now())
	require.NoError(t, err)
	require.NoError(t, p.PublishRecord(rec))

	select {
	case m := <-got:
		require.JSONEq(t, `{"stops":2}`, string(m.Payload()))
	case <-time.After(5 * time.Second):
		t.Fatal("message not received")
	}
}
