package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		require.True(t, ok, "channel closed")
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestHubBroadcastsToSubscribers(t *testing.T) {
	h := NewHub(nil)
	h.Start()
	defer h.Stop()

	a, cancelA := h.Subscribe()
	b, cancelB := h.Subscribe()
	defer cancelB()

	h.Publish(context.Background(), New(DocumentCurated, "document", "d1", map[string]any{"status": "APPROVED"}))
	require.Equal(t, "d1", receive(t, a).EntityID)
	require.Equal(t, DocumentCurated, receive(t, b).Type)

	cancelA()
	_, open := <-a
	require.False(t, open)
	cancelA()
}

func TestHubStopClosesSubscribers(t *testing.T) {
	h := NewHub(nil)
	h.Start()
	ch, _ := h.Subscribe()
	h.Stop()
	h.Stop()

	_, open := <-ch
	require.False(t, open)
	h.Publish(context.Background(), New(BatchFinished, "batch", "b1", nil))
}

type recorder struct{ got []Event }

func (r *recorder) Publish(_ context.Context, e Event) { r.got = append(r.got, e) }

func TestFanoutSkipsNil(t *testing.T) {
	r1, r2 := &recorder{}, &recorder{}
	Fanout{r1, nil, r2, Nop{}}.Publish(context.Background(), New(ArticlePublished, "article", "a1", nil))
	require.Len(t, r1.got, 1)
	require.Len(t, r2.got, 1)
}
