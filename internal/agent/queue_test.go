package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := newQueue()
	for _, kind := range []string{"one", "two", "three"} {
		q.push(Message{Recipient: "a", Kind: kind})
	}
	assert.Equal(t, 3, q.len())

	for _, want := range []string{"one", "two", "three"} {
		msg, ok := q.pop()
		require.True(t, ok)
		assert.Equal(t, want, msg.Kind)
	}
	_, ok := q.pop()
	assert.False(t, ok)
	assert.Equal(t, 0, q.len())
}

func TestQueue_NotifyCoalesces(t *testing.T) {
	q := newQueue()
	q.push(Message{Kind: "a"})
	q.push(Message{Kind: "b"})

	<-q.notify
	select {
	case <-q.notify:
		t.Fatal("expected a single pending wake-up")
	default:
	}
}

func TestQueue_Drain(t *testing.T) {
	q := newQueue()
	q.push(Message{Kind: "a"})
	q.push(Message{Kind: "b"})

	assert.Equal(t, 2, q.drain())
	assert.Equal(t, 0, q.len())
	assert.Equal(t, 0, q.drain())
}
