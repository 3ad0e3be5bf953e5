package events_test

import (
	"testing"

	"github.com/ardanlabs/utxochain/foundation/events"
	"github.com/stretchr/testify/require"
)

func TestSendAndRelease(t *testing.T) {
	evts := events.New()

	ch1 := evts.Acquire("one")
	ch2 := evts.Acquire("two")
	require.Equal(t, ch1, evts.Acquire("one"))

	evts.Send("viewer: block")
	require.Equal(t, "viewer: block", <-ch1)
	require.Equal(t, "viewer: block", <-ch2)

	require.NoError(t, evts.Release("one"))
	require.Error(t, evts.Release("one"))

	_, open := <-ch1
	require.False(t, open)

	evts.Shutdown()

	_, open = <-ch2
	require.False(t, open)
}

func TestSendDoesNotBlock(t *testing.T) {
	evts := events.New()
	ch := evts.Acquire("slow")

	for range 1000 {
		evts.Send("msg")
	}

	require.Equal(t, 100, len(ch))
}
