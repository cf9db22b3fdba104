package observe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func collect[T any](t *testing.T, ch <-chan T, n int) []T {
	t.Helper()
	var got []T
	timeout := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case v, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, v)
		case <-timeout:
			t.Fatalf("timed out after %d of %d events", len(got), n)
		}
	}
	return got
}

func TestFeed_OrderedDeliveryToAllSubscribers(t *testing.T) {
	f := NewFeed[int]()
	defer f.Close()

	a, cancelA := f.Subscribe()
	defer cancelA()
	b, cancelB := f.Subscribe()
	defer cancelB()

	for i := 0; i < 100; i++ {
		f.Publish(i)
	}

	want := make([]int, 100)
	for i := range want {
		want[i] = i
	}
	require.Equal(t, want, collect(t, a, 100))
	require.Equal(t, want, collect(t, b, 100))
}

func TestFeed_PublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	f := NewFeed[int]()
	defer f.Close()

	_, cancel := f.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10_000; i++ {
			f.Publish(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on an unread subscriber")
	}
}

func TestFeed_CancelClosesChannel(t *testing.T) {
	f := NewFeed[string]()
	defer f.Close()

	ch, cancel := f.Subscribe()
	require.Equal(t, 1, f.Len())
	cancel()
	cancel()
	require.Equal(t, 0, f.Len())

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestFeed_CloseClosesSubscribersAndIgnoresLatePublish(t *testing.T) {
	f := NewFeed[int]()
	ch, _ := f.Subscribe()

	f.Close()
	f.Close()
	f.Publish(1)

	require.Eventually(t, func() bool {
		_, ok := <-ch
		return !ok
	}, time.Second, 5*time.Millisecond)

	late, cancel := f.Subscribe()
	defer cancel()
	_, ok := <-late
	require.False(t, ok)
}
