package reactive_test

import (
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Storefront/internal/reactive"
)

func TestCell_SetNotifiesSynchronously(t *testing.T) {
	c := reactive.NewCell(1)

	var got []int
	c.Subscribe(func(v int) { got = append(got, v) })

	c.Set(2)
	c.Set(3)

	assert.Equal(t, []int{2, 3}, got)
	assert.Equal(t, 3, c.Get())
}

func TestCell_WithEqualSuppressesUnchanged(t *testing.T) {
	c := reactive.NewCell(false, reactive.WithEqual(reactive.Same[bool]))

	calls := 0
	c.Subscribe(func(bool) { calls++ })

	c.Set(false)
	c.Set(true)
	c.Set(true)

	assert.Equal(t, 1, calls)
}

func TestCell_WithoutEqualAlwaysNotifies(t *testing.T) {
	c := reactive.NewCell("")

	calls := 0
	c.Subscribe(func(string) { calls++ })

	c.Set("")
	c.Set("")

	assert.Equal(t, 2, calls)
}

func TestCell_Cancel(t *testing.T) {
	c := reactive.NewCell(0)

	var a, b int
	cancelA := c.Subscribe(func(v int) { a = v })
	c.Subscribe(func(v int) { b = v })

	c.Set(1)
	cancelA()
	cancelA()
	c.Set(2)

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestCell_SubscriberCanReadDuringNotify(t *testing.T) {
	c := reactive.NewCell(0)

	var seen int
	c.Subscribe(func(int) { seen = c.Get() })
	c.Set(7)

	assert.Equal(t, 7, seen)
}

func TestCell_UpdateIsAtomic(t *testing.T) {
	c := reactive.NewCell(0)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update(func(n int) int { return n + 1 })
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, c.Get())
}

func TestCell_NotificationsFollowWriteOrder(t *testing.T) {
	c := reactive.NewCell(0)

	var mu sync.Mutex
	var got []int
	c.Subscribe(func(v int) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update(func(n int) int { return n + 1 })
		}()
	}
	wg.Wait()

	require.Len(t, got, 50)
	assert.True(t, slices.IsSorted(got))
}

func TestReadOnly_ClonesValues(t *testing.T) {
	c := reactive.NewCell([]int{1, 2, 3})
	ro := c.ReadOnly(slices.Clone[[]int])

	v := ro.Get()
	v[0] = 99

	assert.Equal(t, []int{1, 2, 3}, c.Get())

	_, writable := ro.(*reactive.Cell[[]int])
	assert.False(t, writable)
}

func TestComputed_TracksSource(t *testing.T) {
	src := reactive.NewCell(0)
	positive := reactive.Computed[int, bool](src.ReadOnly(nil), func(n int) bool { return n > 0 }, reactive.Same[bool])

	var changes []bool
	positive.Subscribe(func(v bool) { changes = append(changes, v) })

	assert.False(t, positive.Get())

	src.Set(1)
	src.Set(2)
	src.Set(0)

	assert.Equal(t, []bool{true, false}, changes)
	assert.False(t, positive.Get())
}

func TestCell_SubscriberCanWriteItsOwnCell(t *testing.T) {
	c := reactive.NewCell(0)

	var got []int
	c.Subscribe(func(v int) {
		got = append(got, v)
		if v < 3 {
			c.Update(func(n int) int { return n + 1 })
		}
	})

	done := make(chan struct{})
	go func() {
		c.Set(1)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("write from inside a subscriber never returned")
	}

	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 3, c.Get())
}

func TestCell_NestedWritesKeepOrderForEverySubscriber(t *testing.T) {
	c := reactive.NewCell("")

	var first, second []string
	c.Subscribe(func(v string) {
		first = append(first, v)
		if v == "a" {
			c.Set("b")
		}
	})
	c.Subscribe(func(v string) { second = append(second, v) })

	c.Set("a")

	assert.Equal(t, []string{"a", "b"}, first)
	assert.Equal(t, []string{"a", "b"}, second, "second subscriber sees a before b")
}

func TestCell_SetDeferredNotifiesOnCall(t *testing.T) {
	c := reactive.NewCell(0)

	var got []int
	c.Subscribe(func(v int) { got = append(got, v) })

	notify := c.SetDeferred(5)
	assert.Equal(t, 5, c.Get())
	assert.Empty(t, got)

	notify()
	assert.Equal(t, []int{5}, got)
}

func TestCell_PanickingSubscriberDoesNotWedgeCell(t *testing.T) {
	c := reactive.NewCell(0)

	var got []int
	c.Subscribe(func(v int) {
		if v == 1 {
			panic("subscriber failed")
		}
		got = append(got, v)
	})

	assert.Panics(t, func() { c.Set(1) })

	c.Set(2)
	assert.Equal(t, []int{2}, got)
}
