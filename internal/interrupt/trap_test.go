package interrupt

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stevedore/internal/events"
)

type countingSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *countingSink) PostEvent(e events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *countingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func fakeTrap() (*Trap, *bool) {
	stopped := false
	return newTrap(func(chan<- os.Signal) {}, func(chan<- os.Signal) { stopped = true }), &stopped
}

func TestTrap_PostsInterruptOnce(t *testing.T) {
	t.Parallel()
	trap, _ := fakeTrap()
	sink := &countingSink{}
	var callbacks int
	var mu sync.Mutex

	trap.Arm(sink, func() {
		mu.Lock()
		callbacks++
		mu.Unlock()
	})
	trap.signals <- os.Interrupt
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
	trap.signals <- os.Interrupt
	trap.Disarm()

	assert.Equal(t, 1, sink.count())
	assert.Equal(t, []events.Event{events.UserInterruptedExecutionEvent{}}, sink.events)
	mu.Lock()
	assert.Equal(t, 1, callbacks)
	mu.Unlock()
}

func TestTrap_DisarmIsIdempotent(t *testing.T) {
	t.Parallel()
	trap, stopped := fakeTrap()
	sink := &countingSink{}

	trap.Arm(sink, nil)
	trap.Disarm()
	trap.Disarm()

	assert.True(t, *stopped)
	assert.Zero(t, sink.count())
}

// blockingSink holds PostEvent until release is closed.
type blockingSink struct {
	entered chan struct{}
	release chan struct{}
	countingSink
}

func (s *blockingSink) PostEvent(e events.Event) {
	close(s.entered)
	<-s.release
	s.countingSink.PostEvent(e)
}

func TestTrap_DisarmWaitsForInterruptInFlight(t *testing.T) {
	t.Parallel()
	trap, _ := fakeTrap()
	sink := &blockingSink{entered: make(chan struct{}), release: make(chan struct{})}

	// --- Arrange ---
	trap.Arm(sink, nil)
	trap.signals <- os.Interrupt
	<-sink.entered

	// --- Act ---
	disarmed := make(chan struct{})
	go func() {
		trap.Disarm()
		close(disarmed)
	}()

	// --- Assert ---
	select {
	case <-disarmed:
		t.Fatal("Disarm returned while the interrupt was still being posted")
	case <-time.After(50 * time.Millisecond):
	}

	close(sink.release)
	select {
	case <-disarmed:
	case <-time.After(time.Second):
		t.Fatal("Disarm did not return after the interrupt was posted")
	}
	assert.Equal(t, 1, sink.count())
}

func TestTrap_DisarmWithoutArm(t *testing.T) {
	t.Parallel()
	trap, stopped := fakeTrap()

	trap.Disarm()

	assert.True(t, *stopped)
}
