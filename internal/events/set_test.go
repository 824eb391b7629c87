package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	t.Parallel()

	var s Set
	s.Add(ContainerCreatedEvent{Container: "db", ContainerID: "1"})
	s.Add(ContainerStartedEvent{Container: "db"})
	s.Add(ContainerCreatedEvent{Container: "app", ContainerID: "2"})
	s.Add(ImagePullFailedEvent{Image: "x", Message: "boom"})

	assert.Equal(t, 4, s.Len())
	assert.True(t, s.Contains(ContainerStartedEvent{Container: "db"}))
	assert.False(t, s.Contains(ContainerStartedEvent{Container: "app"}))

	created := OfType[ContainerCreatedEvent](s)
	require.Len(t, created, 2)
	assert.Equal(t, "db", created[0].Container)
	assert.Equal(t, "app", created[1].Container)

	app, ok := FirstOfType(s, func(e ContainerCreatedEvent) bool { return e.Container == "app" })
	require.True(t, ok)
	assert.Equal(t, "2", app.ContainerID)
	assert.False(t, AnyOfType(s, func(e ContainerCreatedEvent) bool { return e.Container == "ghost" }))

	failures := s.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "boom", failures[0].FailureMessage())
}

func TestSetSnapshotIsIndependent(t *testing.T) {
	t.Parallel()

	s := NewSet(TaskNetworkCreatedEvent{NetworkID: "n"})
	snapshot := s.Snapshot()
	s.Add(TaskNetworkDeletedEvent{})

	assert.Equal(t, 1, snapshot.Len())
	assert.Equal(t, 2, s.Len())
}

func TestIsFailure(t *testing.T) {
	t.Parallel()

	assert.True(t, IsFailure(UserInterruptedExecutionEvent{}))
	assert.True(t, IsFailure(ContainerStopFailedEvent{Container: "db"}))
	assert.False(t, IsFailure(ContainerStoppedEvent{Container: "db"}))
	assert.False(t, IsFailure(RunningContainerExitedEvent{Container: "app", ExitCode: 3}))
}

func TestSinkFunc(t *testing.T) {
	t.Parallel()

	var got []Event
	var sink Sink = SinkFunc(func(e Event) { got = append(got, e) })
	sink.PostEvent(TaskNetworkDeletedEvent{})

	assert.Equal(t, []Event{TaskNetworkDeletedEvent{}}, got)
}
