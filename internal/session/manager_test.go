package session_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/temirov/turtle/internal/interpreter"
	"github.com/temirov/turtle/internal/session"
)

const (
	testClientIdentifierConstant = "client-1"
	testWaitTimeoutConstant      = 5 * time.Second
	testLongProgramConstant      = "repeat 100000 [fd 1 rt 1]"
)

func TestMain(mainInstance *testing.M) {
	goleak.VerifyTestMain(mainInstance)
}

type recordingEmitter struct {
	mutex     sync.Mutex
	events    []session.Event
	executed  chan struct{}
	terminal  chan struct{}
	failWith  error
	failAfter int
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{executed: make(chan struct{}, 1), terminal: make(chan struct{}, 16)}
}

func (emitter *recordingEmitter) Emit(event session.Event) error {
	emitter.mutex.Lock()
	defer emitter.mutex.Unlock()

	if emitter.failWith != nil && len(emitter.events) >= emitter.failAfter {
		return emitter.failWith
	}
	emitter.events = append(emitter.events, event)
	if event.Name == session.EventExecute {
		select {
		case emitter.executed <- struct{}{}:
		default:
		}
	}
	if event.IsTerminal() {
		emitter.terminal <- struct{}{}
	}
	return nil
}

func (emitter *recordingEmitter) snapshot() []session.Event {
	emitter.mutex.Lock()
	defer emitter.mutex.Unlock()
	return append([]session.Event(nil), emitter.events...)
}

func waitFor(testInstance *testing.T, signal <-chan struct{}) {
	testInstance.Helper()
	select {
	case <-signal:
	case <-time.After(testWaitTimeoutConstant):
		testInstance.Fatal("timed out waiting for session event")
	}
}

func taskStatuses(events []session.Event) []session.TaskStatus {
	statuses := []session.TaskStatus{}
	for _, event := range events {
		if data, isTask := event.Data.(session.TaskData); isTask {
			statuses = append(statuses, data.Status)
		}
	}
	return statuses
}

func countTerminal(events []session.Event) int {
	terminal := 0
	for _, event := range events {
		if event.IsTerminal() {
			terminal++
		}
	}
	return terminal
}

func TestManagerStreamsCommands(testInstance *testing.T) {
	manager := session.NewManager(session.Configuration{}, nil)
	defer manager.Shutdown()

	emitter := newRecordingEmitter()
	manager.Start(testClientIdentifierConstant, "repeat 2 [fd 10 rt 90]", emitter)
	waitFor(testInstance, emitter.terminal)

	events := emitter.snapshot()
	require.Len(testInstance, events, 6)
	require.Equal(testInstance, session.TaskEvent(session.TaskStatusRunning, ""), events[0])
	require.Equal(testInstance, session.ExecuteEvent(interpreter.ValueCommand(interpreter.CommandForward, 10)), events[1])
	require.Equal(testInstance, session.ExecuteEvent(interpreter.ValueCommand(interpreter.CommandRight, 90)), events[2])
	require.Equal(testInstance, session.TaskEvent(session.TaskStatusDone, ""), events[5])
	require.False(testInstance, manager.Running(testClientIdentifierConstant))
}

func TestManagerReportsFailures(testInstance *testing.T) {
	testCases := []struct {
		name             string
		source           string
		expectedExecuted int
		expectedMessage  string
	}{
		{
			name:             "parse_error",
			source:           "fd 10 [",
			expectedExecuted: 0,
			expectedMessage:  "line 1",
		},
		{
			name:             "runtime_error",
			source:           "fd 10 fd :missing",
			expectedExecuted: 1,
			expectedMessage:  "missing",
		},
		{
			name:             "invalid_color",
			source:           "setpc purple",
			expectedExecuted: 0,
			expectedMessage:  "purple",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			manager := session.NewManager(session.Configuration{}, nil)
			defer manager.Shutdown()

			emitter := newRecordingEmitter()
			manager.Start(testClientIdentifierConstant, testCase.source, emitter)
			waitFor(subtest, emitter.terminal)

			events := emitter.snapshot()
			require.Len(subtest, events, testCase.expectedExecuted+2)
			require.Equal(subtest, []session.TaskStatus{session.TaskStatusRunning, session.TaskStatusFailed}, taskStatuses(events))

			failure, isTask := events[len(events)-1].Data.(session.TaskData)
			require.True(subtest, isTask)
			require.Contains(subtest, failure.Message, testCase.expectedMessage)
		})
	}
}

func TestManagerStopEndsRunWithDone(testInstance *testing.T) {
	manager := session.NewManager(session.Configuration{EmitInterval: time.Millisecond}, nil)
	defer manager.Shutdown()

	emitter := newRecordingEmitter()
	manager.Start(testClientIdentifierConstant, testLongProgramConstant, emitter)
	waitFor(testInstance, emitter.executed)
	require.True(testInstance, manager.Running(testClientIdentifierConstant))

	manager.Stop(testClientIdentifierConstant)
	require.False(testInstance, manager.Running(testClientIdentifierConstant))

	events := emitter.snapshot()
	require.Equal(testInstance, 1, countTerminal(events))
	require.Equal(testInstance, session.TaskEvent(session.TaskStatusDone, ""), events[len(events)-1])

	manager.Stop(testClientIdentifierConstant)
	require.Len(testInstance, emitter.snapshot(), len(events))
}

func TestManagerStartReplacesPreviousRun(testInstance *testing.T) {
	manager := session.NewManager(session.Configuration{EmitInterval: time.Millisecond}, nil)
	defer manager.Shutdown()

	emitter := newRecordingEmitter()
	manager.Start(testClientIdentifierConstant, testLongProgramConstant, emitter)
	waitFor(testInstance, emitter.executed)

	manager.Start(testClientIdentifierConstant, "bk 5", emitter)
	waitFor(testInstance, emitter.terminal)
	waitFor(testInstance, emitter.terminal)

	events := emitter.snapshot()
	require.Equal(testInstance, 2, countTerminal(events))
	require.Equal(testInstance, session.TaskEvent(session.TaskStatusDone, ""), events[len(events)-1])
	require.Equal(testInstance, session.ExecuteEvent(interpreter.ValueCommand(interpreter.CommandBackward, 5)), events[len(events)-2])
	require.Equal(testInstance, session.TaskEvent(session.TaskStatusRunning, ""), events[len(events)-3])
}

func TestManagerRemoveAndShutdownStopRuns(testInstance *testing.T) {
	manager := session.NewManager(session.Configuration{EmitInterval: time.Millisecond}, nil)

	firstEmitter := newRecordingEmitter()
	secondEmitter := newRecordingEmitter()
	manager.Start("first", testLongProgramConstant, firstEmitter)
	manager.Start("second", testLongProgramConstant, secondEmitter)
	waitFor(testInstance, firstEmitter.executed)
	waitFor(testInstance, secondEmitter.executed)

	manager.Remove("first")
	require.False(testInstance, manager.Running("first"))
	require.Equal(testInstance, 1, countTerminal(firstEmitter.snapshot()))

	manager.Shutdown()
	require.False(testInstance, manager.Running("second"))
	require.Equal(testInstance, 1, countTerminal(secondEmitter.snapshot()))
}

func TestManagerStopsWhenEmitterFails(testInstance *testing.T) {
	manager := session.NewManager(session.Configuration{}, nil)
	defer manager.Shutdown()

	emitter := newRecordingEmitter()
	emitter.failWith = errors.New("connection closed")
	emitter.failAfter = 2
	manager.Start(testClientIdentifierConstant, testLongProgramConstant, emitter)

	require.Eventually(testInstance, func() bool {
		return !manager.Running(testClientIdentifierConstant)
	}, testWaitTimeoutConstant, time.Millisecond)
	require.Len(testInstance, emitter.snapshot(), 2)
}

func TestEventIsTerminal(testInstance *testing.T) {
	require.False(testInstance, session.TaskEvent(session.TaskStatusRunning, "").IsTerminal())
	require.True(testInstance, session.TaskEvent(session.TaskStatusFailed, "boom").IsTerminal())
	require.True(testInstance, session.TaskEvent(session.TaskStatusDone, "").IsTerminal())
	require.False(testInstance, session.ExecuteEvent(interpreter.Command{Name: interpreter.CommandPenUp}).IsTerminal())
}

type blockingEmitter struct {
	blocked chan struct{}
	release chan struct{}
	once    sync.Once
}

func (emitter *blockingEmitter) Emit(event session.Event) error {
	if event.Name != session.EventExecute {
		return nil
	}
	emitter.once.Do(func() { close(emitter.blocked) })
	<-emitter.release
	return nil
}

func TestManagerSlowClientDoesNotBlockOthers(testInstance *testing.T) {
	manager := session.NewManager(session.Configuration{}, nil)
	defer manager.Shutdown()

	slowEmitter := &blockingEmitter{blocked: make(chan struct{}), release: make(chan struct{})}
	manager.Start("slow", "fd 1 fd 2", slowEmitter)
	waitFor(testInstance, slowEmitter.blocked)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		manager.Stop("slow")
	}()

	otherEmitter := newRecordingEmitter()
	started := make(chan struct{})
	go func() {
		defer close(started)
		manager.Start("other", "fd 1", otherEmitter)
	}()
	waitFor(testInstance, started)
	waitFor(testInstance, otherEmitter.terminal)
	require.Equal(testInstance, []session.TaskStatus{session.TaskStatusRunning, session.TaskStatusDone}, taskStatuses(otherEmitter.snapshot()))
	require.False(testInstance, manager.Running("other"))
	require.True(testInstance, manager.Running("slow"))

	select {
	case <-stopped:
		testInstance.Fatal("stop returned while the slow emitter was still blocked")
	default:
	}

	close(slowEmitter.release)
	waitFor(testInstance, stopped)
	require.False(testInstance, manager.Running("slow"))
}

func TestManagerStartWaitsForPreviousRunWithoutBlocking(testInstance *testing.T) {
	manager := session.NewManager(session.Configuration{}, nil)
	defer manager.Shutdown()

	slowEmitter := &blockingEmitter{blocked: make(chan struct{}), release: make(chan struct{})}
	manager.Start(testClientIdentifierConstant, "fd 1 fd 2", slowEmitter)
	waitFor(testInstance, slowEmitter.blocked)

	replacement := newRecordingEmitter()
	manager.Start(testClientIdentifierConstant, "bk 5", replacement)
	require.Empty(testInstance, replacement.snapshot())

	close(slowEmitter.release)
	waitFor(testInstance, replacement.terminal)
	require.Equal(testInstance, []session.TaskStatus{session.TaskStatusRunning, session.TaskStatusDone}, taskStatuses(replacement.snapshot()))
}
