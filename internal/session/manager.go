package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/turtle/internal/interpreter"
	"github.com/temirov/turtle/internal/logo"
)

const (
	// DefaultEmitInterval paces execute events so clients can animate them.
	DefaultEmitInterval = 10 * time.Millisecond

	sessionStartedMessageConstant    = "program run started"
	sessionFinishedMessageConstant   = "program run finished"
	sessionFailedMessageConstant     = "program run failed"
	sessionStoppedMessageConstant    = "program run stopped"
	emitFailedMessageConstant        = "unable to deliver event"
	logFieldClientIdentifierConstant = "client_id"
	logFieldEmittedCommandsConstant  = "emitted_commands"
	logFieldEventConstant            = "event"
)

// Configuration tunes program runs.
type Configuration struct {
	EmitInterval time.Duration
	Interpreter  interpreter.Options
}

// Manager owns the running program of every client.
type Manager struct {
	logger       *zap.Logger
	interpreter  *interpreter.Interpreter
	emitInterval time.Duration

	baseContext context.Context
	cancelAll   context.CancelFunc

	mutex   sync.Mutex
	workers map[string]*worker
}

type worker struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (runningWorker *worker) stop() {
	runningWorker.cancel()
	<-runningWorker.done
}

func (runningWorker *worker) running() bool {
	select {
	case <-runningWorker.done:
		return false
	default:
		return true
	}
}

// NewManager constructs a Manager. A negative EmitInterval disables pacing.
func NewManager(configuration Configuration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	emitInterval := configuration.EmitInterval
	if emitInterval < 0 {
		emitInterval = 0
	}
	baseContext, cancelAll := context.WithCancel(context.Background())
	return &Manager{
		logger:       logger,
		interpreter:  interpreter.New(configuration.Interpreter),
		emitInterval: emitInterval,
		baseContext:  baseContext,
		cancelAll:    cancelAll,
		workers:      map[string]*worker{},
	}
}

// Start runs source for clientID in the background, stopping the client's
// previous run first. Every run emits a running event, then execute events,
// then exactly one failed or done event. The new run emits nothing until the
// previous run has finished; Start itself does not wait.
func (manager *Manager) Start(clientIdentifier string, source string, emitter Emitter) {
	runContext, cancel := context.WithCancel(manager.baseContext)
	runningWorker := &worker{cancel: cancel, done: make(chan struct{})}

	manager.mutex.Lock()
	previous := manager.workers[clientIdentifier]
	manager.workers[clientIdentifier] = runningWorker
	manager.mutex.Unlock()

	if previous != nil {
		previous.cancel()
	}
	go manager.run(runContext, runningWorker, previous, clientIdentifier, source, emitter)
}

// Stop cancels the client's run and waits for it to emit its final event.
// It does nothing when the client has no run.
func (manager *Manager) Stop(clientIdentifier string) {
	manager.mutex.Lock()
	runningWorker := manager.workers[clientIdentifier]
	manager.mutex.Unlock()

	if runningWorker != nil {
		runningWorker.stop()
	}
}

// Remove stops the client's run and forgets the client.
func (manager *Manager) Remove(clientIdentifier string) {
	manager.mutex.Lock()
	runningWorker := manager.workers[clientIdentifier]
	delete(manager.workers, clientIdentifier)
	manager.mutex.Unlock()

	if runningWorker != nil {
		runningWorker.stop()
	}
}

// Running reports whether the client has a program in progress.
func (manager *Manager) Running(clientIdentifier string) bool {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	runningWorker, exists := manager.workers[clientIdentifier]
	return exists && runningWorker.running()
}

// Shutdown stops every run. The Manager must not be used afterwards.
func (manager *Manager) Shutdown() {
	manager.cancelAll()

	manager.mutex.Lock()
	stoppedWorkers := make([]*worker, 0, len(manager.workers))
	for clientIdentifier, runningWorker := range manager.workers {
		stoppedWorkers = append(stoppedWorkers, runningWorker)
		delete(manager.workers, clientIdentifier)
	}
	manager.mutex.Unlock()

	for _, runningWorker := range stoppedWorkers {
		<-runningWorker.done
	}
}

func (manager *Manager) run(runContext context.Context, runningWorker *worker, previous *worker, clientIdentifier string, source string, emitter Emitter) {
	defer close(runningWorker.done)
	defer runningWorker.cancel()

	if previous != nil {
		<-previous.done
	}

	logger := manager.logger.With(zap.String(logFieldClientIdentifierConstant, clientIdentifier))
	logger.Debug(sessionStartedMessageConstant)

	if !manager.deliver(logger, emitter, TaskEvent(TaskStatusRunning, "")) {
		return
	}

	program, parseError := logo.Parse(source)
	if parseError != nil {
		logger.Info(sessionFailedMessageConstant, zap.Error(parseError))
		manager.deliver(logger, emitter, TaskEvent(TaskStatusFailed, parseError.Error()))
		return
	}

	emittedCommands := 0
	runError := manager.interpreter.Run(runContext, program, func(command interpreter.Command) error {
		if emittedCommands > 0 {
			if pauseError := manager.pause(runContext); pauseError != nil {
				return pauseError
			}
		}
		emittedCommands++
		return emitter.Emit(ExecuteEvent(command))
	})

	switch {
	case runError == nil:
		logger.Debug(sessionFinishedMessageConstant, zap.Int(logFieldEmittedCommandsConstant, emittedCommands))
	case errors.Is(runError, context.Canceled):
		logger.Debug(sessionStoppedMessageConstant, zap.Int(logFieldEmittedCommandsConstant, emittedCommands))
	default:
		logger.Info(sessionFailedMessageConstant, zap.Error(runError))
		manager.deliver(logger, emitter, TaskEvent(TaskStatusFailed, runError.Error()))
		return
	}
	manager.deliver(logger, emitter, TaskEvent(TaskStatusDone, ""))
}

func (manager *Manager) pause(runContext context.Context) error {
	if manager.emitInterval == 0 {
		return runContext.Err()
	}
	timer := time.NewTimer(manager.emitInterval)
	defer timer.Stop()
	select {
	case <-runContext.Done():
		return runContext.Err()
	case <-timer.C:
		return nil
	}
}

func (manager *Manager) deliver(logger *zap.Logger, emitter Emitter, event Event) bool {
	if emitError := emitter.Emit(event); emitError != nil {
		logger.Warn(emitFailedMessageConstant, zap.String(logFieldEventConstant, string(event.Name)), zap.Error(emitError))
		return false
	}
	return true
}
