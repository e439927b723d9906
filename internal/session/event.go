package session

import "github.com/temirov/turtle/internal/interpreter"

// EventName identifies the kind of an event sent to a client.
type EventName string

// Events sent to clients.
const (
	EventTask    EventName = "task"
	EventExecute EventName = "execute"
)

// TaskStatus describes the lifecycle of a program run.
type TaskStatus string

// Task statuses reported through EventTask.
const (
	TaskStatusRunning TaskStatus = "running"
	TaskStatusFailed  TaskStatus = "failed"
	TaskStatusDone    TaskStatus = "done"
)

// TaskData is the payload of EventTask.
type TaskData struct {
	Status  TaskStatus `json:"status"`
	Message string     `json:"message,omitempty"`
}

// Event is a single message for a client. Data holds TaskData for EventTask
// and an interpreter.Command for EventExecute.
type Event struct {
	Name EventName `json:"event"`
	Data any       `json:"data"`
}

// Emitter delivers events to one client.
type Emitter interface {
	Emit(event Event) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(event Event) error

// Emit calls the function.
func (emitterFunc EmitterFunc) Emit(event Event) error {
	return emitterFunc(event)
}

// TaskEvent builds an EventTask event.
func TaskEvent(status TaskStatus, message string) Event {
	return Event{Name: EventTask, Data: TaskData{Status: status, Message: message}}
}

// ExecuteEvent builds an EventExecute event.
func ExecuteEvent(command interpreter.Command) Event {
	return Event{Name: EventExecute, Data: command}
}

// IsTerminal reports whether event ends a run.
func (event Event) IsTerminal() bool {
	if event.Name != EventTask {
		return false
	}
	data, isTask := event.Data.(TaskData)
	return isTask && (data.Status == TaskStatusDone || data.Status == TaskStatusFailed)
}
