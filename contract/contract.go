//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"github.com/Lynxchester/lynxchat/domain"
	"github.com/Lynxchester/lynxchat/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself.
// Supervision (panic recovery, restarts) is the supervisor's job.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one client connection's outbound side. Delivery is best
// effort: a sink may drop an event rather than block the caller.
type EventSink interface {
	Consume(e event.DomainEvent)
}

// IPresence maps live connection ids to identities and sinks.
type IPresence interface {
	Register(connID string, identity domain.Identity, sink EventSink)
	Unregister(connID string)
	FindByUsername(username string) (string, bool)
	Identity(connID string) (domain.Identity, bool)
	Sink(connID string) (EventSink, bool)
}
