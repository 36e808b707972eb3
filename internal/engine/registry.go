package engine

import (
	"context"
	"fmt"

	"github.com/edvin/panelengine/internal/model"
)

// Handler performs the provisioning work for one pending row. The same
// handler serves every transition of its entity kind; it branches on
// task.Status. Process must be idempotent enough that a row retried after a
// prior failure can be safely reprocessed.
type Handler interface {
	Process(ctx context.Context, task model.TaskRow) error
}

// BatchHandler processes all pending rows of its kind in one invocation and
// reports whether any row changed. It writes per-row outcomes itself.
type BatchHandler interface {
	ProcessAll(ctx context.Context) (didWork bool, err error)
}

// HandlerConstructor builds a handler on first use, so handler-side one-time
// setup only happens when its kind has eligible rows.
type HandlerConstructor func() (Handler, error)

// BatchConstructor builds a batch handler on first use.
type BatchConstructor func() (BatchHandler, error)

// Registry maps entity kinds to handler constructors. The mapping is fixed
// at process start; resolution is lazy and cached per run.
type Registry struct {
	build      map[model.EntityKind]HandlerConstructor
	buildBatch map[model.EntityKind]BatchConstructor
	handlers   map[model.EntityKind]Handler
	batch      map[model.EntityKind]BatchHandler
}

func NewRegistry() *Registry {
	return &Registry{
		build:      make(map[model.EntityKind]HandlerConstructor),
		buildBatch: make(map[model.EntityKind]BatchConstructor),
		handlers:   make(map[model.EntityKind]Handler),
		batch:      make(map[model.EntityKind]BatchHandler),
	}
}

func (r *Registry) Register(kind model.EntityKind, ctor HandlerConstructor) {
	r.build[kind] = ctor
}

func (r *Registry) RegisterBatch(kind model.EntityKind, ctor BatchConstructor) {
	r.buildBatch[kind] = ctor
}

// Resolve returns the handler for kind, constructing it on first use.
// A missing registration or failing constructor is category-level.
func (r *Registry) Resolve(kind model.EntityKind) (Handler, error) {
	if h, ok := r.handlers[kind]; ok {
		return h, nil
	}
	ctor, ok := r.build[kind]
	if !ok {
		return nil, fmt.Errorf("no handler registered for %s", kind)
	}
	h, err := ctor()
	if err != nil {
		return nil, fmt.Errorf("construct %s handler: %w", kind, err)
	}
	r.handlers[kind] = h
	return h, nil
}

// ResolveBatch returns the batch handler for kind, constructing it on first use.
func (r *Registry) ResolveBatch(kind model.EntityKind) (BatchHandler, error) {
	if h, ok := r.batch[kind]; ok {
		return h, nil
	}
	ctor, ok := r.buildBatch[kind]
	if !ok {
		return nil, fmt.Errorf("no batch handler registered for %s", kind)
	}
	h, err := ctor()
	if err != nil {
		return nil, fmt.Errorf("construct %s batch handler: %w", kind, err)
	}
	r.batch[kind] = h
	return h, nil
}
