package domain

import "context"

// HookEvent names a point in the record lifecycle.
type HookEvent string

const (
	// BeforeSave runs before validation on create and on update. Record
	// packages derive their computed fields here.
	BeforeSave HookEvent = "before_save"

	// AfterSave and AfterDelete run after commit; their errors are only logged.
	AfterSave   HookEvent = "after_save"
	AfterDelete HookEvent = "after_delete"
)

// Hook runs at a lifecycle point.
type Hook[T any] func(ctx context.Context, rec T) error

// HookRegistry holds the hooks of one record kind.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{hooks: make(map[HookEvent][]Hook[T])}
}

// On appends hook to event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

func (r *HookRegistry[T]) OnBeforeSave(hook Hook[T]) { r.On(BeforeSave, hook) }

func (r *HookRegistry[T]) OnAfterSave(hook Hook[T]) { r.On(AfterSave, hook) }

// Run calls the hooks of event in registration order and stops at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, rec T) error {
	for _, h := range r.hooks[event] {
		if err := h(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
