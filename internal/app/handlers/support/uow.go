package support

import (
	"context"

	"innkeep/internal/app/uow"
)

// BeginReadOnlyUnit reuses a unit of work from context when the middleware
// already opened one, or starts a short-lived read-only unit otherwise.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	unit, ok := uow.FromContext(ctx)
	if ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	newUnit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := ctx
	if injector, ok := newUnit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, newUnit)
	cleanup := func() {
		_ = newUnit.Rollback(execCtx)
	}
	return newUnit, execCtx, cleanup, nil
}

// WriteUnit wraps a unit of work that may be owned either by the command
// middleware or by the handler itself. Commit and Rollback are no-ops when
// the middleware owns the transaction.
type WriteUnit struct {
	uow.UnitOfWork
	managed   bool
	committed bool
}

// BeginWriteUnit reuses a middleware-owned unit from context or starts a new
// one with the given options.
func BeginWriteUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions) (*WriteUnit, context.Context, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return &WriteUnit{UnitOfWork: unit}, ctx, nil
	}
	if factory == nil {
		return nil, ctx, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, unit)
	return &WriteUnit{UnitOfWork: unit, managed: true}, execCtx, nil
}

// Commit commits a handler-owned unit; middleware-owned units commit in the
// middleware instead.
func (w *WriteUnit) Commit(ctx context.Context) error {
	if !w.managed {
		return nil
	}
	if err := w.UnitOfWork.Commit(ctx); err != nil {
		return err
	}
	w.committed = true
	return nil
}

// Close rolls back when Commit never ran. Safe to defer unconditionally.
func (w *WriteUnit) Close(ctx context.Context) {
	if w.managed && !w.committed {
		_ = w.UnitOfWork.Rollback(ctx)
	}
}
