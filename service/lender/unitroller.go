package lender

import (
	"context"

	"lender/core"
	"lender/pkg/compound"
)

// unitroller forwards every controller call to the current implementation.
// Markets hold the proxy, so swapping the implementation needs no market change.
type unitroller struct {
	core.IController
	pending core.IController
}

// SetPendingImplementation first half of the controller swap
func (e *Engine) SetPendingImplementation(ctx context.Context, caller string, impl core.IController) error {
	return e.run(ctx, "set_pending_implementation", func(ctx context.Context, tx *core.Tx) error {
		if err := compound.Require(tx.Risk().IsAdmin(caller), core.ErrUnauthorized, "unitroller/set-pending/unauthorized"); err != nil {
			return err
		}

		if err := compound.Require(impl != nil, core.ErrInvalidInput, "unitroller/set-pending/nil-implementation"); err != nil {
			return err
		}

		tx.OnCommit(func() {
			e.controller.pending = impl
		})
		tx.Emit(core.EventNewImplementation, "", caller, core.NewEventData().
			Put(core.EventKeyAction, "pending"))
		return nil
	})
}

// AcceptImplementation second half of the controller swap, impl must be the pending one
func (e *Engine) AcceptImplementation(ctx context.Context, caller string, impl core.IController) error {
	return e.run(ctx, "accept_implementation", func(ctx context.Context, tx *core.Tx) error {
		if err := compound.Require(tx.Risk().IsAdmin(caller), core.ErrUnauthorized, "unitroller/accept/unauthorized"); err != nil {
			return err
		}

		p := e.controller.pending
		if err := compound.Require(impl != nil && p != nil && impl == p, core.ErrUnauthorized, "unitroller/accept/not-pending"); err != nil {
			return err
		}

		if oracle := e.controller.Oracle(); oracle != nil && impl.Oracle() == nil {
			if err := impl.SetPriceOracle(ctx, tx, caller, oracle); err != nil {
				return err
			}
		}

		tx.OnCommit(func() {
			e.controller.IController = impl
			e.controller.pending = nil
		})
		tx.Emit(core.EventNewImplementation, "", caller, core.NewEventData().
			Put(core.EventKeyAction, "accepted"))
		return nil
	})
}
