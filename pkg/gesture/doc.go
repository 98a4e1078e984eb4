/*
Package gesture turns pointer interactions into history entries.

A Machine starts Pressed, moves to Moving on the first pointer move and ends
Released or Cancelled. Every move rebuilds the command for the current
pointer position and submits it through a command.OngoingDispatcher, so the
document shows the effect live while the object stays locked. Release
commits the last command as a single stack entry; cancel reverts it.

	m := gesture.NewMoveConstraint(stack, locks, domain.RootScenarioPath(), id, press)
	defer m.Abort(ctx)
	_ = m.Move(ctx, p)
	_ = m.Release(ctx)
*/
package gesture
