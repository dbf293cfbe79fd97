// Package notify routes notification entries to presentation targets and
// tracks their delivery until every target agrees the entry is gone.
//
// A Center owns the canonical tables of pending and active entries. Each
// presentation channel (status bar, in-layout board, floating overlay) is a
// Handler bound to one Target bit. Handlers accept or reject work
// asynchronously on their own looper and report back to the Center, which
// reconciles the per-target acknowledgements and tells Listeners about
// arrivals, updates and cancellations on its main looper.
//
// Basic usage:
//
//	d := notify.New(notify.WithStatusBar(bar), notify.WithBoard(board))
//	if err := d.Init(ctx, notify.TargetAll); err != nil {
//		return err
//	}
//	defer d.Close(ctx)
//
//	e := notify.NewBuilder(notify.TargetRemote | notify.TargetLocal).
//		Title("Build finished").
//		Text("main is green").
//		Tag("ci").
//		Build()
//	d.Send(e)
//
// Entries addressed to no target are delivered straight to Listeners.
package notify
