// Package swiper implements preemptive ownership of shared, single-slot
// resources for a cooperative robotics control loop: a revocable Cell
// holding one resource, and a preemptible Task wrapper that claims a set of
// cells atomically, stealing them from whoever held them before, and
// reports back the moment any of them is stolen back.
//
// The two core packages, cell and task, are the whole of the ownership
// contract. cell depends only on the handle identity package; task depends
// on cell and handle, and on tracing so that Examine opens its own spans.
// The remaining packages — scheduler, diagnostics, tracing, queue — are the
// ambient infrastructure a host application wires around that contract:
//
//	cfg := swiper.DefaultConfig()
//	svc, _ := swiper.New(ctx, swiper.WithConfig(cfg))
//
//	drive := cell.New("drive", 0)
//	a := task.Wrap1("approach", drive, func(b *task.Borrow[int]) task.Inner[int] {
//		return task.StepFunc[int](func(ctx context.Context) (int, bool, error) {
//			*b.Get()++
//			return 0, false, nil
//		})
//	})
//	scheduler.Submit(svc.Scheduler(), a, func(_ int, err error) {
//		// handle completion or *task.PreemptionError
//	})
//	go svc.Scheduler().Run(ctx)
//
// The task and scheduler package tests run several tasks contending over
// shared cells; the module ships no separate example program.
package swiper
