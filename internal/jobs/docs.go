// Package jobs provides scheduled background tasks for the order service.
//
// Jobs use github.com/robfig/cron/v3 with a seconds field.
//
// # Available Jobs
//
// PendingDispatchJob sweeps delivery orders whose courier booking failed at
// submission time and dispatches them again through the routing engine. It runs
// on PENDING_DISPATCH_SCHEDULE (every two minutes by default) and skips a tick
// while the previous sweep is still running. Orders that failed
// PENDING_DISPATCH_MAX_ATTEMPTS times are left for operations.
//
// # Usage
//
//	jobManager := jobs.NewJobManager().
//		Add("pending dispatch", jobs.NewPendingDispatchJob(handler, cfg, logger))
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// A job that fails to start stops the jobs already running.
package jobs
