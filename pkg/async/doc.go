// Package async provides a minimal Future abstraction for fan-out/fan-in
// concurrency.
//
// The notification pipeline uses it in two places: dispatching email and SMS
// channels in parallel within a single routing call, and fanning out tracked
// sends within a bulk batch while preserving per-recipient result order.
//
//	futures := make([]*async.Future[*Result], len(items))
//	for i, item := range items {
//	    futures[i] = async.Async(ctx, item, process)
//	}
//	results, err := async.WaitAll(futures...)
package async
