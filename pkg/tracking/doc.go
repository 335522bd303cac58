// Package tracking implements the delivery lifecycle for outbound email:
// tracked sends, webhook-driven status transitions, retry scheduling with
// clamped exponential backoff, bulk campaigns and delivery analytics.
//
// # Lifecycle
//
// Every tracked send creates a message row with status pending before the
// provider call, then advances it to sent or failed. Provider webhooks move
// accepted messages further along the graph:
//
//	pending → sent → delivered → opened → clicked
//
// with bounced and complaint as side branches and failed → sent as the retry
// path. Retry exhaustion lands in the explicit terminal dead_lettered status.
// The graph is enforced: a callback that would move a message backward is
// counted and skipped, never applied, and every status write is a
// compare-and-set keyed on the current status so concurrent webhooks cannot
// produce lost updates.
//
// # Components
//
//   - Sender: tracked single sends (pre-create, attempt, record outcome).
//   - Ingestor: applies provider delivery callbacks, tolerating out-of-order
//     arrival and the callback-before-commit race.
//   - Retrier: one retry pass over due failed messages; pair it with a ticker
//     or external scheduler.
//   - BulkSender: batched campaign sends with intra-batch fan-out and
//     inter-batch pacing.
//   - Analytics: aggregate delivery/open/click/bounce rates.
//
// Storage is pluggable through the Store interface; MemoryStore backs tests
// and development, PostgresStore production.
package tracking
