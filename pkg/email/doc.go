// Package email provides the outbound email channel for the notification
// pipeline.
//
// EmailSender is the single logical provider operation: it accepts normalized
// send parameters and returns the provider-assigned message ID that delivery
// webhooks later reference. Two implementations are included:
//
//   - NewPostmarkClient: production sender backed by Postmark's transactional
//     API with open/click tracking enabled.
//   - NewDevSender: local development sender that writes emails to disk and
//     fabricates message IDs so the rest of the pipeline is exercisable
//     offline.
//
// The package performs no retries; failed sends are recorded by the tracking
// layer and retried by its scheduler.
package email
