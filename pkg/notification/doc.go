// Package notification is the entry point of the delivery pipeline: it turns
// business events into persisted notification records and routes them to
// delivery channels according to user preferences.
//
// The Router persists every notification before attempting delivery, so the
// record survives provider outages. Email goes through the tracked send path
// (see the tracking package) and carries a full delivery lifecycle; SMS is
// fire-and-forget. Per-channel failures never propagate to the business
// caller.
//
// # Categories and payloads
//
// Each notification carries a Category naming the business event and, for the
// policy/claim/payment categories, a typed Payload variant validated at the
// Router boundary. Payloads provide the variables the category's templates
// substitute.
//
// # Usage
//
//	router := notification.NewRouter(storage, users, resolver, emails,
//	    notification.WithSMSSender(texter),
//	)
//
//	notif, err := router.Create(ctx, userID,
//	    notification.CategoryClaimSubmitted,
//	    "Claim received", "We received your claim and will be in touch.",
//	    notification.ClaimPayload{ClaimNumber: "CLM-1042"},
//	)
//
// Storage implementations cover in-memory (tests and development), Redis, and
// PostgreSQL. UserDirectory is the integration point with the owning
// application's user records.
package notification
