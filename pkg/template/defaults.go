package template

// builtinDefaults returns the fallback templates used when the store has no
// active template for a name. Names match notification categories in
// lowercase.
func builtinDefaults() map[string]Template {
	defaults := []Template{
		{
			Name:    "welcome",
			Subject: "Welcome, {{.firstName}}!",
			HTML:    "<h1>Welcome, {{.firstName}}!</h1><p>Your account is ready. You can manage your policies and claims from your dashboard.</p>",
			Text:    "Welcome, {{.firstName}}! Your account is ready. You can manage your policies and claims from your dashboard.",
			Active:  true,
		},
		{
			Name:    "policy_created",
			Subject: "Your policy {{.policyNumber}} is active",
			HTML:    "<h1>Policy {{.policyNumber}} is active</h1><p>Your {{.productName}} coverage has started. Keep this email for your records.</p>",
			Text:    "Your {{.productName}} policy {{.policyNumber}} is active. Keep this email for your records.",
			Active:  true,
		},
		{
			Name:    "policy_renewed",
			Subject: "Policy {{.policyNumber}} renewed",
			HTML:    "<h1>Policy renewed</h1><p>Your policy {{.policyNumber}} has been renewed and now runs until {{.expiresAt}}.</p>",
			Text:    "Your policy {{.policyNumber}} has been renewed and now runs until {{.expiresAt}}.",
			Active:  true,
		},
		{
			Name:    "claim_submitted",
			Subject: "Claim {{.claimNumber}} received",
			HTML:    "<h1>We received your claim</h1><p>Claim {{.claimNumber}} has been submitted and is awaiting review. We will keep you posted.</p>",
			Text:    "Claim {{.claimNumber}} has been submitted and is awaiting review. We will keep you posted.",
			Active:  true,
		},
		{
			Name:    "claim_status_update",
			Subject: "Update on claim {{.claimNumber}}",
			HTML:    "<h1>Claim update</h1><p>Your claim {{.claimNumber}} is now: <strong>{{.status}}</strong>.</p>",
			Text:    "Your claim {{.claimNumber}} is now: {{.status}}.",
			Active:  true,
		},
		{
			Name:    "payment_due",
			Subject: "Payment of {{.amount}} due {{.dueDate}}",
			HTML:    "<h1>Payment reminder</h1><p>Invoice {{.invoiceNumber}} for {{.amount}} is due on {{.dueDate}}.</p>",
			Text:    "Invoice {{.invoiceNumber}} for {{.amount}} is due on {{.dueDate}}.",
			Active:  true,
		},
		{
			Name:    "payment_received",
			Subject: "Payment received - thank you",
			HTML:    "<h1>Payment received</h1><p>We received your payment of {{.amount}} for invoice {{.invoiceNumber}}. Thank you.</p>",
			Text:    "We received your payment of {{.amount}} for invoice {{.invoiceNumber}}. Thank you.",
			Active:  true,
		},
		{
			Name:    "general",
			Subject: "{{.title}}",
			HTML:    "<p>{{.message}}</p>",
			Text:    "{{.message}}",
			Active:  true,
		},
	}

	out := make(map[string]Template, len(defaults))
	for _, tmpl := range defaults {
		out[tmpl.Name] = tmpl
	}
	return out
}
