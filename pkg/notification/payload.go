package notification

import (
	"encoding/json"
	"fmt"
)

// Payload is the category-specific data attached to a notification. Each
// category accepts exactly one payload variant, validated at the Router
// boundary, so templates downstream can rely on their variables existing.
type Payload interface {
	// Kind returns the payload discriminator used for serialization.
	Kind() string
	// Vars returns the template variables this payload provides.
	Vars() map[string]string
}

// PolicyPayload accompanies policy lifecycle categories.
type PolicyPayload struct {
	PolicyNumber string `json:"policy_number"`
	ProductName  string `json:"product_name"`
	ExpiresAt    string `json:"expires_at,omitempty"`
}

func (p PolicyPayload) Kind() string { return "policy" }

func (p PolicyPayload) Vars() map[string]string {
	return map[string]string{
		"policyNumber": p.PolicyNumber,
		"productName":  p.ProductName,
		"expiresAt":    p.ExpiresAt,
	}
}

// ClaimPayload accompanies claim lifecycle categories.
type ClaimPayload struct {
	ClaimNumber string `json:"claim_number"`
	Status      string `json:"status,omitempty"`
	Amount      string `json:"amount,omitempty"`
}

func (p ClaimPayload) Kind() string { return "claim" }

func (p ClaimPayload) Vars() map[string]string {
	return map[string]string{
		"claimNumber": p.ClaimNumber,
		"status":      p.Status,
		"amount":      p.Amount,
	}
}

// PaymentPayload accompanies payment categories.
type PaymentPayload struct {
	InvoiceNumber string `json:"invoice_number"`
	Amount        string `json:"amount"`
	DueDate       string `json:"due_date,omitempty"`
}

func (p PaymentPayload) Kind() string { return "payment" }

func (p PaymentPayload) Vars() map[string]string {
	return map[string]string{
		"invoiceNumber": p.InvoiceNumber,
		"amount":        p.Amount,
		"dueDate":       p.DueDate,
	}
}

// payloadKinds maps each category to the payload variant it requires.
// Welcome and general carry no structured payload.
var payloadKinds = map[Category]string{
	CategoryPolicyCreated:     "policy",
	CategoryPolicyRenewed:     "policy",
	CategoryClaimSubmitted:    "claim",
	CategoryClaimStatusUpdate: "claim",
	CategoryPaymentDue:        "payment",
	CategoryPaymentReceived:   "payment",
}

// ValidatePayload checks that the payload variant matches the category.
func ValidatePayload(category Category, payload Payload) error {
	want, needsPayload := payloadKinds[category]
	if !needsPayload {
		if payload != nil {
			return fmt.Errorf("%w: category %q does not accept a payload", ErrInvalidPayload, category)
		}
		return nil
	}
	if payload == nil {
		return fmt.Errorf("%w: category %q requires a %s payload", ErrInvalidPayload, category, want)
	}
	if payload.Kind() != want {
		return fmt.Errorf("%w: category %q requires a %s payload, got %s", ErrInvalidPayload, category, want, payload.Kind())
	}
	return nil
}

// payloadEnvelope is the serialized form of a Payload: a discriminator plus
// the variant's own fields.
type payloadEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalPayload serializes a payload with its discriminator.
// A nil payload marshals to nil.
func MarshalPayload(p Payload) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload data: %w", err)
	}
	return json.Marshal(payloadEnvelope{Kind: p.Kind(), Data: data})
}

// UnmarshalPayload reconstructs a payload variant from its serialized form.
// Empty input yields a nil payload.
func UnmarshalPayload(raw []byte) (Payload, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var env payloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal payload envelope: %w", err)
	}

	switch env.Kind {
	case "policy":
		var p PolicyPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal policy payload: %w", err)
		}
		return p, nil
	case "claim":
		var p ClaimPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal claim payload: %w", err)
		}
		return p, nil
	case "payment":
		var p PaymentPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal payment payload: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: unknown payload kind %q", ErrInvalidPayload, env.Kind)
	}
}
