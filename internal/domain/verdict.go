package domain

// GuardrailVerdict is the guardrail classifier's decision for one request.
// Produced fresh per request; verdicts are content-dependent and never cached.
type GuardrailVerdict struct {
	InDomain bool   `json:"in_domain"`
	Reason   string `json:"reason,omitempty"`
}
