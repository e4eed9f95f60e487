package domain

// AskRequest is the inbound HTTP request body for one assistant run.
type AskRequest struct {
	Message     string `json:"message"`
	Name        string `json:"name,omitempty"`
	MemberToken string `json:"member_token,omitempty"`
}

// AskResponse wraps the final answer for the HTTP surface.
type AskResponse struct {
	RunID  string      `json:"run_id"`
	Answer FinalAnswer `json:"answer"`
}
