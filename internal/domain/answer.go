package domain

// AnswerKind classifies the terminal outcome of a run.
type AnswerKind string

const (
	AnswerKindAnswer          AnswerKind = "answer"
	AnswerKindRejected        AnswerKind = "rejected"
	AnswerKindToolError       AnswerKind = "tool_error"
	AnswerKindClassifierError AnswerKind = "classifier_error"
	AnswerKindIterationLimit  AnswerKind = "iteration_limit"
	AnswerKindCancelled       AnswerKind = "cancelled"
)

// FinalAnswer is the terminal artifact of one run: a natural-language answer,
// or a structured rejection/failure. Callers branch on Kind, not on Text.
type FinalAnswer struct {
	Kind   AnswerKind `json:"kind"`
	Text   string     `json:"text,omitempty"`
	Detail string     `json:"detail,omitempty"`
}
