package payments

import "strings"

// Status of a card payment as reported by the payment element.
type Status string

const (
	StatusSucceeded  Status = "succeeded"
	StatusProcessing Status = "processing"
	StatusPending    Status = "pending"
	StatusFailed     Status = "failed"
)

// Result is what the browser posts back after confirming a card payment.
type Result struct {
	Status      Status `json:"status" validate:"required,oneof=succeeded processing pending failed"`
	Code        string `json:"code,omitempty"`
	DeclineCode string `json:"declineCode,omitempty"`
	IntentID    string `json:"intentId,omitempty"`
}

// Outcome is the user-facing interpretation of a Result.
type Outcome struct {
	Status     Status `json:"status"`
	MessageKey string `json:"messageKey"`
	Retryable  bool   `json:"retryable"`
}

var failureKeys = map[string]string{
	"card_declined":      "payment.card_declined",
	"insufficient_funds": "payment.insufficient_funds",
	"incorrect_cvc":      "payment.incorrect_cvc",
	"expired_card":       "payment.expired_card",
	"processing_error":   "payment.processing_error",
	"validation_error":   "payment.validation_error",
}

// Describe maps a widget result to a message key. The decline code wins over the error
// code when both are known, so a declined card reports insufficient funds precisely.
func Describe(r Result) Outcome {
	switch r.Status {
	case StatusSucceeded:
		return Outcome{Status: StatusSucceeded, MessageKey: "payment.succeeded"}
	case StatusProcessing, StatusPending:
		return Outcome{Status: StatusProcessing, MessageKey: "payment.processing"}
	}

	key := "payment.generic"
	if k, ok := failureKeys[normalize(r.Code)]; ok {
		key = k
	}
	if k, ok := failureKeys[normalize(r.DeclineCode)]; ok {
		key = k
	}

	return Outcome{
		Status:     StatusFailed,
		MessageKey: key,
		Retryable:  key != "payment.expired_card",
	}
}

func normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
