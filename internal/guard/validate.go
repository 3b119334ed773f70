package guard

import (
	"fmt"
	"strings"
)

// Rejection reasons, also used as metric labels.
const (
	ReasonLength    = "length"
	ReasonTokens    = "tokens"
	ReasonDenylist  = "denylist"
	ReasonRateLimit = "rate_limit"
)

// Rejection is a recoverable per-turn refusal. It carries a user-facing
// message; the loop reports it and continues.
type Rejection struct {
	Reason  string
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

const (
	DefaultMaxInputChars  = 800
	DefaultMaxInputTokens = 150
)

// denylist holds prompt-injection trigger words, matched as case-insensitive
// substrings. This is a blunt instrument: benign inputs like "what is the
// prompt deadline" are rejected too. Kept deliberately strict.
var denylist = []string{"repeat", "ignore", "system", "prompt", "instructions", "override"}

// Validator gates raw user input before it costs a rate-limit slot or a
// model call.
type Validator struct {
	maxChars  int
	maxTokens int
	estimator TokenEstimator
}

func NewValidator(maxChars, maxTokens int, estimator TokenEstimator) *Validator {
	if maxChars <= 0 {
		maxChars = DefaultMaxInputChars
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxInputTokens
	}
	if estimator == nil {
		estimator = NewTokenEstimator()
	}
	return &Validator{maxChars: maxChars, maxTokens: maxTokens, estimator: estimator}
}

// Validate returns nil when input passes every gate, or a *Rejection naming
// the first gate it failed.
func (v *Validator) Validate(input string) error {
	if len(input) > v.maxChars {
		return &Rejection{
			Reason:  ReasonLength,
			Message: fmt.Sprintf("Input too long. Maximum %d characters allowed.", v.maxChars),
		}
	}

	if tokens := v.estimator.Estimate(input); tokens > v.maxTokens {
		return &Rejection{
			Reason: ReasonTokens,
			Message: fmt.Sprintf("Input too long. Maximum %d tokens allowed. Your input: %d tokens.",
				v.maxTokens, tokens),
		}
	}

	lower := strings.ToLower(input)
	for _, word := range denylist {
		if strings.Contains(lower, word) {
			return &Rejection{
				Reason:  ReasonDenylist,
				Message: "Input contains restricted content.",
			}
		}
	}

	return nil
}
