// Package synthesis turns free-text intent plus a structure snapshot into a
// validated plan. It renders a deterministic instruction, calls the
// text-completion collaborator, extracts the JSON object from the reply, and
// hands it to the plan validator. Synthesis never mutates guild state.
package synthesis

import (
	"context"
	"fmt"

	"cruxy/internal/plan"
)

// LLMClient is the text-completion collaborator.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Turn is one message of a multi-turn conversation. Role is "user" or
// "model".
type Turn struct {
	Role string
	Text string
}

// ChatClient is the conversational variant of the collaborator.
type ChatClient interface {
	CompleteChat(ctx context.Context, turns []Turn) (string, error)
}

// BlockedError reports that the collaborator refused the request on content
// safety grounds. Distinct from empty or malformed output.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("request blocked by safety filter: %s", e.Reason)
}

// ErrorKind classifies a synthesis failure.
type ErrorKind string

const (
	ErrBlocked       ErrorKind = "blocked"
	ErrEmpty         ErrorKind = "empty"
	ErrNoJSONFound   ErrorKind = "no_json_found"
	ErrMalformedJSON ErrorKind = "malformed_json"
	ErrInvalid       ErrorKind = "invalid"
)

// SynthesisError is the typed failure of one synthesis attempt. Violations
// is only populated for ErrInvalid.
type SynthesisError struct {
	Kind       ErrorKind
	Reason     string
	Violations plan.Violations
}

func (e *SynthesisError) Error() string {
	switch e.Kind {
	case ErrInvalid:
		return fmt.Sprintf("synthesized plan failed validation: %s", e.Violations.Error())
	case ErrBlocked:
		return fmt.Sprintf("synthesis blocked: %s", e.Reason)
	default:
		return fmt.Sprintf("synthesis failed (%s): %s", e.Kind, e.Reason)
	}
}

// UserMessage renders the failure for end users in chat or terminal output.
func (e *SynthesisError) UserMessage() string {
	switch e.Kind {
	case ErrBlocked:
		return fmt.Sprintf("❌ **Request Blocked by AI Safety Filter**\n> **Reason:** `%s`", e.Reason)
	case ErrEmpty:
		return "❌ The AI generated an empty response. Please try again."
	case ErrNoJSONFound:
		return "❌ The AI's response was not in the correct format (could not find JSON)."
	case ErrMalformedJSON:
		return "❌ The AI's response was not valid JSON."
	case ErrInvalid:
		return "❌ The AI chose not to generate a valid plan for that request."
	default:
		return fmt.Sprintf("An unexpected error occurred: %v", e)
	}
}
