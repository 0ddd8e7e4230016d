package server

import (
	"errors"
	"fmt"

	"cruxy/internal/synthesis"
)

// synthesisFailureMessage renders a plan-synthesis failure for the feedback
// channel.
func synthesisFailureMessage(err error) string {
	var serr *synthesis.SynthesisError
	if errors.As(err, &serr) {
		return serr.UserMessage()
	}
	return fmt.Sprintf("An unexpected error occurred: %v", err)
}
