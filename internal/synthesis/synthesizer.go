package synthesis

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"cruxy/internal/guild"
	"cruxy/internal/plan"
)

// Synthesizer produces validated plans from free-text intent.
type Synthesizer struct {
	client LLMClient
	logger *zap.Logger
}

// NewSynthesizer wires a synthesizer to its completion collaborator.
func NewSynthesizer(client LLMClient, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{client: client, logger: logger}
}

// SynthesizeBuild turns a theme into a validated BuildPlan.
func (s *Synthesizer) SynthesizeBuild(ctx context.Context, snap guild.Snapshot, theme string) (*plan.BuildPlan, error) {
	raw, err := s.complete(ctx, BuildPrompt(snap, theme))
	if err != nil {
		return nil, err
	}
	p, vs := plan.DecodeBuildPlan(raw)
	if vs != nil {
		s.logger.Warn("build plan failed validation",
			zap.String("theme", theme),
			zap.Int("violations", len(vs)))
		return nil, &SynthesisError{Kind: ErrInvalid, Violations: vs}
	}
	s.logger.Info("build plan synthesized",
		zap.String("theme", theme),
		zap.Int("roles", len(p.Roles)),
		zap.Int("tasks", len(p.Tasks)))
	return p, nil
}

// SynthesizeEdit turns an edit request into a validated EditPlan. The
// snapshot both grounds the prompt and anchors category references during
// validation.
func (s *Synthesizer) SynthesizeEdit(ctx context.Context, snap guild.Snapshot, request string) (*plan.EditPlan, error) {
	raw, err := s.complete(ctx, EditPrompt(snap, request))
	if err != nil {
		return nil, err
	}
	p, vs := plan.DecodeEditPlan(raw, snap)
	if vs != nil {
		s.logger.Warn("edit plan failed validation", zap.Int("violations", len(vs)))
		return nil, &SynthesisError{Kind: ErrInvalid, Violations: vs}
	}
	s.logger.Info("edit plan synthesized", zap.Int("actions", len(p.Actions)))
	return p, nil
}

// complete runs one completion round trip and returns the parsed JSON value
// from the response, mapping every failure mode onto the synthesis taxonomy.
func (s *Synthesizer) complete(ctx context.Context, prompt string) (any, error) {
	text, err := s.client.Complete(ctx, prompt)
	if err != nil {
		var blocked *BlockedError
		if errors.As(err, &blocked) {
			return nil, &SynthesisError{Kind: ErrBlocked, Reason: blocked.Reason}
		}
		return nil, err
	}
	if text == "" {
		return nil, &SynthesisError{Kind: ErrEmpty, Reason: "model returned an empty response"}
	}

	objText, found := ExtractJSONObject(text)
	if !found {
		return nil, &SynthesisError{Kind: ErrNoJSONFound, Reason: "no JSON object in model response"}
	}

	var raw any
	if err := json.Unmarshal([]byte(objText), &raw); err != nil {
		return nil, &SynthesisError{Kind: ErrMalformedJSON, Reason: err.Error()}
	}
	return raw, nil
}
