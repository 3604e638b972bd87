package model

import (
	"fmt"
	"strings"
)

const (
	StrategyDefault    = "default"
	StrategySinglePass = "single_pass"

	MinPromptLen  = 3
	MaxTopK       = 20
	DefaultTopK   = 6
	MaxPersonas   = 12
	DefaultTemp   = 0.2
	DefaultBudget = 6000
)

// DebateRequest is the body of POST /v1/debate.
type DebateRequest struct {
	Prompt   string `json:"prompt"`
	TopK     *int   `json:"topK,omitempty"`
	Strategy string `json:"strategy,omitempty"`
}

// Validate normalizes defaults in place and reports the first violation.
func (r *DebateRequest) Validate() error {
	if err := checkPrompt(r.Prompt); err != nil {
		return err
	}
	if err := checkTopK(r.TopK); err != nil {
		return err
	}
	if r.Strategy == "" {
		r.Strategy = StrategyDefault
	}
	if r.Strategy != StrategyDefault && r.Strategy != StrategySinglePass {
		return fmt.Errorf("strategy must be %q or %q", StrategyDefault, StrategySinglePass)
	}
	return nil
}

// ResolvedTopK returns the effective topK after defaulting.
func (r *DebateRequest) ResolvedTopK() int { return resolveTopK(r.TopK) }

// BoardroomRequest is the body of POST /v1/boardroom.
type BoardroomRequest struct {
	Prompt      string   `json:"prompt"`
	Personas    []string `json:"personas,omitempty"`
	TopK        *int     `json:"topK,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
}

func (r *BoardroomRequest) Validate() error {
	if err := checkPrompt(r.Prompt); err != nil {
		return err
	}
	if err := checkTopK(r.TopK); err != nil {
		return err
	}
	if len(r.Personas) > MaxPersonas {
		return fmt.Errorf("personas list exceeds %d entries", MaxPersonas)
	}
	if r.Temperature != nil && (*r.Temperature < 0 || *r.Temperature > 1) {
		return fmt.Errorf("temperature must be within [0,1]")
	}
	return nil
}

func (r *BoardroomRequest) ResolvedTopK() int { return resolveTopK(r.TopK) }

func (r *BoardroomRequest) ResolvedTemperature() float32 {
	if r.Temperature == nil {
		return DefaultTemp
	}
	return *r.Temperature
}

func checkPrompt(p string) error {
	if len(strings.TrimSpace(p)) < MinPromptLen {
		return fmt.Errorf("prompt must be at least %d characters", MinPromptLen)
	}
	return nil
}

func checkTopK(k *int) error {
	if k != nil && (*k < 0 || *k > MaxTopK) {
		return fmt.Errorf("topK must be within [0,%d]", MaxTopK)
	}
	return nil
}

func resolveTopK(k *int) int {
	if k == nil {
		return DefaultTopK
	}
	return *k
}

// Snippet is one retrieved context fragment.
type Snippet struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}
