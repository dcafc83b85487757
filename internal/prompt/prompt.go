// Package prompt asks for template values interactively.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrRequired is returned by the validator of prompts without a default.
	ErrRequired = errors.New("a value is required")
)

// InputConfig configures a basic text input prompt.
type InputConfig struct {
	Message   string
	Default   string
	Validator func(string) error
}

// Driver abstracts the terminal so callers can be tested without one.
type Driver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
}

type surveyDriver struct{}

// NewSurveyDriver returns a Driver backed by the survey terminal prompts.
func NewSurveyDriver() Driver {
	return surveyDriver{}
}

func (surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: cfg.Message,
		Default: cfg.Default,
	}
	var opts []survey.AskOpt
	if cfg.Validator != nil {
		validate := cfg.Validator
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return validate(s)
		}))
	}
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

// Ask prompts once per key, in order, offering defaults[key] as the default
// answer. A key without a default must be answered with a non-blank value.
// Keys may be dotted paths; the message shows them as given.
func Ask(ctx context.Context, d Driver, keys []string, defaults map[string]string) (map[string]string, error) {
	if d == nil {
		return nil, errors.New("prompt: driver is required")
	}
	answers := make(map[string]string, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, done := answers[key]; done {
			continue
		}
		cfg := InputConfig{
			Message: key + ":",
			Default: defaults[key],
		}
		if cfg.Default == "" {
			cfg.Validator = required
		}
		answer, err := d.Input(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("prompt %s: %w", key, err)
		}
		answers[key] = answer
	}
	return answers, nil
}

func required(answer string) error {
	if strings.TrimSpace(answer) == "" {
		return ErrRequired
	}
	return nil
}
