package form

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted signals the user interrupted a prompt (e.g. Ctrl+C).
var ErrAborted = errors.New("form: aborted")

// InputConfig configures a single-line prompt.
type InputConfig struct {
	Message string
	Default string
	Help    string
}

// TextAreaConfig configures a multi-line prompt.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
}

// PromptDriver asks the user for values. It lets Prompt run without a real
// terminal in tests.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
}

// Prompt fills f one field at a time, offering the current value as the
// default, then submits it.
func Prompt(ctx context.Context, driver PromptDriver, f *Form) error {
	for _, field := range f.Fields() {
		current := f.Value(field.Name)
		var (
			value string
			err   error
		)
		if field.Multiline {
			value, err = driver.TextArea(ctx, TextAreaConfig{
				Message: field.Label + ":",
				Default: current,
				Help:    "An editor opens for multi-line input.",
			})
		} else {
			value, err = driver.Input(ctx, InputConfig{
				Message: field.Label + ":",
				Default: current,
			})
		}
		if err != nil {
			return err
		}
		f.HandleFieldChange(field.Name, value)
	}
	f.HandleSubmit()
	return nil
}

// SurveyDriver implements PromptDriver with survey prompts.
type SurveyDriver struct {
	Opts []survey.AskOpt
}

// NewSurveyDriver returns a driver passing opts to every prompt.
func NewSurveyDriver(opts ...survey.AskOpt) *SurveyDriver {
	return &SurveyDriver{Opts: opts}
}

func (d *SurveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: cfg.Message,
		Help:    cfg.Help,
		Default: cfg.Default,
	}
	if err := survey.AskOne(prompt, &out, d.Opts...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (d *SurveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Editor{
		Message:       cfg.Message,
		Help:          cfg.Help,
		Default:       cfg.Default,
		AppendDefault: true,
		HideDefault:   true,
	}
	if err := survey.AskOne(prompt, &out, d.Opts...); err != nil {
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
