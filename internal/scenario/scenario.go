package scenario

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notify"
)

// Action is what a step does.
type Action string

const (
	ActionSend      Action = "send"
	ActionUpdate    Action = "update"
	ActionCancel    Action = "cancel"
	ActionCancelTag Action = "cancel_tag"
	ActionCancelAll Action = "cancel_all"
	ActionWait      Action = "wait"
	ActionSettle    Action = "settle"
	ActionEnable    Action = "enable"
	ActionDisable   Action = "disable"
	ActionOverlay   Action = "overlay"
)

// Duration accepts time.ParseDuration strings in every supported format.
type Duration time.Duration

// UnmarshalText parses a duration such as "150ms" or "2s".
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats d the way time.Duration prints.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Scenario is a scripted session.
type Scenario struct {
	Name       string   `json:"name" yaml:"name" toml:"name"`
	Components []string `json:"components" yaml:"components" toml:"components"`
	// CanDraw is the initial overlay drawing permission.
	CanDraw bool   `json:"can_draw" yaml:"can_draw" toml:"can_draw"`
	Steps   []Step `json:"steps" yaml:"steps" toml:"steps"`
}

// Step is one scripted action. Fields not used by an action are ignored.
type Step struct {
	Action      Action   `json:"action" yaml:"action" toml:"action"`
	Ref         string   `json:"ref,omitempty" yaml:"ref,omitempty" toml:"ref,omitempty"`
	Title       string   `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Text        string   `json:"text,omitempty" yaml:"text,omitempty" toml:"text,omitempty"`
	Tag         string   `json:"tag,omitempty" yaml:"tag,omitempty" toml:"tag,omitempty"`
	Targets     []string `json:"targets,omitempty" yaml:"targets,omitempty" toml:"targets,omitempty"`
	Priority    int      `json:"priority,omitempty" yaml:"priority,omitempty" toml:"priority,omitempty"`
	Ringtone    string   `json:"ringtone,omitempty" yaml:"ringtone,omitempty" toml:"ringtone,omitempty"`
	Vibrate     bool     `json:"vibrate,omitempty" yaml:"vibrate,omitempty" toml:"vibrate,omitempty"`
	Delay       Duration `json:"delay,omitempty" yaml:"delay,omitempty" toml:"delay,omitempty"`
	HandlerOnly bool     `json:"handler_only,omitempty" yaml:"handler_only,omitempty" toml:"handler_only,omitempty"`
	Duration    Duration `json:"duration,omitempty" yaml:"duration,omitempty" toml:"duration,omitempty"`
	Allowed     bool     `json:"allowed,omitempty" yaml:"allowed,omitempty" toml:"allowed,omitempty"`
}

// ComponentMask returns the components to start. An empty list means all.
func (s *Scenario) ComponentMask() (notify.Target, error) {
	if len(s.Components) == 0 {
		return notify.TargetAll, nil
	}
	return notify.ParseTargets(s.Components)
}

// Validate checks actions, targets and refs without running anything.
func (s *Scenario) Validate() error {
	if _, err := s.ComponentMask(); err != nil {
		return err
	}
	refs := make(map[string]struct{})
	for i, st := range s.Steps {
		if err := st.validate(refs); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, st.Action, err)
		}
	}
	return nil
}

func (st Step) validate(refs map[string]struct{}) error {
	switch st.Action {
	case ActionSend:
		if _, err := notify.ParseTargets(st.Targets); err != nil {
			return err
		}
		if st.Ref == "" {
			return nil
		}
		if _, ok := refs[st.Ref]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateRef, st.Ref)
		}
		refs[st.Ref] = struct{}{}
	case ActionUpdate, ActionCancel:
		if _, ok := refs[st.Ref]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownRef, st.Ref)
		}
	case ActionCancelTag:
		if st.Tag == "" {
			return fmt.Errorf("%w: tag is required", ErrInvalidStep)
		}
	case ActionWait:
		if st.Duration <= 0 {
			return fmt.Errorf("%w: duration must be > 0", ErrInvalidStep)
		}
	case ActionCancelAll, ActionSettle, ActionEnable, ActionDisable, ActionOverlay:
	default:
		return ErrUnknownAction
	}
	return nil
}

func (st Step) entry() (*notify.Entry, error) {
	targets, err := notify.ParseTargets(st.Targets)
	if err != nil {
		return nil, err
	}
	b := notify.NewBuilder(targets).
		Title(st.Title).
		Text(st.Text).
		Tag(st.Tag).
		Priority(st.Priority).
		Ringtone(st.Ringtone).
		Delay(time.Duration(st.Delay))
	if st.Vibrate {
		b.Vibrate()
	}
	if st.HandlerOnly {
		b.HandlerOnly()
	}
	return b.Build(), nil
}
