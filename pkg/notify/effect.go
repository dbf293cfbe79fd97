package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Effects plays ringtones and vibrations on the host device.
type Effects interface {
	PlayRingtone(uri string) error
	StopRingtone()
	Vibrate(pattern []time.Duration) error
	StopVibration()
}

// EffectPlayer shares one Effects device between handlers. At most one
// target owns it at a time, on behalf of one entry. Ownership is checked
// and taken under the player's lock, and the player alone sets and clears
// the owner's effect bit.
type EffectPlayer struct {
	fx     Effects
	logger *slog.Logger

	mu        sync.Mutex
	enabled   bool
	consumer  Target
	owner     *Entry
	ringtone  string
	vibrating bool
}

// EffectPlayerOption configures an EffectPlayer.
type EffectPlayerOption func(*EffectPlayer)

// WithPlayerLogger sets the logger for the EffectPlayer.
func WithPlayerLogger(l *slog.Logger) EffectPlayerOption {
	return func(p *EffectPlayer) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewEffectPlayer wraps fx. A nil fx yields a player that never plays.
func NewEffectPlayer(fx Effects, opts ...EffectPlayerOption) *EffectPlayer {
	p := &EffectPlayer{
		fx:      fx,
		logger:  slog.Default(),
		enabled: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play starts the effects for e on behalf of consumer. It returns false
// without side effects when the player is disabled, owned by another
// consumer, or e asks for nothing. An entry taking over from another
// entry of the same consumer leaves the previous one without effects.
func (p *EffectPlayer) Play(consumer Target, e *Entry) bool {
	if p == nil || e == nil || consumer == TargetNone {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled || p.fx == nil || !e.WantsEffect() {
		return false
	}
	if p.consumer != TargetNone && p.consumer != consumer {
		return false
	}

	if e.Ringtone != "" && e.Ringtone != p.ringtone {
		if p.ringtone != "" {
			p.fx.StopRingtone()
			p.ringtone = ""
		}
		if err := p.fx.PlayRingtone(e.Ringtone); err != nil {
			p.logger.LogAttrs(context.Background(), slog.LevelWarn, "failed to play ringtone",
				logger.EntryID(e.ID()),
				logger.Consumer(consumer.String()),
				logger.Error(err),
			)
		} else {
			p.ringtone = e.Ringtone
		}
	}

	if e.Vibrate {
		if p.vibrating {
			p.fx.StopVibration()
			p.vibrating = false
		}
		if err := p.fx.Vibrate(e.VibratePattern); err != nil {
			p.logger.LogAttrs(context.Background(), slog.LevelWarn, "failed to vibrate",
				logger.EntryID(e.ID()),
				logger.Consumer(consumer.String()),
				logger.Error(err),
			)
		} else {
			p.vibrating = true
		}
	}

	if p.owner != nil && p.owner != e {
		p.owner.setEffect(p.consumer, false)
		p.owner = nil
	}
	if p.ringtone == "" && !p.vibrating {
		if p.owner != nil {
			p.owner.setEffect(p.consumer, false)
		}
		p.consumer = TargetNone
		p.owner = nil
		return false
	}
	p.consumer = consumer
	p.owner = e
	e.setEffect(consumer, true)
	return true
}

// Cancel stops all playback and releases ownership.
func (p *EffectPlayer) Cancel() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Release cancels playback only if consumer currently owns the player on
// behalf of e.
func (p *EffectPlayer) Release(consumer Target, e *Entry) bool {
	if p == nil || e == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.consumer == TargetNone || p.consumer != consumer || p.owner != e {
		return false
	}
	p.stopLocked()
	return true
}

// ReleaseConsumer cancels playback if consumer owns the player, whichever
// entry it plays for.
func (p *EffectPlayer) ReleaseConsumer(consumer Target) bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.consumer == TargetNone || p.consumer != consumer {
		return false
	}
	p.stopLocked()
	return true
}

// IsConsumer reports whether t owns the player.
func (p *EffectPlayer) IsConsumer(t Target) bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return t != TargetNone && p.consumer == t
}

// Owner returns the id of the entry playing, if any.
func (p *EffectPlayer) Owner() (int64, bool) {
	if p == nil {
		return 0, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.owner == nil {
		return 0, false
	}
	return p.owner.id, true
}

// Consumer returns the current owner, or TargetNone.
func (p *EffectPlayer) Consumer() Target {
	if p == nil {
		return TargetNone
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.consumer
}

// SetEnabled turns playback on or off. Disabling stops what is playing.
func (p *EffectPlayer) SetEnabled(enabled bool) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = enabled
	if !enabled {
		p.stopLocked()
	}
}

// Enabled reports whether playback is allowed.
func (p *EffectPlayer) Enabled() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

func (p *EffectPlayer) stopLocked() {
	if p.fx != nil {
		if p.ringtone != "" {
			p.fx.StopRingtone()
		}
		if p.vibrating {
			p.fx.StopVibration()
		}
	}
	if p.owner != nil {
		p.owner.setEffect(p.consumer, false)
	}
	p.ringtone = ""
	p.vibrating = false
	p.consumer = TargetNone
	p.owner = nil
}
