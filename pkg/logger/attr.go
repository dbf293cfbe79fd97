package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records a single error under the key "error".
// A nil error yields an empty Attr which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups the non-nil errors under the key "errors", indexed by their
// position in the argument list.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// EntryID records a notification entry id under the key "entry_id".
func EntryID(id int64) slog.Attr {
	return slog.Int64("entry_id", id)
}

// Tag records an entry tag under the key "tag". Empty tags are dropped.
func Tag(tag string) slog.Attr {
	if tag == "" {
		return slog.Attr{}
	}
	return slog.String("tag", tag)
}

// Target records a target bitmask rendered as text under the key "target".
func Target(name string) slog.Attr {
	return slog.String("target", name)
}

// Transition records a reconciliation transition under the key "transition".
func Transition(name string) slog.Attr {
	return slog.String("transition", name)
}

// Handler records the handler kind under the key "handler".
func Handler(name string) slog.Attr {
	return slog.String("handler", name)
}

// Consumer records the effect consumer under the key "consumer".
func Consumer(name string) slog.Attr {
	return slog.String("consumer", name)
}

// Looper records the task queue name under the key "looper".
func Looper(name string) slog.Attr {
	return slog.String("looper", name)
}

// Count records a count under the key "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// SubscriberID records an event feed subscriber id under the key "subscriber_id".
func SubscriberID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("subscriber_id", id)
}
