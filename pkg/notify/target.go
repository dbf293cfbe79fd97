package notify

import (
	"fmt"
	"strings"
)

// Target is a bitmask of presentation channels.
type Target uint8

const (
	// TargetRemote is the system status bar.
	TargetRemote Target = 1 << iota
	// TargetLocal is the in-layout banner board.
	TargetLocal
	// TargetGlobal is the floating overlay window.
	TargetGlobal

	// TargetNone addresses no handler; entries take the default path.
	TargetNone Target = 0
	// TargetAll addresses every channel.
	TargetAll = TargetRemote | TargetLocal | TargetGlobal
)

var targetNames = map[Target]string{
	TargetRemote: "remote",
	TargetLocal:  "local",
	TargetGlobal: "global",
}

// Has reports whether every bit of o is set in t. Has(TargetNone) is false.
func (t Target) Has(o Target) bool {
	return o != 0 && t&o == o
}

// Bits returns the single-bit targets set in t in ascending order.
func (t Target) Bits() []Target {
	var out []Target
	for b := TargetRemote; b <= TargetGlobal; b <<= 1 {
		if t&b != 0 {
			out = append(out, b)
		}
	}
	return out
}

func (t Target) String() string {
	bits := t.Bits()
	if len(bits) == 0 {
		return "none"
	}
	names := make([]string, 0, len(bits))
	for _, b := range bits {
		names = append(names, targetNames[b])
	}
	return strings.Join(names, "|")
}

// index maps a single-bit target to 0..2.
func (t Target) index() int {
	switch t {
	case TargetRemote:
		return 0
	case TargetLocal:
		return 1
	case TargetGlobal:
		return 2
	}
	return -1
}

// ParseTargets builds a mask from names such as "remote", "local", "global"
// and "all". Matching is case-insensitive; blank names are skipped.
func ParseTargets(names []string) (Target, error) {
	var t Target
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch name {
		case "":
		case "remote":
			t |= TargetRemote
		case "local":
			t |= TargetLocal
		case "global":
			t |= TargetGlobal
		case "all":
			t |= TargetAll
		default:
			return 0, fmt.Errorf("%w: %q", ErrUnknownTarget, raw)
		}
	}
	return t, nil
}
