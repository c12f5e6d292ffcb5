package region

import (
	"fmt"
	"strings"
)

// Mode selects how a membership check combines the required regions
type Mode int

const (
	// All requires the actor to be in every required region
	All Mode = iota
	// Any requires the actor to be in at least one required region
	Any
)

func (m Mode) String() string {
	switch m {
	case All:
		return "all"
	case Any:
		return "any"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses "all" or "any" (any case)
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return All, nil
	case "any":
		return Any, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q, expected all or any", ErrInvalidArgument, s)
	}
}

// Satisfies reports whether the current region names meet the requirement
// under mode. Both sides are compared in lower case.
func Satisfies(current []RegionID, required []string, mode Mode) (bool, error) {
	if len(required) == 0 {
		return false, ErrNoRegions
	}

	have := make(map[string]struct{}, len(current))
	for _, id := range current {
		have[id.Normalized()] = struct{}{}
	}

	switch mode {
	case All:
		for _, name := range required {
			if _, ok := have[strings.ToLower(name)]; !ok {
				return false, nil
			}
		}
		return true, nil
	case Any:
		for _, name := range required {
			if _, ok := have[strings.ToLower(name)]; ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("%w: unknown mode %d", ErrInvalidArgument, int(mode))
	}
}
