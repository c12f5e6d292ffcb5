package entry

import "strings"

const (
	// FlagEntry set to "deny" blocks moves into a region
	FlagEntry = "entry"
	// FlagExit set to "deny" blocks moves out of a region
	FlagExit = "exit"
)

// FlagPolicy is a guard that enforces the entry and exit region flags
func FlagPolicy(ev Event) bool {
	switch ev.Kind {
	case RegionEntered:
		return !denies(ev.Flags, FlagEntry)
	case RegionLeft:
		return !denies(ev.Flags, FlagExit)
	default:
		return true
	}
}

func denies(flags map[string]string, flag string) bool {
	return strings.EqualFold(strings.TrimSpace(flags[flag]), "deny")
}
