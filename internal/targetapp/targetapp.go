// Package targetapp maps the process that received a terminal paste to a
// stable application identifier. The desktop shell knows the PID of the
// focused window when the paste helper fires; the identifier derived here
// keys the per-app paste counters in the gamification stats.
package targetapp

import (
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

const unknownApp = "unknown"

// Resolve returns the identifier for pid, falling back to the
// shell-supplied hint and finally to "unknown". A PID of zero or a
// process that vanished before lookup is not an error; paste events are
// still counted, just under a coarser key.
func Resolve(pid int32, hint string) string {
	if pid > 0 {
		if name := processName(pid); name != "" {
			return Normalize(name)
		}
	}
	if hint != "" {
		return Normalize(hint)
	}
	return unknownApp
}

func processName(pid int32) string {
	p, err := process.NewProcess(pid)
	if err != nil {
		return ""
	}
	name, err := p.Name()
	if err != nil {
		return ""
	}
	return name
}

// Normalize collapses platform spellings of the same application into
// one counter key: lowercase, no path, no .exe/.app suffix, spaces as
// hyphens ("iTerm2" and "iterm2.app" both become "iterm2").
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ToLower(name)
	name = strings.TrimSuffix(name, ".exe")
	name = strings.TrimSuffix(name, ".app")
	name = strings.ReplaceAll(name, " ", "-")
	if name == "" {
		return unknownApp
	}
	return name
}
