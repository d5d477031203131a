package emulator

import (
	"strconv"
	"strings"
)

// LoopbackIP is the address the emulator uses to reach the relay.
const LoopbackIP = "127.0.0.1"

// Command is an emulator invocation.
type Command struct {
	Path string
	Args []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Template holds the values substituted into the default argument list.
type Template struct {
	// GamePort is the port the emulator listens on for game traffic.
	GamePort uint16
	// ListenPort is the port of the relay's emulator socket, which the
	// emulator treats as its remote.
	ListenPort uint16
	Player     uint8
	Delay      uint16
	Name       string
}

// DefaultArgs returns the argument list used when a session does not provide
// its own.
func DefaultArgs(t Template) []string {
	return []string{
		"--local-port", strconv.Itoa(int(t.GamePort)),
		"--remote-ip", LoopbackIP,
		"--remote-port", strconv.Itoa(int(t.ListenPort)),
		"--player", strconv.Itoa(int(t.Player)),
		"--delay", strconv.Itoa(int(t.Delay)),
		"--name", t.Name,
	}
}

// PathResolver maps a possibly relative path to one that exists on disk, or
// returns it unchanged.
type PathResolver interface {
	Resolve(raw string) string
}

// ResolveLuaArgs returns a copy of args in which the value of every --lua
// option has been passed through the resolver. Both "--lua path" and
// "--lua=path" are recognised.
func ResolveLuaArgs(args []string, resolver PathResolver) []string {
	res := make([]string, len(args))
	copy(res, args)

	if resolver == nil {
		return res
	}

	for i := 0; i < len(res); i++ {
		switch {
		case res[i] == "--lua" && i+1 < len(res):
			res[i+1] = resolver.Resolve(res[i+1])
			i++
		case strings.HasPrefix(res[i], "--lua="):
			res[i] = "--lua=" + resolver.Resolve(strings.TrimPrefix(res[i], "--lua="))
		}
	}

	return res
}
