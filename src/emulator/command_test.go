package emulator

import (
	"reflect"
	"strings"
	"testing"
)

type prefixResolver string

func (p prefixResolver) Resolve(raw string) string {
	return string(p) + raw
}

func TestDefaultArgs(t *testing.T) {
	args := DefaultArgs(Template{
		GamePort:   7000,
		ListenPort: 7001,
		Player:     2,
		Delay:      1,
		Name:       "alice",
	})

	expected := []string{
		"--local-port", "7000",
		"--remote-ip", "127.0.0.1",
		"--remote-port", "7001",
		"--player", "2",
		"--delay", "1",
		"--name", "alice",
	}

	if !reflect.DeepEqual(args, expected) {
		t.Fatalf("args should be %v, not %v", expected, args)
	}
}

func TestResolveLuaArgs(t *testing.T) {
	in := []string{"rom.zip", "--lua", "lua/a.lua", "--lua=lua/b.lua", "--name", "lua/c.lua", "--lua"}

	out := ResolveLuaArgs(in, prefixResolver("/res/"))

	expected := []string{"rom.zip", "--lua", "/res/lua/a.lua", "--lua=/res/lua/b.lua", "--name", "lua/c.lua", "--lua"}

	if !reflect.DeepEqual(out, expected) {
		t.Fatalf("args should be %v, not %v", expected, out)
	}

	if in[2] != "lua/a.lua" {
		t.Fatalf("input should not be modified")
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Path: "emu", Args: []string{"--player", "1"}}
	if got := c.String(); !strings.HasPrefix(got, "emu --player") {
		t.Fatalf("unexpected command string %q", got)
	}
}
