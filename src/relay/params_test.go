package relay

import (
	"reflect"
	"testing"

	"github.com/mosaicnetworks/reflector/src/common"
)

type rootResolver struct{}

func (rootResolver) Resolve(raw string) string {
	return "/opt/reflector/" + raw
}

func TestParamsValidate(t *testing.T) {
	p := Params{}

	err := p.Validate()
	if !common.IsSessionErr(err, common.InvalidParams) {
		t.Fatalf("empty params should be invalid, got %v", err)
	}

	p = Params{
		MyUID:        "alice",
		PeerUID:      "bob",
		ServerHost:   "rendezvous.example.com",
		ServerPort:   33334,
		EmulatorPath: "emu",
	}

	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}

	if p.GamePort() != 7000 || p.ListenPort() != 7001 {
		t.Fatalf("default ports should be 7000/7001, not %d/%d", p.GamePort(), p.ListenPort())
	}
}

func TestEmulatorCommand(t *testing.T) {
	p := Params{
		EmulatorPath: "emu/fcadefbneo",
		Player:       2,
		Delay:        1,
		UserName:     "bob",
	}

	cmd := p.emulatorCommand(7001, rootResolver{})

	if cmd.Path != "/opt/reflector/emu/fcadefbneo" {
		t.Fatalf("path should be resolved, got %s", cmd.Path)
	}

	expected := []string{
		"--local-port", "7000",
		"--remote-ip", "127.0.0.1",
		"--remote-port", "7001",
		"--player", "2",
		"--delay", "1",
		"--name", "bob",
	}
	if !reflect.DeepEqual(cmd.Args, expected) {
		t.Fatalf("args should be %v, not %v", expected, cmd.Args)
	}

	p.EmulatorArgs = []string{"sfiii3nr1", "--lua", "lua/netplay.lua"}
	cmd = p.emulatorCommand(7001, rootResolver{})

	expected = []string{"sfiii3nr1", "--lua", "/opt/reflector/lua/netplay.lua"}
	if !reflect.DeepEqual(cmd.Args, expected) {
		t.Fatalf("custom args should be used with lua paths resolved, got %v", cmd.Args)
	}

	cmd = p.emulatorCommand(7001, nil)
	if cmd.Path != "emu/fcadefbneo" {
		t.Fatalf("without resolver the path should be kept, got %s", cmd.Path)
	}
}
