package placement

import (
	"errors"
	"testing"
)

func TestBuiltins(t *testing.T) {
	if Clients == nil || Server == nil {
		t.Fatal("builtin placements not registered")
	}
	if Clients.Singleton() {
		t.Error("clients should not be a singleton")
	}
	if !Server.Singleton() {
		t.Error("server should be a singleton")
	}
	if got := Clients.String(); got != "CLIENTS" {
		t.Errorf("got %q want %q", got, "CLIENTS")
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"clients", "CLIENTS", "Clients"} {
		if Lookup(name) != Clients {
			t.Errorf("Lookup(%q) did not find clients", name)
		}
	}
	if Lookup("aggregators") != nil {
		t.Error("unexpected placement")
	}
}

func TestRegisterDup(t *testing.T) {
	if _, err := Register("server", true); !errors.Is(err, ErrExists) {
		t.Errorf("got %v want ErrExists", err)
	}
}
