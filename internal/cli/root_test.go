package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestPersistentFlags(t *testing.T) {
	want := map[string]string{
		"root":   "r",
		"config": "",
		"json":   "",
	}

	got := make(map[string]string)
	rootCmd.PersistentFlags().VisitAll(func(flag *pflag.Flag) {
		got[flag.Name] = flag.Shorthand
	})

	for name, shorthand := range want {
		have, ok := got[name]
		if !ok {
			t.Errorf("missing persistent flag %q", name)
			continue
		}
		if have != shorthand {
			t.Errorf("flag %q shorthand = %q, want %q", name, have, shorthand)
		}
	}
	for name := range got {
		if _, ok := want[name]; !ok {
			t.Errorf("unexpected persistent flag %q", name)
		}
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"index", "tables", "show", "version"}
	for _, name := range want {
		found := false
		for _, cmd := range rootCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}
