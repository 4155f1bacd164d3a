package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
)

func setup(t *testing.T, backendName string) {
	t.Helper()

	cfgFile = ""
	backend = backendName
	dataDir = t.TempDir()
	dumpFlags.key = ""
	dumpFlags.regex = ""
	dumpFlags.exclude = nil
	dumpFlags.raw = false
	setFlags.append = false
	compartments = nil
}

func run(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) []string {
	t.Helper()

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	if err := fn(cmd, args); err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}

	if out.Len() == 0 {
		return nil
	}

	return strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
}

func TestWardenctl(t *testing.T) {
	for _, backendName := range []string{"bbolt", "sqlite"} {
		t.Run(backendName, func(t *testing.T) {
			setup(t, backendName)

			run(t, setKey, "GLOBAL", "b", "1")
			run(t, setKey, "GLOBAL", "a", "1")
			setFlags.append = true
			run(t, setKey, "GLOBAL", "a", "2")
			setFlags.append = false
			run(t, setKey, "GLOBAL", "a", "3")
			run(t, setKey, "GLOBAL", "c", "1")

			if diff := cmp.Diff([]string{"GLOBAL:a=3", "GLOBAL:a=2"}, run(t, getKey, "GLOBAL", "a")); diff != "" {
				t.Fatal(diff)
			}

			if diff := cmp.Diff([]string{"GLOBAL:c=1", "GLOBAL:b=1", "GLOBAL:a=2", "GLOBAL:a=3"}, run(t, dumpCollection, "GLOBAL")); diff != "" {
				t.Fatal(diff)
			}

			dumpFlags.exclude = []string{"b", "/^c$/"}

			if diff := cmp.Diff([]string{"GLOBAL:a=2", "GLOBAL:a=3"}, run(t, dumpCollection, "GLOBAL")); diff != "" {
				t.Fatal(diff)
			}

			dumpFlags.exclude = nil
			dumpFlags.regex = "^[bc]"

			if diff := cmp.Diff([]string{"GLOBAL:c=1", "GLOBAL:b=1"}, run(t, dumpCollection, "GLOBAL")); diff != "" {
				t.Fatal(diff)
			}

			dumpFlags.regex = ""
			dumpFlags.key = "b"

			if diff := cmp.Diff([]string{"GLOBAL:b=1"}, run(t, dumpCollection, "GLOBAL")); diff != "" {
				t.Fatal(diff)
			}

			dumpFlags.key = ""
			run(t, deleteKey, "GLOBAL", "a")

			if err := getKey(&cobra.Command{}, []string{"GLOBAL", "a"}); err == nil {
				t.Fatalf("expected a deleted key to be reported as not set")
			}

			if diff := cmp.Diff([]string(nil), run(t, dumpCollection, "IP")); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestWardenctlCompartments(t *testing.T) {
	setup(t, "bbolt")

	run(t, setKey, "IP", "1.2.3.4::x", "bare")

	compartments = []string{"1.2.3.4"}
	run(t, setKey, "IP", "y", "compartmented")

	if err := getKey(&cobra.Command{}, []string{"IP", "x"}); err == nil {
		t.Fatalf("expected a bare key never to resolve inside a compartment")
	}

	if diff := cmp.Diff([]string{"IP:y=compartmented"}, run(t, dumpCollection, "IP")); diff != "" {
		t.Fatal(diff)
	}

	compartments = nil

	if diff := cmp.Diff([]string{"IP:1.2.3.4::x=bare"}, run(t, getKey, "IP", "1.2.3.4::x")); diff != "" {
		t.Fatal(diff)
	}

	if diff := cmp.Diff([]string{"IP:1.2.3.4::x=bare"}, run(t, dumpCollection, "IP")); diff != "" {
		t.Fatal(diff)
	}

	dumpFlags.raw = true

	if diff := cmp.Diff([]string{`IP:1.2.3.4\:\:x=bare`, "IP:1.2.3.4::y=compartmented"}, run(t, dumpCollection, "IP")); diff != "" {
		t.Fatal(diff)
	}

	dumpFlags.raw = false
	compartments = []string{"a", "b", "c"}

	if err := getKey(&cobra.Command{}, []string{"IP", "x"}); err == nil {
		t.Fatalf("expected more than two compartments to fail")
	}
}

func TestWardenctlConfigFile(t *testing.T) {
	setup(t, "")

	dir := t.TempDir()
	cfgFile = filepath.Join(dir, "warden.yaml")

	if err := os.WriteFile(cfgFile, []byte("backend: sqlite\ndata_dir: "+dir+"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	dataDir = ""
	run(t, setKey, "USER", "alice", "1")

	if _, err := os.Stat(filepath.Join(dir, "USER.sqlite")); err != nil {
		t.Fatalf("expected the collection in the configured data directory: %s", err.Error())
	}
}

func TestWardenctlErrors(t *testing.T) {
	setup(t, "lmdb")

	if err := getKey(&cobra.Command{}, []string{"GLOBAL", "a"}); err == nil {
		t.Fatalf("expected an unknown backend to fail")
	}

	setup(t, "bbolt")
	dumpFlags.key = "a"
	dumpFlags.regex = "b"

	if err := dumpCollection(&cobra.Command{}, []string{"GLOBAL"}); err == nil {
		t.Fatalf("expected --key and --regex together to fail")
	}

	dumpFlags.key = ""
	dumpFlags.regex = "("

	if err := dumpCollection(&cobra.Command{}, []string{"GLOBAL"}); err == nil {
		t.Fatalf("expected an invalid pattern to fail")
	}

	dumpFlags.regex = ""
	dumpFlags.exclude = []string{"/(/"}

	if err := dumpCollection(&cobra.Command{}, []string{"GLOBAL"}); err == nil {
		t.Fatalf("expected an invalid exclusion to fail")
	}

	if err := setKey(&cobra.Command{}, []string{"GLOBAL", "", "1"}); err == nil {
		t.Fatalf("expected an empty key to fail")
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"dump", "get", "set", "del"} {
		cmd, _, err := rootCmd.Find([]string{name})

		if err != nil || cmd.Name() != name {
			t.Fatalf("expected command %s to be registered", name)
		}
	}
}
