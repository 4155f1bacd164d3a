package bbolt_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/warden/collection"
	"github.com/jrife/warden/collection/backend/bbolt"
	"github.com/jrife/warden/variables"
	bolt "go.etcd.io/bbolt"
)

func TestSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	c, err := bbolt.New("IP", collection.Options{DataDir: dir})

	if err != nil {
		t.Fatal(err)
	}

	c.Store("1.2.3.4", "req1")
	c.Store("1.2.3.4", "req2")
	c.UpdateFirst("1.2.3.4", "req1-upd")

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(bbolt.Path(dir, "IP")); err != nil {
		t.Fatalf("expected database file to exist: %s", err.Error())
	}

	c, err = bbolt.New("IP", collection.Options{DataDir: dir})

	if err != nil {
		t.Fatal(err)
	}

	defer c.Close()

	if diff := cmp.Diff([]string{"req1-upd", "req2"}, variables.Values(c.ResolveSingleMatch("1.2.3.4", nil))); diff != "" {
		t.Fatal(diff)
	}

	// sequence numbers keep growing across reopen
	c.Store("1.2.3.4", "req3")

	if diff := cmp.Diff([]string{"req1-upd", "req2", "req3"}, variables.Values(c.ResolveSingleMatch("1.2.3.4", nil))); diff != "" {
		t.Fatal(diff)
	}
}

func TestSharesDatabaseWithinProcess(t *testing.T) {
	dir := t.TempDir()
	options := collection.Options{DataDir: dir, OpenTimeout: time.Second}

	a, err := bbolt.New("SESSION", options)

	if err != nil {
		t.Fatal(err)
	}

	b, err := bbolt.New("SESSION", options)

	if err != nil {
		t.Fatal(err)
	}

	a.Store("sid", "1")

	if value, _ := b.ResolveFirst("sid"); value != "1" {
		t.Fatalf("expected both handles to see the same data, got %q", value)
	}

	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	if value, _ := b.ResolveFirst("sid"); value != "1" {
		t.Fatalf("expected the database to stay open for the remaining handle")
	}

	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOpenTimeout(t *testing.T) {
	dir := t.TempDir()

	// another holder of the file lock
	db, err := bolt.Open(bbolt.Path(dir, "USER"), 0600, nil)

	if err != nil {
		t.Fatal(err)
	}

	defer db.Close()

	_, err = bbolt.New("USER", collection.Options{DataDir: dir, OpenTimeout: 50 * time.Millisecond})

	if !errors.Is(err, collection.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestOpenTimeoutDefault(t *testing.T) {
	dir := t.TempDir()

	db, err := bolt.Open(bbolt.Path(dir, "USER"), 0600, nil)

	if err != nil {
		t.Fatal(err)
	}

	defer db.Close()

	done := make(chan error, 1)

	go func() {
		_, err := bbolt.New("USER", collection.Options{DataDir: dir})
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, collection.ErrStorageUnavailable) {
			t.Fatalf("expected ErrStorageUnavailable, got %v", err)
		}
	case <-time.After(10 * bbolt.DefaultOpenTimeout):
		t.Fatalf("expected New to give up on a held lock after %s", bbolt.DefaultOpenTimeout)
	}
}

func TestOpenEmptyName(t *testing.T) {
	_, err := bbolt.New("", collection.Options{DataDir: t.TempDir()})

	if !errors.Is(err, collection.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
