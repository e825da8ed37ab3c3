package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c != Default() {
		t.Errorf("Load with missing file = %+v, want defaults", c)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "otflash.yml")
	body := "tck_divisor: 29\nshutdown_spins: 50\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.TCKDivisor != 29 {
		t.Errorf("TCKDivisor = %d, want 29", c.TCKDivisor)
	}
	if c.ShutdownSpins != 50 {
		t.Errorf("ShutdownSpins = %d, want 50", c.ShutdownSpins)
	}
	// Untouched keys keep their defaults.
	if c.VendorID != 0x0403 || c.ChunkSize != 32768 {
		t.Errorf("defaults disturbed: %+v", c)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "otflash.yml")
	if err := os.WriteFile(path, []byte(":\n\t:::"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load of malformed YAML succeeded")
	}
}
