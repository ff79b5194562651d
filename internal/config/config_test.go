package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	opts := cfg.Options()
	if opts.MaxSteps != 500 || !opts.ParseEqs || !opts.Dense || opts.MaxSplits != 10 {
		t.Errorf("defaults mismatch: %+v", opts)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := DefaultConfig()
	cfg.Problem = "henonheiles"
	cfg.Order = 28
	cfg.AbsTol = 1e-15
	cfg.TMax = 2000
	cfg.InitState = []float64{0, 0.45, 0.32, 0}

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Problem != cfg.Problem || loaded.Order != cfg.Order || loaded.TMax != cfg.TMax {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if len(loaded.InitState) != 4 || loaded.InitState[1] != 0.45 {
		t.Errorf("round trip lost initial state: %v", loaded.InitState)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Order = 1
	if cfg.Validate() == nil {
		t.Error("order 1 must be rejected")
	}

	cfg = DefaultConfig()
	cfg.AbsTol = 0
	if cfg.Validate() == nil {
		t.Error("zero abstol must be rejected")
	}

	cfg = DefaultConfig()
	cfg.Jacobian = "numeric"
	if cfg.Validate() == nil {
		t.Error("unknown jacobian source must be rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file must error")
	}
}
