package config

import "testing"

func TestDefaults(t *testing.T) {
	cfg := NewConfig()
	if !cfg.IsFeatureEnabled(FeatMainReturnZero) {
		t.Error("main-ret-zero should default on")
	}
	if cfg.IsWarningEnabled(WarnShadow) {
		t.Error("shadow should default off")
	}
	if !cfg.IsWarningEnabled(WarnUnusedVariable) {
		t.Error("unused-variable should default on")
	}
	if !cfg.IsWarningEnabled(WarnUnreachableCode) {
		t.Error("unreachable-code should default on")
	}
	if cfg.BackendName != "qbe" {
		t.Errorf("expected the qbe backend, got %q", cfg.BackendName)
	}
}

func TestSetFeatureAndWarning(t *testing.T) {
	cfg := NewConfig()
	cfg.SetFeature(FeatMainReturnZero, false)
	if cfg.IsFeatureEnabled(FeatMainReturnZero) {
		t.Error("expected the feature disabled")
	}
	cfg.SetWarning(WarnShadow, true)
	if !cfg.IsWarningEnabled(WarnShadow) {
		t.Error("expected the warning enabled")
	}
}

func TestApplyFlag(t *testing.T) {
	cfg := NewConfig()

	cfg.ApplyFlag("Wshadow")
	if !cfg.IsWarningEnabled(WarnShadow) {
		t.Error("Wshadow should enable the shadow warning")
	}

	cfg.ApplyFlag("Wno-unused-variable")
	if cfg.IsWarningEnabled(WarnUnusedVariable) {
		t.Error("Wno-unused-variable should disable the warning")
	}

	cfg.ApplyFlag("Fno-main-ret-zero")
	if cfg.IsFeatureEnabled(FeatMainReturnZero) {
		t.Error("Fno-main-ret-zero should disable the feature")
	}

	// A leading dash is tolerated.
	cfg.ApplyFlag("-Fmain-ret-zero")
	if !cfg.IsFeatureEnabled(FeatMainReturnZero) {
		t.Error("-Fmain-ret-zero should re-enable the feature")
	}

	// Unknown names are ignored rather than fatal.
	cfg.ApplyFlag("Wdoes-not-exist")
}

func TestApplyFlagWall(t *testing.T) {
	cfg := NewConfig()
	cfg.ApplyFlag("Wall")
	for w := Warning(0); w < WarnCount; w++ {
		if !cfg.IsWarningEnabled(w) {
			t.Errorf("Wall should enable warning %d", w)
		}
	}
}

func TestSetTarget(t *testing.T) {
	cfg := NewConfig()
	cfg.SetTarget("linux", "amd64", "")
	if cfg.BackendTarget != "amd64_sysv" {
		t.Errorf("expected amd64_sysv, got %q", cfg.BackendTarget)
	}
	if cfg.WordSize != 8 || cfg.WordType != "l" || cfg.StackAlignment != 16 {
		t.Errorf("unexpected word properties: %d %q %d", cfg.WordSize, cfg.WordType, cfg.StackAlignment)
	}

	cfg.SetTarget("linux", "arm", "arm")
	if cfg.WordSize != 4 || cfg.WordType != "w" {
		t.Errorf("expected 32-bit word properties, got %d %q", cfg.WordSize, cfg.WordType)
	}
}
