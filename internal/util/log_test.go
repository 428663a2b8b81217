package util

import "testing"

func TestLevelSwitches(t *testing.T) {
	orig := currentLogLevel
	defer func() { currentLogLevel = orig }()

	currentLogLevel = LevelInfo
	if Quiet() {
		t.Error("Quiet() = true at info level")
	}

	SetQuiet(true)
	if !Quiet() {
		t.Error("Quiet() = false after SetQuiet(true)")
	}

	currentLogLevel = LevelInfo
	SetVerbose(true)
	if currentLogLevel != LevelDebug {
		t.Errorf("level = %d after SetVerbose(true), want debug", currentLogLevel)
	}

	// The no-op forms must not lower an already-raised threshold.
	currentLogLevel = LevelError
	SetVerbose(false)
	SetQuiet(false)
	if currentLogLevel != LevelError {
		t.Errorf("level = %d, want error unchanged", currentLogLevel)
	}
}
