//go:build !android

package utils

import "testing"

func TestEnsureStorageDirDesktop(t *testing.T) {
	if err := EnsureStorageDir(); err != nil {
		t.Errorf("EnsureStorageDir() error: %v", err)
	}
	if GetStoragePath() != "" {
		t.Errorf("GetStoragePath() = %q, want empty on desktop", GetStoragePath())
	}
}
