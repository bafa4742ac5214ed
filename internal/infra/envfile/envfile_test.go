package envfile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPathBasic(t *testing.T) {
	path := writeEnv(t, `
# comment
DOPPEL_TEST_A=value-a
export DOPPEL_TEST_B="quoted value"
DOPPEL_TEST_C='single'

NOT_A_LINE
=no-key
`)
	for _, k := range []string{"DOPPEL_TEST_A", "DOPPEL_TEST_B", "DOPPEL_TEST_C"} {
		os.Unsetenv(k)
		t.Cleanup(func() { os.Unsetenv(k) })
	}

	res := LoadPath(path)
	if res.Err != nil {
		t.Fatalf("LoadPath: %v", res.Err)
	}
	if !res.Loaded || res.Keys != 3 {
		t.Errorf("result = %+v", res)
	}
	if got := os.Getenv("DOPPEL_TEST_A"); got != "value-a" {
		t.Errorf("A = %q", got)
	}
	if got := os.Getenv("DOPPEL_TEST_B"); got != "quoted value" {
		t.Errorf("B = %q", got)
	}
	if got := os.Getenv("DOPPEL_TEST_C"); got != "single" {
		t.Errorf("C = %q", got)
	}
}

func TestLoadPathProcessEnvWins(t *testing.T) {
	path := writeEnv(t, "DOPPEL_TEST_WINS=file\n")
	t.Setenv("DOPPEL_TEST_WINS", "process")

	res := LoadPath(path)
	if res.Err != nil {
		t.Fatalf("LoadPath: %v", res.Err)
	}
	if res.Keys != 0 {
		t.Errorf("keys = %d, want 0", res.Keys)
	}
	if got := os.Getenv("DOPPEL_TEST_WINS"); got != "process" {
		t.Errorf("value = %q, want process env to win", got)
	}
}

func TestLoadPathMissingFile(t *testing.T) {
	res := LoadPath(filepath.Join(t.TempDir(), "nope.env"))
	if res.Err == nil {
		t.Error("expected error for missing file")
	}
	if res.Loaded {
		t.Error("Loaded should be false")
	}
}

func TestLoadExplicitOverridePath(t *testing.T) {
	path := writeEnv(t, "DOPPEL_TEST_OVERRIDE=yes\n")
	os.Unsetenv("DOPPEL_TEST_OVERRIDE")
	t.Cleanup(func() { os.Unsetenv("DOPPEL_TEST_OVERRIDE") })
	t.Setenv("DOPPEL_ENV_PATH", path)

	res := Load()
	if res.Err != nil || !res.Loaded {
		t.Fatalf("result = %+v", res)
	}
	if got := os.Getenv("DOPPEL_TEST_OVERRIDE"); got != "yes" {
		t.Errorf("value = %q", got)
	}
}
