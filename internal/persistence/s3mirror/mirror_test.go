package s3mirror

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeObjectKey(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"games/g1/saves/save_000010.zst", "games/g1/saves/save_000010.zst"},
		{"/games/g1/a.zst", "games/g1/a.zst"},
		{"games\\g1\\a.zst", "games/g1/a.zst"},
		{"../escape", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := normalizeObjectKey(c.in); got != c.want {
			t.Errorf("normalizeObjectKey(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMirrorObjectKey_RelativeToDataDir(t *testing.T) {
	dir := t.TempDir()
	save := filepath.Join(dir, "games", "g1", "saves", "save_000010.zst")
	if err := os.MkdirAll(filepath.Dir(save), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(save, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := &Mirror{dataDir: dir, prefix: "backups"}
	key, err := m.objectKey(save)
	if err != nil {
		t.Fatalf("objectKey: %v", err)
	}
	if key != "backups/games/g1/saves/save_000010.zst" {
		t.Fatalf("unexpected key %q", key)
	}

	if _, err := m.objectKey(filepath.Join(dir, "..", "outside.zst")); err == nil {
		t.Fatal("expected error for path outside data dir")
	}
}
