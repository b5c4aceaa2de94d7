package upload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testStorage(t *testing.T) *Storage {
	t.Helper()
	return &Storage{
		Root:    t.TempDir(),
		Dir:     "src/profilepicture",
		Default: "src/profilepicture/defaultProfile.png",
	}
}

func TestSaveAndRemove(t *testing.T) {
	s := testStorage(t)

	rel, err := s.Save(strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(rel, "src/profilepicture/profilepicture") || !strings.HasSuffix(rel, ".png") {
		t.Fatalf("rel path = %q", rel)
	}

	abs := filepath.Join(s.Root, rel)
	if b, err := os.ReadFile(abs); err != nil || string(b) != "png-bytes" {
		t.Fatalf("stored file: %v %q", err, b)
	}

	if err := s.Remove(rel); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(abs); !os.IsNotExist(err) {
		t.Fatal("file survived Remove")
	}
}

func TestRemoveSpecialCases(t *testing.T) {
	s := testStorage(t)

	if err := s.Remove(s.Default); err != nil {
		t.Fatalf("Remove(default): %v", err)
	}
	if err := s.Remove(""); err != nil {
		t.Fatalf("Remove(empty): %v", err)
	}
	if err := s.Remove("src/profilepicture/gone.png"); err != nil {
		t.Fatalf("Remove(missing): %v", err)
	}
}
