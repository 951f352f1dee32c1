package knowledge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLibraryLookups(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "properties/banyan-tree-300.md", "Check-in at 3pm.")
	writeFile(t, root, "properties/banyan-tree-300-technology.md", "Gigabit Wi-Fi.")
	writeFile(t, root, "areas/kailua-kona/restaurants.md", "Try Umekes.")
	writeFile(t, root, "policies.md", "No smoking.")

	l := NewLibrary(root)

	if doc, err := l.PropertyDoc("banyan-tree-300", ""); err != nil || doc != "Check-in at 3pm." {
		t.Errorf("PropertyDoc = %q, %v", doc, err)
	}
	if doc, err := l.PropertyDoc("banyan-tree-300", "technology"); err != nil || doc != "Gigabit Wi-Fi." {
		t.Errorf("PropertyDoc technology = %q, %v", doc, err)
	}
	if doc, err := l.AreaDoc("kailua-kona", "restaurants"); err != nil || doc != "Try Umekes." {
		t.Errorf("AreaDoc = %q, %v", doc, err)
	}
	if doc, err := l.PolicyDoc(); err != nil || doc != "No smoking." {
		t.Errorf("PolicyDoc = %q, %v", doc, err)
	}

	if _, err := l.PropertyDoc("other-place", ""); err == nil {
		t.Error("expected error for missing doc")
	}
}

func TestVoiceExamples(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "voice-examples.json", `[
		{"category": "check-in", "guest_message": "When can we arrive?", "response": "Aloha! Check-in is at 3pm."}
	]`)

	l := NewLibrary(root)
	got := l.VoiceExamples()

	for _, want := range []string{"[check-in]", "Guest: When can we arrive?", "Cindy: Aloha! Check-in is at 3pm."} {
		if !strings.Contains(got, want) {
			t.Errorf("voice examples missing %q in %q", want, got)
		}
	}
}

func TestVoiceExamplesMissingFile(t *testing.T) {
	l := NewLibrary(t.TempDir())
	if got := l.VoiceExamples(); got != "" {
		t.Errorf("expected empty block, got %q", got)
	}
}
