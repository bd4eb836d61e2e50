package shell

import "testing"

func TestLoadManifestsCoversEveryView(t *testing.T) {
	m, err := LoadManifests()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range viewNames {
		vm := m.For(name)
		if vm == nil || vm.Title == "" {
			t.Errorf("%s: manifest missing or untitled", name)
		}
	}
	if m.For("nope") != nil {
		t.Error("unknown view should have no manifest")
	}
}

func TestParseManifestsMissingView(t *testing.T) {
	_, err := parseManifests([]byte("home:\n  title: Home\n"))
	if err == nil {
		t.Fatal("expected error for incomplete manifests")
	}
}

func TestParseManifestsInvalidYAML(t *testing.T) {
	if _, err := parseManifests([]byte("home: [")); err == nil {
		t.Fatal("expected parse error")
	}
}
