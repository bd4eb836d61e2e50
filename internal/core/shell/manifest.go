package shell

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed manifests.yaml
var manifestsYAML []byte

// ViewManifest - статичное описание ресурсов экрана. Контроллеры ничего не
// регистрируют сами: манифест отдается слою отрисовки вместе с состоянием.
type ViewManifest struct {
	Title string   `yaml:"title" json:"title"`
	Icons []string `yaml:"icons" json:"icons"`
}

type Manifests map[string]ViewManifest

// LoadManifests разбирает встроенные манифесты и проверяет, что они есть для всех экранов.
func LoadManifests() (Manifests, error) {
	return parseManifests(manifestsYAML)
}

func parseManifests(data []byte) (Manifests, error) {
	var m Manifests
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse view manifests: %w", err)
	}
	for _, name := range viewNames {
		if _, ok := m[name]; !ok {
			return nil, fmt.Errorf("view manifest for %q is missing", name)
		}
	}
	return m, nil
}

func (m Manifests) For(view string) *ViewManifest {
	if vm, ok := m[view]; ok {
		return &vm
	}
	return nil
}
