package contracts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed events
var schemasFS embed.FS

// Ключи схем публикуемых событий.
const (
	ListingCreatedEvent   = "ListingCreatedEvent"
	ViewingRequestedEvent = "ViewingRequestedEvent"
	EventVersion1         = "1.0.0"
)

// Registry - скомпилированные JSON-схемы событий по ключу "Тип/версия".
type Registry struct {
	schemas map[string]*jsonschema.Schema
}

var (
	defaultRegistry    *Registry
	defaultRegistryErr error
	defaultOnce        sync.Once
)

// DefaultRegistry компилирует встроенные схемы один раз за процесс.
func DefaultRegistry() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultRegistryErr = NewRegistry(schemasFS)
	})
	return defaultRegistry, defaultRegistryErr
}

// NewRegistry компилирует все *.json из каталога events файловой системы fsys.
func NewRegistry(fsys fs.FS) (*Registry, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	var paths []string
	// сначала все ресурсы, чтобы работали $ref между схемами
	err := fs.WalkDir(fsys, "events", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		file, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := compiler.AddResource(path, file); err != nil {
			return fmt.Errorf("failed to add schema resource %s: %w", path, err)
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking schema resources: %w", err)
	}

	r := &Registry{schemas: make(map[string]*jsonschema.Schema, len(paths))}
	for _, path := range paths {
		key := keyFromPath(path)
		if key == "" {
			return nil, fmt.Errorf("schema path %s does not match events/<name>/v<N>.json", path)
		}
		schema, err := compiler.Compile(path)
		if err != nil {
			return nil, fmt.Errorf("could not compile schema %s: %w", path, err)
		}
		r.schemas[key] = schema
	}
	return r, nil
}

// keyFromPath: "events/listing-created/v1.json" -> "ListingCreatedEvent/1.0.0".
func keyFromPath(path string) string {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(path, "events/"), ".json")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || !strings.HasPrefix(parts[1], "v") {
		return ""
	}

	caser := cases.Title(language.English)
	var name strings.Builder
	for _, p := range strings.Split(parts[0], "-") {
		name.WriteString(caser.String(p))
	}
	name.WriteString("Event")

	return fmt.Sprintf("%s/%s.0.0", name.String(), strings.TrimPrefix(parts[1], "v"))
}

// Has сообщает, есть ли схема для события.
func (r *Registry) Has(eventType, eventVersion string) bool {
	_, ok := r.schemas[eventType+"/"+eventVersion]
	return ok
}

// Validate проверяет тело сообщения по схеме события.
func (r *Registry) Validate(eventType, eventVersion string, body []byte) error {
	schema, ok := r.schemas[eventType+"/"+eventVersion]
	if !ok {
		return fmt.Errorf("schema for event '%s' version '%s' not found", eventType, eventVersion)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("message body is not a valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}
