package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Manifest describes a plugin's metadata and the state handlers it declares.
type Manifest struct {
	// Identity
	Name        string `json:"name" yaml:"name"`               // Unique identifier (e.g., "audit-trail")
	Version     string `json:"version" yaml:"version"`         // Semver (e.g., "1.2.0")
	DisplayName string `json:"displayName" yaml:"displayName"` // Human-readable name
	Description string `json:"description" yaml:"description"` // Short description
	Author      string `json:"author" yaml:"author"`           // Author name or org

	// Entry point
	Main string `json:"main" yaml:"main"` // Relative path to main Lua file (default: "init.lua")

	// State-handler contributions
	StateHandlers []HandlerDeclaration `json:"stateHandlers" yaml:"stateHandlers"`

	// Internal: path to the plugin directory
	path string
}

// HandlerDeclaration declares one state handler the plugin provides.
type HandlerDeclaration struct {
	// State is the state name the handler responds to. Required.
	State string `json:"state" yaml:"state"`

	// Handler is the Lua function name. Optional: when empty the loader
	// derives a fallback name from the state.
	Handler string `json:"handler" yaml:"handler"`

	// Priority orders handlers for the same state; lower runs first.
	Priority int `json:"priority" yaml:"priority"`
}

// Validation errors.
var (
	ErrMissingName       = errors.New("manifest: name is required")
	ErrInvalidName       = errors.New("manifest: name must be alphanumeric with hyphens")
	ErrMissingVersion    = errors.New("manifest: version is required")
	ErrInvalidVersion    = errors.New("manifest: version must be valid semver")
	ErrInvalidMain       = errors.New("manifest: main must be a .lua file")
	ErrMissingState      = errors.New("manifest: state handler declares no state")
	ErrUnsupportedFormat = errors.New("manifest: unsupported file format")
	ErrNotFound          = errors.New("manifest: no manifest file in directory")
)

// namePattern validates plugin names.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$|^[a-z]$`)

// semverPattern validates version strings (simplified semver).
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)

// manifestFiles are the file names probed by LoadFromDir, in order.
var manifestFiles = []string{"plugin.json", "plugin.yaml", "plugin.yml"}

// Load loads and validates a manifest from a file.
// The format follows the extension: .json, .yaml, or .yml.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse manifest: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	m.path = filepath.Dir(path)
	m.applyDefaults()

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// LoadFromDir loads a manifest from a plugin directory.
// Probes plugin.json, then plugin.yaml, then plugin.yml.
func LoadFromDir(dir string) (*Manifest, error) {
	for _, name := range manifestFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
}

// applyDefaults sets default values for optional fields.
func (m *Manifest) applyDefaults() {
	if m.Main == "" {
		m.Main = "init.lua"
	}
	if m.Version == "" {
		m.Version = "0.0.0"
	}
}

// Validate checks that the manifest is structurally valid.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return ErrMissingName
	}
	if !namePattern.MatchString(m.Name) {
		return fmt.Errorf("%w: %s", ErrInvalidName, m.Name)
	}

	if m.Version == "" {
		return ErrMissingVersion
	}
	if !semverPattern.MatchString(m.Version) {
		return fmt.Errorf("%w: %s", ErrInvalidVersion, m.Version)
	}

	if m.Main != "" && filepath.Ext(m.Main) != ".lua" {
		return fmt.Errorf("%w: %s", ErrInvalidMain, m.Main)
	}

	for i, decl := range m.StateHandlers {
		if decl.State == "" {
			return fmt.Errorf("%w at index %d", ErrMissingState, i)
		}
	}

	return nil
}

// Path returns the path to the plugin directory.
func (m *Manifest) Path() string {
	return m.path
}

// MainPath returns the full path to the main Lua file.
func (m *Manifest) MainPath() string {
	return filepath.Join(m.path, m.Main)
}

// Declarations returns a copy of the manifest's state-handler declarations.
func (m *Manifest) Declarations() []HandlerDeclaration {
	if len(m.StateHandlers) == 0 {
		return nil
	}
	decls := make([]HandlerDeclaration, len(m.StateHandlers))
	copy(decls, m.StateHandlers)
	return decls
}

// String returns a short description of the manifest.
func (m *Manifest) String() string {
	display := m.DisplayName
	if display == "" {
		display = m.Name
	}
	return fmt.Sprintf("%s v%s", display, m.Version)
}
