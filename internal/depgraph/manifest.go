package depgraph

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"sigs.k8s.io/yaml"
)

// Manifest holds the parts of package.json the package graph needs.
// Dependency names keep their order in the file.
type Manifest struct {
	Name            string
	Dependencies    []string
	DevDependencies []string
}

// LoadManifest reads package.json, or package.yaml/.yml converted to JSON.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return Manifest{}, fmt.Errorf("convert %s: %w", path, err)
		}
	}
	m, err := ParseManifest(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func ParseManifest(data []byte) (Manifest, error) {
	if !gjson.ValidBytes(data) {
		return Manifest{}, fmt.Errorf("manifest is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Manifest{}, fmt.Errorf("manifest must be a JSON object")
	}

	deps, err := packageNames(root, "dependencies")
	if err != nil {
		return Manifest{}, err
	}
	devDeps, err := packageNames(root, "devDependencies")
	if err != nil {
		return Manifest{}, err
	}
	return Manifest{
		Name:            root.Get("name").String(),
		Dependencies:    deps,
		DevDependencies: devDeps,
	}, nil
}

func packageNames(root gjson.Result, key string) ([]string, error) {
	section := root.Get(key)
	if !section.Exists() || section.Type == gjson.Null {
		return nil, nil
	}
	if !section.IsObject() {
		return nil, fmt.Errorf("%s must be an object", key)
	}
	var names []string
	section.ForEach(func(k, _ gjson.Result) bool {
		names = append(names, k.String())
		return true
	})
	return names, nil
}

// RootName picks the project node name: the explicit project, the manifest
// name, then the manifest's directory.
func RootName(project string, m Manifest, manifestPath string) string {
	if p := strings.TrimSpace(project); p != "" {
		return p
	}
	if m.Name != "" {
		return m.Name
	}
	dir := filepath.Dir(manifestPath)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return filepath.Base(dir)
}

// PackageGraph adds one root edge per declared package. Dev dependencies
// are applied last, so a package in both sections ends as devDependency.
func PackageGraph(root string, m Manifest) *Graph {
	g := NewGraph(root + " package dependencies")
	g.AddNode(root)
	for _, dep := range m.Dependencies {
		g.AddEdge(root, dep, KindDependency)
	}
	for _, dep := range m.DevDependencies {
		g.AddEdge(root, dep, KindDevDependency)
	}
	return g
}
