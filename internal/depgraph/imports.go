package depgraph

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var fromClause = regexp.MustCompile(`\bfrom\s+['"]([^'"]+)['"]`)

type ScanConfig struct {
	Root  string // source root, e.g. src
	Ext   string // file extension including the dot
	Alias string // import prefix mapped to Root, e.g. "@/"; empty disables
}

func (c ScanConfig) withDefaults() ScanConfig {
	if c.Ext == "" {
		c.Ext = ".ts"
	}
	if !strings.HasPrefix(c.Ext, ".") {
		c.Ext = "." + c.Ext
	}
	return c
}

// SourceGraph walks cfg.Root and adds an edge from each module to every
// module it imports through a relative or aliased specifier.
func SourceGraph(title string, cfg ScanConfig) (*Graph, error) {
	cfg = cfg.withDefaults()
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("source root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source root %s is not a directory", cfg.Root)
	}

	g := NewGraph(title + " source dependencies")
	err = filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), cfg.Ext) {
			return nil
		}
		module, err := moduleName(cfg.Root, path, cfg.Ext)
		if err != nil {
			return err
		}
		imports, err := scanImports(path)
		if err != nil {
			return err
		}
		for _, imp := range imports {
			if target, ok := cfg.resolve(filepath.Dir(path), imp); ok {
				g.AddEdge(module, target, KindImport)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", cfg.Root, err)
	}
	return g, nil
}

func moduleName(root, path, ext string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(filepath.ToSlash(rel), ext), nil
}

// scanImports returns the specifier of every line that starts with
// "import " and carries a from clause.
func scanImports(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var imports []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "import ") {
			continue
		}
		if m := fromClause.FindStringSubmatch(line); m != nil {
			imports = append(imports, m[1])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return imports, nil
}

// resolve maps an import specifier to a module name relative to the root.
// Bare package specifiers are not modules of this project.
func (c ScanConfig) resolve(dir, imp string) (string, bool) {
	var abs string
	switch {
	case strings.HasPrefix(imp, "./"), strings.HasPrefix(imp, "../"):
		abs = filepath.Join(dir, filepath.FromSlash(imp))
	case c.Alias != "" && strings.HasPrefix(imp, c.Alias):
		abs = filepath.Join(c.Root, filepath.FromSlash(strings.TrimPrefix(imp, c.Alias)))
	default:
		return "", false
	}

	rel, err := filepath.Rel(c.Root, abs)
	if err != nil {
		return "", false
	}
	rel = strings.TrimSuffix(filepath.ToSlash(rel), c.Ext)

	if !isFile(abs) && !isFile(abs+c.Ext) && isFile(filepath.Join(abs, "index"+c.Ext)) {
		rel += "/index"
	}
	return rel, true
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
