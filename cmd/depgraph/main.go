package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roivaz/repo-insights/internal/config"
	"github.com/roivaz/repo-insights/internal/depgraph"
	"github.com/roivaz/repo-insights/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "depgraph",
	Short:         "Draw package and source-import dependency graphs",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "Draw the manifest dependency graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, true, false)
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Draw the relative-import graph of the source tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, false, true)
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Draw both graphs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, true, true)
	},
}

func main() {
	config.Init(rootCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("manifest", "", "Path to package.json or package.yaml")
	pf.String("src", "", "Source root to scan")
	pf.String("ext", "", "Source file extension")
	pf.String("alias", "", "Import prefix resolved against the source root (empty string disables)")
	pf.String("project", "", "Project node name (default: manifest name)")
	pf.String("output-dir", "", "Directory for the images")
	pf.String("format", "png", "Output format: png, or json to also write the edge lists")
	config.BindFlag(config.KeyManifestPath, pf.Lookup("manifest"))
	config.BindFlag(config.KeySourceDir, pf.Lookup("src"))
	config.BindFlag(config.KeySourceExt, pf.Lookup("ext"))
	config.BindFlag(config.KeyImportAlias, pf.Lookup("alias"))
	config.BindFlag(config.KeyProjectName, pf.Lookup("project"))
	config.BindFlag(config.KeyOutputDir, pf.Lookup("output-dir"))

	rootCmd.AddCommand(packagesCmd, sourcesCmd, allCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "depgraph: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, packages, sources bool) error {
	log := logging.New(logging.LeveledLogger(config.LogLevel())).WithName("depgraph")
	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(format)
	if format != "png" && format != "json" {
		return fmt.Errorf("unknown format %q (want png or json)", format)
	}

	dir := config.OutputDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	manifestPath := config.ManifestPath()
	manifest, err := depgraph.LoadManifest(manifestPath)
	if err != nil {
		if packages {
			return err
		}
		log.Debug("manifest unavailable; naming project from flags or directory", "error", err.Error())
	}
	root := depgraph.RootName(config.ProjectName(), manifest, manifestPath)

	var outputs []output
	if packages {
		outputs = append(outputs, output{
			graph:  depgraph.PackageGraph(root, manifest),
			role:   depgraph.PackageRoles(root),
			legend: depgraph.PackageLegend,
			size:   depgraph.PackageImageSize,
			file:   config.PackageGraphFile(),
		})
	}
	if sources {
		g, err := depgraph.SourceGraph(root, depgraph.ScanConfig{
			Root:  config.SourceDir(),
			Ext:   config.SourceExt(),
			Alias: config.ImportAlias(),
		})
		if err != nil {
			return err
		}
		outputs = append(outputs, output{
			graph:  g,
			role:   depgraph.SourceRole,
			legend: depgraph.SourceLegend,
			size:   depgraph.SourceImageSize,
			file:   config.SourceGraphFile(),
		})
	}

	for _, o := range outputs {
		path := filepath.Join(dir, o.file)
		if err := depgraph.Render(o.graph, o.role, o.legend, o.size, path); err != nil {
			return err
		}
		log.Info("graph written", "title", o.graph.Title, "nodes", o.graph.Len(), "edges", len(o.graph.Edges()), "path", path)
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", o.graph.Title, path)

		if format == "json" {
			jsonPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
			if err := writeJSON(jsonPath, o); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s edges to %s\n", o.graph.Title, jsonPath)
		}
	}
	return nil
}

type output struct {
	graph  *depgraph.Graph
	role   depgraph.RoleFunc
	legend []depgraph.Role
	size   depgraph.Size
	file   string
}

func writeJSON(path string, o output) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := o.graph.WriteJSON(f, o.role); err != nil {
		return err
	}
	return f.Close()
}
