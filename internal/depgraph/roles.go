package depgraph

import (
	"image/color"
	"strings"
)

type Role string

const (
	RoleRoot           Role = "root"
	RoleDependency     Role = "dependency"
	RoleDevDependency  Role = "devDependency"
	RoleApplication    Role = "application"
	RoleDomain         Role = "domain"
	RoleInfrastructure Role = "infrastructure"
	RoleOther          Role = "other"
)

// RoleFunc classifies a node of g.
type RoleFunc func(g *Graph, name string) Role

// PackageRoles classifies package-graph nodes: the root, packages with an
// incoming dependency edge, and the remaining dev-only packages.
func PackageRoles(root string) RoleFunc {
	return func(g *Graph, name string) Role {
		if name == root {
			return RoleRoot
		}
		for _, e := range g.Incoming(name) {
			if e.Kind == KindDependency {
				return RoleDependency
			}
		}
		return RoleDevDependency
	}
}

// SourceRole classifies a module by the layer name found in its path.
func SourceRole(_ *Graph, name string) Role {
	switch {
	case strings.Contains(name, "application"):
		return RoleApplication
	case strings.Contains(name, "domain"):
		return RoleDomain
	case strings.Contains(name, "infrastructure"):
		return RoleInfrastructure
	default:
		return RoleOther
	}
}

var (
	lightBlue  = color.RGBA{R: 173, G: 216, B: 230, A: 255}
	lightGreen = color.RGBA{R: 144, G: 238, B: 144, A: 255}
	lightCoral = color.RGBA{R: 240, G: 128, B: 128, A: 255}
	yellow     = color.RGBA{R: 255, G: 255, A: 255}
	green      = color.RGBA{G: 128, A: 255}
	red        = color.RGBA{R: 255, A: 255}
	gray       = color.RGBA{R: 96, G: 96, B: 96, A: 255}
)

var roleColors = map[Role]color.Color{
	RoleRoot:           lightBlue,
	RoleDependency:     lightGreen,
	RoleDevDependency:  lightCoral,
	RoleApplication:    lightBlue,
	RoleDomain:         lightGreen,
	RoleInfrastructure: lightCoral,
	RoleOther:          yellow,
}

var roleLabels = map[Role]string{
	RoleRoot:           "Project",
	RoleDependency:     "Dependency",
	RoleDevDependency:  "Dev dependency",
	RoleApplication:    "Application layer",
	RoleDomain:         "Domain layer",
	RoleInfrastructure: "Infrastructure layer",
	RoleOther:          "Other",
}

func edgeColor(kind EdgeKind) color.Color {
	switch kind {
	case KindDependency:
		return green
	case KindDevDependency:
		return red
	default:
		return gray
	}
}

// Legend entries, in display order.
var (
	PackageLegend = []Role{RoleRoot, RoleDependency, RoleDevDependency}
	SourceLegend  = []Role{RoleApplication, RoleDomain, RoleInfrastructure, RoleOther}
)
