// watertool inspects water bodies, chunk meshes and technique negotiation
// without opening a window.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Faultbox/midgard-water/internal/config"
	"github.com/Faultbox/midgard-water/internal/engine/capability"
	"github.com/Faultbox/midgard-water/internal/engine/gldevice"
	"github.com/Faultbox/midgard-water/internal/engine/scene"
	"github.com/Faultbox/midgard-water/internal/engine/terrain"
	"github.com/Faultbox/midgard-water/internal/engine/water"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "bodies":
		cmdBodies(args)
	case "mesh":
		cmdMesh(args)
	case "caps":
		cmdCaps(args)
	case "export":
		cmdExport(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`watertool - water surface inspection utility

Usage:
  watertool <command> [options]

Commands:
  bodies [-level L] [map.gat]               List water bodies and their chunks
  mesh [-level L] [-detail D] [map.gat]     Build every chunk mesh and report sizes
  caps [-units N] [-version V] [-ext LIST]  Negotiate techniques for hardware facts
  export -o out.gat                         Write the generated basin as a GAT file

Without a GAT file the generated basin is used.

Examples:
  watertool bodies -level 2 prontera.gat
  watertool mesh -detail 2
  watertool caps -units 2 -version 1.3
  watertool export -o basin.gat`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func loadScene(path string, level float32) *scene.Scene {
	s, err := scene.Load(config.MapConfig{GATPath: path, WaterLevel: level})
	if err != nil {
		fail(err)
	}
	return s
}

func buildBodies(s *scene.Scene) []water.WaterBody {
	bodies := make([]water.WaterBody, len(s.Bodies))
	for i, b := range s.Bodies {
		bodies[i] = water.NewBody(water.BodyID{Index: i}, b, s.Field)
	}
	return bodies
}

func cmdBodies(args []string) {
	fs := flag.NewFlagSet("bodies", flag.ExitOnError)
	level := fs.Float64("level", float64(config.Default().Map.WaterLevel), "Water level")
	fs.Parse(args)

	s := loadScene(fs.Arg(0), float32(*level))
	bodies := buildBodies(s)

	fmt.Printf("Map:    %s (%dx%d cells)\n", s.Name, s.Field.CellWidth(), s.Field.CellHeight())
	fmt.Printf("Bodies: %d\n", len(bodies))
	fmt.Println()
	fmt.Printf("  %-5s %-20s %8s %7s %14s\n", "label", "footprint", "corners", "chunks", "ground")

	for i, b := range bodies {
		lo, hi := groundRange(b)
		fp := b.Footprint
		fmt.Printf("  %-5d %-20s %8d %7d %6.2f..%-6.2f\n",
			b.Label,
			fmt.Sprintf("(%d,%d)-(%d,%d)", fp.MinX, fp.MinY, fp.MaxX, fp.MaxY),
			s.Bodies[i].Corners, len(b.Chunks), lo, hi)
	}
}

func groundRange(b water.WaterBody) (lo, hi float32) {
	for i, c := range b.Chunks {
		if i == 0 || c.MinGround < lo {
			lo = c.MinGround
		}
		if i == 0 || c.MaxGround > hi {
			hi = c.MaxGround
		}
	}
	return lo, hi
}

func cmdMesh(args []string) {
	fs := flag.NewFlagSet("mesh", flag.ExitOnError)
	level := fs.Float64("level", float64(config.Default().Map.WaterLevel), "Water level")
	detail := fs.Int("detail", water.DefaultDetail, "Tessellation detail factor")
	colors := fs.Bool("colors", false, "Build per-vertex alpha colors")
	fs.Parse(args)

	s := loadScene(fs.Arg(0), float32(*level))
	bodies := buildBodies(s)
	builder := water.NewMeshBuilder(s.Field, terrain.ExploreAll{})

	var chunks, quads, slots int
	for bi := range bodies {
		b := &bodies[bi]
		bodyQuads := 0
		for ci := range b.Chunks {
			c := &b.Chunks[ci]
			builder.EnsureFresh(c, b, *detail, *colors)
			bodyQuads += c.Mesh.Quads()
			slots += c.Mesh.Slots()
		}
		chunks += len(b.Chunks)
		quads += bodyQuads
		fmt.Printf("  body %-3d %4d chunks %6d quads\n", b.Label, len(b.Chunks), bodyQuads)
	}

	fmt.Println()
	fmt.Printf("Detail:   %d\n", *detail)
	fmt.Printf("Chunks:   %d\n", chunks)
	fmt.Printf("Quads:    %d\n", quads)
	fmt.Printf("Corners:  %d\n", slots)
	fmt.Printf("Rebuilds: %d\n", builder.Rebuilds())
}

func cmdCaps(args []string) {
	fs := flag.NewFlagSet("caps", flag.ExitOnError)
	units := fs.Int("units", 4, "Fixed-function texture units")
	version := fs.String("version", "2.1", "GL version string")
	exts := fs.String("ext", "", "Extra extensions, comma or space separated")
	noShaders := fs.Bool("no-shaders", false, "Do not request the shader path")
	fs.Parse(args)

	facts := gldevice.FactsFrom(*version, strings.ReplaceAll(*exts, ",", " "), *units)
	w := config.DefaultWater()
	w.Shaders = !*noShaders
	set, corrections := capability.Negotiate(capability.RequestFromConfig(w), facts)

	fmt.Printf("Facts:      %+v\n", facts)
	fmt.Printf("Technique:  %s\n", set.Technique())
	fmt.Printf("Enabled:    %+v\n", set.Enabled())
	if len(corrections) == 0 {
		fmt.Println("Corrections: none")
		return
	}
	fmt.Println("Corrections:")
	for _, c := range corrections {
		fmt.Printf("  %-14s %s\n", c.Technique, c.Reason)
	}
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "", "Output GAT file")
	fs.Parse(args)

	if *out == "" {
		fmt.Fprintln(os.Stderr, "Usage: watertool export -o out.gat")
		os.Exit(1)
	}

	s := loadScene("", config.Default().Map.WaterLevel)
	f, err := os.Create(*out)
	if err != nil {
		fail(err)
	}
	if err := s.Export().Encode(f); err != nil {
		f.Close()
		fail(err)
	}
	if err := f.Close(); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s (%d bodies)\n", *out, len(s.Bodies))
}
