package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/natevvv/osm-path-visualizer/internal/config"
	"github.com/natevvv/osm-path-visualizer/internal/osmimport"
	"github.com/natevvv/osm-path-visualizer/pkg/geometry"
	"github.com/natevvv/osm-path-visualizer/pkg/graph"
	"github.com/natevvv/osm-path-visualizer/pkg/road"
)

var (
	configFile string
	outputFile string
	roadsFile  string
	merge      bool
	center     []float64
	radius     float64
	gridWidth  int
	gridHeight int
)

var rootCmd = &cobra.Command{
	Use:   "graph-builder",
	Short: "Build fmi graphs for the path search server",
}

var importCmd = &cobra.Command{
	Use:   "import <file.osm.pbf|file.osm>",
	Short: "Import the highways of an osm file into an fmi graph",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var buildCmd = &cobra.Command{
	Use:   "build <roads.json>",
	Short: "Build an fmi graph from exported road segments",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Write an 8-connected grid graph (for jump point search)",
	RunE:  runGrid,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "yaml config file")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "road_graph.fmi", "output fmi file")

	importCmd.Flags().StringVar(&roadsFile, "roads", "", "also export the (merged) road segments as json")
	importCmd.Flags().BoolVar(&merge, "merge", false, "merge continuing road segments before the json export")
	importCmd.Flags().Float64SliceVar(&center, "center", nil, "only import around lat,lon")
	importCmd.Flags().Float64Var(&radius, "radius", 10000, "radius around the center in meters")

	gridCmd.Flags().IntVar(&gridWidth, "width", 32, "grid width")
	gridCmd.Flags().IntVar(&gridHeight, "height", 32, "grid height")

	rootCmd.AddCommand(importCmd, buildCmd, gridCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	options := osmimport.Options{RoadTypes: cfg.Import.Types()}
	if len(center) > 0 {
		if len(center) != 2 {
			return fmt.Errorf("center needs lat,lon, got %v values", len(center))
		}
		bound := graph.BoundAround(geometry.MakePoint(center[0], center[1]), radius)
		options.Bound = &bound
	}

	start := time.Now()
	importer, err := newImporter(cmd.Context(), args[0], options, cfg.Import.DebugLevel)
	if err != nil {
		return err
	}
	if err := importer.Import(); err != nil {
		return err
	}
	roads := importer.Roads()
	fmt.Printf("[TIME] Import: %s, %v road segments\n", time.Since(start), len(roads))

	if roadsFile != "" {
		if merge {
			start = time.Now()
			merger := road.NewMerger(roads)
			merger.Merge()
			roads = merger.Roads()
			fmt.Printf("[TIME] Merge: %s\n", time.Since(start))
			fmt.Printf("Road segments: %d, merges: %d, unmergable: %d\n", len(roads), merger.MergeCount(), merger.UnmergableRoadCount())
		}
		if err := osmimport.ExportRoadJson(roads, roadsFile); err != nil {
			return err
		}
		fmt.Printf("Exported road segments to %s\n", roadsFile)
	}

	return writeGraph(roads)
}

func newImporter(ctx context.Context, filename string, options osmimport.Options, debugLevel int) (osmimport.Importer, error) {
	switch {
	case strings.HasSuffix(filename, ".pbf"):
		importer := osmimport.NewPBFImporter(filename, options)
		importer.SetDebugLevel(debugLevel)
		return importer, nil
	case filepath.Ext(filename) == ".osm" || filepath.Ext(filename) == ".xml":
		importer := osmimport.NewXMLFileImporter(ctx, filename, options)
		importer.SetDebugLevel(debugLevel)
		return importer, nil
	default:
		return nil, fmt.Errorf("unknown osm file type: %v", filename)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()
	roads, err := osmimport.LoadRoadJson(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("[TIME] Load road segments: %s\n", time.Since(start))
	return writeGraph(roads)
}

func writeGraph(roads []*road.Segment) error {
	start := time.Now()
	g := osmimport.BuildGraph(roads)
	fmt.Printf("[TIME] Build graph: %s\n", time.Since(start))
	fmt.Printf("Nodes: %d\n", g.NodeCount())
	fmt.Printf("Edges: %d\n", g.EdgeCount())

	if err := graph.WriteFmi(g, outputFile); err != nil {
		return err
	}
	fmt.Printf("Exported graph to %s\n", outputFile)
	return nil
}

func runGrid(cmd *cobra.Command, args []string) error {
	if gridWidth < 1 || gridHeight < 1 {
		return fmt.Errorf("invalid grid size %vx%v", gridWidth, gridHeight)
	}
	g := graph.NewGrid(gridWidth, gridHeight, nil)
	if err := graph.WriteFmi(g, outputFile); err != nil {
		return err
	}
	fmt.Printf("Exported %vx%v grid (%v nodes, %v edges) to %s\n", gridWidth, gridHeight, g.NodeCount(), g.EdgeCount(), outputFile)
	return nil
}
