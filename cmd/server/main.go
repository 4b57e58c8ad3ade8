package main

import (
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/natevvv/osm-path-visualizer/internal/config"
	"github.com/natevvv/osm-path-visualizer/pkg/graph"
	"github.com/natevvv/osm-path-visualizer/pkg/graph/path"
	"github.com/natevvv/osm-path-visualizer/pkg/server/openapi_server"
)

var (
	configFile string
	addr       string
	graphFile  string
	debugLevel int
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve stepwise path searches on an osm graph",
	RunE:  runServer,
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "yaml config file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the config")
	rootCmd.Flags().StringVarP(&graphFile, "graph", "g", "", "fmi graph file, overrides the config")
	rootCmd.Flags().IntVar(&debugLevel, "debug", -1, "debug level of the searches, overrides the config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if graphFile != "" {
		cfg.Graph.File = graphFile
	}
	if debugLevel >= 0 {
		cfg.Search.DebugLevel = debugLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	start := time.Now()
	g, err := graph.NewGraphFromFmiFile(cfg.Graph.File)
	if err != nil {
		return err
	}
	log.Printf("[TIME-Import] = %s, %v nodes, %v edges\n", time.Since(start), g.NodeCount(), g.EdgeCount())

	service := openapi_server.NewDefaultApiService(g, serviceOptions(cfg))
	controller := openapi_server.NewDefaultApiController(service)
	router := openapi_server.NewRouter(controller)

	log.Printf("Server started on %v, default algorithm %v (menu: %v)\n", cfg.Server.Addr, cfg.Search.DefaultAlgorithm, path.Menu())
	return http.ListenAndServe(cfg.Server.Addr, router)
}

func serviceOptions(cfg *config.Config) openapi_server.ServiceOptions {
	return openapi_server.ServiceOptions{
		SessionTTL:         cfg.Server.SessionTTL,
		MaxSessions:        cfg.Server.MaxSessions,
		DefaultRadius:      cfg.Graph.DefaultRadius,
		MaxRadius:          cfg.Graph.MaxRadius,
		DefaultAlgorithm:   cfg.Search.DefaultAlgorithm,
		MaxStepsPerRequest: cfg.Search.MaxStepsPerRequest,
		DebugLevel:         cfg.Search.DebugLevel,
		TrailScale:         cfg.Search.TrailScale,
		RouteSpeed:         cfg.Search.RouteSpeed,
	}
}
