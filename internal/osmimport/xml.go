package osmimport

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"

	"github.com/natevvv/osm-path-visualizer/pkg/road"
)

// XMLImporter reads .osm files. The ways are kept until the end of the file, so the order of
// nodes and ways does not matter.
type XMLImporter struct {
	ctx        context.Context
	reader     io.Reader
	filename   string
	debugLevel int
	*collector
}

func NewXMLImporter(ctx context.Context, r io.Reader, options Options) *XMLImporter {
	return &XMLImporter{
		ctx:       ctx,
		reader:    r,
		collector: newCollector(options),
	}
}

func NewXMLFileImporter(ctx context.Context, filename string, options Options) *XMLImporter {
	return &XMLImporter{
		ctx:       ctx,
		filename:  filename,
		collector: newCollector(options),
	}
}

func (xi *XMLImporter) SetDebugLevel(level int) {
	xi.debugLevel = level
}

func (xi *XMLImporter) Import() error {
	reader := xi.reader
	if reader == nil {
		file, err := os.Open(xi.filename)
		if err != nil {
			return err
		}
		defer file.Close()
		reader = file
	}

	scanner := osmxml.New(xi.ctx, reader)
	defer scanner.Close()

	ways := make([]way, 0)
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			xi.addNode(int64(o.ID), o.Lat, o.Lon)
		case *osm.Way:
			if o.Tags.Find("highway") == "" {
				continue
			}
			nodeIDs := make([]int64, len(o.Nodes))
			for i, n := range o.Nodes {
				nodeIDs[i] = int64(n.ID)
			}
			ways = append(ways, way{id: int64(o.ID), tags: o.Tags.Map(), nodeIDs: nodeIDs})
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan osm xml: %w", err)
	}

	for _, w := range ways {
		xi.roads = append(xi.roads, xi.segments(w)...)
	}
	if xi.debugLevel >= 1 {
		log.Printf("Imported %v nodes, %v road segments\n", len(xi.nodes), len(xi.roads))
	}
	return nil
}

func (xi *XMLImporter) Roads() []*road.Segment {
	return xi.roads
}
