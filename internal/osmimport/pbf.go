package osmimport

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sync"

	"github.com/qedus/osmpbf"

	"github.com/natevvv/osm-path-visualizer/pkg/road"
)

type PBFImporter struct {
	filename   string
	debugLevel int
	*collector
}

func NewPBFImporter(filename string, options Options) *PBFImporter {
	return &PBFImporter{
		filename:  filename,
		collector: newCollector(options),
	}
}

func (pi *PBFImporter) SetDebugLevel(level int) {
	pi.debugLevel = level
}

// Read the file twice. The first pass collects the node positions, the second one the ways.
func (pi *PBFImporter) Import() error {
	if err := pi.collectNodes(); err != nil {
		return err
	}
	if pi.debugLevel >= 1 {
		log.Printf("Collected %v nodes\n", len(pi.nodes))
	}

	decoder, file, err := pi.openDecoder()
	if err != nil {
		return err
	}
	defer file.Close()

	var wg sync.WaitGroup
	roadsChan := make(chan *road.Segment, 1000)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for segment := range roadsChan {
			pi.roads = append(pi.roads, segment)
		}
	}()

	var decodeErr error
	for {
		v, err := decoder.Decode()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				decodeErr = fmt.Errorf("decode ways of %v: %w", pi.filename, err)
			}
			break
		}
		if w, ok := v.(*osmpbf.Way); ok {
			for _, segment := range pi.segments(way{id: w.ID, tags: w.Tags, nodeIDs: w.NodeIDs}) {
				roadsChan <- segment
			}
		}
	}
	close(roadsChan)
	wg.Wait()

	if pi.debugLevel >= 1 {
		log.Printf("Imported %v road segments\n", len(pi.roads))
	}
	return decodeErr
}

func (pi *PBFImporter) Roads() []*road.Segment {
	return pi.roads
}

func (pi *PBFImporter) openDecoder() (*osmpbf.Decoder, *os.File, error) {
	file, err := os.Open(pi.filename)
	if err != nil {
		return nil, nil, err
	}

	decoder := osmpbf.NewDecoder(file)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)

	if err := decoder.Start(runtime.GOMAXPROCS(-1)); err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("start decoder for %v: %w", pi.filename, err)
	}
	return decoder, file, nil
}

func (pi *PBFImporter) collectNodes() error {
	decoder, file, err := pi.openDecoder()
	if err != nil {
		return err
	}
	defer file.Close()

	for {
		v, err := decoder.Decode()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode nodes of %v: %w", pi.filename, err)
		}
		if n, ok := v.(*osmpbf.Node); ok {
			pi.addNode(n.ID, n.Lat, n.Lon)
		}
	}
}
