package processor

import (
	"context"
	"log"

	"github.com/nikolailic0529/easyquote-ingest/internal/domain"
)

type routeKey struct {
	vendor   string
	fileKind domain.FileKind
	source   string
}

// Dispatcher selects the processor for a document. Selection is a pure
// function of (vendor, file kind, source); unknown combinations fall back to
// the default processor.
type Dispatcher struct {
	routes      map[routeKey]Processor
	defaultProc Processor
}

// NewDispatcher creates a dispatcher with the given default processor.
func NewDispatcher(defaultProc Processor) *Dispatcher {
	return &Dispatcher{
		routes:      make(map[routeKey]Processor),
		defaultProc: defaultProc,
	}
}

// Register binds a processor to a (vendor, file kind, source) combination.
// An empty vendor or source acts as a wildcard for that dimension.
func (d *Dispatcher) Register(vendor string, kind domain.FileKind, source string, p Processor) {
	d.routes[routeKey{vendor: vendor, fileKind: kind, source: source}] = p
}

// Resolve returns the processor for the document's routing attributes.
func (d *Dispatcher) Resolve(vendor string, kind domain.FileKind, source string) Processor {
	candidates := []routeKey{
		{vendor: vendor, fileKind: kind, source: source},
		{vendor: vendor, fileKind: kind},
		{fileKind: kind, source: source},
		{fileKind: kind},
	}
	for _, key := range candidates {
		if p, ok := d.routes[key]; ok {
			return p
		}
	}
	return d.defaultProc
}

// Process routes the document to its processor.
func (d *Dispatcher) Process(ctx context.Context, file domain.QuoteFile) error {
	p := d.Resolve(file.Vendor, file.FileKind, file.Source)
	log.Printf("[PROCESS] dispatching %s (%s/%s/%s) to processor %s", file.ID, file.Vendor, file.FileKind, file.Source, p.ID())
	return p.Process(ctx, file)
}
