package manifest

import (
	"github.com/streamlens/streamlens/internal/models"
	"github.com/streamlens/streamlens/internal/util"
)

// grammar parses one manifest format into the normalized form. Parsing a
// malformed body must not fail; it yields empty variant/segment lists.
type grammar interface {
	Parse(raw string) models.ParsedManifest
}

// Parser dispatches on the declared stream type to a registered grammar.
// Adding a new manifest format means registering a grammar for its type;
// unregistered types uniformly produce an unsupported result.
type Parser struct {
	grammars map[models.StreamType]grammar
}

// NewParser creates a Parser with the built-in grammars registered.
func NewParser() *Parser {
	p := &Parser{grammars: make(map[models.StreamType]grammar)}
	p.Register(models.StreamTypeM3U8, m3u8Grammar{})
	p.Register(models.StreamTypeM3U, m3u8Grammar{})
	p.Register(models.StreamTypeMPD, mpdGrammar{})
	// ISM/ISMC are detected by the URL patterns but have no grammar yet.
	p.Register(models.StreamTypeISM, unsupportedGrammar{name: "Smooth Streaming (ISM)"})
	p.Register(models.StreamTypeISMC, unsupportedGrammar{name: "Smooth Streaming (ISMC)"})
	return p
}

// Register installs a grammar for a stream type, replacing any existing one.
func (p *Parser) Register(t models.StreamType, g grammar) {
	p.grammars[t] = g
}

// Parse parses raw manifest text according to the declared type. It never
// returns an error: unknown types yield an unsupported manifest and grammar
// failures are downgraded inside the grammar itself.
func (p *Parser) Parse(raw string, streamType models.StreamType) models.ParsedManifest {
	g, ok := p.grammars[streamType]
	if !ok {
		util.Debugf("no grammar registered for stream type %q", streamType)
		return models.ParsedManifest{
			Kind:    models.KindUnsupported,
			Message: "Manifest parsing not supported for this type",
		}
	}
	return g.Parse(raw)
}

// unsupportedGrammar is a placeholder for detected-but-unparsed formats
type unsupportedGrammar struct {
	name string
}

func (g unsupportedGrammar) Parse(string) models.ParsedManifest {
	return models.ParsedManifest{
		Kind:    models.KindUnsupported,
		Message: g.name + " manifests are detected but not parsed",
	}
}
