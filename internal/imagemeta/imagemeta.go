// Package imagemeta probes image files for dimensions and embedded text.
//
// The extractor treats probing as a capability: a Prober can be swapped out
// in tests or replaced by a richer implementation. Probe failures are
// per-image and non-fatal; the caller records the image without metadata.
package imagemeta

import (
	"encoding/xml"
	"image"
	"io"
	"os"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Info describes one probed image.
type Info struct {
	Width  int
	Height int
}

// Prober probes image files referenced by documents.
type Prober interface {
	// Probe returns the pixel dimensions of the image at path.
	Probe(path string) (Info, error)

	// EmbeddedText extracts human-readable text embedded in the image.
	// Formats without embedded text return an empty list.
	EmbeddedText(path string) ([]string, error)
}

// FileProber is the default Prober: stdlib image decoding for dimensions
// and SVG <text> element extraction for embedded text.
type FileProber struct{}

// Probe decodes just the image header.
func (FileProber) Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Info{}, err
	}
	return Info{Width: cfg.Width, Height: cfg.Height}, nil
}

// EmbeddedText returns the contents of <text> elements for SVG files.
// Other formats yield no text.
func (FileProber) EmbeddedText(path string) ([]string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".svg") {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return svgText(f)
}

func svgText(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)
	var texts []string
	depth := 0 // nesting depth inside <text> elements
	var current strings.Builder

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "text" || depth > 0 {
				depth++
			}
		case xml.EndElement:
			if depth > 0 {
				depth--
				if depth == 0 {
					texts = append(texts, current.String())
					current.Reset()
				}
			}
		case xml.CharData:
			if depth > 0 {
				current.Write(t)
			}
		}
	}
	return texts, nil
}
