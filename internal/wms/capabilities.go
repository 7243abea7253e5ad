package wms

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/pkg/errors"
)

type Capabilities struct {
	XMLName        xml.Name `xml:"WMS_Capabilities"`
	Text           string   `xml:",chardata"`
	Version        string   `xml:"version,attr"`
	UpdateSequence string   `xml:"updateSequence,attr"`
	Service        struct {
		Text     string `xml:",chardata"`
		Name     string `xml:"Name"`
		Title    string `xml:"Title"`
		Abstract string `xml:"Abstract"`
	} `xml:"Service"`
	Capability struct {
		Text    string `xml:",chardata"`
		Request struct {
			Text   string `xml:",chardata"`
			GetMap struct {
				Text   string   `xml:",chardata"`
				Format []string `xml:"Format"`
			} `xml:"GetMap"`
		} `xml:"Request"`
		Layer []Layer `xml:"Layer"`
	} `xml:"Capability"`
}

type Layer struct {
	Text                    string                   `xml:",chardata"`
	Queryable               string                   `xml:"queryable,attr"`
	Opaque                  string                   `xml:"opaque,attr"`
	Name                    string                   `xml:"Name"`
	Title                   string                   `xml:"Title"`
	Abstract                string                   `xml:"Abstract"`
	CRS                     []string                 `xml:"CRS"`
	EXGeographicBoundingBox *EXGeographicBoundingBox `xml:"EX_GeographicBoundingBox"`
	Dimension               []Dimension              `xml:"Dimension"`
	Layer                   []Layer                  `xml:"Layer"`
}

type EXGeographicBoundingBox struct {
	Text               string `xml:",chardata"`
	WestBoundLongitude string `xml:"westBoundLongitude"`
	EastBoundLongitude string `xml:"eastBoundLongitude"`
	SouthBoundLatitude string `xml:"southBoundLatitude"`
	NorthBoundLatitude string `xml:"northBoundLatitude"`
}

type Dimension struct {
	Text    string `xml:",chardata"`
	Name    string `xml:"name,attr"`
	Default string `xml:"default,attr"`
	Units   string `xml:"units,attr"`
}

// ParseCapabilities decodes a WMS 1.3.0 capabilities document.
func ParseCapabilities(r io.Reader) (*Capabilities, error) {
	capabilities := &Capabilities{}
	if err := xml.NewDecoder(r).Decode(capabilities); err != nil {
		return nil, errors.Wrap(err, "could not decode capabilities")
	}
	return capabilities, nil
}

// Walk calls fn for every layer nested below the Capability element, parents
// before children, in document order.
func (c *Capabilities) Walk(fn func(layer *Layer)) {
	for i := range c.Capability.Layer {
		c.Capability.Layer[i].walk(fn)
	}
}

func (l *Layer) walk(fn func(layer *Layer)) {
	fn(l)
	for i := range l.Layer {
		l.Layer[i].walk(fn)
	}
}

// IsContainer reports whether the layer only groups other layers.
func (l *Layer) IsContainer() bool {
	return strings.TrimSpace(l.Name) == "" && len(l.Layer) > 0
}

// TimeDimension returns the text of the dimension named "time", if any.
func (l *Layer) TimeDimension() (string, bool) {
	for _, dimension := range l.Dimension {
		if strings.EqualFold(dimension.Name, "time") {
			return strings.TrimSpace(dimension.Text), true
		}
	}
	return "", false
}
