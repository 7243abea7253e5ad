package catalog

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/delta10/gibs-fetcher/internal/wms"
)

type BoundingBox struct {
	WestBound  string `json:"westBound"`
	EastBound  string `json:"eastBound"`
	NorthBound string `json:"northBound"`
	SouthBound string `json:"southBound"`
}

// Layer is the metadata of one requestable layer. Name is the catalog key and
// is not part of the JSON value.
type Layer struct {
	Name          string       `json:"-"`
	Title         string       `json:"title"`
	CRS           *string      `json:"crs"`
	Bounds        *BoundingBox `json:"bounds"`
	DateList      []string     `json:"dateList"`
	TimeDimension *string      `json:"-"`
}

// MapBounds returns the bounds in the form the GetMap builder takes. Absent
// bounds yield empty strings.
func (l Layer) MapBounds() wms.Bounds {
	if l.Bounds == nil {
		return wms.Bounds{}
	}
	return wms.Bounds{
		West:  l.Bounds.WestBound,
		East:  l.Bounds.EastBound,
		North: l.Bounds.NorthBound,
		South: l.Bounds.SouthBound,
	}
}

// CRSOrEmpty returns the coordinate system or the empty string.
func (l Layer) CRSOrEmpty() string {
	if l.CRS == nil {
		return ""
	}
	return *l.CRS
}

// Catalog maps layer names to their metadata and remembers the order in which
// layers were added.
type Catalog struct {
	layers []Layer
	index  map[string]int
}

func New() *Catalog {
	return &Catalog{index: map[string]int{}}
}

// Add inserts a layer. A layer with a name already present replaces the
// earlier value in place.
func (c *Catalog) Add(layer Layer) {
	if layer.DateList == nil {
		layer.DateList = []string{}
	}
	if c.index == nil {
		c.index = map[string]int{}
	}
	if i, ok := c.index[layer.Name]; ok {
		c.layers[i] = layer
		return
	}
	c.index[layer.Name] = len(c.layers)
	c.layers = append(c.layers, layer)
}

func (c *Catalog) Get(name string) (Layer, bool) {
	i, ok := c.index[name]
	if !ok {
		return Layer{}, false
	}
	return c.layers[i], true
}

func (c *Catalog) Len() int {
	return len(c.layers)
}

// Layers returns a copy of the layers in catalog order.
func (c *Catalog) Layers() []Layer {
	layers := make([]Layer, len(c.layers))
	copy(layers, c.layers)
	return layers
}

// MarshalJSON writes the catalog as one object keyed by layer name, in
// catalog order.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for i, layer := range c.layers {
		if i > 0 {
			buffer.WriteByte(',')
		}
		key, err := json.Marshal(layer.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(layer)
		if err != nil {
			return nil, errors.Wrapf(err, "could not marshal layer %s", layer.Name)
		}
		buffer.Write(key)
		buffer.WriteByte(':')
		buffer.Write(value)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

func (c *Catalog) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))

	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return errors.New("catalog must be a JSON object")
	}

	catalog := New()
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		name, _ := token.(string)

		layer := Layer{}
		if err := decoder.Decode(&layer); err != nil {
			return errors.Wrapf(err, "could not decode layer %s", name)
		}
		layer.Name = name
		catalog.Add(layer)
	}

	if _, err := decoder.Token(); err != nil {
		return err
	}

	*c = *catalog
	return nil
}
