package catalog

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/pkg/errors"

	"github.com/delta10/gibs-fetcher/internal/wms"
)

// Skip records a layer that was left out of the catalog.
type Skip struct {
	Layer string
	Err   error
}

func (s Skip) String() string {
	return fmt.Sprintf("%s: %s", s.Layer, s.Err)
}

// Fetch requests the capabilities of the service behind client and builds the
// catalog from them.
func Fetch(ctx context.Context, client *wms.Client) (*Catalog, []Skip, error) {
	capabilities, err := client.GetCapabilities(ctx)
	if err != nil {
		return nil, nil, err
	}

	catalog, skipped := Build(capabilities)
	log.Printf("fetched %d layers, skipped %d", catalog.Len(), len(skipped))

	return catalog, skipped, nil
}

// Build extracts every named layer of the document. Layers that cannot be
// read are returned as skips; the rest of the document is still processed.
func Build(capabilities *wms.Capabilities) (*Catalog, []Skip) {
	catalog := New()
	var skipped []Skip

	capabilities.Walk(func(node *wms.Layer) {
		if node.IsContainer() {
			return
		}

		layer, err := layerFromNode(node)
		if err != nil {
			skipped = append(skipped, Skip{Layer: layerLabel(node), Err: err})
			return
		}

		catalog.Add(layer)
	})

	return catalog, skipped
}

func layerFromNode(node *wms.Layer) (Layer, error) {
	layer := Layer{
		Name:  strings.TrimSpace(node.Name),
		Title: strings.TrimSpace(node.Title),
	}
	if layer.Name == "" {
		return Layer{}, errors.New("layer has no name")
	}
	if layer.Title == "" {
		return Layer{}, errors.New("layer has no title")
	}

	if len(node.CRS) > 0 {
		crs := strings.TrimSpace(node.CRS[0])
		layer.CRS = &crs
	}

	if box := node.EXGeographicBoundingBox; box != nil {
		layer.Bounds = &BoundingBox{
			WestBound:  strings.TrimSpace(box.WestBoundLongitude),
			EastBound:  strings.TrimSpace(box.EastBoundLongitude),
			NorthBound: strings.TrimSpace(box.NorthBoundLatitude),
			SouthBound: strings.TrimSpace(box.SouthBoundLatitude),
		}
	}

	if dimension, ok := node.TimeDimension(); ok {
		layer.TimeDimension = &dimension

		dates, err := wms.ParseTimeDimension(dimension)
		if err != nil {
			return Layer{}, errors.Wrap(err, "could not parse time dimension")
		}
		layer.DateList = dates
	}

	return layer, nil
}

func layerLabel(node *wms.Layer) string {
	if name := strings.TrimSpace(node.Name); name != "" {
		return name
	}
	if title := strings.TrimSpace(node.Title); title != "" {
		return fmt.Sprintf("(unnamed %q)", title)
	}
	return "(unnamed)"
}
