package catalog

import (
	"context"
	"encoding/json"
	"log"

	"github.com/itchyny/gojq"
	"github.com/pkg/errors"
)

// Rewriter applies a jq program to every layer of a catalog. The layer is
// presented as {"name", "title", "crs", "bounds", "dateList"}.
type Rewriter struct {
	code *gojq.Code
}

func NewRewriter(query string) (*Rewriter, error) {
	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse rewrite")
	}

	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, errors.Wrap(err, "could not compile rewrite")
	}

	return &Rewriter{code: code}, nil
}

// Rewrite returns a new catalog holding the first object each layer yields.
// Layers that yield nothing, only null or false, or an error are dropped. The
// program stops with ctx, and Rewrite then returns the context error.
func (r *Rewriter) Rewrite(ctx context.Context, catalog *Catalog) (*Catalog, error) {
	rewritten := New()

	for _, layer := range catalog.layers {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "rewrite")
		}

		input, err := layerToValue(layer)
		if err != nil {
			log.Printf("could not rewrite layer %s: %s", layer.Name, err)
			continue
		}

		iter := r.code.RunWithContext(ctx, input)
		for {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "rewrite")
			}

			v, ok := iter.Next()
			if !ok {
				break
			}

			if err, ok := v.(error); ok {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, errors.Wrap(ctxErr, "rewrite")
				}
				log.Printf("could not rewrite layer %s: %s", layer.Name, err)
				break
			}

			object, ok := v.(map[string]interface{})
			if !ok {
				continue
			}

			result, err := layerFromValue(object, layer)
			if err != nil {
				log.Printf("could not rewrite layer %s: %s", layer.Name, err)
				break
			}

			rewritten.Add(result)
			break
		}
	}

	return rewritten, nil
}

// Rewrite is a shorthand for compiling query and applying it once.
func Rewrite(ctx context.Context, catalog *Catalog, query string) (*Catalog, error) {
	rewriter, err := NewRewriter(query)
	if err != nil {
		return nil, err
	}
	return rewriter.Rewrite(ctx, catalog)
}

func layerToValue(layer Layer) (map[string]interface{}, error) {
	data, err := json.Marshal(layer)
	if err != nil {
		return nil, err
	}

	var value map[string]interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, err
	}
	value["name"] = layer.Name

	return value, nil
}

func layerFromValue(value map[string]interface{}, original Layer) (Layer, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return Layer{}, err
	}

	layer := Layer{}
	if err := json.Unmarshal(data, &layer); err != nil {
		return Layer{}, err
	}

	layer.Name = original.Name
	if name, ok := value["name"].(string); ok && name != "" {
		layer.Name = name
	}
	layer.TimeDimension = original.TimeDimension

	return layer, nil
}
