package catalog

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// TSVHeader is the first row of the tabular catalog.
var TSVHeader = []string{"name", "title", "crs", "westBound", "eastBound", "northBound", "southBound", "timeDimension"}

// Save writes the catalog as indented JSON to jsonPath and as a tab separated
// table to tsvPath.
func Save(catalog *Catalog, jsonPath, tsvPath string) error {
	if err := writeFile(jsonPath, func(w io.Writer) error {
		return WriteJSON(w, catalog)
	}); err != nil {
		return errors.Wrapf(err, "could not write %s", jsonPath)
	}

	if err := writeFile(tsvPath, func(w io.Writer) error {
		return WriteTSV(w, catalog)
	}); err != nil {
		return errors.Wrapf(err, "could not write %s", tsvPath)
	}

	return nil
}

// Load reads a catalog written by Save.
func Load(jsonPath string) (*Catalog, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}

	catalog := New()
	if err := json.Unmarshal(data, catalog); err != nil {
		return nil, errors.Wrapf(err, "could not decode %s", jsonPath)
	}

	return catalog, nil
}

func WriteJSON(w io.Writer, catalog *Catalog) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(catalog)
}

// WriteTSV writes one tab separated row per layer. Absent values are empty
// fields; tabs and line breaks inside a value become spaces.
func WriteTSV(w io.Writer, catalog *Catalog) error {
	if _, err := io.WriteString(w, tsvRow(TSVHeader)); err != nil {
		return err
	}

	for _, layer := range catalog.layers {
		bounds := layer.MapBounds()
		timeDimension := ""
		if layer.TimeDimension != nil {
			timeDimension = *layer.TimeDimension
		}

		row := []string{
			layer.Name,
			layer.Title,
			layer.CRSOrEmpty(),
			bounds.West,
			bounds.East,
			bounds.North,
			bounds.South,
			timeDimension,
		}
		if _, err := io.WriteString(w, tsvRow(row)); err != nil {
			return err
		}
	}

	return nil
}

var tsvEscaper = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

func tsvRow(fields []string) string {
	escaped := make([]string, len(fields))
	for i, field := range fields {
		escaped[i] = tsvEscaper.Replace(field)
	}
	return strings.Join(escaped, "\t") + "\n"
}

func writeFile(path string, write func(w io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(file); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}
