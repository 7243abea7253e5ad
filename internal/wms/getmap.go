package wms

import (
	"fmt"
	"net/url"
)

// MapParams are the fixed GetMap parameters shared by every image request.
type MapParams struct {
	Version string
	Format  string
	Style   string
	Width   int
	Height  int
}

// Bounds are the geographic limits of a layer, kept as the strings the
// capabilities document carries.
type Bounds struct {
	West  string
	East  string
	North string
	South string
}

const getMapQuery = "version=%s&service=WMS&request=GetMap&format=%s&STYLE=%s&bbox=%s,%s,%s,%s&CRS=%s&HEIGHT=%d&WIDTH=%d"

// GetMapURL builds a GetMap request for one layer. The TIME parameter is only
// present when date is not empty and is passed through as given.
func GetMapURL(baseURL string, params MapParams, layer, crs string, bounds Bounds, date string) string {
	query := fmt.Sprintf(getMapQuery,
		params.Version, params.Format, params.Style,
		bounds.South, bounds.West, bounds.North, bounds.East,
		crs, params.Height, params.Width)

	if date != "" {
		query += "&TIME=" + date
	}
	query += "&layers=" + url.QueryEscape(layer)

	return baseURL + "?" + query
}

// GetCapabilitiesURL returns the capabilities request for a service endpoint.
func GetCapabilitiesURL(baseURL string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	query := parsed.Query()
	query.Set("SERVICE", "WMS")
	query.Set("REQUEST", "GetCapabilities")
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}
