package wms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openCapabilities(t *testing.T) *Capabilities {
	t.Helper()
	file, err := os.Open("testdata/capabilities.xml")
	require.NoError(t, err)
	defer file.Close()

	capabilities, err := ParseCapabilities(file)
	require.NoError(t, err)
	return capabilities
}

func TestParseCapabilities(t *testing.T) {
	capabilities := openCapabilities(t)

	assert.Equal(t, "1.3.0", capabilities.Version)
	assert.Equal(t, []string{"image/png", "image/jpeg"}, capabilities.Capability.Request.GetMap.Format)
	require.Len(t, capabilities.Capability.Layer, 1)

	var names []string
	capabilities.Walk(func(layer *Layer) {
		names = append(names, layer.Name)
	})
	assert.Equal(t, []string{
		"",
		"MODIS_Terra_CorrectedReflectance_TrueColor",
		"BlueMarble_NextGeneration",
		"",
		"Coastlines",
		"MODIS_Combined_L4_LAI_Monthly",
		"Untitled_Layer",
		"GOES-East_ABI_Band2_Red_Visible_1km",
	}, names)
}

func TestLayerFields(t *testing.T) {
	capabilities := openCapabilities(t)
	root := capabilities.Capability.Layer[0]
	assert.True(t, root.IsContainer())

	modis := root.Layer[0]
	assert.False(t, modis.IsContainer())
	require.NotNil(t, modis.EXGeographicBoundingBox)
	assert.Equal(t, "-180", modis.EXGeographicBoundingBox.WestBoundLongitude)
	assert.Equal(t, "90", modis.EXGeographicBoundingBox.NorthBoundLatitude)
	dimension, ok := modis.TimeDimension()
	assert.True(t, ok)
	assert.Equal(t, "2021-01-01/2021-01-03/P1D", dimension)

	blueMarble := root.Layer[1]
	assert.Nil(t, blueMarble.EXGeographicBoundingBox)
	assert.Empty(t, blueMarble.CRS)
	_, ok = blueMarble.TimeDimension()
	assert.False(t, ok)

	lai := root.Layer[2].Layer[1]
	dimension, ok = lai.TimeDimension()
	assert.True(t, ok)
	assert.Equal(t, "2021-01-01/2021-03-01/P1M", dimension)
}

func TestParseCapabilitiesInvalid(t *testing.T) {
	_, err := ParseCapabilities(strings.NewReader("<ServiceExceptionReport>"))
	assert.Error(t, err)
}

func TestGetMapURL(t *testing.T) {
	params := MapParams{Version: "1.3.0", Format: "image/png", Style: "default", Width: 1000, Height: 1000}
	bounds := Bounds{West: "-180", East: "180", North: "90", South: "-90"}
	base := "https://gibs.earthdata.nasa.gov/wms/epsg4326/best/wms.cgi"

	withoutDate := GetMapURL(base, params, "BlueMarble_NextGeneration", "EPSG:4326", bounds, "")
	assert.Equal(t, base+"?version=1.3.0&service=WMS&request=GetMap&format=image/png&STYLE=default"+
		"&bbox=-90,-180,90,180&CRS=EPSG:4326&HEIGHT=1000&WIDTH=1000&layers=BlueMarble_NextGeneration", withoutDate)
	assert.NotContains(t, withoutDate, "TIME=")

	withDate := GetMapURL(base, params, "MODIS_Terra_CorrectedReflectance_TrueColor", "EPSG:4326", bounds, "2021-01-02")
	assert.Equal(t, base+"?version=1.3.0&service=WMS&request=GetMap&format=image/png&STYLE=default"+
		"&bbox=-90,-180,90,180&CRS=EPSG:4326&HEIGHT=1000&WIDTH=1000&TIME=2021-01-02"+
		"&layers=MODIS_Terra_CorrectedReflectance_TrueColor", withDate)
}

func TestGetCapabilitiesURL(t *testing.T) {
	capabilitiesURL, err := GetCapabilitiesURL("https://example.org/wms.cgi")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/wms.cgi?REQUEST=GetCapabilities&SERVICE=WMS", capabilitiesURL)
}

func TestClientGetCapabilities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GetCapabilities", r.URL.Query().Get("REQUEST"))
		assert.Equal(t, "WMS", r.URL.Query().Get("SERVICE"))
		http.ServeFile(w, r, "testdata/capabilities.xml")
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, 0)
	capabilities, err := client.GetCapabilities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "NASA Global Imagery Browse Services for EOSDIS", capabilities.Service.Title)
}

func TestClientGetStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "layer not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, 10)
	_, _, err := client.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 200, got 404")
}
