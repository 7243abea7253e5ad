package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delta10/gibs-fetcher/internal/catalog"
	"github.com/delta10/gibs-fetcher/internal/wms"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	crs := "EPSG:4326"
	c := catalog.New()
	c.Add(catalog.Layer{
		Name:     "MODIS_Terra_CorrectedReflectance_TrueColor",
		Title:    "Corrected Reflectance",
		CRS:      &crs,
		Bounds:   &catalog.BoundingBox{WestBound: "-180", EastBound: "180", NorthBound: "90", SouthBound: "-90"},
		DateList: []string{"2021-01-01"},
	})
	c.Add(catalog.Layer{Name: "BlueMarble_NextGeneration", Title: "Blue Marble"})

	catalogPath := filepath.Join(dir, "output.json")
	require.NoError(t, catalog.Save(c, catalogPath, filepath.Join(dir, "output.tsv")))

	imageDir := filepath.Join(dir, "images")
	require.NoError(t, os.MkdirAll(imageDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(imageDir, "BlueMarble_NextGeneration.png"), []byte("png"), 0o644))

	return &Server{
		CatalogPath: catalogPath,
		ImageDir:    imageDir,
		BaseURL:     "https://gibs.example.org/wms.cgi",
		Params:      wms.MapParams{Version: "1.3.0", Format: "image/png", Style: "default", Width: 1000, Height: 1000},
	}
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

func TestListLayers(t *testing.T) {
	handler := newTestServer(t).Handler()

	response := get(t, handler, "/layers")
	require.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "application/json", response.Header().Get("Content-Type"))

	var layers map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &layers))
	assert.Len(t, layers, 2)

	response = get(t, handler, `/layers?filter=select(.crs+!%3D+null)`)
	require.Equal(t, http.StatusOK, response.Code)
	layers = nil
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &layers))
	assert.Len(t, layers, 1)
	assert.Contains(t, layers, "MODIS_Terra_CorrectedReflectance_TrueColor")

	response = get(t, handler, "/layers?filter=select(")
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestListLayersFilterTimeout(t *testing.T) {
	s := newTestServer(t)
	s.FilterTimeout = 100 * time.Millisecond
	handler := s.Handler()

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- get(t, handler, "/layers?filter=repeat(1)")
	}()

	select {
	case response := <-done:
		assert.Equal(t, http.StatusBadRequest, response.Code)
		assert.JSONEq(t, `{"message":"filter did not finish in time"}`, response.Body.String())
	case <-time.After(3 * time.Second):
		t.Fatal("filter was not stopped")
	}
}

func TestGetLayer(t *testing.T) {
	handler := newTestServer(t).Handler()

	response := get(t, handler, "/layers/BlueMarble_NextGeneration")
	require.Equal(t, http.StatusOK, response.Code)

	var layer map[string]interface{}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &layer))
	assert.Equal(t, "BlueMarble_NextGeneration", layer["name"])
	assert.Equal(t, "Blue Marble", layer["title"])
	assert.Nil(t, layer["crs"])

	response = get(t, handler, "/layers/Unknown")
	assert.Equal(t, http.StatusNotFound, response.Code)
	assert.JSONEq(t, `{"message":"layer not found"}`, response.Body.String())
}

func TestGetLayerURL(t *testing.T) {
	handler := newTestServer(t).Handler()

	response := get(t, handler, "/layers/MODIS_Terra_CorrectedReflectance_TrueColor/url?time=2021-01-01")
	require.Equal(t, http.StatusOK, response.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
	assert.Contains(t, body["url"], "&TIME=2021-01-01&layers=MODIS_Terra_CorrectedReflectance_TrueColor")

	response = get(t, handler, "/layers/MODIS_Terra_CorrectedReflectance_TrueColor/url?time=soon")
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestGetImage(t *testing.T) {
	handler := newTestServer(t).Handler()

	response := get(t, handler, "/images/BlueMarble_NextGeneration.png")
	require.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "png", response.Body.String())

	response = get(t, handler, "/images/missing.png")
	assert.Equal(t, http.StatusNotFound, response.Code)

	response = get(t, handler, "/images/output.json")
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestMissingCatalog(t *testing.T) {
	s := newTestServer(t)
	s.CatalogPath = filepath.Join(t.TempDir(), "absent.json")

	response := get(t, s.Handler(), "/layers")
	assert.Equal(t, http.StatusNotFound, response.Code)
}
