package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"

	"github.com/delta10/gibs-fetcher/internal/catalog"
	"github.com/delta10/gibs-fetcher/internal/utils"
	"github.com/delta10/gibs-fetcher/internal/wms"
)

// Server exposes a persisted catalog and its downloaded images read-only.
type Server struct {
	CatalogPath string
	ImageDir    string
	BaseURL     string
	Params      wms.MapParams

	// FilterTimeout bounds a ?filter= program. Zero means DefaultFilterTimeout.
	FilterTimeout time.Duration
}

const DefaultFilterTimeout = 2 * time.Second

func (s *Server) filterTimeout() time.Duration {
	if s.FilterTimeout > 0 {
		return s.FilterTimeout
	}
	return DefaultFilterTimeout
}

// Handler returns the router for the catalog endpoints.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/layers", s.listLayers).Methods(http.MethodGet)
	router.HandleFunc("/layers/{name}", s.getLayer).Methods(http.MethodGet)
	router.HandleFunc("/layers/{name}/url", s.getLayerURL).Methods(http.MethodGet)
	router.HandleFunc("/images/{file}", s.getImage).Methods(http.MethodGet)
	return router
}

// ListenAndServe serves Handler on address until the server fails.
func (s *Server) ListenAndServe(address string) error {
	httpServer := &http.Server{
		Addr:           address,
		Handler:        s.Handler(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Printf("serving %s on %s", s.CatalogPath, address)
	return httpServer.ListenAndServe()
}

func (s *Server) load(w http.ResponseWriter) (*catalog.Catalog, bool) {
	c, err := catalog.Load(s.CatalogPath)
	if os.IsNotExist(err) {
		writeError(w, http.StatusNotFound, "no catalog has been fetched yet")
		return nil, false
	}
	if err != nil {
		log.Printf("could not load catalog: %s", err)
		writeError(w, http.StatusInternalServerError, "could not load catalog")
		return nil, false
	}
	return c, true
}

func (s *Server) listLayers(w http.ResponseWriter, r *http.Request) {
	c, ok := s.load(w)
	if !ok {
		return
	}

	if filter := r.URL.Query().Get("filter"); filter != "" {
		rewriter, err := catalog.NewRewriter(filter)
		if err != nil {
			writeError(w, http.StatusBadRequest, "could not parse filter")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), s.filterTimeout())
		defer cancel()

		rewritten, err := rewriter.Rewrite(ctx, c)
		if err != nil {
			log.Printf("could not apply filter %q: %s", filter, err)
			writeError(w, http.StatusBadRequest, "filter did not finish in time")
			return
		}
		c = rewritten
	}

	writeJSON(w, c)
}

func (s *Server) getLayer(w http.ResponseWriter, r *http.Request) {
	c, ok := s.load(w)
	if !ok {
		return
	}

	layer, ok := c.Get(mux.Vars(r)["name"])
	if !ok {
		writeError(w, http.StatusNotFound, "layer not found")
		return
	}

	writeJSON(w, struct {
		Name string `json:"name"`
		catalog.Layer
	}{layer.Name, layer})
}

func (s *Server) getLayerURL(w http.ResponseWriter, r *http.Request) {
	c, ok := s.load(w)
	if !ok {
		return
	}

	layer, ok := c.Get(mux.Vars(r)["name"])
	if !ok {
		writeError(w, http.StatusNotFound, "layer not found")
		return
	}

	date := r.URL.Query().Get("time")
	if date != "" {
		if _, err := wms.ParseDate(date); err != nil {
			writeError(w, http.StatusBadRequest, "time must be a date")
			return
		}
	}

	writeJSON(w, map[string]string{
		"url": wms.GetMapURL(s.BaseURL, s.Params, layer.Name, layer.CRSOrEmpty(), layer.MapBounds(), date),
	})
}

func (s *Server) getImage(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	if file != utils.SafeFileName(file) || filepath.Ext(file) != ".png" {
		writeError(w, http.StatusBadRequest, "invalid image name")
		return
	}

	path := filepath.Join(s.ImageDir, file)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	response, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not marshal json")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(response)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	jsonResp, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		log.Printf("could not marshal error: %s", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(jsonResp)
}
