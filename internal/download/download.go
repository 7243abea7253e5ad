package download

import (
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/delta10/gibs-fetcher/internal/catalog"
	"github.com/delta10/gibs-fetcher/internal/utils"
	"github.com/delta10/gibs-fetcher/internal/wms"
)

// ErrCatalogNotLoaded is returned when a download is started without a
// catalog from a previous capabilities fetch.
var ErrCatalogNotLoaded = errors.New("no catalog is available, fetch the capabilities first")

// Result describes one image request and its outcome. Err is nil when the
// image was written to Path.
type Result struct {
	Layer string
	Date  string
	URL   string
	Path  string
	Err   error
}

type Report []Result

func (r Report) Succeeded() Report {
	var succeeded Report
	for _, result := range r {
		if result.Err == nil {
			succeeded = append(succeeded, result)
		}
	}
	return succeeded
}

func (r Report) Failed() Report {
	var failed Report
	for _, result := range r {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}
	return failed
}

type Downloader struct {
	Client   *wms.Client
	Params   wms.MapParams
	ImageDir string
}

// Plan lists the requests for a catalog: one per date, or a single dateless
// request for a layer without dates.
func (d *Downloader) Plan(c *catalog.Catalog) (Report, error) {
	if c == nil {
		return nil, ErrCatalogNotLoaded
	}

	var plan Report
	for _, layer := range c.Layers() {
		if len(layer.DateList) == 0 {
			plan = append(plan, d.request(layer, ""))
			continue
		}
		for _, date := range layer.DateList {
			plan = append(plan, d.request(layer, date))
		}
	}

	return plan, nil
}

func (d *Downloader) request(layer catalog.Layer, date string) Result {
	fileName := utils.SafeFileName(layer.Name)
	if date != "" {
		fileName += "_" + utils.SafeFileName(date)
	}

	return Result{
		Layer: layer.Name,
		Date:  date,
		URL:   wms.GetMapURL(d.Client.BaseURL, d.Params, layer.Name, layer.CRSOrEmpty(), layer.MapBounds(), date),
		Path:  filepath.Join(d.ImageDir, fileName+".png"),
	}
}

// Download fetches every planned image in order and writes it as PNG. A
// failed image is logged and recorded in its Result; the remaining images are
// still fetched. Only a missing catalog or a cancelled context stops the run.
func (d *Downloader) Download(ctx context.Context, c *catalog.Catalog) (Report, error) {
	plan, err := d.Plan(c)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(d.ImageDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "could not create image directory")
	}

	for i := range plan {
		if err := ctx.Err(); err != nil {
			return plan[:i], err
		}

		plan[i].Err = d.fetch(ctx, plan[i].URL, plan[i].Path)
		if plan[i].Err != nil {
			log.Printf("could not download %s: %s", plan[i].Path, plan[i].Err)
			continue
		}
		log.Printf("downloaded %s", plan[i].Path)
	}

	return plan, nil
}

func (d *Downloader) fetch(ctx context.Context, url, path string) error {
	body, contentType, err := d.Client.Get(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	img, _, err := image.Decode(body)
	if err != nil {
		return errors.Wrapf(err, "could not decode %s response", contentType)
	}

	return writePNG(path, img)
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		os.Remove(path)
		return errors.Wrap(err, "could not encode png")
	}

	return file.Close()
}
