package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/jung-kurt/gofpdf"
)

// Page geometry in points. Letter page with half-inch content margins,
// matching the layout the reports have always used.
const (
	pageMargin   = 36.0 // 0.5 inch
	bannerWidth  = 540.0
	bannerHeight = 72.0
	imageSpacing = 5.0
)

// Request carries one report submission. It is built from a single
// form post, consumed once by Compose and discarded.
type Request struct {
	Activity  string
	Region    string
	Warehouse string
	DateRaw   string
	Details   string
	Images    []Upload
}

// Upload is one submitted image. Entries with an empty filename are
// skipped during composition.
type Upload struct {
	Filename string
	Reader   io.Reader
}

type Composer struct {
	bannerPath   string
	descriptions map[string]string
	scratchRoot  string
}

// NewComposer returns a Composer that renders reports with the given
// header banner and activity description table. Uploaded images are
// materialized under scratchRoot while the document is built.
func NewComposer(bannerPath string, descriptions map[string]string, scratchRoot string) *Composer {
	return &Composer{
		bannerPath:   bannerPath,
		descriptions: descriptions,
		scratchRoot:  scratchRoot,
	}
}

// FormatReportDate converts a YYYY-MM-DD form value to the DD-MM-YYYY
// form printed on the report. Anything unparseable renders as "N/A".
func FormatReportDate(raw string) string {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return "N/A"
	}
	return t.Format("02-01-2006")
}

// Compose renders the request into a complete PDF document and returns
// it as an in-memory buffer.
func (c *Composer) Compose(req Request) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()
	contentWidth := pageWidth - 2*pageMargin

	// Header banner, when the template file is present. A missing
	// banner is not an error.
	if _, err := os.Stat(c.bannerPath); err == nil {
		y := pdf.GetY()
		pdf.ImageOptions(c.bannerPath, pageMargin, y, bannerWidth, bannerHeight,
			false, gofpdf.ImageOptions{}, 0, "")
		pdf.SetY(y + bannerHeight + 14)
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentWidth, 24, req.Activity, "", 1, "C", false, 0, "")

	description, ok := c.descriptions[req.Activity]
	if !ok {
		description = "N/A"
	}
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentWidth, 18, description, "", 1, "C", false, 0, "")

	info := fmt.Sprintf("%s | %s | %s", req.Warehouse, req.Region, FormatReportDate(req.DateRaw))
	pdf.CellFormat(contentWidth, 18, info, "", 1, "C", false, 0, "")
	pdf.Ln(10)

	if req.Details != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(contentWidth, 14, req.Details, "", "L", false)
		pdf.Ln(10)
	}

	paths, cleanup, err := c.materialize(req.Images)
	defer cleanup()
	if err != nil {
		return nil, err
	}

	if len(paths) > 0 {
		c.drawGrid(pdf, paths, contentWidth, pageHeight)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return &buf, nil
}

// materialize writes the uploads into a fresh request-scoped scratch
// directory and returns their paths. The returned cleanup removes the
// whole directory and is safe to call even when materialize failed.
func (c *Composer) materialize(images []Upload) ([]string, func(), error) {
	cleanup := func() {}

	var paths []string
	var dir string
	for _, img := range images {
		if img.Filename == "" {
			continue
		}
		if dir == "" {
			var err error
			dir, err = os.MkdirTemp(c.scratchRoot, "report-")
			if err != nil {
				return nil, cleanup, fmt.Errorf("failed to create scratch directory: %w", err)
			}
			cleanup = func() {
				if err := os.RemoveAll(dir); err != nil {
					log.WithError(err).WithField("dir", dir).Warn("scratch cleanup failed")
				}
			}
		}

		path := filepath.Join(dir, filepath.Base(img.Filename))
		f, err := os.Create(path)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to write upload %s: %w", img.Filename, err)
		}
		_, err = io.Copy(f, img.Reader)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to write upload %s: %w", img.Filename, err)
		}
		paths = append(paths, path)
	}

	return paths, cleanup, nil
}

func (c *Composer) drawGrid(pdf *gofpdf.Fpdf, paths []string, contentWidth, pageHeight float64) {
	grid := GridLayout(len(paths), contentWidth, imageSpacing)

	pdf.SetLineWidth(0.25)
	pdf.SetDrawColor(0, 0, 0)

	for _, row := range grid.Rows {
		y := pdf.GetY()
		if y+grid.TileHeight > pageHeight-pageMargin {
			pdf.AddPage()
			y = pdf.GetY()
		}
		for col, idx := range row {
			x := pageMargin + float64(col)*(grid.TileWidth+imageSpacing)
			pdf.Rect(x, y, grid.TileWidth, grid.TileHeight, "D")
			pdf.ImageOptions(paths[idx],
				x+imageSpacing/2, y+imageSpacing/2,
				grid.TileWidth-imageSpacing, grid.TileHeight-imageSpacing,
				false, gofpdf.ImageOptions{}, 0, "")
		}
		pdf.SetY(y + grid.TileHeight + imageSpacing)
	}
}
