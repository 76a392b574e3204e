package extract

import (
	"bytes"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pageCount validates a PDF payload and returns its page count. The portal
// serves some slightly malformed files that still open in readers, so a
// failure only costs the count.
func pageCount(data []byte, logger *slog.Logger) int {
	if !isPDF(data) {
		return 0
	}
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		logger.Warn("extract: pdf not readable by pdfcpu", "error", err, "size", len(data))
		return 0
	}
	return n
}
