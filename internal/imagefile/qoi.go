package imagefile

import (
	"bytes"
	"image"

	"github.com/lexeyOK/qoiconv/internal/qoi"
)

// QOIEncoder encodes images as QOI.
type QOIEncoder struct{}

func (e *QOIEncoder) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := qoi.EncodeImage(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *QOIEncoder) Format() string        { return "qoi" }
func (e *QOIEncoder) FileExtension() string { return ".qoi" }
