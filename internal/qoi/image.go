package qoi

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"
)

// EncodeImage writes img to w as a QOI stream. Pixels are stored
// non-premultiplied with four channels and tagged as sRGB.
func EncodeImage(w io.Writer, img image.Image) error {
	n := imageToNRGBA(img)
	desc := Descriptor{
		Width:      uint32(n.Rect.Dx()),
		Height:     uint32(n.Rect.Dy()),
		Channels:   RGBA,
		Colorspace: SRGB,
	}
	data, err := Encode(n.Pix, desc)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// DecodeImage reads a QOI stream from r and returns it as an *image.NRGBA.
func DecodeImage(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	pix, desc, err := DecodeRGBA(data)
	if err != nil {
		return nil, err
	}
	return &image.NRGBA{
		Pix:    pix,
		Stride: int(desc.Width) * 4,
		Rect:   image.Rect(0, 0, int(desc.Width), int(desc.Height)),
	}, nil
}

// DecodeImageConfig reads only the header from r.
func DecodeImageConfig(r io.Reader) (image.Config, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return image.Config{}, ErrTruncatedHeader
		}
		return image.Config{}, err
	}
	desc, err := DecodeHeader(buf[:])
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(desc.Width),
		Height:     int(desc.Height),
	}, nil
}

// imageToNRGBA returns img as a linearly laid out NRGBA buffer, converting
// only when the underlying representation does not already match. SubImages
// keep their parent's stride and an oversized Pix slice, so they take the
// copying path.
func imageToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok &&
		n.Stride == n.Rect.Dx()*4 && len(n.Pix) == n.Rect.Dx()*n.Rect.Dy()*4 {
		return n
	}
	b := img.Bounds()
	n := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(n, n.Bounds(), img, b.Min, draw.Src)
	return n
}

func init() {
	image.RegisterFormat("qoi", Magic, DecodeImage, DecodeImageConfig)
}
