package device

import (
	"github.com/hajimehoshi/bitmapfont/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"image"
	"image/draw"
	"os"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Text origin, top left corner of the first line.
const (
	textLeft = 0
	textTop  = 6
)

var textColor = image.NewUniform(image1bit.On)

// LoadFace opens a TrueType/OpenType font, or returns the built-in bitmap
// font when path is empty.
func LoadFace(path string, size float64) (font.Face, error) {
	if path == "" {
		return bitmapfont.Face, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &HardwareInitError{Resource: "font " + path, Err: err}
	}
	parsed, err := opentype.Parse(raw)
	if err != nil {
		return nil, &HardwareInitError{Resource: "font " + path, Err: err}
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, &HardwareInitError{Resource: "font " + path, Err: err}
	}
	return face, nil
}

func AddLabel(img draw.Image, face font.Face, label string) {
	ascent := face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  img,
		Src:  textColor,
		Face: face,
		Dot:  fixed.P(textLeft, textTop+ascent),
	}
	d.DrawString(label)
}
