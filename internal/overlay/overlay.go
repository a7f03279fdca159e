// Package overlay draws hand skeletons and gesture labels onto frames.
package overlay

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/handsign/internal/detector"
	"github.com/ayusman/handsign/internal/gesture"
	"github.com/ayusman/handsign/internal/landmark"
)

// Style controls how a hand is drawn.
type Style struct {
	PointColor      color.RGBA
	ConnectionColor color.RGBA
	Thickness       int
	Radius          int
}

// DefaultStyle draws red joints joined by white bones.
func DefaultStyle() Style {
	return Style{
		PointColor:      color.RGBA{R: 255, G: 0, B: 0, A: 255},
		ConnectionColor: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Thickness:       2,
		Radius:          2,
	}
}

// Label placement and font.
var (
	LabelOrigin    = image.Pt(50, 100)
	LabelColor     = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	LabelScale     = 1.2
	LabelThickness = 3
)

// DrawHand draws the skeleton of a complete hand. Empty or partial sets are
// ignored.
func DrawHand(img *gocv.Mat, set landmark.Set, style Style) {
	if img == nil || len(set) != detector.NumLandmarks {
		return
	}

	for _, c := range detector.HandConnections {
		a, b := set[c.From], set[c.To]
		gocv.Line(img, image.Pt(a.X, a.Y), image.Pt(b.X, b.Y), style.ConnectionColor, style.Thickness)
	}
	for _, lm := range set {
		gocv.Circle(img, image.Pt(lm.X, lm.Y), style.Radius, style.PointColor, style.Thickness)
	}
}

// DrawGesture writes the gesture's display name in the top-left corner.
// Nothing is drawn for gesture.None.
func DrawGesture(img *gocv.Mat, g gesture.Gesture) {
	if img == nil || g == gesture.None {
		return
	}
	gocv.PutText(img, g.DisplayName(), LabelOrigin, gocv.FontHersheySimplex, LabelScale, LabelColor, LabelThickness)
}
