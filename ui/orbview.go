package ui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"

	"orbchat/orb"
)

// orbView rasterizes orb frames into terminal cells. Each cell holds two
// vertically stacked pixels via the upper-half block, with the top pixel on
// the foreground and the bottom pixel on the background.
type orbView struct {
	profile termenv.Profile
}

func newOrbView() orbView {
	return orbView{profile: termenv.ColorProfile()}
}

// Render draws one frame sized cols x rows cells. Params carry the pixel
// dimensions, so the driver must have been resized to (cols, rows*2).
func (v orbView) Render(p orb.Params, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}

	var out strings.Builder
	for row := 0; row < rows; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		for col := 0; col < cols; col++ {
			top := orb.Pixel(float64(col), float64(row*2), p)
			bottom := orb.Pixel(float64(col), float64(row*2+1), p)

			cell := termenv.String("▀").
				Foreground(v.profile.Color(compositeHex(top, p.Background))).
				Background(v.profile.Color(compositeHex(bottom, p.Background)))
			out.WriteString(cell.String())
		}
	}
	return out.String()
}

// compositeHex blends a generated sample over the background color and
// formats it for the terminal.
func compositeHex(s orb.RGBA, bg [3]float64) string {
	r := bg[0] + (s.R-bg[0])*s.A
	g := bg[1] + (s.G-bg[1])*s.A
	b := bg[2] + (s.B-bg[2])*s.A
	return fmt.Sprintf("#%02x%02x%02x", channelByte(r), channelByte(g), channelByte(b))
}

func channelByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
