package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"

	"mediadeck/visual"
)

// halfBlock paints the top pixel of a cell in the foreground and the bottom
// pixel in the background, giving two square-ish pixels per cell.
const halfBlock = "▀"

// cellStyles caches one style per colour pair; surfaces reuse few colours.
type cellStyles map[[2]color.RGBA]lipgloss.Style

func (cs cellStyles) get(top, bot color.RGBA) lipgloss.Style {
	k := [2]color.RGBA{top, bot}
	if s, ok := cs[k]; ok {
		return s
	}
	s := lipgloss.NewStyle().Foreground(hexColor(top)).Background(hexColor(bot))
	if len(cs) < 4096 {
		cs[k] = s
	}
	return s
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// sample scales img onto a cols×(2*rows) grid over the surface background.
func sample(img image.Image, cols, rows int) *image.RGBA {
	px := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.Draw(px, px.Bounds(), image.NewUniform(visual.Background), image.Point{}, draw.Src)
	if img != nil && !img.Bounds().Empty() {
		draw.ApproxBiLinear.Scale(px, px.Bounds(), img, img.Bounds(), draw.Over, nil)
	}
	return px
}

// renderSurface draws img into cols×rows terminal cells.
func (cs cellStyles) renderSurface(img image.Image, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	px := sample(img, cols, rows)
	var sb strings.Builder
	for r := range rows {
		for c := range cols {
			top, bot := px.RGBAAt(c, 2*r), px.RGBAAt(c, 2*r+1)
			sb.WriteString(cs.get(top, bot).Render(halfBlock))
		}
		if r < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
