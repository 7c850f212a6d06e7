package preview

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"os"
	"strings"

	"github.com/BourgeoisBear/rasterm"
	"github.com/disintegration/imaging"
)

// Protocol is the terminal graphics protocol used to draw images.
type Protocol string

const (
	ProtocolAuto  Protocol = "auto"
	ProtocolKitty Protocol = "kitty"
	ProtocolITerm Protocol = "iterm"
	ProtocolSixel Protocol = "sixel"
	ProtocolANSI  Protocol = "ansi"
)

// Approximate cell size in pixels, used to size bitmaps for graphics
// protocols.
const (
	cellWidth  = 8
	cellHeight = 16
)

// Renderer turns images into terminal output.
type Renderer struct {
	Protocol Protocol
}

// NewRenderer creates a renderer for the configured protocol; "auto" probes
// the environment.
func NewRenderer(setting string) *Renderer {
	p := Protocol(strings.ToLower(setting))
	if p == "" || p == ProtocolAuto {
		p = DetectProtocol(os.Getenv)
	}
	return &Renderer{Protocol: p}
}

// DetectProtocol picks a graphics protocol from terminal environment
// variables, falling back to ANSI half blocks.
func DetectProtocol(getenv func(string) string) Protocol {
	term := strings.ToLower(getenv("TERM"))
	termProgram := strings.ToLower(getenv("TERM_PROGRAM"))

	switch {
	case getenv("KITTY_WINDOW_ID") != "" || strings.Contains(term, "kitty"):
		return ProtocolKitty
	case getenv("GHOSTTY_RESOURCES_DIR") != "" || termProgram == "ghostty" || strings.Contains(term, "ghostty"):
		return ProtocolKitty
	case termProgram == "iterm.app" || termProgram == "wezterm":
		return ProtocolITerm
	}

	for _, sixelTerm := range []string{"xterm-sixel", "mlterm", "yaft", "foot"} {
		if strings.Contains(term, sixelTerm) {
			return ProtocolSixel
		}
	}
	return ProtocolANSI
}

// Inline reports whether output is a graphics escape sequence rather than
// text that lipgloss can lay out.
func (r *Renderer) Inline() bool {
	return r.Protocol != ProtocolANSI
}

// Render draws img into at most cols x rows terminal cells.
func (r *Renderer) Render(img image.Image, cols, rows int) (string, error) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	var (
		out strings.Builder
		err error
	)
	switch r.Protocol {
	case ProtocolKitty:
		fitted := fit(img, cols*cellWidth, rows*cellHeight)
		c, rw := cellsFor(fitted)
		err = rasterm.KittyWriteImage(&out, fitted, rasterm.KittyImgOpts{DstCols: uint32(c), DstRows: uint32(rw)})
	case ProtocolITerm:
		err = rasterm.ItermWriteImage(&out, fit(img, cols*cellWidth, rows*cellHeight))
	case ProtocolSixel:
		fitted := fit(img, cols*cellWidth, rows*cellHeight)
		bounds := fitted.Bounds()
		paletted := image.NewPaletted(bounds, palette.Plan9)
		draw.FloydSteinberg.Draw(paletted, bounds, fitted, bounds.Min)
		err = rasterm.SixelWriteImage(&out, paletted)
	default:
		return renderANSI(img, cols, rows), nil
	}
	if err != nil {
		return "", &RenderError{Protocol: r.Protocol, Err: err}
	}
	return out.String(), nil
}

func fit(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() <= w && b.Dy() <= h {
		return img
	}
	return imaging.Fit(img, w, h, imaging.Lanczos)
}

func cellsFor(img image.Image) (int, int) {
	b := img.Bounds()
	cols := (b.Dx() + cellWidth - 1) / cellWidth
	rows := (b.Dy() + cellHeight - 1) / cellHeight
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// renderANSI draws two pixel rows per cell with the upper half block and
// 24-bit colours.
func renderANSI(img image.Image, cols, rows int) string {
	scaled := imaging.Fit(img, cols, rows*2, imaging.Box)
	b := scaled.Bounds()
	w, h := b.Dx(), b.Dy()

	var out strings.Builder
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			r1, g1, b1, _ := scaled.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r2, g2, b2 := r1, g1, b1
			if y+1 < h {
				r2, g2, b2, _ = scaled.At(b.Min.X+x, b.Min.Y+y+1).RGBA()
			}
			fmt.Fprintf(&out, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				r1>>8, g1>>8, b1>>8, r2>>8, g2>>8, b2>>8)
		}
		out.WriteString("\x1b[0m")
		if y+2 < h {
			out.WriteByte('\n')
		}
	}
	return out.String()
}
