package ui

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"unsafe"

	"tether/config"

	"github.com/gdamore/tcell/v2"
	"github.com/soniakeys/quant/median"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// PreviewBackend selects how the preview pane draws an image embed.
type PreviewBackend int

const (
	// BackendHalfBlock draws two vertical pixels per cell with '▀'.
	// Works on every true-color terminal.
	BackendHalfBlock PreviewBackend = iota
	// BackendBraille draws a 2×4 dot grid per cell. More detail than
	// half-blocks, but one color per cell.
	BackendBraille
	// BackendSixel writes real pixels through the terminal's sixel plane.
	BackendSixel
)

// detectBackend picks the drawing backend. Sixel needs the terminal to
// actually decode DCS graphics, so it is chosen only on positive evidence;
// everything else gets the half-block fallback. TETHER_PREVIEW forces a
// backend outright.
func detectBackend() PreviewBackend {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TETHER_PREVIEW"))) {
	case "halfblock", "half-block":
		return BackendHalfBlock
	case "braille":
		return BackendBraille
	case "sixel":
		return BackendSixel
	}

	term := strings.ToLower(os.Getenv("TERM"))
	switch {
	case strings.Contains(term, "sixel"),
		strings.HasPrefix(term, "foot"),
		os.Getenv("TERM_PROGRAM") == "foot",
		os.Getenv("TERM_PROGRAM") == "konsole",
		os.Getenv("WT_SESSION") != "",
		os.Getenv("TETHER_ENABLE_SIXEL") == "1":
		return BackendSixel
	}
	return BackendHalfBlock
}

// IsImageAsset reports whether the path has an image extension the preview
// can decode.
func IsImageAsset(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif", ".webp":
		return true
	}
	return false
}

// previewGrid is the placement of an image inside the preview pane: how
// many cells it covers, where those cells sit, and the pixel size the
// source is scaled to. Painters read the scaled frame one pixel to one
// plotted dot, so pixW and pixH are always whole multiples of the cell.
type previewGrid struct {
	cols, rows int
	offX, offY int
	pixW, pixH int
}

// EmbedPreview renders the image file behind an embed in the side pane.
// The cell backends draw straight into the tcell buffer; the sixel backend
// paints the terminal's graphics plane after tcell has flushed, so the
// picker checks NeedsSixel and calls PaintSixel after screen.Show.
type EmbedPreview struct {
	Path  string
	Theme *config.ColorScheme

	img     image.Image
	err     error
	backend PreviewBackend
	bg      color.RGBA
	lastBG  color.RGBA

	grid         previewGrid
	paneX, paneY int

	frame   *image.RGBA // source scaled to grid pixel size
	sixel   []byte      // encoded stream for frame
	painted bool        // stream already written to the tty

	tty          *os.File
	cellW, cellH int // terminal cell size in pixels, 0 until queried
}

// NewEmbedPreview decodes the image at path. A decode failure is kept, not
// returned: a broken image is still a state the pane shows.
func NewEmbedPreview(path string) *EmbedPreview {
	ep := &EmbedPreview{
		Path:    path,
		backend: detectBackend(),
		bg:      color.RGBA{0, 0, 0, 255}, // until the theme arrives
	}
	f, err := os.Open(path)
	if err != nil {
		ep.err = err
		return ep
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		ep.err = fmt.Errorf("unsupported image format: %v", err)
		return ep
	}
	ep.img = img
	return ep
}

func (ep *EmbedPreview) SetTheme(theme *config.ColorScheme) {
	ep.Theme = theme
	if theme != nil {
		ep.bg = colorToRGBA(theme.Background)
	}
}

func (ep *EmbedPreview) Render(screen tcell.Screen, x, y, width, height int) {
	style := tcell.StyleDefault
	if ep.Theme != nil {
		style = style.Background(ep.Theme.Background).Foreground(ep.Theme.Foreground)
	}
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			screen.SetContent(col, row, ' ', nil, style)
		}
	}

	if ep.err != nil {
		msg := fmt.Sprintf("  ⚠ Cannot display image: %s", ep.err.Error())
		for i, ch := range []rune(msg) {
			if i >= width {
				break
			}
			screen.SetContent(x+i, y+height/2, ch, nil, style)
		}
		return
	}
	if ep.img == nil || width < 1 || height < 1 {
		return
	}

	grid := ep.layout(width, height)
	if grid.cols < 1 || grid.rows < 1 {
		return
	}
	if grid != ep.grid || x != ep.paneX || y != ep.paneY || ep.bg != ep.lastBG {
		ep.grid = grid
		ep.paneX, ep.paneY = x, y
		ep.lastBG = ep.bg
		ep.frame = nil
		ep.sixel = nil
		ep.painted = false
	}

	switch ep.backend {
	case BackendHalfBlock:
		ep.drawHalfBlocks(screen, x+grid.offX, y+grid.offY, grid)
	case BackendBraille:
		ep.drawBraille(screen, x+grid.offX, y+grid.offY, grid)
	}
	// BackendSixel paints after the cell buffer is flushed, see PaintSixel.
}

// pixelDensity is how many image pixels one cell carries per backend.
func (ep *EmbedPreview) pixelDensity() (int, int) {
	switch ep.backend {
	case BackendBraille:
		return 2, 4
	case BackendSixel:
		return ep.termCellSize()
	}
	return 1, 2
}

func (ep *EmbedPreview) layout(paneW, paneH int) previewGrid {
	b := ep.img.Bounds()
	pw, ph := ep.pixelDensity()
	return fitGrid(b.Dx(), b.Dy(), paneW, paneH, pw, ph)
}

// fitGrid sizes a srcW×srcH image into a pane of paneW×paneH cells where
// each cell carries pw×ph image pixels. The image fills the pane in the
// tighter direction, is snapped down to whole cells, and centered.
func fitGrid(srcW, srcH, paneW, paneH, pw, ph int) previewGrid {
	var g previewGrid
	maxPixW := paneW * pw
	maxPixH := paneH * ph
	if srcW < 1 || srcH < 1 || maxPixW < 1 || maxPixH < 1 {
		return g
	}

	pixW, pixH := srcW, srcH
	if pixW*maxPixH >= pixH*maxPixW {
		pixH = pixH * maxPixW / pixW
		pixW = maxPixW
	} else {
		pixW = pixW * maxPixH / pixH
		pixH = maxPixH
	}

	g.cols = pixW / pw
	g.rows = pixH / ph
	if g.cols < 1 {
		g.cols = 1
	}
	if g.rows < 1 {
		g.rows = 1
	}
	g.pixW = g.cols * pw
	g.pixH = g.rows * ph
	g.offX = (paneW - g.cols) / 2
	g.offY = (paneH - g.rows) / 2
	return g
}

// ensureFrame scales the source to the grid's pixel size. Scaling happens
// once per geometry; the painters then read pixels one to one.
func (ep *EmbedPreview) ensureFrame() *image.RGBA {
	if ep.frame != nil {
		return ep.frame
	}
	if ep.img == nil || ep.grid.pixW < 1 || ep.grid.pixH < 1 {
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, ep.grid.pixW, ep.grid.pixH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), ep.img, ep.img.Bounds(), draw.Src, nil)
	ep.frame = dst
	return dst
}

// drawHalfBlocks draws two frame rows per cell row: the upper pixel as the
// foreground of '▀', the lower as its background.
func (ep *EmbedPreview) drawHalfBlocks(screen tcell.Screen, x, y int, g previewGrid) {
	frame := ep.ensureFrame()
	if frame == nil {
		return
	}
	for cy := 0; cy < g.rows; cy++ {
		for cx := 0; cx < g.cols; cx++ {
			top := overBG(frame.RGBAAt(cx, cy*2), ep.bg)
			bot := overBG(frame.RGBAAt(cx, cy*2+1), ep.bg)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bot.R), int32(bot.G), int32(bot.B)))
			screen.SetContent(x+cx, y+cy, '▀', nil, style)
		}
	}
}

// brailleDots maps a dot at (row, col) to its bit in the braille block.
var brailleDots = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// drawBraille plots a 2×4 dot grid per cell. A dot is set where the pixel's
// luminance differs enough from the pane background; the cell foreground is
// the average color of its set dots.
func (ep *EmbedPreview) drawBraille(screen tcell.Screen, x, y int, g previewGrid) {
	frame := ep.ensureFrame()
	if frame == nil {
		return
	}
	bgLum := luminance(ep.bg.R, ep.bg.G, ep.bg.B)
	bgColor := tcell.NewRGBColor(int32(ep.bg.R), int32(ep.bg.G), int32(ep.bg.B))
	for cy := 0; cy < g.rows; cy++ {
		for cx := 0; cx < g.cols; cx++ {
			var pattern rune
			var rSum, gSum, bSum, set uint32
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					px := overBG(frame.RGBAAt(cx*2+dx, cy*4+dy), ep.bg)
					diff := int(luminance(px.R, px.G, px.B)) - int(bgLum)
					if diff < 0 {
						diff = -diff
					}
					if diff > 30 {
						pattern |= brailleDots[dy][dx]
						rSum += uint32(px.R)
						gSum += uint32(px.G)
						bSum += uint32(px.B)
						set++
					}
				}
			}
			style := tcell.StyleDefault.Background(bgColor)
			if set > 0 {
				style = style.Foreground(tcell.NewRGBColor(int32(rSum/set), int32(gSum/set), int32(bSum/set)))
			}
			screen.SetContent(x+cx, y+cy, '⠀'+pattern, nil, style)
		}
	}
}

// NeedsSixel reports whether this preview paints the sixel plane and has
// to be driven again after screen.Show.
func (ep *EmbedPreview) NeedsSixel() bool {
	return ep.backend == BackendSixel && ep.img != nil && ep.err == nil
}

// MarkDirty forces the next PaintSixel to re-write the stream without
// re-encoding. Needed after screen.Sync, which stomps the graphics plane.
func (ep *EmbedPreview) MarkDirty() {
	ep.painted = false
}

// PaintSixel writes the encoded image at the pane position. Call after
// screen.Show: the stream goes straight to the tty, behind tcell's back.
func (ep *EmbedPreview) PaintSixel() {
	if !ep.NeedsSixel() || ep.painted {
		return
	}
	tty := ep.termTTY()
	if tty == nil {
		return
	}
	if ep.sixel == nil {
		frame := ep.ensureFrame()
		if frame == nil {
			return
		}
		ep.sixel = encodeSixel(frame, ep.bg)
	}
	if len(ep.sixel) == 0 {
		return
	}
	ep.writeAt(tty, ep.sixel)
	ep.painted = true
}

// ClearSixel overwrites the painted area with a solid background raster.
// Text cells do not clear the graphics plane on most terminals, so the
// plane itself has to be repainted before an overlay can show through.
func (ep *EmbedPreview) ClearSixel() {
	if ep.backend != BackendSixel || ep.grid.pixW < 1 || ep.grid.pixH < 1 {
		return
	}
	tty := ep.termTTY()
	if tty == nil {
		return
	}
	ep.writeAt(tty, sixelFill(ep.grid.pixW, ep.grid.pixH, ep.bg))
	ep.painted = false
}

// writeAt moves the cursor to the image's top-left cell, writes the
// stream, and restores the cursor so tcell's state stays intact.
func (ep *EmbedPreview) writeAt(tty *os.File, data []byte) {
	fmt.Fprintf(tty, "\0337\033[%d;%dH", ep.paneY+ep.grid.offY+1, ep.paneX+ep.grid.offX+1)
	tty.Write(data)
	fmt.Fprint(tty, "\0338")
}

// encodeSixel turns the frame into a DCS sixel stream. The raster is
// declared with P2=1 so pixels never written stay transparent, letting the
// terminal background show instead of a quantized stand-in.
func encodeSixel(frame *image.RGBA, bg color.RGBA) []byte {
	w := frame.Bounds().Dx()
	h := frame.Bounds().Dy()
	if w < 1 || h < 1 {
		return nil
	}

	flat := compositeFrame(frame, bg)
	paletted := median.Quantizer(254).Paletted(flat)
	draw.Draw(paletted, flat.Bounds(), flat, image.Point{}, draw.Over)

	var out bytes.Buffer
	out.WriteString("\033[?80l") // keep graphics anchored to the cursor
	fmt.Fprintf(&out, "\033P0;1;8q\"1;1;%d;%d", w, h)
	for i, c := range paletted.Palette {
		r, g, b, _ := c.RGBA()
		fmt.Fprintf(&out, "#%d;2;%d;%d;%d", i+1, percent(r), percent(g), percent(b))
	}

	// One bit row per palette color per band of six pixel rows.
	rows := make([][]byte, len(paletted.Palette)+1)
	used := make([]bool, len(paletted.Palette)+1)
	for band := 0; band*6 < h; band++ {
		if band > 0 {
			out.WriteByte('-') // DECGNL: next band
		}
		for i := range used {
			used[i] = false
		}
		for dy := 0; dy < 6; dy++ {
			y := band*6 + dy
			if y >= h {
				break
			}
			for x := 0; x < w; x++ {
				if flat.RGBAAt(x, y).A == 0 {
					continue
				}
				idx := int(paletted.ColorIndexAt(x, y)) + 1
				if !used[idx] {
					used[idx] = true
					if rows[idx] == nil {
						rows[idx] = make([]byte, w)
					}
					for i := range rows[idx] {
						rows[idx][i] = 0
					}
				}
				rows[idx][x] |= 1 << dy
			}
		}
		firstColor := true
		for idx := 1; idx < len(used); idx++ {
			if !used[idx] {
				continue
			}
			if !firstColor {
				out.WriteByte('$') // DECGCR: back to band start
			}
			firstColor = false
			fmt.Fprintf(&out, "#%d", idx)
			writeRuns(&out, rows[idx])
		}
	}
	out.WriteString("\033\\")
	return out.Bytes()
}

// compositeFrame flattens semi-transparent pixels over the pane background
// and leaves mostly-transparent ones at alpha zero, so the P2=1 raster
// keeps them unpainted.
func compositeFrame(frame *image.RGBA, bg color.RGBA) *image.RGBA {
	b := frame.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := frame.RGBAAt(x, y)
			if c.A < 128 {
				continue
			}
			out.SetRGBA(x, y, overBG(c, bg))
		}
	}
	return out
}

// percent converts a 16-bit color channel to the 0..100 scale sixel
// palettes use, rounding to the nearest step.
func percent(v uint32) uint32 {
	return (v*100 + 0x7FFF) / 0xFFFF
}

// writeRuns RLE-encodes one color's sixel row. Runs up to three are
// cheaper written out than as a !n repeat.
func writeRuns(out *bytes.Buffer, row []byte) {
	for i := 0; i < len(row); {
		j := i
		for j < len(row) && row[j] == row[i] {
			j++
		}
		n := j - i
		ch := byte(63 + row[i])
		if n > 3 {
			fmt.Fprintf(out, "!%d%c", n, ch)
		} else {
			for ; n > 0; n-- {
				out.WriteByte(ch)
			}
		}
		i = j
	}
}

// sixelFill builds a solid-color raster of the given pixel size, P2=0 so
// every pixel paints.
func sixelFill(w, h int, c color.RGBA) []byte {
	var out bytes.Buffer
	out.WriteString("\033[?80l")
	fmt.Fprintf(&out, "\033P0;0;8q\"1;1;%d;%d", w, h)
	fmt.Fprintf(&out, "#0;2;%d;%d;%d", uint32(c.R)*100/255, uint32(c.G)*100/255, uint32(c.B)*100/255)
	for band := 0; band*6 < h; band++ {
		if band > 0 {
			out.WriteByte('-')
		}
		fmt.Fprintf(&out, "#0!%d~", w) // '~' sets all six bits
	}
	out.WriteString("\033\\")
	return out.Bytes()
}

// overBG composites one premultiplied pixel over the opaque background.
func overBG(c, bg color.RGBA) color.RGBA {
	if c.A == 255 {
		return color.RGBA{c.R, c.G, c.B, 255}
	}
	if c.A == 0 {
		return bg
	}
	inv := uint32(255 - c.A)
	return color.RGBA{
		R: uint8(uint32(c.R) + (uint32(bg.R)*inv+127)/255),
		G: uint8(uint32(c.G) + (uint32(bg.G)*inv+127)/255),
		B: uint8(uint32(c.B) + (uint32(bg.B)*inv+127)/255),
		A: 255,
	}
}

func luminance(r, g, b uint8) uint8 {
	return uint8((uint32(r)*299 + uint32(g)*587 + uint32(b)*114) / 1000)
}

func colorToRGBA(c tcell.Color) color.RGBA {
	if c == tcell.ColorDefault {
		return color.RGBA{0, 0, 0, 255}
	}
	r, g, b := c.RGB()
	return color.RGBA{uint8(r), uint8(g), uint8(b), 255}
}

// winsize mirrors the kernel's struct winsize for TIOCGWINSZ.
type winsize struct {
	rows, cols     uint16
	xpixel, ypixel uint16
}

// termCellSize asks the terminal for its cell size in pixels, falling back
// to 8×16 when no pixel dimensions are reported.
func (ep *EmbedPreview) termCellSize() (int, int) {
	if ep.cellW > 0 && ep.cellH > 0 {
		return ep.cellW, ep.cellH
	}
	ep.cellW, ep.cellH = 8, 16
	if tty := ep.termTTY(); tty != nil {
		var ws winsize
		_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, tty.Fd(), syscall.TIOCGWINSZ, uintptr(unsafe.Pointer(&ws)))
		if errno == 0 && ws.cols > 0 && ws.rows > 0 && ws.xpixel > 0 && ws.ypixel > 0 {
			w := int(ws.xpixel) / int(ws.cols)
			h := int(ws.ypixel) / int(ws.rows)
			if w > 0 && h > 0 {
				ep.cellW, ep.cellH = w, h
			}
		}
	}
	return ep.cellW, ep.cellH
}

// termTTY opens the controlling terminal for raw escape output. Sixel
// streams cannot go through tcell, which owns stdout.
func (ep *EmbedPreview) termTTY() *os.File {
	if ep.tty == nil {
		ep.tty, _ = os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	}
	return ep.tty
}

// Close releases the tty handle.
func (ep *EmbedPreview) Close() {
	if ep.tty != nil {
		ep.tty.Close()
		ep.tty = nil
	}
}
