package main

import (
	"bufio"
	"io"
	"os"

	"cfclient/mapdata"

	"github.com/gookit/color"
	"golang.org/x/term"
)

var (
	dumpFog  = color.Style{color.FgGray}
	dumpFace = color.Style{color.FgGreen, color.OpBold}
	dumpAnim = color.Style{color.FgMagenta, color.OpBold}
	dumpTail = color.Style{color.FgCyan}
	dumpDark = color.Style{color.FgBlue}
)

const faceGlyphs = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// stdoutIsTerminal reports whether colour output makes sense.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// dumpWidth returns how many tiles fit on the terminal, or max when not
// writing to one.
func dumpWidth(max int) int {
	if !stdoutIsTerminal() {
		return max
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || w >= max {
		return max
	}
	return w
}

// tileGlyph picks one character for a tile: the topmost face, an animated
// face as '*', a tail of a big face as '+', darkness only as '~'.
func tileGlyph(st *mapdata.Store, x, y int) (byte, color.Style) {
	var v mapdata.CellView
	for layer := mapdata.MaxLayers - 1; layer >= 0; layer-- {
		var err error
		v, err = st.QueryCell(x, y, layer)
		if err != nil {
			return '?', dumpFog
		}
		if v.Face == 0 && v.TailFace == 0 {
			continue
		}
		var g byte
		var style color.Style
		switch {
		case v.Face != 0 && v.Animation != 0:
			g, style = '*', dumpAnim
		case v.Face != 0:
			g, style = faceGlyphs[int(v.Face)%len(faceGlyphs)], dumpFace
		default:
			g, style = '+', dumpTail
		}
		if v.Fog {
			style = dumpFog
		}
		return g, style
	}
	switch {
	case v.Fog:
		return '.', dumpFog
	case v.HasDarkness:
		return '~', dumpDark
	}
	return ' ', nil
}

// dumpView draws the view as text, one row per line.
func dumpView(w io.Writer, st *mapdata.Store, colorize bool) error {
	bw := bufio.NewWriter(w)
	vw, vh := st.ViewSize()
	cols := vw
	if colorize {
		cols = dumpWidth(vw)
	}
	for y := 0; y < vh; y++ {
		for x := 0; x < cols; x++ {
			g, style := tileGlyph(st, x, y)
			if colorize && len(style) > 0 {
				bw.WriteString(style.Sprint(string(g)))
				continue
			}
			bw.WriteByte(g)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
