package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`   ___          _                    `, "#38bdf8"},
	{`  / __\__ _  __| | ___ _ __   ___ ___ `, "#60a5fa"},
	{` / /  / _' |/ _' |/ _ \ '_ \ / __/ _ \`, "#818cf8"},
	{`/ /__| (_| | (_| |  __/ | | | (_|  __/`, "#a78bfa"},
	{`\____/\__,_|\__,_|\___|_| |_|\___\___|`, "#c084fc"},
}

// PrintBanner writes the Cadence banner to w, colored for the terminal
// profile of w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
