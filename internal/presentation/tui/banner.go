package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the startup banner to w, colored when w is a terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{" _                        _      _                    ", "#818cf8"},
		{"| |_ _   _  ___ _ __ _   _| | ___| |__   __ _ ___  ___ ", "#a78bfa"},
		{"| __| | | |/ _ \\ '__| | | | |/ _ \\ '_ \\ / _` / __|/ _ \\", "#c084fc"},
		{"| |_| |_| |  __/ |  | |_| | |  __/ |_) | (_| \\__ \\  __/", "#e879f9"},
		{" \\__|\\__,_|\\___|_|   \\__,_|_|\\___|_.__/ \\__,_|___/\\___|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  part-code decoder v"+version).Faint())
	fmt.Fprintln(w)
}
