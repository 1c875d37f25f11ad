package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var rawBanner string

// RenderBanner returns the startup banner centered to the terminal
// width, styled for printing above the prompt.
func RenderBanner() string {
	width := termWidth()

	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(rawBanner, "\n"), "\n") {
		pad := (width - len(line)) / 2
		if pad < 0 {
			pad = 0
		}
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return BannerStyle.Render(b.String())
}

func termWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
