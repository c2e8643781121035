package bot

import (
	"fmt"
	"strings"

	"github.com/mazznoer/colorgrad"
)

// GetBanner returns a colorized ASCII art banner
func GetBanner(version string) string {
	banner := `
 _____                _   ____    _                      _
|_   _|  ___    ___  | | / ___|  | |__     __ _    ___  | | __
  | |   / _ \  / _ \ | | \___ \  | '_ \   / _' |  / __| | |/ /
  | |  | (_) || (_) || |  ___) | | | | | | (_| | | (__  |   <
  |_|   \___/  \___/ |_| |____/  |_| |_|  \__,_|  \___| |_|\_\
 .  .  .  a  workbench  full  of  tools  and  one  loud  parrot  [v` + version + `]
`
	grad, _ := colorgrad.NewGradient().
		HtmlColors("#1115f0ff", "#fdfdfdff").
		Build()

	lines := strings.Split(banner, "\n")

	// Spread the gradient over the widest line so every column gets a
	// stable color.
	width := 0
	for _, line := range lines {
		width = max(width, len(line))
	}
	colors := grad.Colors(uint(width))

	var out strings.Builder
	for _, line := range lines {
		for i, ch := range line {
			r, g, b, _ := colors[i].RGBA255()
			fmt.Fprintf(&out, "\x1b[38;2;%d;%d;%dm%c", r, g, b, ch)
		}
		out.WriteString("\x1b[0m\n")
	}
	return out.String()
}
