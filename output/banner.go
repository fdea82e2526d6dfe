package output

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
)

// BannerOptions configures the startup banner display.
type BannerOptions struct {
	ShowBanner  bool // Show ASCII art logo
	ShowVersion bool // Show version information
	ShowTagline bool // Show one-line tagline
}

// DefaultBannerOptions returns default banner configuration.
func DefaultBannerOptions() BannerOptions {
	return BannerOptions{
		ShowBanner:  true,
		ShowVersion: true,
		ShowTagline: true,
	}
}

// PrintBanner displays the pathreduce logo and information.
func PrintBanner(w io.Writer, version string, opts BannerOptions) {
	if w == nil {
		return
	}

	if !opts.ShowBanner {
		if opts.ShowVersion {
			fmt.Fprintf(w, "pathreduce v%s\n", version)
		}
		if opts.ShowTagline {
			fmt.Fprintln(w, "CFG path-reduction engine")
		}
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintln(w, GetASCIILogo())

	if opts.ShowVersion {
		fmt.Fprintf(w, "pathreduce v%s\n", version)
	}
	if opts.ShowTagline {
		fmt.Fprintln(w, "CFG path-reduction engine")
	}

	fmt.Fprintln(w)
}

// GetASCIILogo generates the ASCII art logo for "pathreduce".
func GetASCIILogo() string {
	fig := figure.NewFigure("pathreduce", "standard", true)
	return fig.String()
}

// GetCompactBanner returns a single-line banner for non-TTY output.
func GetCompactBanner(version string) string {
	return fmt.Sprintf("pathreduce v%s | CFG path-reduction engine", version)
}

// ShouldShowBanner determines if banner should be displayed.
func ShouldShowBanner(isTTY bool, noBannerFlag bool) bool {
	if noBannerFlag {
		return false
	}
	return isTTY
}
