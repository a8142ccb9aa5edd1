// Package browser opens product pages in the user's default browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// ProductBaseURL is the public product database the scanner links to.
const ProductBaseURL = "https://world.openfoodfacts.org/product/"

// ProductURL returns the public page for a barcode.
func ProductURL(ean string) string {
	return ProductBaseURL + url.PathEscape(ean)
}

// Open opens the specified URL in the user's default browser.
func Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("browser.Open: unsupported OS: %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("browser.Open: %w", err)
	}
	return nil
}
