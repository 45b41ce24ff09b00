// Command image-brightness adjusts per-channel brightness of images and
// compares color palettes and channel distributions before and after.
package main

import (
	"os"

	"github.com/ironsheep/image-brightness/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
