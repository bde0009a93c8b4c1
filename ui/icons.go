// Package ui provides the graphical user interface for NordVPN GUI.
package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/yllada/nordvpn-gui/common"
)

var (
	trayBlue  = color.RGBA{R: 53, G: 132, B: 228, A: 255}
	trayNavy  = color.RGBA{R: 26, G: 78, B: 142, A: 255}
	trayGray  = color.RGBA{R: 140, G: 140, B: 140, A: 255}
	trayDark  = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	trayWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// GenerateConnectedIcon renders the tray icon for the connected state:
// a blue globe badge with a solid center.
func GenerateConnectedIcon() []byte {
	return renderBadge(trayBlue, trayNavy, true)
}

// GenerateDisconnectedIcon renders the tray icon for the disconnected
// state: the same badge in gray with a hollow center.
func GenerateDisconnectedIcon() []byte {
	return renderBadge(trayGray, trayDark, false)
}

// renderBadge draws a filled circle with a darker rim and a center
// marker, then encodes it as PNG.
func renderBadge(fill, rim color.RGBA, solidCenter bool) []byte {
	size := common.TrayIconSize
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	center := float64(size) / 2
	outer := center - 1
	inner := outer - 1.6
	core := outer * 0.38

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - center
			dy := float64(y) + 0.5 - center
			dist := math.Hypot(dx, dy)

			switch {
			case dist > outer:
				// transparent background
			case dist > inner:
				img.SetRGBA(x, y, rim)
			case dist <= core:
				if solidCenter {
					img.SetRGBA(x, y, trayWhite)
				} else if dist > core-1.5 {
					// hollow ring marker
					img.SetRGBA(x, y, trayWhite)
				} else {
					img.SetRGBA(x, y, fill)
				}
			default:
				img.SetRGBA(x, y, fill)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		common.LogError("failed to encode tray icon: %v", err)
		return nil
	}
	return buf.Bytes()
}
