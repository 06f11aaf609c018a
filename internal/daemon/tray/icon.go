package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/systrayctl/systrayctl/internal/presenter"
)

const iconSize = 22

var iconColors = map[presenter.IconState]color.NRGBA{
	presenter.IconLoading:    {R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff},
	presenter.IconAllActive:  {R: 0x2e, G: 0xb8, B: 0x4f, A: 0xff},
	presenter.IconSomeActive: {R: 0x3d, G: 0x8b, B: 0xd8, A: 0xff},
	presenter.IconNoneActive: {R: 0x75, G: 0x75, B: 0x75, A: 0xff},
	presenter.IconDegraded:   {R: 0xe6, G: 0xa1, B: 0x17, A: 0xff},
}

var (
	iconMu    sync.Mutex
	iconCache = map[presenter.IconState][]byte{}
)

// iconData returns a PNG disc colored for state.
func iconData(state presenter.IconState) []byte {
	iconMu.Lock()
	defer iconMu.Unlock()

	if b, ok := iconCache[state]; ok {
		return b
	}

	c := iconColors[state]
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	center := float64(iconSize-1) / 2
	radius := float64(iconSize)/2 - 1
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			if dx*dx+dy*dy <= radius*radius {
				img.SetNRGBA(x, y, c)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	iconCache[state] = buf.Bytes()
	return iconCache[state]
}
