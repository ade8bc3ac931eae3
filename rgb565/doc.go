// Package rgb565 provides the 16-bit packed color format used by the ST7789
// display controller.
//
// Each pixel is 5 bits red, 6 bits green and 5 bits blue packed into a
// uint16, stored and transmitted big-endian (most significant byte first).
//
// Memory layout example for a 2-pixel row:
//
//	Pixels: 0        1
//	Colors: red      blue
//	Value:  0xF800   0x001F
//	Bytes:  F8 00    00 1F
//
// This package provides:
//
// - Color: a color.Color holding a packed RGB565 value
// - Model: a color model for converting standard Go colors to Color
// - Image: a draw.Image whose Pix slice can be streamed to the panel as-is
//
// Example usage:
//
//	img := rgb565.NewImage(image.Rect(0, 0, 135, 240))
//	img.SetRGB565(10, 20, rgb565.New(0xFF, 0x80, 0x00))
//	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
//	dev.BlitBuffer(img.Pix, 0, 0, 135, 240)
package rgb565
