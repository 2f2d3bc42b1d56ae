package analysis

import (
	"bytes"
	"encoding/binary"
	"math"
)

// imageDPI reads the horizontal density a PNG or JPEG declares, falling
// back to DefaultImageDPI.
func imageDPI(format string, data []byte) int {
	var dpi int
	switch format {
	case "png":
		dpi = pngDPI(data)
	case "jpeg":
		dpi = jfifDPI(data)
	}
	if dpi <= 0 {
		return DefaultImageDPI
	}
	return dpi
}

func pngDPI(data []byte) int {
	// 8-byte signature, then length/type/data/crc chunks.
	pos := 8
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos:]))
		typ := string(data[pos+4 : pos+8])
		body := pos + 8
		if body+length > len(data) {
			return 0
		}
		switch typ {
		case "pHYs":
			if length < 9 || data[body+8] != 1 {
				return 0
			}
			ppm := binary.BigEndian.Uint32(data[body:])
			return int(math.Round(float64(ppm) * 0.0254))
		case "IDAT", "IEND":
			return 0
		}
		pos = body + length + 4
	}
	return 0
}

func jfifDPI(data []byte) int {
	i := bytes.Index(data, []byte("JFIF\x00"))
	if i < 0 || i+12 > len(data) {
		return 0
	}
	units := data[i+7]
	x := int(binary.BigEndian.Uint16(data[i+8:]))
	switch units {
	case 1:
		return x
	case 2:
		return int(math.Round(float64(x) * 2.54))
	}
	return 0
}
