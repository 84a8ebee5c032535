package jpeg

// Color conversion (spec.md §4.7): a family of converters indexed by
// target pixel format and MCU sample geometry, plus a clipped fallback for
// partial blocks at the right/bottom edge. Constants follow the ITU-T
// T.871 YCbCr<->RGB fixed-point equations (Q16).

type PixelFormat int

const (
    FormatY PixelFormat = iota
    FormatBGR
    FormatRGB
    FormatBGRA
    FormatRGBA
)

func (f PixelFormat) bytesPerPixel() int {
    switch f {
    case FormatY:
        return 1
    case FormatBGR, FormatRGB:
        return 3
    default:
        return 4
    }
}

// getSampleFormat maps a target surface format to the decode-time
// converter family (spec.md §6 getSampleFormat): identical bit depth and
// channel count otherwise, so this is mostly a renaming of the same five
// cases the surface already reports.
func getSampleFormat(target PixelFormat) PixelFormat { return target }

const (
    ycc_1_402   = 91881  // 1.402 * 65536
    ycc_0_344   = 22554  // 0.344136 * 65536
    ycc_0_714   = 46802  // 0.714136 * 65536
    ycc_1_772   = 116130 // 1.772 * 65536
)

func clamp8(v int32) uint8 {
    if v < 0 {
        return 0
    }
    if v > 255 {
        return 255
    }
    return uint8(v)
}

// ycbcrToRGB converts one sample triple using T.871 fixed-point constants.
func ycbcrToRGB(y, cb, cr uint8) (r, g, b uint8) {
    Y := int32(y) << 16
    Cb := int32(cb) - 128
    Cr := int32(cr) - 128
    r = clamp8((Y + ycc_1_402*Cr + 1<<15) >> 16)
    g = clamp8((Y - ycc_0_344*Cb - ycc_0_714*Cr + 1<<15) >> 16)
    b = clamp8((Y + ycc_1_772*Cb + 1<<15) >> 16)
    return
}

// ycckToCMYK inverts an Adobe YCCK scan back to CMYK: the Y/Cb/Cr triple
// decodes to RGB as usual, then C=255-R, M=255-G, Y'=255-B; K passes
// through unchanged (spec.md §4.4 APP14, §4.7 "CMYK/YCCK always routes
// through the clipped BGRA path").
func ycckToCMYK(y, cb, cr, k uint8) (c, m, ye, kk uint8) {
    r, g, b := ycbcrToRGB(y, cb, cr)
    return 255 - r, 255 - g, 255 - b, k
}

func cmykToRGB(c, m, y, k uint8) (r, g, b uint8) {
    r = uint8(uint32(255-c) * uint32(255-k) / 255)
    g = uint8(uint32(255-m) * uint32(255-k) / 255)
    b = uint8(uint32(255-y) * uint32(255-k) / 255)
	return
}

func putPixel(dst []byte, off int, format PixelFormat, r, g, b, a uint8) {
    switch format {
    case FormatY:
        dst[off] = r
    case FormatBGR:
        dst[off], dst[off+1], dst[off+2] = b, g, r
    case FormatRGB:
        dst[off], dst[off+1], dst[off+2] = r, g, b
    case FormatBGRA:
        dst[off], dst[off+1], dst[off+2], dst[off+3] = b, g, r, a
    case FormatRGBA:
        dst[off], dst[off+1], dst[off+2], dst[off+3] = r, g, b, a
    }
}

// mcuSample describes the reconstructed 8-bit sample planes for one MCU's
// worth of components, already upsampled to the MCU's full pixel extent
// (spec.md §4.7's "8x8/8x16/16x8/16x16" geometries collapse to one plane
// walk once nearest-neighbor upsampling has filled each component to
// mcuW x mcuH).
type mcuSample struct {
    mcuW, mcuH int
    planes     [][]uint8 // one plane per component, each mcuW*mcuH bytes
    transform  adobeTransform
}

// convertMCU writes one MCU's pixels into dst at (x0,y0), clipping to
// (clipW, clipH) when this is the last MCU column/row (the "clipped"
// fallback path of spec.md §4.7). dst is the full output surface; stride
// is its byte pitch.
func convertMCU(dst []byte, stride int, x0, y0, clipW, clipH int, format PixelFormat, s *mcuSample) {
    bpp := format.bytesPerPixel()
    nComps := len(s.planes)

    for row := 0; row < clipH; row++ {
        rowOff := (y0+row)*stride + x0*bpp
        for col := 0; col < clipW; col++ {
            idx := row*s.mcuW + col
            off := rowOff + col*bpp

            switch nComps {
            case 1:
                y := s.planes[0][idx]
                putPixel(dst, off, format, y, y, y, 255)
            case 3:
                r, g, b := ycbcrToRGB(s.planes[0][idx], s.planes[1][idx], s.planes[2][idx])
                if s.transform == adobeTransformUnknown {
                    r, g, b = s.planes[0][idx], s.planes[1][idx], s.planes[2][idx]
                }
                putPixel(dst, off, format, r, g, b, 255)
            case 4:
                var c, m, ye, k uint8
                if s.transform == adobeTransformYCCK {
                    c, m, ye, k = ycckToCMYK(s.planes[0][idx], s.planes[1][idx], s.planes[2][idx], s.planes[3][idx])
                } else {
                    c, m, ye, k = s.planes[0][idx], s.planes[1][idx], s.planes[2][idx], s.planes[3][idx]
                }
                r, g, b := cmykToRGB(c, m, ye, k)
                putPixel(dst, off, format, r, g, b, 255)
            }
        }
    }
}

// upsamplePlane nearest-neighbor-replicates a subW x subH subsampled
// component plane up to mcuW x mcuH samples (spec.md §4.7 MCU geometry).
func upsamplePlane(src []uint8, subW, subH, mcuW, mcuH int) []uint8 {
    if subW == mcuW && subH == mcuH {
        return src
    }
    out := make([]uint8, mcuW*mcuH)
    for row := 0; row < mcuH; row++ {
        srcRow := row * subH / mcuH
        for col := 0; col < mcuW; col++ {
            srcCol := col * subW / mcuW
            out[row*mcuW+col] = src[srcRow*subW+srcCol]
        }
    }
    return out
}
