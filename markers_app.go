package jpeg

import (
    "bytes"
    "encoding/binary"
)

// Metadata segments (APP0/1/2/14) are retained as raw byte ranges rather
// than parsed into structured form (spec.md §1 Non-goals): the decoder
// core only needs to know where EXIF/ICC/JFIF/Adobe payloads sit in the
// input so a caller can re-extract them, plus the handful of fields that
// feed the pixel pipeline (JFIF density is ignored; Adobe's transform byte
// selects the YCbCr/YCCK color path of spec.md §4.7).

var jfifTag = []byte("JFIF\x00")
var jfxxTag = []byte("JFXX\x00")
var exifTag = []byte("Exif\x00\x00")
var exifTagPad = []byte("Exif\x00\xff") // some encoders pad the second NUL with 0xff
var iccTag = []byte("ICC_PROFILE\x00")
var adobeTag = []byte("Adobe")

// adobeTransform is the single byte at the end of an APP14 Adobe segment,
// selecting how a 3- or 4-component scan's samples map to color (spec.md
// §4.7 "Color Conversion").
type adobeTransform int8

const (
    adobeUnset             adobeTransform = -1
    adobeTransformUnknown  adobeTransform = 0 // CMYK or RGB, no transform applied
    adobeTransformYCbCr    adobeTransform = 1
    adobeTransformYCCK     adobeTransform = 2
)

// app0 retains the JFIF/JFXX payload range, plus the thumbnail it may carry
// (spec.md §7 SUPPLEMENTED FEATURES: Thumbnail() over the retained APP0/APP1
// byte ranges). JFIF's own thumbnail is always uncompressed 24-bit RGB;
// JFXX additionally allows an 8-bit palette or an embedded JPEG.
func (jpg *Desc) app0(marker, sLen uint) error {
    off := jpg.offset + 4
    end := jpg.offset + 2 + sLen
    if end-off < 5 {
        return nil
    }
    h5 := jpg.data[off : off+5]
    switch {
    case bytes.Equal(h5, jfifTag):
        jpg.jfifRange = [2]int{int(off), int(end)}
        jpg.parseJFIFThumbnail(off+5, end)
    case bytes.Equal(h5, jfxxTag):
        jpg.jfifRange = [2]int{int(off), int(end)}
        jpg.parseJFXXThumbnail(off+5, end)
    }
    return nil
}

// parseJFIFThumbnail reads the fixed 9-byte JFIF density/thumbnail-size
// fields following the "JFIF\0" tag, then the WxHx3 uncompressed RGB raster
// that follows them if one is present.
func (jpg *Desc) parseJFIFThumbnail(densityOff, end uint) {
    if end-densityOff < 9 {
        return
    }
    w := int(jpg.data[densityOff+7])
    h := int(jpg.data[densityOff+8])
    if w == 0 || h == 0 {
        return
    }
    dataOff := densityOff + 9
    size := uint(w * h * 3)
    if end-dataOff < size {
        return
    }
    jpg.thumbnail = &Thumbnail{Width: w, Height: h, Format: ThumbnailRGB, Data: jpg.data[dataOff : dataOff+size]}
}

// parseJFXXThumbnail reads the one-byte extension code following "JFXX\0"
// and the format-specific layout it selects (JPEG / 8-bit palette / RGB).
func (jpg *Desc) parseJFXXThumbnail(codeOff, end uint) {
    if end-codeOff < 1 {
        return
    }
    switch jpg.data[codeOff] {
    case 0x10: // JPEG-encoded thumbnail: the rest of the segment is the JPEG itself
        jpg.thumbnail = &Thumbnail{Format: ThumbnailJPEG, Data: jpg.data[codeOff+1 : end]}
    case 0x11: // 8-bit palette: WxH indices into a following 256-entry RGB palette
        if end-codeOff < 3 {
            return
        }
        w, h := int(jpg.data[codeOff+1]), int(jpg.data[codeOff+2])
        jpg.thumbnail = &Thumbnail{Width: w, Height: h, Format: ThumbnailPalette, Data: jpg.data[codeOff+3 : end]}
    case 0x12: // uncompressed WxHx3 RGB
        if end-codeOff < 3 {
            return
        }
        w, h := int(jpg.data[codeOff+1]), int(jpg.data[codeOff+2])
        jpg.thumbnail = &Thumbnail{Width: w, Height: h, Format: ThumbnailRGB, Data: jpg.data[codeOff+3 : end]}
    }
}

// app1 retains the EXIF TIFF payload range, if this APP1 carries one
// (spec.md §1: EXIF is retained as a raw byte range, not decoded), and reads
// the orientation tag (0x0112) directly out of that raw TIFF structure for
// Orientation() (spec.md §7 SUPPLEMENTED FEATURES), since the structured
// EXIF decode itself stays out of scope. A non-EXIF APP1 (e.g. XMP) is
// skipped. Accepts both the "Exif\0\0" signature and the "Exif\0\xff"
// variant some encoders pad with (spec.md §4.4).
func (jpg *Desc) app1(marker, sLen uint) error {
    off := jpg.offset + 4
    end := jpg.offset + 2 + sLen
    if end-off < 6 {
        return nil
    }
    sig := jpg.data[off : off+6]
    if !bytes.Equal(sig, exifTag) && !bytes.Equal(sig, exifTagPad) {
        return nil
    }
    jpg.exifRange = [2]int{int(off + 6), int(end)}
    if o := parseExifOrientation(jpg.data[off+6 : end]); o != nil {
        jpg.orientation = o
    }
    return nil
}

// app2 concatenates successive ICC_PROFILE chunks (each carrying its
// sequence number and chunk count ahead of the profile bytes) into one
// contiguous buffer, per the ICC.1 Annex on embedding profiles in JPEG.
func (jpg *Desc) app2(marker, sLen uint) error {
    off := jpg.offset + 4
    end := jpg.offset + 2 + sLen
    if end-off < uint(len(iccTag))+2 {
        return nil
    }
    if !bytes.Equal(jpg.data[off:off+uint(len(iccTag))], iccTag) {
        return nil // not an ICC profile chunk; ignore (e.g. FlashPix)
    }
    payload := jpg.data[off+uint(len(iccTag))+2 : end]
    jpg.iccData = append(jpg.iccData, payload...)
    return nil
}

// app14 reads the Adobe color transform byte so the pipeline knows
// whether a 3-component scan is YCbCr or a 4-component scan is YCCK
// (spec.md §4.7); absent an APP14, the transform stays adobeUnset and is
// inferred from the component count instead.
func (jpg *Desc) app14(marker, sLen uint) error {
    off := jpg.offset + 4
    end := jpg.offset + 2 + sLen
    if end-off < 12 || !bytes.Equal(jpg.data[off:off+5], adobeTag) {
        return nil
    }
    jpg.colorTransform = adobeTransform(jpg.data[off+11])
    return nil
}

// ThumbnailFormat describes the pixel layout of an embedded thumbnail, per
// the variants JFIF/JFXX allow.
type ThumbnailFormat int

const (
    ThumbnailRGB     ThumbnailFormat = iota // uncompressed WxHx3 RGB
    ThumbnailPalette                        // WxH indices into a following 256-entry RGB palette
    ThumbnailJPEG                           // an embedded JPEG stream, undecoded
)

// Thumbnail is the embedded JFIF/JFXX thumbnail, if the stream carries one
// (spec.md §7 SUPPLEMENTED FEATURES). Data is the raw bytes as embedded;
// for ThumbnailJPEG, Width/Height are unset (the JPEG stream self-describes
// them) and decoding it is this core's ordinary job via Create/Decode.
type Thumbnail struct {
    Width, Height int
    Format        ThumbnailFormat
    Data          []byte
}

// parseExifOrientation reads TIFF tag 0x0112 (Orientation) directly out of
// the raw EXIF byte range, without a structured EXIF decode (spec.md §1
// scopes that to an external collaborator). Grounded on the teacher's
// app.go setTiffOrientation, minus the dropped github.com/jrm-1535/exif
// dependency it used to reach the same tag.
func parseExifOrientation(tiff []byte) *Orientation {
    if len(tiff) < 8 {
        return nil
    }
    var bo binary.ByteOrder
    switch {
    case tiff[0] == 'I' && tiff[1] == 'I':
        bo = binary.LittleEndian
    case tiff[0] == 'M' && tiff[1] == 'M':
        bo = binary.BigEndian
    default:
        return nil
    }
    if bo.Uint16(tiff[2:4]) != 42 {
        return nil
    }
    ifdOff := bo.Uint32(tiff[4:8])
    if uint32(len(tiff)) < ifdOff+2 {
        return nil
    }
    count := bo.Uint16(tiff[ifdOff:])
    entries := tiff[ifdOff+2:]
    for i := uint16(0); i < count; i++ {
        eOff := uint32(i) * 12
        if eOff+12 > uint32(len(entries)) {
            break
        }
        e := entries[eOff : eOff+12]
        if bo.Uint16(e[0:2]) != 0x0112 {
            continue
        }
        if bo.Uint16(e[2:4]) != 3 || bo.Uint32(e[4:8]) != 1 { // SHORT, count 1
            return nil
        }
        return orientationFromExifCode(bo.Uint16(e[8:10]))
    }
    return nil
}

// orientationFromExifCode maps an EXIF orientation tag value (1..8) to the
// Row0/Col0/Effect triple, following the teacher's app.go switch exactly.
func orientationFromExifCode(code uint16) *Orientation {
    o := &Orientation{AppSource: 1}
    switch code {
    case 1:
        o.Row0, o.Col0, o.Effect = Top, Left, None
    case 2:
        o.Row0, o.Col0, o.Effect = Top, Right, VerticalMirror
    case 3:
        o.Row0, o.Col0, o.Effect = Bottom, Right, Rotate180
    case 4:
        o.Row0, o.Col0, o.Effect = Bottom, Left, HorizontalMirror
    case 5:
        o.Row0, o.Col0, o.Effect = Left, Top, HorizontalMirrorRotate90
    case 6:
        o.Row0, o.Col0, o.Effect = Right, Top, Rotate90
    case 7:
        o.Row0, o.Col0, o.Effect = Right, Bottom, VerticalMirrorRotate90
    case 8:
        o.Row0, o.Col0, o.Effect = Left, Bottom, Rotate270
    default:
        return nil
    }
    return o
}
