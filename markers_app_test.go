package jpeg

import "testing"

func appSegment(marker byte, payload []byte) ([]byte, uint) {
    sLen := uint(len(payload) + 2)
    data := append([]byte{0xff, marker, byte(sLen >> 8), byte(sLen)}, payload...)
    return data, sLen
}

func TestApp0DetectsJFIF(t *testing.T) {
    payload := append([]byte("JFIF\x00"), 1, 2, 0, 0, 0, 0, 0)
    data, sLen := appSegment(0xe0, payload)
    jpg := &Desc{data: data}
    if err := jpg.app0(0xffe0, sLen); err != nil {
        t.Fatalf("app0: %v", err)
    }
    if jpg.jfifRange[0] == 0 && jpg.jfifRange[1] == 0 {
        t.Fatal("expected jfifRange to be populated for a JFIF APP0")
    }
}

func TestApp0IgnoresNonJFIF(t *testing.T) {
    payload := []byte("other data here")
    data, sLen := appSegment(0xe0, payload)
    jpg := &Desc{data: data}
    if err := jpg.app0(0xffe0, sLen); err != nil {
        t.Fatalf("app0: %v", err)
    }
    if jpg.jfifRange != ([2]int{}) {
        t.Fatalf("jfifRange = %v, want zero value for a non-JFIF APP0", jpg.jfifRange)
    }
}

func TestApp1DetectsExif(t *testing.T) {
    payload := append([]byte("Exif\x00\x00"), 0x4d, 0x4d, 0, 42)
    data, sLen := appSegment(0xe1, payload)
    jpg := &Desc{data: data}
    if err := jpg.app1(0xffe1, sLen); err != nil {
        t.Fatalf("app1: %v", err)
    }
    start, end := jpg.exifRange[0], jpg.exifRange[1]
    if start >= end {
        t.Fatalf("exifRange = [%d,%d), expected a non-empty range", start, end)
    }
    if got := jpg.data[start:end]; string(got) != "\x4d\x4d\x00\x2a" {
        t.Fatalf("exifRange payload = %x, want the TIFF header bytes", got)
    }
}

func TestApp1DetectsExifPaddedSignature(t *testing.T) {
    payload := append([]byte("Exif\x00\xff"), 0x4d, 0x4d, 0, 42)
    data, sLen := appSegment(0xe1, payload)
    jpg := &Desc{data: data}
    if err := jpg.app1(0xffe1, sLen); err != nil {
        t.Fatalf("app1: %v", err)
    }
    start, end := jpg.exifRange[0], jpg.exifRange[1]
    if start >= end {
        t.Fatalf("exifRange = [%d,%d), expected a non-empty range for the Exif\\0\\xff variant", start, end)
    }
}

func TestApp1ReadsOrientation(t *testing.T) {
    // Big-endian TIFF, IFD0 at offset 8, one entry: tag 0x0112 (Orientation),
    // type 3 (SHORT), count 1, value 6 (rotate 90).
    tiff := []byte{
        'M', 'M', 0, 42, 0, 0, 0, 8, // header, IFD0 offset = 8
        0, 1, // one directory entry
        0x01, 0x12, 0, 3, 0, 0, 0, 1, 0, 6, 0, 0, // tag, type, count, value(padded to 4 bytes)
        0, 0, 0, 0, // next IFD offset
    }
    payload := append([]byte("Exif\x00\x00"), tiff...)
    data, sLen := appSegment(0xe1, payload)
    jpg := &Desc{data: data}
    if err := jpg.app1(0xffe1, sLen); err != nil {
        t.Fatalf("app1: %v", err)
    }
    if jpg.orientation == nil {
        t.Fatal("expected Orientation() to be populated from the Orientation tag")
    }
    if jpg.orientation.Row0 != Right || jpg.orientation.Col0 != Top || jpg.orientation.Effect != Rotate90 {
        t.Fatalf("orientation = %+v, want Row0=Right Col0=Top Effect=Rotate90", jpg.orientation)
    }
}

func TestApp0ReadsJFIFThumbnail(t *testing.T) {
    rgb := make([]byte, 2*2*3)
    for i := range rgb {
        rgb[i] = byte(i + 1)
    }
    payload := append([]byte("JFIF\x00"), 1, 2, 0, 0, 0, 0, 0, 2, 2)
    payload = append(payload, rgb...)
    data, sLen := appSegment(0xe0, payload)
    jpg := &Desc{data: data}
    if err := jpg.app0(0xffe0, sLen); err != nil {
        t.Fatalf("app0: %v", err)
    }
    th := jpg.Thumbnail()
    if th == nil {
        t.Fatal("expected Thumbnail() to be populated from the JFIF thumbnail raster")
    }
    if th.Width != 2 || th.Height != 2 || th.Format != ThumbnailRGB {
        t.Fatalf("thumbnail = %+v, want 2x2 ThumbnailRGB", th)
    }
    if string(th.Data) != string(rgb) {
        t.Fatalf("thumbnail data = %x, want %x", th.Data, rgb)
    }
}

func TestApp0ReadsJFXXPaletteThumbnail(t *testing.T) {
    palette := make([]byte, 3*3+256*3) // 3x3 indices + 256-entry RGB palette
    payload := append([]byte("JFXX\x00"), 0x11, 3, 3)
    payload = append(payload, palette...)
    data, sLen := appSegment(0xe0, payload)
    jpg := &Desc{data: data}
    if err := jpg.app0(0xffe0, sLen); err != nil {
        t.Fatalf("app0: %v", err)
    }
    th := jpg.Thumbnail()
    if th == nil || th.Format != ThumbnailPalette || th.Width != 3 || th.Height != 3 {
        t.Fatalf("thumbnail = %+v, want 3x3 ThumbnailPalette", th)
    }
}

func TestApp2ConcatenatesICCChunks(t *testing.T) {
    chunk1 := append(append([]byte("ICC_PROFILE\x00"), 1, 2), []byte("AAAA")...)
    chunk2 := append(append([]byte("ICC_PROFILE\x00"), 2, 2), []byte("BBBB")...)
    jpg := &Desc{}

    data1, sLen1 := appSegment(0xe2, chunk1)
    jpg.data = data1
    if err := jpg.app2(0xffe2, sLen1); err != nil {
        t.Fatalf("app2 chunk1: %v", err)
    }
    data2, sLen2 := appSegment(0xe2, chunk2)
    jpg.data = data2
    if err := jpg.app2(0xffe2, sLen2); err != nil {
        t.Fatalf("app2 chunk2: %v", err)
    }

    if string(jpg.iccData) != "AAAABBBB" {
        t.Fatalf("iccData = %q, want %q", jpg.iccData, "AAAABBBB")
    }
}

func TestApp14ReadsTransformByte(t *testing.T) {
    payload := append([]byte("Adobe"), 0, 100, 0, 0, 0, 0, 2) // transform=2 (YCCK)
    data, sLen := appSegment(0xee, payload)
    jpg := &Desc{data: data, colorTransform: adobeUnset}
    if err := jpg.app14(0xffee, sLen); err != nil {
        t.Fatalf("app14: %v", err)
    }
    if jpg.colorTransform != adobeTransformYCCK {
        t.Fatalf("colorTransform = %v, want adobeTransformYCCK", jpg.colorTransform)
    }
}
