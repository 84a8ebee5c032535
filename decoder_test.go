package jpeg

import "testing"

// segment builds one marker segment: 0xff, marker byte, 2-byte big-endian
// length (including the length field itself), then payload.
func segment(marker byte, payload []byte) []byte {
    l := len(payload) + 2
    return append([]byte{0xff, marker, byte(l >> 8), byte(l)}, payload...)
}

// buildMinimalBaselineJPEG assembles a 1x1, single-component, baseline
// Huffman JPEG whose DC and AC tables are both single-bit codes decoding to
// "zero difference" / "immediate EOB", so the whole image decodes to one
// flat DC-only block.
func buildMinimalBaselineJPEG() []byte {
    var data []byte
    data = append(data, 0xff, 0xd8) // SOI

    dqtPayload := append([]byte{0x00}, make([]byte, 64)...)
    for i := range dqtPayload[1:] {
        dqtPayload[1+i] = 1
    }
    data = append(data, segment(0xdb, dqtPayload)...)

    sofPayload := []byte{
        8,     // precision
        0, 1,  // nLines
        0, 1,  // nSamplesLine
        1,     // nComps
        1, 0x11, 0, // id=1 HSF=VSF=1 QS=0
    }
    data = append(data, segment(0xc0, sofPayload)...)

    dcCounts := make([]byte, 16)
    dcCounts[0] = 1
    dhtDC := append([]byte{0x00}, dcCounts...)
    dhtDC = append(dhtDC, 0x00) // symbol: category 0
    data = append(data, segment(0xc4, dhtDC)...)

    acCounts := make([]byte, 16)
    acCounts[0] = 1
    dhtAC := append([]byte{0x10}, acCounts...)
    dhtAC = append(dhtAC, 0x00) // symbol: run/size 0x00 = EOB
    data = append(data, segment(0xc4, dhtAC)...)

    sosPayload := []byte{
        1,          // nComps
        1, 0x00,    // selector=1, DC/AC table 0/0
        0, 63, 0,   // Ss, Se, Ah/Al
    }
    data = append(data, segment(0xda, sosPayload)...)
    data = append(data, 0x00) // entropy data: DC bit 0, AC EOB bit 0

    data = append(data, 0xff, 0xd9) // EOI
    return data
}

func TestCreateParsesMinimalBaselineJPEG(t *testing.T) {
    data := buildMinimalBaselineJPEG()
    jpg, err := Create(data, Options{})
    if err != nil {
        t.Fatalf("Create: %v", err)
    }
    if jpg.Width() != 1 || jpg.Height() != 1 {
        t.Fatalf("dimensions = %dx%d, want 1x1", jpg.Width(), jpg.Height())
    }
    if jpg.NaturalFormat() != FormatY {
        t.Fatalf("NaturalFormat = %v, want FormatY for a single-component image", jpg.NaturalFormat())
    }
}

func TestDecodeMinimalBaselineJPEGFlatGray(t *testing.T) {
    data := buildMinimalBaselineJPEG()
    target := newRawSurface(1, 1, FormatY)

    jpg, err := Decode(data, target, Options{})
    if err != nil {
        t.Fatalf("Decode: %v", err)
    }
    if !jpg.IsComplete() {
        t.Fatal("expected the parse to reach EOI")
    }
    if got := target.Bytes()[0]; got != 128 {
        t.Fatalf("pixel = %d, want 128 (all-zero coefficient block)", got)
    }
}

func TestDecodeRejectsUnstartedFrame(t *testing.T) {
    data := []byte{0xff, 0xd8, 0xff, 0xd9} // SOI, EOI, no SOFn
    target := newRawSurface(1, 1, FormatY)
    if _, err := Decode(data, target, Options{}); err == nil {
        t.Fatal("expected an error decoding a stream with no frame")
    }
}
