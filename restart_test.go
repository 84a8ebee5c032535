package jpeg

import "testing"

// buildTwoMCURestartJPEG assembles a 16x8, single-component baseline image
// with DRI=1 (a restart boundary after every MCU): MCU0 carries DC diff
// +16, MCU1 (after an RST0) carries DC diff -16, both starting from a
// predictor reset to 0. Each block is otherwise flat (AC immediate EOB), so
// the two MCUs' 8x8 regions end up at two distinct, verifiable gray levels.
func buildTwoMCURestartJPEG() []byte {
    var data []byte
    data = append(data, 0xff, 0xd8) // SOI

    dqtPayload := append([]byte{0x00}, make([]byte, 64)...)
    for i := range dqtPayload[1:] {
        dqtPayload[1+i] = 1
    }
    data = append(data, segment(0xdb, dqtPayload)...)

    sofPayload := []byte{
        8,     // precision
        0, 8,  // nLines
        0, 16, // nSamplesLine
        1,     // nComps
        1, 0x11, 0, // id=1 HSF=VSF=1 QS=0
    }
    data = append(data, segment(0xc0, sofPayload)...)

    // DC table: two length-1 codes, "0" -> category 0, "1" -> category 5.
    dcCounts := make([]byte, 16)
    dcCounts[0] = 2
    dhtDC := append([]byte{0x00}, dcCounts...)
    dhtDC = append(dhtDC, 0x00, 0x05)
    data = append(data, segment(0xc4, dhtDC)...)

    // AC table: one length-1 code -> immediate EOB.
    acCounts := make([]byte, 16)
    acCounts[0] = 1
    dhtAC := append([]byte{0x10}, acCounts...)
    dhtAC = append(dhtAC, 0x00)
    data = append(data, segment(0xc4, dhtAC)...)

    data = append(data, segment(0xdd, []byte{0, 1})...) // DRI: restart every MCU

    sosPayload := []byte{
        1,        // nComps
        1, 0x00,  // selector=1, DC/AC table 0/0
        0, 63, 0, // Ss, Se, Ah/Al
    }
    data = append(data, segment(0xda, sosPayload)...)

    // MCU0: DC select "1", value "10000" (=16, category 5 -> diff +16), AC EOB "0",
    // then one pad bit: 1 1000 0 0 1 = 0xc1.
    data = append(data, 0xc1)
    data = append(data, 0xff, 0xd0) // RST0
    // MCU1: DC select "1", value "01111" (=15, category 5 -> diff -16), AC EOB "0",
    // then one pad bit: 1 0111 1 0 1 = 0xbd.
    data = append(data, 0xbd)

    data = append(data, 0xff, 0xd9) // EOI
    return data
}

// TestRestartIntervalResumesTraversal guards against restarting the MCU
// traversal at (0,0) on every restart segment: with DRI=1 over two MCUs,
// MCU1's data must land in the second MCU's pixels, not overwrite the
// first or go missing.
func TestRestartIntervalResumesTraversal(t *testing.T) {
    data := buildTwoMCURestartJPEG()
    target := newRawSurface(16, 8, FormatY)

    jpg, err := Decode(data, target, Options{})
    if err != nil {
        t.Fatalf("Decode: %v", err)
    }
    if !jpg.IsComplete() {
        t.Fatal("expected the parse to reach EOI")
    }

    got0 := target.Bytes()[0]
    got1 := target.Bytes()[8]
    if got0 != 130 {
        t.Fatalf("MCU0 pixel = %d, want 130 (dc diff +16)", got0)
    }
    if got1 != 126 {
        t.Fatalf("MCU1 pixel = %d, want 126 (dc diff -16); restart traversal likely rewound to (0,0)", got1)
    }
}

// buildCorruptEntropyThenEOIJPEG builds a single-MCU baseline image whose
// sole DC Huffman table has only one valid (length-1, code 0) codeword, fed
// a byte whose top bit is 1 so decodeSymbol's slow path exhausts all 16 bit
// lengths without a match, followed immediately by a genuine EOI with no
// restart marker in between.
func buildCorruptEntropyThenEOIJPEG() []byte {
    var data []byte
    data = append(data, 0xff, 0xd8) // SOI

    dqtPayload := append([]byte{0x00}, make([]byte, 64)...)
    for i := range dqtPayload[1:] {
        dqtPayload[1+i] = 1
    }
    data = append(data, segment(0xdb, dqtPayload)...)

    sofPayload := []byte{8, 0, 1, 0, 1, 1, 1, 0x11, 0}
    data = append(data, segment(0xc0, sofPayload)...)

    dcCounts := make([]byte, 16)
    dcCounts[0] = 1
    dhtDC := append([]byte{0x00}, dcCounts...)
    dhtDC = append(dhtDC, 0x00)
    data = append(data, segment(0xc4, dhtDC)...)

    acCounts := make([]byte, 16)
    acCounts[0] = 1
    dhtAC := append([]byte{0x10}, acCounts...)
    dhtAC = append(dhtAC, 0x00)
    data = append(data, segment(0xc4, dhtAC)...)

    sosPayload := []byte{1, 1, 0x00, 0, 63, 0}
    data = append(data, segment(0xda, sosPayload)...)
    data = append(data, 0x80) // top bit set: unmatched by the single length-1 code

    data = append(data, 0xff, 0xd9) // EOI, no RSTn in between
    return data
}

// TestCorruptEntropyRecoversAtNextMarker guards against ErrCorruptEntropy
// aborting the whole decode: spec.md §7 point 5 requires the scan driver to
// soft-recover by treating the next found marker as a resync point and
// still produce a result rather than failing outright.
func TestCorruptEntropyRecoversAtNextMarker(t *testing.T) {
    data := buildCorruptEntropyThenEOIJPEG()
    target := newRawSurface(1, 1, FormatY)

    jpg, err := Decode(data, target, Options{})
    if err != nil {
        t.Fatalf("Decode: %v, want soft recovery instead of a hard failure", err)
    }
    if !jpg.IsComplete() {
        t.Fatal("expected the parse to still reach EOI after recovering from corrupt entropy data")
    }
}
