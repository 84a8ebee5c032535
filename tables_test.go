package jpeg

import "testing"

func TestDefineQuantizationTableZigZagExpansion(t *testing.T) {
    // a single 8-bit table for destination 0; payload is the identity
    // 1..64 in zig-zag order, so values[zigZagTable[i]] must equal i+1.
    payload := make([]byte, 1+64)
    payload[0] = 0x00 // Pq=0, Tq=0
    for i := 0; i < 64; i++ {
        payload[1+i] = byte(i + 1)
    }
    sLen := uint(2 + len(payload))
    data := append([]byte{0xff, 0xdb, byte(sLen >> 8), byte(sLen)}, payload...)

    jpg := &Desc{data: data}
    if err := jpg.defineQuantizationTable(sLen); err != nil {
        t.Fatalf("defineQuantizationTable: %v", err)
    }

    q := jpg.pendingQdefs[0]
    if !q.valid || q.size != 8 {
        t.Fatalf("table not installed: valid=%v size=%d", q.valid, q.size)
    }
    for i := 0; i < 64; i++ {
        if q.values[zigZagTable[i]] != uint16(i+1) {
            t.Fatalf("values[zigZagTable[%d]]=%d, want %d", i, q.values[zigZagTable[i]], i+1)
        }
    }
}

func TestDefineQuantizationTableRejectsBadDestination(t *testing.T) {
    payload := []byte{0x04} // Tq=4, out of range
    payload = append(payload, make([]byte, 64)...)
    sLen := uint(2 + len(payload))
    data := append([]byte{0xff, 0xdb, byte(sLen >> 8), byte(sLen)}, payload...)

    jpg := &Desc{data: data}
    if err := jpg.defineQuantizationTable(sLen); err == nil {
        t.Fatal("expected an error for out-of-range DQT destination")
    }
}

func TestStartOfFrameComputesMCUGrid(t *testing.T) {
    // SOF0, 8-bit, 10x6 image, 1 component with HSF=VSF=2 (so a single
    // 16x16 MCU covers the whole image with an 10x6 clip).
    payload := []byte{
        8,        // precision
        0, 6,     // nLines
        0, 10,    // nSamplesLine
        1,        // nComps
        1, 0x22, 0, // id=1, HSF=2 VSF=2, QS=0
    }
    sLen := uint(2 + len(payload))
    data := append([]byte{0xff, 0xc0, byte(sLen >> 8), byte(sLen)}, payload...)

    jpg := &Desc{data: data, state: _FRAME}
    jpg.colorTransform = adobeUnset
    if err := jpg.startOfFrame(_SOF0, sLen); err != nil {
        t.Fatalf("startOfFrame: %v", err)
    }

    frm := jpg.getCurrentFrame()
    if frm.xmcu != 1 || frm.ymcu != 1 {
        t.Fatalf("MCU grid = %dx%d, want 1x1", frm.xmcu, frm.ymcu)
    }
    if frm.xclip != 10 || frm.yclip != 6 {
        t.Fatalf("clip = %dx%d, want 10x6", frm.xclip, frm.yclip)
    }
    if frm.encoding != HuffmanBaselineSequential {
        t.Fatalf("encoding = %v, want HuffmanBaselineSequential", frm.encoding)
    }
}

func TestClassifyEncodingProgressiveArithmetic(t *testing.T) {
    got := classifyEncoding(_SOF10) // progressive + arithmetic
    if got != ArithmeticProgressive {
        t.Fatalf("classifyEncoding(SOF10) = %v, want ArithmeticProgressive", got)
    }
}

func TestClassifyEncodingDifferentialLossless(t *testing.T) {
    got := classifyEncoding(_SOF15) // lossless + differential + arithmetic
    if got != DifferentialArithmeticLossless {
        t.Fatalf("classifyEncoding(SOF15) = %v, want DifferentialArithmeticLossless", got)
    }
}

func TestPendingTablesCarryIntoNewFrame(t *testing.T) {
    jpg := &Desc{data: []byte{0xff, 0xd8}}
    jpg.colorTransform = adobeUnset
    jpg.pendingQdefs[0] = qdef{valid: true, size: 8}
    jpg.pendingRestartInterval = 7

    payload := []byte{8, 0, 1, 0, 1, 1, 1, 0x11, 0}
    sLen := uint(2 + len(payload))
    data := append([]byte{0xff, 0xc0, byte(sLen >> 8), byte(sLen)}, payload...)
    jpg.data = data
    jpg.state = _FRAME

    if err := jpg.startOfFrame(_SOF0, sLen); err != nil {
        t.Fatalf("startOfFrame: %v", err)
    }
    frm := jpg.getCurrentFrame()
    if !frm.qdefs[0].valid {
        t.Fatal("pending quantization table was not carried into the new frame")
    }
    if frm.restartInterval != 7 {
        t.Fatalf("restartInterval = %d, want 7 (carried from pending)", frm.restartInterval)
    }
}
