package jpeg

// Package-private JPEG arithmetic entropy decoder (ISO/IEC 10918-1 Annex D,
// the bit-oriented "QM-coder"). Structurally this is the same family of
// coder as the MQ-coder used by JPEG2000 (compare the mqState/NMPS/NLPS/
// SWITCH shape) but driven off ITU-T T.81's own Qe probability-estimation
// table rather than JPEG2000's.

// qeEntry is one row of the T.81 Table D.3 probability estimation state
// machine: the probability of the Least Probable Symbol, the next state on
// an LPS/MPS decision, and whether an LPS decision also flips which symbol
// is "more probable" for this context.
type qeEntry struct {
    qe           uint32
    nextLPS      uint8
    nextMPS      uint8
    switchSense  bool
}

var qeTable = [113]qeEntry{
    {0x5a1d, 1, 1, true}, {0x2586, 14, 2, false}, {0x1114, 16, 3, false},
    {0x080b, 18, 4, false}, {0x03d8, 20, 5, false}, {0x01da, 23, 6, false},
    {0x00e5, 25, 7, false}, {0x006f, 28, 8, false}, {0x0036, 30, 9, false},
    {0x001a, 33, 10, false}, {0x000d, 35, 11, false}, {0x0006, 9, 12, false},
    {0x0003, 10, 13, false}, {0x0001, 12, 13, false}, {0x5a7f, 15, 15, true},
    {0x3f25, 36, 16, false}, {0x2cf2, 38, 17, false}, {0x207c, 39, 18, false},
    {0x17b9, 40, 19, false}, {0x1182, 42, 20, false}, {0x0cef, 43, 21, false},
    {0x09a1, 45, 22, false}, {0x072f, 46, 23, false}, {0x055c, 48, 24, false},
    {0x0406, 49, 25, false}, {0x0303, 51, 26, false}, {0x0240, 52, 27, false},
    {0x01b1, 54, 28, false}, {0x0144, 56, 29, false}, {0x00f5, 57, 30, false},
    {0x00b7, 59, 31, false}, {0x008a, 60, 32, false}, {0x0068, 62, 33, false},
    {0x004e, 63, 34, false}, {0x003b, 32, 35, false}, {0x002c, 33, 9, false},
    {0x5ae1, 37, 37, true}, {0x484c, 64, 38, false}, {0x3a0d, 65, 39, false},
    {0x2ef1, 67, 40, false}, {0x261f, 68, 41, false}, {0x1f33, 69, 42, false},
    {0x19a8, 70, 43, false}, {0x1518, 72, 44, false}, {0x1177, 73, 45, false},
    {0x0e74, 74, 46, false}, {0x0bfb, 75, 47, false}, {0x09f8, 77, 48, false},
    {0x0861, 78, 49, false}, {0x0706, 79, 50, false}, {0x05cd, 48, 51, false},
    {0x04de, 50, 52, false}, {0x040f, 50, 53, false}, {0x0363, 51, 54, false},
    {0x02d4, 52, 55, false}, {0x025c, 53, 56, false}, {0x01f8, 54, 57, false},
    {0x01a4, 55, 58, false}, {0x0160, 56, 59, false}, {0x0125, 57, 60, false},
    {0x00f6, 58, 61, false}, {0x00cb, 59, 62, false}, {0x00ab, 61, 63, false},
    {0x008f, 61, 32, false}, {0x5b12, 65, 65, true}, {0x4d04, 80, 66, false},
    {0x412c, 81, 67, false}, {0x37d8, 82, 68, false}, {0x2fe8, 83, 69, false},
    {0x293c, 84, 70, false}, {0x2379, 86, 71, false}, {0x1edf, 87, 72, false},
    {0x1aa9, 87, 73, false}, {0x174e, 72, 74, false}, {0x1424, 72, 75, false},
    {0x119c, 74, 76, false}, {0x0f6b, 74, 77, false}, {0x0d51, 75, 78, false},
    {0x0bb6, 77, 79, false}, {0x0a40, 77, 48, false}, {0x5832, 80, 81, true},
    {0x4d1c, 88, 82, false}, {0x438e, 89, 83, false}, {0x3bdd, 90, 84, false},
    {0x34ee, 91, 85, false}, {0x2eae, 92, 86, false}, {0x299a, 93, 87, false},
    {0x2516, 86, 71, false}, {0x5570, 88, 89, true}, {0x4ca9, 95, 90, false},
    {0x44d9, 96, 91, false}, {0x3e22, 97, 92, false}, {0x3824, 99, 93, false},
    {0x32b4, 99, 94, false}, {0x2e17, 93, 86, false}, {0x56a8, 95, 96, true},
    {0x4f46, 101, 97, false}, {0x47e5, 102, 98, false}, {0x41cf, 103, 99, false},
    {0x3c3d, 104, 100, false}, {0x375e, 99, 93, false}, {0x5231, 105, 102, false},
    {0x4c0f, 106, 103, false}, {0x4639, 107, 104, false}, {0x415e, 103, 99, false},
    {0x5627, 105, 106, true}, {0x50e7, 108, 107, false}, {0x4b85, 109, 103, false},
    {0x5597, 110, 109, false}, {0x504f, 111, 107, false}, {0x5a10, 110, 111, true},
    {0x5522, 112, 109, false}, {0x59eb, 112, 111, true},
}

// acontext is one bin of arithmetic-coder state: an index into qeTable and
// the current sense of the More Probable Symbol for this context.
type acontext struct {
    index uint8
    mps   uint8
}

// adef holds the conditioning values and statistics bins of spec.md §3
// "Arithmetic Conditioning" for one destination: L,U for DC contexts (64
// bins covering the sign/magnitude-bucket context of the previous DC
// difference) and K for AC contexts (256 bins indexed by spectral position).
type adef struct {
    valid bool
    l, u  uint8 // DC conditioning bounds
    k     uint8 // AC conditioning bound

    dcStats [64]acontext
    acStats [256]acontext
}

func newAdef() *adef {
    return &adef{valid: true, l: 0, u: 1, k: 5}
}

// arithDecoder drives the Q-coder state machine (C, A, CT) over one
// entropy-coded segment, sharing the same byte-stuffing convention as the
// Huffman bit reader.
type arithDecoder struct {
    data []byte
    pos  int

    c  uint32
    a  uint32
    ct int

    fixedCtx acontext // the single no-context bin used for sign/uniform bits
}

func newArithDecoder(data []byte) *arithDecoder {
    d := &arithDecoder{data: data}
    d.init()
    return d
}

func (d *arithDecoder) nextByte() byte {
    if d.pos >= len(d.data) {
        return 0xff
    }
    b := d.data[d.pos]
    if b == 0xff {
        if d.pos+1 < len(d.data) && d.data[d.pos+1] == 0x00 {
            d.pos += 2
            return 0xff
        }
        // a real marker: stop advancing, feed 0xff padding (INITDEC/BYTEIN
        // behavior per T.81 Figure D.4/D.5)
        return 0xff
    }
    d.pos++
    return b
}

func (d *arithDecoder) byteIn() {
    if d.pos < len(d.data) && d.data[d.pos] == 0xff {
        if d.pos+1 < len(d.data) && d.data[d.pos+1] == 0x00 {
            d.c += 0xff00
            d.ct = 8
            d.pos += 2
            return
        }
        d.c += 0xff00
        d.ct = 8
        return
    }
    d.c += uint32(d.nextByte()) << 8
    d.ct = 8
}

func (d *arithDecoder) init() {
    b0 := d.nextByte()
    b1 := d.nextByte()
    d.c = uint32(b0)<<16 | uint32(b1)<<8
    d.byteIn()
    d.c <<= 7
    d.ct -= 7
    d.a = 0x8000
}

// restart re-initializes the decoder at the current byte position, as
// required after every RSTn in an arithmetic-coded scan.
func (d *arithDecoder) restart(fromPos int) {
    d.pos = fromPos
    d.init()
}

func (d *arithDecoder) renormalize() {
    for {
        if d.ct == 0 {
            d.byteIn()
        }
        d.a <<= 1
        d.c <<= 1
        d.ct--
        if d.a&0x8000 != 0 {
            break
        }
    }
}

// decodeBit implements the DECODE procedure of T.81 Figure D.2 against one
// context bin, returning the decoded bit and updating the bin's state.
func (d *arithDecoder) decodeBit(cx *acontext) uint8 {
    qe := qeTable[cx.index].qe
    d.a -= qe

    var bit uint8
    if (d.c >> 16) < qe {
        // LPS exchange (or MPS, if A < Qe after the subtraction path)
        if d.a < qe {
            bit = cx.mps
            cx.index = qeTable[cx.index].nextMPS
        } else {
            bit = 1 - cx.mps
            if qeTable[cx.index].switchSense {
                cx.mps = 1 - cx.mps
            }
            cx.index = qeTable[cx.index].nextLPS
        }
        d.a = qe
        d.renormalize()
        return bit
    }
    d.c -= qe << 16
    if d.a&0x8000 == 0 {
        if d.a < qe {
            bit = 1 - cx.mps
            if qeTable[cx.index].switchSense {
                cx.mps = 1 - cx.mps
            }
            cx.index = qeTable[cx.index].nextLPS
        } else {
            bit = cx.mps
            cx.index = qeTable[cx.index].nextMPS
        }
        d.renormalize()
        return bit
    }
    return cx.mps
}

// decodeFixed decodes a bit from the always-50/50 context used for sign
// bits and the uniform parts of magnitude coding.
func (d *arithDecoder) decodeFixed() uint8 {
    return d.decodeBit(&d.fixedCtx)
}
