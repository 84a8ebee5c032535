package jpeg

import (
    "errors"
    "fmt"
    "io"
)

// qdef is the Quantization Table of spec.md §3: up to 64 entries, 8- or
// 16-bit, stored in natural (non-zig-zag) order once loaded.
type qdef struct {
    valid  bool
    size   uint // 8 or 16
    values [64]uint16
}

// scanComp is the per-component state of one scan: which entropy tables
// back it, its position in the MCU grid, and its running DC predictor
// (spec.md §3 "Scan State").
type scanComp struct {
    compIndex int // index into frame.components
    hSF, vSF  uint8
    quId      uint8

    dcId, acId uint8 // Huffman/arithmetic destination selectors for this scan

    blocksPerLine, blocksPerCol uint // this component's own block grid
    arenaOffset                 uint // start of this component's region in frame.arena

    dcPredictor int32
}

// scan is one SOS segment's worth of state (spec.md §3 "Scan State"):
// spectral range, successive-approximation parameters, the bound
// components, and the restart/EOB bookkeeping the decode loop needs.
type scan struct {
    comps []scanComp

    startSS, endSS uint8
    sABPh, sABPl   uint8 // Ah, Al

    restartInterval uint
    eobRun          uint32

    // mcuPos is the linear MCU (or, for lossless, sample) position the scan
    // algorithm has reached. It persists across restart segments so a new
    // segment resumes the traversal instead of restarting it at (0,0),
    // matching mango's (original_source/) single continuous decode loop.
    mcuPos uint

    mode EncodingMode
}

func (s *scan) isDCScan() bool  { return s.startSS == 0 }
func (s *scan) isFirst() bool   { return s.sABPh == 0 }
func (s *scan) interleaved() bool { return s.isDCScan() && len(s.comps) > 1 || s.mode != ExtendedProgressive }

const fixedScanHeaderSize = 3 // nComps(1) + Ss/Se/Ah-Al(3) minus the nComps byte already counted elsewhere... kept for parity with teacher's constant

func getPointTransform(h, l uint8) uint8 { return l }

// blockSlice returns the 64 coefficients for one 8x8 block of a scan
// component, addressed by its position in that component's own block grid.
func (f *frame) blockSlice(sc *scanComp, col, row uint) []int16 {
    idx := (sc.arenaOffset + row*sc.blocksPerLine + col) * 64
    return f.arena[idx : idx+64]
}

func (jpg *Desc) processScanHeader(sLen uint, frm *frame, sc *scan) error {
    off := jpg.offset + 4
    if off >= uint(len(jpg.data)) {
        return fmt.Errorf("%w: truncated SOS", ErrBadHeader)
    }
    nComps := uint(jpg.data[off])
    off++
    if nComps < 1 || nComps > 4 {
        return fmt.Errorf("%w: SOS component count %d out of range", ErrBadHeader, nComps)
    }
    sc.comps = make([]scanComp, nComps)
    for i := uint(0); i < nComps; i++ {
        selector := jpg.data[off]
        tabSel := jpg.data[off+1]
        off += 2

        ci := -1
        for j, c := range frm.components {
            if c.Id == selector {
                ci = j
                break
            }
        }
        if ci == -1 {
            return fmt.Errorf("%w: SOS selector %d matches no frame component", ErrBadHeader, selector)
        }
        comp := frm.components[ci]
        var sCol, sRow, aOff uint
        sCol = frm.xmcu * uint(comp.HSF)
        sRow = frm.ymcu * uint(comp.VSF)
        for k := 0; k < ci; k++ {
            kc := frm.components[k]
            aOff += frm.xmcu * uint(kc.HSF) * frm.ymcu * uint(kc.VSF)
        }
        sc.comps[i] = scanComp{
            compIndex:     ci,
            hSF:           comp.HSF,
            vSF:           comp.VSF,
            quId:          comp.QS,
            dcId:          tabSel >> 4,
            acId:          tabSel & 0xf,
            blocksPerLine: sCol,
            blocksPerCol:  sRow,
            arenaOffset:   aOff,
        }
    }
    if off+3 > jpg.offset+2+sLen {
        return fmt.Errorf("%w: truncated SOS spectral selection", ErrBadHeader)
    }
    sc.startSS = jpg.data[off]
    sc.endSS = jpg.data[off+1]
    ahal := jpg.data[off+2]
    sc.sABPh = ahal >> 4
    sc.sABPl = ahal & 0xf
    sc.restartInterval = frm.restartInterval

    for _, c := range sc.comps {
        switch frm.encoding {
        case HuffmanBaselineSequential, HuffmanExtendedSequential, DifferentialHuffmanSequential:
            if !frm.hdefs[c.dcId].valid {
                return fmt.Errorf("%w: DC Huffman table %d not installed", ErrBadTable, c.dcId)
            }
            if !frm.hdefs[4+c.acId].valid {
                return fmt.Errorf("%w: AC Huffman table %d not installed", ErrBadTable, c.acId)
            }
        }
    }
    return nil
}

// allocateArena sizes the coefficient arena described in spec.md §3
// "Coefficient Arena": one contiguous array of signed 16-bit coefficients,
// sized to hold every component's full block grid, zero-initialized.
func (frm *frame) allocateArena() {
    var total uint
    for _, c := range frm.components {
        total += frm.xmcu * uint(c.HSF) * frm.ymcu * uint(c.VSF)
    }
    frm.arena = make([]int16, total*64)
}

// processScan handles one SOS: header, entropy-coded segment(s) separated
// by RSTn markers, and dispatch to the scan algorithm selected by mode
// (spec.md §4.5 table).
func (jpg *Desc) processScan(sLen uint) error {
    if jpg.state != _SCAN1 && jpg.state != _SCANn {
        return fmt.Errorf("%w: SOS in state %s", ErrBadHeader, jpg.getJPEGStateName())
    }
    frm := jpg.getCurrentFrame()
    if frm == nil {
        return fmt.Errorf("%w: SOS without a preceding SOFn", ErrBadHeader)
    }
    // every mode routes coefficients through the arena, including single-
    // scan baseline (spec.md §3 describes a thread-local scratch block as
    // an optimization for that case; per spec.md §9's guidance to prefer
    // the general path whenever in doubt, this core always uses the arena)
    if frm.arena == nil {
        frm.allocateArena()
    }

    sc := scan{}
    if err := jpg.processScanHeader(sLen, frm, &sc); err != nil {
        return jpgForwardError("processScan", err)
    }
    sc.mode = frm.encodingMode()
    frm.scans = append(frm.scans, sc)
    cur := &frm.scans[len(frm.scans)-1]

    if jpg.state == _SCAN1 {
        jpg.state = _SCAN1_ECS
    } else {
        jpg.state = _SCANn_ECS
    }
    jpg.offset += sLen + 2
    ecsStart := jpg.offset

    if frm.encoding >= ArithmeticExtendedSequential && frm.encoding <= DifferentialArithmeticLossless {
        if jpg.DisableArithmetic {
            return fmt.Errorf("%w: arithmetic coding disabled in this build", ErrUnsupported)
        }
    }

    segStart := ecsStart
    var br *bitReader
    var ar *arithDecoder
    arithmetic := frm.encoding >= ArithmeticExtendedSequential
    if arithmetic {
        ar = newArithDecoder(jpg.data[segStart:])
    } else {
        br = newBitReader(jpg.data[segStart:])
    }

    runDecode := func() error {
        for i := range cur.comps {
            cur.comps[i].dcPredictor = 0
        }
        cur.eobRun = 0
        return jpg.runScanAlgorithm(frm, cur, br, ar)
    }

    // segBase is the absolute offset the current br/ar was constructed
    // from; pos is recomputed from it after every decode attempt. The loop
    // below runs once per restart segment, resuming runScanAlgorithm's MCU
    // traversal from cur.mcuPos rather than rewinding it to (0,0).
    segBase := segStart
    pos := segBase
    lastRST := uint(7)

    for {
        err := runDecode()
        if br != nil {
            pos = segBase + uint(br.pos)
        } else {
            pos = segBase + uint(ar.pos)
        }

        if err == nil {
            break
        }
        if err != errRestartBoundary && !errors.Is(err, ErrCorruptEntropy) {
            return jpgForwardError("processScan", err)
        }

        // spec.md §7 point 5: corrupt entropy data is soft-recovered by
        // treating the next found FF Dn as a restart boundary, rather than
        // aborting the whole decode. A restart boundary that isn't where
        // expected (bit-starved count, stray bytes) recovers the same way.
        newPos, isRestart := jpg.resyncAfterScanError(pos, &lastRST)
        pos = newPos
        if !isRestart {
            break
        }
        segBase = pos
        if br != nil {
            br = newBitReader(jpg.data[segBase:])
        } else {
            ar = newArithDecoder(jpg.data[segBase:])
        }
    }

    jpg.offset = pos
    jpg.addSeg(&scanSegment{sc: cur})
    jpg.state = _SCANn
    return nil
}

// resyncAfterScanError locates the restart marker a scan algorithm stopped
// at, or, failing that, scans forward for the next marker in the stream
// (spec.md §7 point 5 soft recovery). isRestart reports whether newPos is a
// restart marker to resume decoding from (newPos already past it); when
// false, newPos is where the marker parser should take back over (possibly
// tLen, if the stream ends before any marker is found).
func (jpg *Desc) resyncAfterScanError(pos uint, lastRST *uint) (newPos uint, isRestart bool) {
    tLen := uint(len(jpg.data))
    if pos+1 < tLen && jpg.data[pos] == 0xff && jpg.data[pos+1] >= 0xd0 && jpg.data[pos+1] <= 0xd7 {
        rst := uint(jpg.data[pos+1] - 0xd0)
        if (*lastRST+1)%8 != rst {
            jpg.warnf("unexpected restart marker sequence (got %d, expected %d)", rst, (*lastRST+1)%8)
        }
        *lastRST = rst
        return pos + 2, true
    }

    mpos, marker, found := findNextMarker(jpg.data, pos)
    if !found {
        return tLen, false
    }
    if marker >= 0xd0 && marker <= 0xd7 {
        rst := uint(marker - 0xd0)
        jpg.warnf("corrupt entropy data; resynced at restart marker %d", rst)
        *lastRST = rst
        return mpos + 2, true
    }
    return mpos, false
}

// findNextMarker scans data[from:] for the next marker byte pair (0xff
// followed by a byte that is neither 0x00 nor 0xff, i.e. not stuffing or
// fill), returning its position and marker byte.
func findNextMarker(data []byte, from uint) (pos uint, marker byte, found bool) {
    tLen := uint(len(data))
    for i := from; i+1 < tLen; i++ {
        if data[i] == 0xff {
            m := data[i+1]
            if m != 0x00 && m != 0xff {
                return i, m, true
            }
        }
    }
    return 0, 0, false
}

type scanSegment struct{ sc *scan }

func (s *scanSegment) format(w io.Writer) (int, error) {
    return fmt.Fprintf(w, "  scan: %d component(s), Ss=%d Se=%d Ah=%d Al=%d\n",
        len(s.sc.comps), s.sc.startSS, s.sc.endSS, s.sc.sABPh, s.sc.sABPl)
}
