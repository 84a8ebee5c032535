package jpeg

import (
    "fmt"
    "io"
)

// startOfFrame implements spec.md §4.4 SOFn: reads precision, dimensions,
// component count and sampling factors, classifies the encoding, and
// computes Hmax/Vmax/blocksInMCU/xmcu/ymcu/xclip/yclip.
func (jpg *Desc) startOfFrame(marker, sLen uint) error {
    if jpg.state != _FRAME && jpg.state != _APPLICATION {
        return fmt.Errorf("%w: %s in state %s", ErrBadHeader, getJPEGmarkerName(marker), jpg.getJPEGStateName())
    }
    off := jpg.offset + 4
    if off+5 >= uint(len(jpg.data)) {
        return fmt.Errorf("%w: truncated SOFn", ErrBadHeader)
    }
    precision := jpg.data[off]
    nLines := uint16(jpg.data[off+1])<<8 | uint16(jpg.data[off+2])
    nSamples := uint16(jpg.data[off+3])<<8 | uint16(jpg.data[off+4])
    nComps := uint(jpg.data[off+5])
    off += 6

    if precision != 8 && precision != 12 && precision != 2 && precision != 16 {
        return fmt.Errorf("%w: unsupported sample precision %d", ErrBadHeader, precision)
    }
    if nComps < 1 || nComps > 4 {
        return fmt.Errorf("%w: component count %d out of range", ErrBadHeader, nComps)
    }
    if nSamples == 0 {
        return fmt.Errorf("%w: zero-width image", ErrBadHeader)
    }

    frm := frame{id: uint(len(jpg.frames)), image: jpg}
    frm.resolution.samplePrecision = precision
    frm.resolution.nLines = nLines
    frm.resolution.nSamplesLine = nSamples

    frm.components = make([]Component, nComps)
    var hmax, vmax uint8 = 1, 1
    for i := uint(0); i < nComps; i++ {
        id := jpg.data[off]
        sf := jpg.data[off+1]
        qs := jpg.data[off+2]
        off += 3
        hsf := sf >> 4
        vsf := sf & 0xf
        if hsf == 0 || hsf > 8 || vsf == 0 || vsf > 8 {
            return fmt.Errorf("%w: sampling factor %d,%d out of range", ErrBadHeader, hsf, vsf)
        }
        if qs > 3 {
            return fmt.Errorf("%w: quantization selector %d out of range", ErrBadHeader, qs)
        }
        frm.components[i] = Component{Id: id, HSF: hsf, VSF: vsf, QS: qs}
        if hsf > hmax {
            hmax = hsf
        }
        if vsf > vmax {
            vmax = vsf
        }
    }
    frm.resolution.mhSF = hmax
    frm.resolution.mvSF = vmax

    var blocks uint
    for _, c := range frm.components {
        blocks += uint(c.HSF) * uint(c.VSF)
    }
    if blocks > 10 {
        return fmt.Errorf("%w: blocks per MCU %d exceeds 10", ErrBadHeader, blocks)
    }
    frm.blocksInMCU = blocks

    mcuW := uint(hmax) * 8
    mcuH := uint(vmax) * 8
    frm.xmcu = (uint(nSamples) + mcuW - 1) / mcuW
    frm.ymcu = (uint(nLines) + mcuH - 1) / mcuH
    frm.xclip = uint(nSamples) - (frm.xmcu-1)*mcuW
    frm.yclip = uint(nLines) - (frm.ymcu-1)*mcuH
    if frm.xmcu == 0 {
        frm.xmcu = 1
    }
    if frm.ymcu == 0 {
        frm.ymcu = 1
    }

    frm.encoding = classifyEncoding(marker)
    frm.qdefs = jpg.pendingQdefs
    for i, h := range jpg.pendingHdefs {
        if h != nil {
            frm.hdefs[i] = *h
        }
    }
    for i, a := range jpg.pendingAdefs {
        if a != nil {
            frm.adefs[i] = *a
        }
    }
    frm.restartInterval = jpg.pendingRestartInterval

    jpg.process = framing(frm.encoding)
    jpg.frames = append(jpg.frames, frm)
    jpg.state = _SCAN1
    jpg.addSeg(&sofSegment{&jpg.frames[len(jpg.frames)-1]})
    return nil
}

func classifyEncoding(marker uint) Encoding {
    progressive := isProgressiveSOF(marker)
    lossless := isLosslessSOF(marker)
    differential := isDifferentialSOF(marker)
    arithmetic := isArithmeticSOF(marker)

    var base Encoding
    switch {
    case lossless:
        base = HuffmanLossless
    case progressive:
        base = HuffmanProgressive
    case marker == _SOF0:
        base = HuffmanBaselineSequential
    default:
        base = HuffmanExtendedSequential
    }
    if arithmetic {
        base += ArithmeticExtendedSequential - HuffmanExtendedSequential
    }
    if differential {
        switch base {
        case HuffmanBaselineSequential, HuffmanExtendedSequential:
            base = DifferentialHuffmanSequential
        case HuffmanProgressive:
            base = DifferentialHuffmanProgressive
        case HuffmanLossless:
            base = DifferentialHuffmanLossless
        case ArithmeticExtendedSequential:
            base = DifferentialArithmeticSequential
        case ArithmeticProgressive:
            base = DifferentialArithmeticProgressive
        case ArithmeticLossless:
            base = DifferentialArithmeticLossless
        }
    }
    return base
}

type sofSegment struct{ f *frame }

func (s *sofSegment) format(w io.Writer) (int, error) {
    return fmt.Fprintf(w, "frame: %s, %dx%d, %d component(s)\n",
        encodingString(s.f.encoding), s.f.resolution.nSamplesLine, s.f.resolution.nLines, len(s.f.components))
}

// defineQuantizationTable implements spec.md §4.4 DQT.
func (jpg *Desc) defineQuantizationTable(sLen uint) error {
    off := jpg.offset + 4
    end := jpg.offset + 2 + sLen
    for off < end {
        pqTq := jpg.data[off]
        off++
        pq := pqTq >> 4
        tq := pqTq & 0xf
        if pq > 1 {
            return fmt.Errorf("%w: DQT precision %d out of range", ErrBadTable, pq)
        }
        if tq > 3 {
            return fmt.Errorf("%w: DQT destination %d out of range", ErrBadTable, tq)
        }
        var q qdef
        q.valid = true
        if pq == 0 {
            q.size = 8
            if off+64 > end {
                return fmt.Errorf("%w: truncated DQT", ErrBadTable)
            }
            for i := 0; i < 64; i++ {
                q.values[zigZagTable[i]] = uint16(jpg.data[off+uint(i)])
            }
            off += 64
        } else {
            q.size = 16
            if off+128 > end {
                return fmt.Errorf("%w: truncated DQT", ErrBadTable)
            }
            for i := 0; i < 64; i++ {
                q.values[zigZagTable[i]] = uint16(jpg.data[off+uint(i)*2])<<8 | uint16(jpg.data[off+uint(i)*2+1])
            }
            off += 128
        }
        // installed globally; applies to the current and all subsequent
        // frames until overwritten, per spec.md §3 "Quantization Table"
        if f := jpg.getCurrentFrame(); f != nil {
            f.qdefs[tq] = q
        }
        jpg.pendingQdefs[tq] = q
    }
    return nil
}

// defineHuffmanTable implements spec.md §4.4 DHT and rebuilds the
// acceleration tables of §4.2 whenever a destination is reinstalled.
func (jpg *Desc) defineHuffmanTable(sLen uint) error {
    off := jpg.offset + 4
    end := jpg.offset + 2 + sLen
    for off < end {
        tcTh := jpg.data[off]
        off++
        tc := tcTh >> 4
        th := tcTh & 0xf
        if tc > 1 || th > 3 {
            return fmt.Errorf("%w: DHT class/destination %d/%d out of range", ErrBadTable, tc, th)
        }
        if off+16 > end {
            return fmt.Errorf("%w: truncated DHT", ErrBadTable)
        }
        var bits [17]int
        total := 0
        for l := 1; l <= 16; l++ {
            bits[l] = int(jpg.data[off+uint(l-1)])
            total += bits[l]
        }
        off += 16
        if off+uint(total) > end {
            return fmt.Errorf("%w: truncated DHT symbol list", ErrBadTable)
        }
        values := make([]uint8, total)
        copy(values, jpg.data[off:off+uint(total)])
        off += uint(total)

        h := buildHuffmanTable(bits, values)
        idx := th
        if tc == 1 {
            idx = 4 + th
        }
        jpg.pendingHdefs[idx] = h
        if f := jpg.getCurrentFrame(); f != nil {
            f.hdefs[idx] = *h
        }
    }
    return nil
}

// defineArithmeticConditioning implements spec.md §4.4 DAC.
func (jpg *Desc) defineArithmeticConditioning(sLen uint) error {
    off := jpg.offset + 4
    end := jpg.offset + 2 + sLen
    for off+1 < end {
        tcTb := jpg.data[off]
        val := jpg.data[off+1]
        off += 2
        tc := tcTb >> 4
        tb := tcTb & 0xf
        if tc > 1 || tb > 3 {
            return fmt.Errorf("%w: DAC class/destination %d/%d out of range", ErrBadTable, tc, tb)
        }
        idx := tb
        if tc == 1 {
            idx = 4 + tb
        }
        if jpg.pendingAdefs[idx] == nil {
            jpg.pendingAdefs[idx] = newAdef()
        }
        a := jpg.pendingAdefs[idx]
        if tc == 0 {
            a.l = val & 0xf
            a.u = val >> 4
        } else {
            a.k = val
        }
        if f := jpg.getCurrentFrame(); f != nil {
            f.adefs[idx] = *a
        }
    }
    return nil
}

// defineRestartInterval implements spec.md §4.4 DRI.
func (jpg *Desc) defineRestartInterval(sLen uint) error {
    off := jpg.offset + 4
    if off+1 >= uint(len(jpg.data)) {
        return fmt.Errorf("%w: truncated DRI", ErrBadTable)
    }
    interval := uint(jpg.data[off])<<8 | uint(jpg.data[off+1])
    jpg.pendingRestartInterval = interval
    if f := jpg.getCurrentFrame(); f != nil {
        f.restartInterval = interval
    }
    return nil
}

// defineNumberOfLines implements spec.md §4.4 DNL: may tighten ysize
// post-hoc when the SOFn line count was left as 0.
func (jpg *Desc) defineNumberOfLines(sLen uint) error {
    off := jpg.offset + 4
    if off+1 >= uint(len(jpg.data)) {
        return fmt.Errorf("%w: truncated DNL", ErrBadTable)
    }
    lines := uint16(jpg.data[off])<<8 | uint16(jpg.data[off+1])
    if f := jpg.getCurrentFrame(); f != nil && f.resolution.nLines == 0 {
        f.resolution.nLines = lines
    }
    return nil
}
