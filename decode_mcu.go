package jpeg

import "errors"

// errRestartBoundary is returned internally by the scan algorithms when the
// restart-interval MCU counter reaches zero; it is not a decode failure, it
// just tells processScan to go look for the next RSTn.
var errRestartBoundary = errors.New("jpeg: restart boundary reached")

func (f *frame) encodingMode() EncodingMode {
    switch f.encoding {
    case HuffmanBaselineSequential:
        return BaselineSequential
    case HuffmanExtendedSequential, DifferentialHuffmanSequential,
        ArithmeticExtendedSequential, DifferentialArithmeticSequential:
        return ExtendedSequential
    case HuffmanProgressive, DifferentialHuffmanProgressive,
        ArithmeticProgressive, DifferentialArithmeticProgressive:
        return ExtendedProgressive
    case HuffmanLossless, DifferentialHuffmanLossless,
        ArithmeticLossless, DifferentialArithmeticLossless:
        return Lossless
    }
    return BaselineSequential
}

// runScanAlgorithm dispatches to one of the four scan algorithms of
// spec.md §4.5: sequential/multiscan MCU loop, progressive DC/AC passes, or
// the lossless per-sample predictor loop.
func (jpg *Desc) runScanAlgorithm(frm *frame, sc *scan, br *bitReader, ar *arithDecoder) error {
    if frm.encodingMode() == Lossless {
        return jpg.runLosslessScan(frm, sc, br, ar)
    }
    if sc.isDCScan() {
        return jpg.runInterleavedScan(frm, sc, br, ar)
    }
    return jpg.runNonInterleavedACScan(frm, sc, br, ar)
}

// runInterleavedScan walks the full MCU grid, decoding each component's
// hSF*vSF blocks per MCU in raster order. Used for baseline/sequential
// single-scan and multiscan frames, and for progressive DC (first+refine)
// scans, which are always interleaved per ISO/IEC 10918-1.
func (jpg *Desc) runInterleavedScan(frm *frame, sc *scan, br *bitReader, ar *arithDecoder) error {
    rstCounter := sc.restartInterval
    total := frm.xmcu * frm.ymcu
    for sc.mcuPos < total {
        mcuRow := sc.mcuPos / frm.xmcu
        mcuCol := sc.mcuPos % frm.xmcu
        for ci := range sc.comps {
            c := &sc.comps[ci]
            for sub := uint8(0); sub < c.hSF*c.vSF; sub++ {
                subRow := uint(sub / c.hSF)
                subCol := uint(sub % c.hSF)
                blockRow := mcuRow*uint(c.vSF) + subRow
                blockCol := mcuCol*uint(c.hSF) + subCol
                blk := frm.blockSlice(c, blockCol, blockRow)
                if err := jpg.decodeOneBlock(frm, sc, c, blk, br, ar); err != nil {
                    return err
                }
            }
        }
        sc.mcuPos++
        if sc.restartInterval > 0 {
            rstCounter--
            if rstCounter == 0 {
                return errRestartBoundary
            }
        }
    }
    return nil
}

// runNonInterleavedACScan walks a single component's own block grid; used
// only by progressive AC (first+refine) scans, which ISO/IEC 10918-1
// requires to cover exactly one component.
func (jpg *Desc) runNonInterleavedACScan(frm *frame, sc *scan, br *bitReader, ar *arithDecoder) error {
    c := &sc.comps[0]
    rstCounter := sc.restartInterval
    total := c.blocksPerLine * c.blocksPerCol
    for sc.mcuPos < total {
        row := sc.mcuPos / c.blocksPerLine
        col := sc.mcuPos % c.blocksPerLine
        blk := frm.blockSlice(c, col, row)
        if err := jpg.decodeOneBlock(frm, sc, c, blk, br, ar); err != nil {
            return err
        }
        sc.mcuPos++
        if sc.restartInterval > 0 {
            rstCounter--
            if rstCounter == 0 {
                return errRestartBoundary
            }
        }
    }
    return nil
}

// decodeOneBlock dispatches to the correct one of the six decode functions
// of spec.md §4.2/§4.3 selected by the SOS mode table.
func (jpg *Desc) decodeOneBlock(frm *frame, sc *scan, c *scanComp, blk []int16, br *bitReader, ar *arithDecoder) error {
    arithmetic := ar != nil
    switch {
    case frm.encodingMode() != ExtendedProgressive:
        if arithmetic {
            return arithDecodeMCU(ar, frm, c, blk)
        }
        return huffDecodeMCU(br, frm, c, blk)
    case sc.isDCScan() && sc.isFirst():
        if arithmetic {
            return arithDCFirst(ar, frm, c, blk, sc.sABPl)
        }
        return huffDCFirst(br, frm, c, blk, sc.sABPl)
    case sc.isDCScan() && !sc.isFirst():
        if arithmetic {
            return arithDCRefine(ar, c, blk, sc.sABPl)
        }
        return huffDCRefine(br, c, blk, sc.sABPl)
    case !sc.isDCScan() && sc.isFirst():
        if arithmetic {
            return arithACFirst(ar, frm, sc, c, blk)
        }
        return huffACFirst(br, frm, sc, c, blk)
    default:
        if arithmetic {
            return arithACRefine(ar, frm, sc, c, blk)
        }
        return huffACRefine(br, frm, sc, c, blk)
    }
}

// --- Huffman decode functions (spec.md §4.2) ---

func huffDecodeMCU(br *bitReader, frm *frame, c *scanComp, blk []int16) error {
    dcTab := &frm.hdefs[c.dcId]
    acTab := &frm.hdefs[4+c.acId]

    s, err := decodeSymbol(br, dcTab)
    if err != nil {
        return err
    }
    diff := receiveExtend(br, s)
    c.dcPredictor += diff
    blk[0] = int16(c.dcPredictor)

    k := 1
    for k < 64 {
        rs, err := decodeSymbol(br, acTab)
        if err != nil {
            return err
        }
        run := int(rs >> 4)
        size := rs & 0xf
        if size == 0 {
            if run == 15 {
                k += 16 // ZRL
                continue
            }
            break // EOB
        }
        k += run
        if k >= 64 {
            break
        }
        blk[zigZagTable[k]] = int16(receiveExtend(br, size))
        k++
    }
    return nil
}

func huffDecodeMCULossless(br *bitReader, predictorBits uint8, dcTab *hdef) (int32, error) {
    s, err := decodeSymbol(br, dcTab)
    if err != nil {
        return 0, err
    }
    return receiveExtend(br, s), nil
}

func huffDCFirst(br *bitReader, frm *frame, c *scanComp, blk []int16, al uint8) error {
    dcTab := &frm.hdefs[c.dcId]
    s, err := decodeSymbol(br, dcTab)
    if err != nil {
        return err
    }
    diff := receiveExtend(br, s)
    c.dcPredictor += diff
    blk[0] = int16(c.dcPredictor << al)
    return nil
}

func huffDCRefine(br *bitReader, c *scanComp, blk []int16, al uint8) error {
    bit := int16(br.getBit())
    blk[0] |= bit << al
    return nil
}

func huffACFirst(br *bitReader, frm *frame, sc *scan, c *scanComp, blk []int16) error {
    acTab := &frm.hdefs[4+c.acId]
    al := sc.sABPl

    if sc.eobRun > 0 {
        sc.eobRun--
        return nil
    }
    k := int(sc.startSS)
    for k <= int(sc.endSS) {
        rs, err := decodeSymbol(br, acTab)
        if err != nil {
            return err
        }
        run := int(rs >> 4)
        size := rs & 0xf
        if size == 0 {
            if run < 15 {
                sc.eobRun = (uint32(1) << run) - 1
                if run > 0 {
                    sc.eobRun += br.getBits(uint(run))
                }
                break
            }
            k += 16 // ZRL
            continue
        }
        k += run
        if k > int(sc.endSS) {
            break
        }
        blk[zigZagTable[k]] = int16(receiveExtend(br, size) << al)
        k++
    }
    return nil
}

// huffACRefine implements the progressive AC refinement state machine of
// spec.md §4.2: walk the band, nudging existing non-zero coefficients by
// +-1<<Al while placing newly-arrived non-zeros from the bitstream.
func huffACRefine(br *bitReader, frm *frame, sc *scan, c *scanComp, blk []int16) error {
    acTab := &frm.hdefs[4+c.acId]
    al := sc.sABPl
    p1 := int16(1) << al
    m1 := int16(-1) << al

    k := int(sc.startSS)
    if sc.eobRun == 0 {
        for k <= int(sc.endSS) {
            rs, err := decodeSymbol(br, acTab)
            if err != nil {
                return err
            }
            run := int(rs >> 4)
            size := rs & 0xf
            var value int16
            if size != 0 {
                // size is always 1 in refinement scans; the single bit
                // selects +1<<Al or -1<<Al
                if br.getBit() != 0 {
                    value = p1
                } else {
                    value = m1
                }
            } else if run < 15 {
                sc.eobRun = uint32(1) << run
                if run > 0 {
                    sc.eobRun += br.getBits(uint(run))
                }
                break
            }

            for k <= int(sc.endSS) {
                pos := zigZagTable[k]
                if blk[pos] != 0 {
                    if br.getBit() != 0 && blk[pos]&p1 == 0 {
                        if blk[pos] >= 0 {
                            blk[pos] += p1
                        } else {
                            blk[pos] += m1
                        }
                    }
                } else {
                    if run == 0 {
                        if value != 0 {
                            blk[pos] = value
                        }
                        k++
                        break
                    }
                    run--
                }
                k++
            }
        }
    }
    if sc.eobRun > 0 {
        for ; k <= int(sc.endSS); k++ {
            pos := zigZagTable[k]
            if blk[pos] != 0 {
                if br.getBit() != 0 && blk[pos]&p1 == 0 {
                    if blk[pos] >= 0 {
                        blk[pos] += p1
                    } else {
                        blk[pos] += m1
                    }
                }
            }
        }
        sc.eobRun--
    }
    return nil
}
