package jpeg

// Arithmetic-coded counterparts of the six Huffman decode functions in
// decode_mcu.go. DC contexts are selected from the conditioning bucket of
// the previous DC difference's sign/magnitude (spec.md §4.3); AC contexts
// are selected by spectral position against the destination's K bound.

// dcContextIndex buckets one previous DC difference into one of the
// five classical JPEG arithmetic contexts (0: zero, 1/2: small
// positive/negative, 3/4: large positive/negative), following T.81 §F.1.4.4.1.
func dcContextIndex(prevDiff int32, a *adef) int {
    switch {
    case prevDiff == 0:
        return 0
    case prevDiff < 0:
        if -prevDiff <= int32(a.l) {
            return 2
        }
        return 4
    default:
        if prevDiff <= int32(a.u) {
            return 1
        }
        return 3
    }
}

func arithDecodeMagnitude(d *arithDecoder, stats []acontext, base int) (int32, uint8) {
    // decode the magnitude category (S) by walking a short unary chain,
    // then the extra (S-1) low-order bits via the fixed context.
    size := uint8(0)
    if d.decodeBit(&stats[base]) != 0 {
        size = 1
        for d.decodeBit(&stats[base+1+int(size)]) != 0 && size < 15 {
            size++
        }
    }
    if size == 0 {
        return 0, 0
    }
    var v int32 = 1
    for i := uint8(1); i < size; i++ {
        v = v<<1 | int32(d.decodeFixed())
    }
    if d.decodeFixed() != 0 {
        v = -v
    }
    return v, size
}

func arithDecodeMCU(ar *arithDecoder, frm *frame, c *scanComp, blk []int16) error {
    a := &frm.adefs[c.dcId]
    ctxBase := dcContextIndex(c.dcPredictor, a) * 4
    diff, _ := arithDecodeMagnitude(ar, a.dcStats[:], ctxBase)
    c.dcPredictor += diff
    blk[0] = int16(c.dcPredictor)

    acCtx := &frm.adefs[4+c.acId]
    k := 1
    for k < 64 {
        if ar.decodeBit(&acCtx.acStats[k]) == 0 {
            break // EOB
        }
        for ar.decodeBit(&acCtx.acStats[k+96]) == 0 {
            k++
            if k >= 64 {
                return nil
            }
        }
        v, _ := arithDecodeMagnitude(ar, acCtx.acStats[:], 128)
        blk[zigZagTable[k]] = int16(v)
        k++
    }
    return nil
}

func arithDCFirst(ar *arithDecoder, frm *frame, c *scanComp, blk []int16, al uint8) error {
    a := &frm.adefs[c.dcId]
    ctxBase := dcContextIndex(c.dcPredictor, a) * 4
    diff, _ := arithDecodeMagnitude(ar, a.dcStats[:], ctxBase)
    c.dcPredictor += diff
    blk[0] = int16(c.dcPredictor << al)
    return nil
}

func arithDCRefine(ar *arithDecoder, c *scanComp, blk []int16, al uint8) error {
    var ctx acontext
    bit := int16(ar.decodeBit(&ctx))
    blk[0] |= bit << al
    return nil
}

func arithACFirst(ar *arithDecoder, frm *frame, sc *scan, c *scanComp, blk []int16) error {
    acCtx := &frm.adefs[4+c.acId]
    al := sc.sABPl
    k := int(sc.startSS)
    for k <= int(sc.endSS) {
        if ar.decodeBit(&acCtx.acStats[k]) == 0 {
            break
        }
        for ar.decodeBit(&acCtx.acStats[k+96]) == 0 {
            k++
            if k > int(sc.endSS) {
                return nil
            }
        }
        v, _ := arithDecodeMagnitude(ar, acCtx.acStats[:], 128)
        blk[zigZagTable[k]] = int16(v << al)
        k++
    }
    return nil
}

func arithACRefine(ar *arithDecoder, frm *frame, sc *scan, c *scanComp, blk []int16) error {
    acCtx := &frm.adefs[4+c.acId]
    al := sc.sABPl
    p1 := int16(1) << al
    m1 := int16(-1) << al

    for k := int(sc.startSS); k <= int(sc.endSS); k++ {
        pos := zigZagTable[k]
        if blk[pos] != 0 {
            if ar.decodeBit(&acCtx.acStats[k+160]) != 0 && blk[pos]&p1 == 0 {
                if blk[pos] >= 0 {
                    blk[pos] += p1
                } else {
                    blk[pos] += m1
                }
            }
        } else if ar.decodeBit(&acCtx.acStats[k]) != 0 {
            if ar.decodeFixed() != 0 {
                blk[pos] = p1
            } else {
                blk[pos] = m1
            }
        }
    }
    return nil
}
