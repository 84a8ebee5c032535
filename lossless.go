package jpeg

// runLosslessScan implements spec.md §4.5 "Lossless": per-pixel predictor
// selection among predictors 0..7, reset to 1<<(precision-pointTransform-1)
// at the top-left corner and after every restart. Lossless scans are always
// serial: predictors depend on the immediately preceding sample, forbidding
// band-level parallelism (spec.md §5).
func (jpg *Desc) runLosslessScan(frm *frame, sc *scan, br *bitReader, ar *arithDecoder) error {
    predictor := sc.startSS // the Ss field is repurposed as predictor selector
    pointTransform := sc.sABPl

    if frm.losslessOut == nil {
        frm.losslessOut = make([][]int32, len(frm.components))
        for i, c := range frm.components {
            w := uint(frm.resolution.nSamplesLine) * uint(c.HSF) / uint(frm.resolution.mhSF)
            h := uint(frm.resolution.nLines) * uint(c.VSF) / uint(frm.resolution.mvSF)
            frm.losslessOut[i] = make([]int32, w*h)
        }
    }

    defaultPred := int32(1) << (frm.resolution.samplePrecision - pointTransform - 1)
    rstCounter := sc.restartInterval
    segFirst := sc.mcuPos // first sample position of this restart segment

    width := func(ci int) uint {
        c := frm.components[ci]
        return uint(frm.resolution.nSamplesLine) * uint(c.HSF) / uint(frm.resolution.mhSF)
    }
    height := func(ci int) uint {
        c := frm.components[ci]
        return uint(frm.resolution.nLines) * uint(c.VSF) / uint(frm.resolution.mvSF)
    }

    maxW, maxH := uint(0), uint(0)
    for i := range sc.comps {
        ci := sc.comps[i].compIndex
        if w := width(ci); w > maxW {
            maxW = w
        }
        if h := height(ci); h > maxH {
            maxH = h
        }
    }

    // sc.mcuPos is the linear sample position (row*maxW+col); it persists
    // across restart segments so a new segment resumes traversal instead of
    // restarting at the top-left corner (spec.md §8 scenario 4).
    total := maxW * maxH
    for sc.mcuPos < total {
        row := sc.mcuPos / maxW
        col := sc.mcuPos % maxW
        for i := range sc.comps {
            sci := &sc.comps[i]
            ci := sci.compIndex
            w, h := width(ci), height(ci)
            if row >= h || col >= w {
                continue
            }
            out := frm.losslessOut[ci]

            var a, b, c int32
            haveA, haveB, haveC := col > 0, row > 0, row > 0 && col > 0
            if haveA {
                a = out[row*w+col-1]
            }
            if haveB {
                b = out[(row-1)*w+col]
            }
            if haveC {
                c = out[(row-1)*w+col-1]
            }

            var pred int32
            switch {
            case row == 0 && col == 0, sc.mcuPos == segFirst:
                pred = defaultPred
            case row == 0:
                pred = a
            case col == 0:
                pred = b
            default:
                switch predictor {
                case 0:
                    pred = 0
                case 1:
                    pred = a
                case 2:
                    pred = b
                case 3:
                    pred = c
                case 4:
                    pred = a + b - c
                case 5:
                    pred = a + (b-c)/2
                case 6:
                    pred = b + (a-c)/2
                case 7:
                    pred = (a + b) / 2
                }
            }

            var diff int32
            var err error
            if ar != nil {
                a := &frm.adefs[sci.dcId]
                ctxBase := dcContextIndex(sci.dcPredictor, a) * 4
                diff, _ = arithDecodeMagnitude(ar, a.dcStats[:], ctxBase)
            } else {
                diff, err = huffDecodeMCULossless(br, 0, &frm.hdefs[sci.dcId])
                if err != nil {
                    return err
                }
            }
            out[row*w+col] = (pred + diff) << pointTransform
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
