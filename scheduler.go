package jpeg

import (
    "golang.org/x/sync/errgroup"
    "golang.org/x/sys/cpu"
)

// errgroupPool is the default WorkerPool, wiring golang.org/x/sync/errgroup
// in place of a hand-rolled sync.WaitGroup + error channel (spec.md §6
// DOMAIN STACK): each task is one errgroup.Group.Go call, Wait joins them
// and surfaces the first error.
type errgroupPool struct {
    g       errgroup.Group
    workers int
}

// NewPool returns a WorkerPool backed by errgroup, limited to n concurrent
// tasks via errgroup's SetLimit (n <= 0 means unlimited, left to GOMAXPROCS
// scheduling by the Go runtime itself).
func NewPool(n int) WorkerPool {
    p := &errgroupPool{workers: n}
    if n > 0 {
        p.g.SetLimit(n)
    }
    return p
}

func (p *errgroupPool) Enqueue(task func() error) { p.g.Go(task) }
func (p *errgroupPool) Wait() error               { return p.g.Wait() }
func (p *errgroupPool) Workers() int              { return p.workers }

// sequentialPool runs every task inline; selected when Options.Pool is nil
// (spec.md §9 design note: "pool handed in at construction, with a default
// fall-back in glue outside the core").
type sequentialPool struct{ err error }

func (p *sequentialPool) Enqueue(task func() error) {
    if p.err == nil {
        p.err = task()
    }
}
func (p *sequentialPool) Wait() error { return p.err }
func (p *sequentialPool) Workers() int { return 1 }

// newCapabilities reads the runtime CPU feature bits (spec.md §6 "CPU
// feature bits") to pick between this core's portable integer kernels and
// a faster path; finishFrame hands the result to idctKernelFor, which
// resolves every combination to the portable kernel since only the
// portable kernels exist (SIMD is out of scope per spec.md §1).
func newCapabilities() CPUFeatures {
    return CPUFeatures{
        SSE41: cpu.X86.HasSSE41,
        AVX2:  cpu.X86.HasAVX2,
        ASIMD: cpu.ARM64.HasASIMD,
    }
}

// finishFrame runs the MCU scheduler of spec.md §4.8 against a frame whose
// coefficient arena is fully populated (either immediately, for a single
// sequential scan, or after the last progressive scan), producing pixels
// into dst. Tasks are always row bands sized max(ymcu/(4P), 1) MCU rows;
// restart intervals are not used as task boundaries (entropy decoding
// itself is already complete, serially, by the time finishFrame runs — see
// DESIGN.md on the restart-interval-parallel-entropy-decode simplification).
func (jpg *Desc) finishFrame(frm *frame, dst Surface) error {
    if frm.encodingMode() == Lossless {
        return jpg.renderLossless(frm, dst) // per-pixel predictors forbid band parallelism, spec.md §5
    }

    pool := jpg.Pool
    if pool == nil {
        pool = &sequentialPool{}
    }
    p := pool.Workers()
    if p <= 0 {
        p = 1
    }

    bandHeight := frm.ymcu / uint(4*p)
    if bandHeight < 1 {
        bandHeight = 1
    }

    kernel := idctKernelFor(jpg.capabilities)
    for bandStart := uint(0); bandStart < frm.ymcu; bandStart += bandHeight {
        start := bandStart
        end := start + bandHeight
        if end > frm.ymcu {
            end = frm.ymcu
        }
        pool.Enqueue(func() error {
            return jpg.renderMCURows(frm, dst, start, end, kernel)
        })
    }
    return pool.Wait()
}

// renderMCURows reconstructs and color-converts every MCU in rows
// [rowStart, rowEnd) of frm, writing into dst. This is the "writer is
// serial per task, disjoint bands across tasks" shape of spec.md §5.
func (jpg *Desc) renderMCURows(frm *frame, dst Surface, rowStart, rowEnd uint, kernel idctKernel) error {
    mcuW := int(frm.resolution.mhSF) * 8
    mcuH := int(frm.resolution.mvSF) * 8
    format := dst.Format()

    for mcuRow := rowStart; mcuRow < rowEnd; mcuRow++ {
        for mcuCol := uint(0); mcuCol < frm.xmcu; mcuCol++ {
            sample := mcuSample{mcuW: mcuW, mcuH: mcuH, transform: frm.colorTransformFor(jpg)}
            sample.planes = make([][]uint8, len(frm.components))

            for ci, comp := range frm.components {
                sc := frm.scanComponentFor(ci)
                if sc == nil {
                    sample.planes[ci] = make([]uint8, mcuW*mcuH)
                    continue
                }
                q := &frm.qdefs[comp.QS]
                subW := int(comp.HSF) * 8
                subH := int(comp.VSF) * 8
                plane := make([]uint8, subW*subH)
                for sub := uint8(0); sub < comp.HSF*comp.VSF; sub++ {
                    subRow := uint(sub / comp.HSF)
                    subCol := uint(sub % comp.HSF)
                    blockRow := mcuRow*uint(comp.VSF) + subRow
                    blockCol := mcuCol*uint(comp.HSF) + subCol
                    blk := frm.blockSlice(sc, blockCol, blockRow)
                    out := kernel(blk, q, frm.resolution.samplePrecision)
                    for r := 0; r < 8; r++ {
                        copy(plane[(int(subRow)*8+r)*subW+int(subCol)*8:][:8], out[r*8:r*8+8])
                    }
                }
                sample.planes[ci] = upsamplePlane(plane, subW, subH, mcuW, mcuH)
            }

            x0 := int(mcuCol) * mcuW
            y0 := int(mcuRow) * mcuH
            clipW, clipH := mcuW, mcuH
            if mcuCol == frm.xmcu-1 {
                clipW = int(frm.xclip)
            }
            if mcuRow == frm.ymcu-1 {
                clipH = int(frm.yclip)
            }
            convertMCU(dst.Bytes(), dst.Stride(), x0, y0, clipW, clipH, format, &sample)
        }
    }
    return nil
}

// renderLossless writes the reconstructed sample planes of a lossless
// frame (already full precision, no dequant/iDCT) directly into dst,
// serially, matching spec.md §5's "Lossless: serial" rule.
func (jpg *Desc) renderLossless(frm *frame, dst Surface) error {
    format := dst.Format()
    w, h := int(frm.resolution.nSamplesLine), int(frm.resolution.nLines)
    transform := frm.colorTransformFor(jpg)

    planes := make([][]uint8, len(frm.components))
    for ci, comp := range frm.components {
        subW := w * int(comp.HSF) / int(frm.resolution.mhSF)
        subH := h * int(comp.VSF) / int(frm.resolution.mvSF)
        src := frm.losslessOut[ci]
        plane := make([]uint8, subW*subH)
        for i := 0; i < len(plane) && i < len(src); i++ {
            plane[i] = clamp8(src[i])
        }
        planes[ci] = upsamplePlane(plane, subW, subH, w, h)
    }

    sample := mcuSample{mcuW: w, mcuH: h, planes: planes, transform: transform}
    convertMCU(dst.Bytes(), dst.Stride(), 0, 0, w, h, format, &sample)
    return nil
}

// scanComponentFor returns the last scan's binding for frame component ci,
// or nil if no scan covered it (a malformed or still-truncated stream).
func (frm *frame) scanComponentFor(ci int) *scanComp {
    for s := len(frm.scans) - 1; s >= 0; s-- {
        for i := range frm.scans[s].comps {
            if frm.scans[s].comps[i].compIndex == ci {
                return &frm.scans[s].comps[i]
            }
        }
    }
    return nil
}

// colorTransformFor resolves the Adobe transform byte, defaulting by
// component count when APP14 was absent (3 components: YCbCr, 4: CMYK
// with no transform, per common practice the teacher's format.go followed).
func (frm *frame) colorTransformFor(jpg *Desc) adobeTransform {
    if jpg.colorTransform != adobeUnset {
        return jpg.colorTransform
    }
    if len(frm.components) == 3 {
        return adobeTransformYCbCr
    }
    return adobeTransformUnknown
}
