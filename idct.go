package jpeg

// Dequantization and inverse DCT (spec.md §4.6). Two precision paths share
// the same quantization step; the 8-bit path uses the AAN/Loeffler scaled
// integer factorization (the same even/odd-split butterfly IJG's jidctint.c
// uses), the 12-bit path scales its dequantized coefficients down by 4 bits
// and then runs the 8-bit path, producing 8-bit output (12-bit samples are
// not retained, spec.md §1 Non-goals). Both produce a row-major 8x8 block
// of clamped bytes, one per component.

const (
    idctFixBits = 13

    fix_0_298631336 = 2446
    fix_0_390180644 = 3196
    fix_0_541196100 = 4433
    fix_0_765366865 = 6270
    fix_0_899976223 = 7373
    fix_1_175875602 = 9633
    fix_1_501321110 = 12299
    fix_1_847759065 = 15137
    fix_1_961570560 = 16069
    fix_2_053119869 = 16819
    fix_2_562915447 = 20995
    fix_3_072711026 = 25172
)

// dequantBlock multiplies each natural-order coefficient by its
// quantization step; coefficients arrive already de-zig-zagged by the
// entropy decoder (blocks are stored in natural order, see dataUnit).
func dequantBlock(coeffs []int16, q *qdef, out *[64]int32) {
    for pos := 0; pos < 64; pos++ {
        out[pos] = int32(coeffs[pos]) * int32(q.values[pos])
    }
}

// idctButterfly runs the even/odd-split AAN butterfly over one row of 8
// samples (s0..s7, strided) and returns the 8 outputs in natural order,
// still carrying idctFixBits of fractional precision.
func idctButterfly(s [8]int32) (r [8]int32) {
    z1 := (s[2] + s[6]) * fix_0_541196100
    tmp2 := z1 - s[6]*fix_1_847759065
    tmp3 := z1 + s[2]*fix_0_765366865
    tmp0 := (s[0] + s[4]) << idctFixBits
    tmp1 := (s[0] - s[4]) << idctFixBits
    t10 := tmp0 + tmp3
    t13 := tmp0 - tmp3
    t11 := tmp1 + tmp2
    t12 := tmp1 - tmp2

    z1o := s[7] + s[1]
    z2o := s[5] + s[3]
    z3o := s[7] + s[3]
    z4o := s[5] + s[1]
    z5o := (z3o + z4o) * fix_1_175875602
    t0 := s[7] * fix_0_298631336
    t1 := s[5] * fix_2_053119869
    t2 := s[3] * fix_3_072711026
    t3 := s[1] * fix_1_501321110
    z1o = -z1o * fix_0_899976223
    z2o = -z2o * fix_2_562915447
    z3o = -z3o*fix_1_961570560 + z5o
    z4o = -z4o*fix_0_390180644 + z5o
    t0 += z1o + z3o
    t1 += z2o + z4o
    t2 += z2o + z3o
    t3 += z1o + z4o

    r[0] = t10 + t3
    r[7] = t10 - t3
    r[1] = t11 + t2
    r[6] = t11 - t2
    r[2] = t12 + t1
    r[5] = t12 - t1
    r[3] = t13 + t0
    r[4] = t13 - t0
    return
}

func clampSample(v int32) uint8 {
    v += 128
    if v < 0 {
        return 0
    }
    if v > 255 {
        return 255
    }
    return uint8(v)
}

// idct8x8 applies the butterfly down each column, then across each row.
// The column pass is descaled by idctFixBits-2 (keeping 2 extra bits of
// precision) so the row pass stays within int32; the row pass descales by
// idctFixBits+2, plus 3 for the implicit /8 DCT-III normalization, and
// clamps with a 128 level shift.
func idct8x8(in *[64]int32, out *[64]uint8) {
    var col [64]int32
    for c := 0; c < 8; c++ {
        var s [8]int32
        for r := 0; r < 8; r++ {
            s[r] = in[r*8+c]
        }
        res := idctButterfly(s)
        for r := 0; r < 8; r++ {
            col[r*8+c] = res[r] >> (idctFixBits - 2)
        }
    }
    const shift = idctFixBits + 2 + 3
    for r := 0; r < 8; r++ {
        var s [8]int32
        for c := 0; c < 8; c++ {
            s[c] = col[r*8+c]
        }
        res := idctButterfly(s)
        for c := 0; c < 8; c++ {
            out[r*8+c] = clampSample(res[c] >> shift)
        }
    }
}

// idctBlock12 is the entry point for 12-bit samples: it shifts each
// dequantized coefficient right by 4 bits, bringing the block to the 8-bit
// sample range, and runs the 8-bit path, so the output is 8-bit.
func idctBlock12(in *[64]int32, out *[64]uint8) {
    var scaled [64]int32
    for i, v := range in {
        scaled[i] = v >> 4
    }
    idct8x8(&scaled, out)
}

// reconstructBlock runs dequant+iDCT for one component's 8x8 coefficient
// block, selecting the 8- or 12-bit path by the frame's sample precision.
func reconstructBlock(coeffs []int16, q *qdef, precision uint8) [64]uint8 {
    var deq [64]int32
    dequantBlock(coeffs, q, &deq)
    var out [64]uint8
    if precision > 8 {
        idctBlock12(&deq, &out)
    } else {
        idct8x8(&deq, &out)
    }
    return out
}

// idctKernel is the dequant+iDCT function signature both the portable
// kernel and a future SIMD-accelerated one would implement.
type idctKernel func(coeffs []int16, q *qdef, precision uint8) [64]uint8

// idctKernelFor selects the dequant+iDCT kernel for this decode's observed
// CPUFeatures (spec.md §6/§9 capability-record dispatch). Only the portable
// integer kernel exists today, so every feature combination resolves to it;
// this is the registration point a vectorized kernel would hook into.
func idctKernelFor(caps CPUFeatures) idctKernel {
    switch {
    case caps.AVX2 || caps.SSE41 || caps.ASIMD:
        return reconstructBlock
    default:
        return reconstructBlock
    }
}
