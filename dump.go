package jpeg

import (
    "fmt"
    "io"
)

// Dump prints the recorded frame (SOFn) and scan (SOS) segments in stream
// order, for diagnostics; table, APPn and other marker segments are not
// listed. Purely a read-only report
// over already-parsed structures; it does not affect decoding.
func (jpg *Desc) Dump(w io.Writer) (n int, err error) {
    var np int
    for _, s := range jpg.segments {
        np, err = s.format(w)
        if err != nil {
            return
        }
        n += np
    }
    return
}

// FrameInfo summarizes one parsed frame: its encoding mode, entropy
// coding, sample precision and component list.
type FrameInfo struct {
    Mode       EncodingMode
    Entropy    EntropyCoding
    SampleSize uint
    Width      uint
    Height     uint
    Components []Component
}

func (f *frame) entropyCoding() EntropyCoding {
    if f.encoding >= ArithmeticExtendedSequential {
        return ArithmeticCoding
    }
    return HuffmanCoding
}

// GetFrameInfo returns encoding information about a specific frame,
// identified by index (0 for every non-hierarchical image this core
// decodes; spec.md §1 excludes hierarchical/DHP).
func (jpg *Desc) GetFrameInfo(fi uint) (*FrameInfo, error) {
    if fi >= uint(len(jpg.frames)) {
        return nil, fmt.Errorf("%w: frame %d is absent", ErrBadHeader, fi)
    }
    frm := &jpg.frames[fi]
    info := &FrameInfo{
        Mode:       frm.encodingMode(),
        Entropy:    frm.entropyCoding(),
        SampleSize: uint(frm.resolution.samplePrecision),
        Width:      uint(frm.resolution.nSamplesLine),
        Height:     uint(frm.resolution.nLines),
        Components: append([]Component(nil), frm.components...),
    }
    return info, nil
}
