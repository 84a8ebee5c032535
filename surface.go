package jpeg

// Collaborator contracts of spec.md §6/§9, implemented as Go interfaces so
// the core never depends on a concrete image-I/O framework.

// Surface is the output pixel buffer the decoder writes into: a flat byte
// slice addressed by (x, y), a byte stride, a pixel format, and a blit
// operation used when the caller's target surface differs in size or
// format from the image's natural one (spec.md §6 Decode).
type Surface interface {
    Address(x, y int) int // byte offset of pixel (x,y) into Bytes()
    Bytes() []byte
    Stride() int
    Format() PixelFormat
    Width() int
    Height() int
    Blit(x, y int, src Surface) error
}

// rawSurface is the in-package Surface implementation backing both the
// caller's target and the decoder's internal natural-format intermediate
// (spec.md §6: "allocates an internal surface of the natural format,
// decodes there, and blits into the target").
type rawSurface struct {
    data   []byte
    stride int
    format PixelFormat
    w, h   int
}

func newRawSurface(w, h int, format PixelFormat) *rawSurface {
    bpp := format.bytesPerPixel()
    s := &rawSurface{w: w, h: h, format: format, stride: w * bpp}
    s.data = make([]byte, s.stride*h)
    return s
}

func (s *rawSurface) Address(x, y int) int    { return y*s.stride + x*s.format.bytesPerPixel() }
func (s *rawSurface) Bytes() []byte           { return s.data }
func (s *rawSurface) Stride() int             { return s.stride }
func (s *rawSurface) Format() PixelFormat     { return s.format }
func (s *rawSurface) Width() int              { return s.w }
func (s *rawSurface) Height() int             { return s.h }

func (s *rawSurface) Blit(x0, y0 int, src Surface) error {
    bpp := s.format.bytesPerPixel()
    w, h := src.Width(), src.Height()
    if x0+w > s.w || y0+h > s.h {
        return jpgForwardError("Blit", ErrBadHeader)
    }
    srcBytes := src.Bytes()
    for row := 0; row < h; row++ {
        srcOff := row * src.Stride()
        dstOff := (y0+row)*s.stride + x0*bpp
        copy(s.data[dstOff:dstOff+w*bpp], srcBytes[srcOff:srcOff+w*bpp])
    }
    return nil
}

// WorkerPool is the thread-pool collaborator of spec.md §6/§9: an ordered
// queue with enqueue/wait and an observable worker count. Satisfied by the
// errgroup-backed pool in scheduler.go; a nil WorkerPool in Options
// selects sequential, in-place execution instead.
type WorkerPool interface {
    Enqueue(task func() error)
    Wait() error
    Workers() int
}

// CPUFeatures is the runtime capability word of spec.md §6: observed but
// not acted upon beyond selecting between this core's portable integer
// kernels and a faster path a SIMD collaborator could register (the
// vectorized kernels themselves are out of scope, spec.md §1).
type CPUFeatures struct {
    SSE41  bool
    AVX2   bool
    ASIMD  bool
}
