// Package jpeg implements the core of a JPEG (ISO/IEC 10918-1) decoder: the
// marker stream parser, the Huffman and arithmetic entropy decoders, the
// sequential/progressive/lossless scan driver, the dequantization and
// inverse DCT pipeline, and a parallel MCU-to-pixel scheduler.
//
// Out of scope: the encoder, file-format auto-detection, structured EXIF/ICC
// decoding (only their raw byte ranges are retained), and SIMD kernels.
package jpeg

import (
    "bytes"
    "fmt"
    "io"
)

const (                         // JPEG parsing state
    _INIT = iota                 // expecting SOI
    _APPLICATION                  // from _INIT after SOI, expecting APPn
    _FRAME                        // from _APP after any table other than APP
    _SCAN1                        // from _FRAME after SOFn
    _SCAN1_ECS                    // from _SCAN1 after SOS
    _SCANn                        // from either _ECS state, after a scan's ECS
    _SCANn_ECS                    // from _SCANn, after SOS
    _FINAL                        // from either _ECS state, after EOI
)

var stateNames = [...]string{
    "initial", "application", "frame",
    "first scan", "first scan encoded segment",
    "other scan", "other scan encoded segment",
    "final",
}

func (jpg *Desc) getJPEGStateName() string {
    if jpg.state > _FINAL {
        return "unknown state"
    }
    return stateNames[jpg.state]
}

// dataUnit is one 8x8 block of coefficients in natural (row-major) order;
// the entropy decoders de-zig-zag each coefficient as they store it.
type dataUnit [64]int16

// Component describes one SOFn component as found in the frame header.
type Component struct {
    Id, HSF, VSF, QS uint8
}

type Encoding uint

const (
    HuffmanBaselineSequential Encoding = iota
    HuffmanExtendedSequential
    HuffmanProgressive
    HuffmanLossless
    _ // skip DHT (4)
    DifferentialHuffmanSequential
    DifferentialHuffmanProgressive
    DifferentialHuffmanLossless
    _ // skip JPG extension (8)
    ArithmeticExtendedSequential
    ArithmeticProgressive
    ArithmeticLossless
    _ // skip DAC (12)
    DifferentialArithmeticSequential
    DifferentialArithmeticProgressive
    DifferentialArithmeticLossless
)

func encodingString(c Encoding) string {
    switch c {
    case HuffmanBaselineSequential:
        return "Huffman Baseline Sequential DCT"
    case HuffmanExtendedSequential:
        return "Huffman Extended Sequential DCT"
    case HuffmanProgressive:
        return "Huffman Progressive DCT"
    case HuffmanLossless:
        return "Huffman Lossless"
    case DifferentialHuffmanSequential:
        return "Differential Huffman Sequential DCT"
    case DifferentialHuffmanProgressive:
        return "Differential Huffman Progressive DCT"
    case DifferentialHuffmanLossless:
        return "Differential Huffman Lossless"
    case ArithmeticExtendedSequential:
        return "Arithmetic Extended Sequential DCT"
    case ArithmeticProgressive:
        return "Arithmetic Progressive DCT"
    case ArithmeticLossless:
        return "Arithmetic Lossless"
    case DifferentialArithmeticSequential:
        return "Differential Arithmetic Sequential DCT"
    case DifferentialArithmeticProgressive:
        return "Differential Arithmetic Progressive DCT"
    case DifferentialArithmeticLossless:
        return "Differential Arithmetic Lossless"
    }
    return "invalid encoding"
}

type EntropyCoding uint

const (
    HuffmanCoding EntropyCoding = iota
    ArithmeticCoding
)

// EncodingMode classifies a frame for the purpose of picking a scan driver:
// whether it is a single-scan baseline/extended frame, a multi-scan
// progressive frame, or a lossless (predictive) frame.
type EncodingMode uint

const (
    BaselineSequential EncodingMode = iota
    ExtendedSequential
    ExtendedProgressive
    Lossless
)

func encodingModeString(m EncodingMode) string {
    switch m {
    case BaselineSequential:
        return "Baseline Sequential"
    case ExtendedSequential:
        return "Extended Sequential"
    case ExtendedProgressive:
        return "Extended Progressive"
    case Lossless:
        return "Lossless"
    }
    return "unknown encoding mode"
}

// Framing distinguishes non-hierarchical (SingleFrame, the only mode this
// core decodes) from hierarchical (DHP) streams, which are parsed enough to
// be rejected cleanly with ErrUnsupported.
type Framing uint

const (
    SingleFrame Framing = iota
    HierarchicalFrames
)

func framing(c Encoding) Framing {
    return Framing((c % 8) / 4)
}

type sampling struct {
    nLines, nSamplesLine uint16
    dnlLines             uint16
    samplePrecision      uint8
    mhSF, mvSF           uint8 // Hmax, Vmax
}

// frame holds everything derived from one SOFn: geometry, components and
// the scans (one for baseline/lossless, several for progressive/multiscan)
// that fill it in.
type frame struct {
    id         uint
    encoding   Encoding
    resolution sampling
    components []Component // order as it appears in SOFn: Y [, Cb, Cr[, K]]

    blocksInMCU uint
    xmcu, ymcu  uint // MCU grid size
    xclip, yclip uint // sample count in the last MCU column/row

    scans []scan
    arena []int16 // coefficient arena: xmcu*ymcu*blocksInMCU*64 entries

    qdefs [4]qdef
    hdefs [8]hdef // 4 DC + 4 AC destinations
    adefs [8]adef // 4 DC + 4 AC arithmetic conditioning destinations

    restartInterval uint
    image           *Desc

    losslessOut [][]int32 // per-component sample buffer, lossless mode only
}

type control struct { // embedded to keep Desc's public surface to methods only
    Options
}

type segmenter interface {
    format(io.Writer) (int, error)
}

// Desc is the internal structure describing one parsed JPEG file.
type Desc struct {
    data   []byte
    offset uint
    state  int

    orientation *Orientation
    thumbnail   *Thumbnail
    exifRange   [2]int // [start,end) into data, or [0,0) if absent
    iccData     []byte // concatenated APP2 ICC_PROFILE payloads
    jfifRange   [2]int
    colorTransform adobeTransform // from APP14, -1 if absent

    segments []segmenter
    process  Framing
    frames   []frame

    // tables installed by DQT/DHT/DAC/DRI before any frame exists, carried
    // forward into the next SOFn's frame (spec.md §3 "Arithmetic
    // Conditioning"/"Huffman Table"/"Quantization Table" persist across
    // frame boundaries until redefined)
    pendingQdefs           [4]qdef
    pendingHdefs           [8]*hdef
    pendingAdefs           [8]*adef
    pendingRestartInterval uint

    warnings []string
    err      error // sticky header-parse error, once set aborts further parsing

    capabilities CPUFeatures // read once at parse time, see newCapabilities

    control
}

// Capabilities reports the runtime CPU feature bits observed for this
// decode (spec.md §6/§9 CPUFeatures), letting a caller reason about which
// kernel family idctKernelFor would select.
func (jpg *Desc) Capabilities() CPUFeatures {
    return jpg.capabilities
}

func (jpg *Desc) warnf(format string, args ...interface{}) {
    jpg.warnings = append(jpg.warnings, fmt.Sprintf(format, args...))
    if jpg.Warn {
        fmt.Fprintf(jpg.Log, "WARNING: "+format+"\n", args...)
    }
}

func (jpg *Desc) logf(format string, args ...interface{}) {
    if jpg.Markers {
        fmt.Fprintf(jpg.Log, format+"\n", args...)
    }
}

func (jpg *Desc) getCurrentFrame() *frame {
    if len(jpg.frames) == 0 {
        return nil
    }
    return &jpg.frames[len(jpg.frames)-1]
}

func (jpg *Desc) getCurrentScan() *scan {
    f := jpg.getCurrentFrame()
    if f == nil || len(f.scans) == 0 {
        return nil
    }
    return &f.scans[len(f.scans)-1]
}

func (jpg *Desc) addSeg(seg segmenter) {
    jpg.segments = append(jpg.segments, seg)
}

func (jpg *Desc) printMarker(marker, sLen, offset uint) {
    jpg.logf("marker 0x%x, len %d, offset 0x%x (%s)", marker, sLen, offset, getJPEGmarkerName(marker))
}

// Options controls parsing verbosity, the arithmetic-coding license gate and
// the worker pool used to parallelize MCU-to-pixel conversion. The zero
// value is usable: arithmetic decoding enabled, no logging, sequential
// (single worker) scheduling.
type Options struct {
    Warn    bool      // collect warnings about tolerated stream deviations
    Markers bool      // log each marker as it is parsed
    Log     io.Writer // destination for Markers/Warn chatter, defaults to io.Discard

    DisableArithmetic bool // refuse arithmetic-coded streams (license gate)

    Pool WorkerPool // nil selects a sequential, in-place fallback
}

func (o *Options) normalize() {
    if o.Log == nil {
        o.Log = io.Discard
    }
}

// parse walks the marker stream and dispatches each segment to its handler,
// mirroring the ISO/IEC 10918-1 syntax of §4.4. It accepts files missing a
// trailing EOI and tolerates a spurious 0xFF before the next marker.
func parse(data []byte, opts Options) (*Desc, error) {
    opts.normalize()
    jpg := new(Desc)
    jpg.control.Options = opts
    jpg.data = data
    jpg.colorTransform = adobeUnset
    jpg.capabilities = newCapabilities()

    if len(data) < 4 || !bytes.Equal(data[0:2], []byte{0xff, 0xd8}) {
        return jpg, fmt.Errorf("%w: missing SOI signature", ErrBadHeader)
    }

    tLen := uint(len(data))
markerLoop:
    for i := uint(0); i < tLen; {
        if data[i] != 0xff {
            return jpg, fmt.Errorf("%w: expected marker at offset 0x%x, got 0x%x", ErrBadHeader, i, data[i])
        }
        // tolerate ancient encoders emitting a spurious 0xff padding byte
        for i+1 < tLen && data[i+1] == 0xff {
            i++
        }
        if i+1 >= tLen {
            jpg.warnf("truncated stream: dangling 0xff at end of input")
            break markerLoop
        }
        marker := uint(0xff00) | uint(data[i+1])
        sLen := uint(0)

        switch marker {
        case _SOI:
            jpg.printMarker(marker, sLen, i)
            if jpg.state != _INIT {
                return jpg, fmt.Errorf("%w: unexpected %s in state %s", ErrBadHeader, getJPEGmarkerName(marker), jpg.getJPEGStateName())
            }
            jpg.state = _APPLICATION
            i += 2

        case _RST0, _RST1, _RST2, _RST3, _RST4, _RST5, _RST6, _RST7, _TEM:
            jpg.printMarker(marker, sLen, i)
            i += 2 // stand-alone markers stray at top level; skip and continue

        case _EOI:
            jpg.printMarker(marker, sLen, i)
            jpg.state = _FINAL
            jpg.offset = i + 2
            break markerLoop

        default:
            if i+3 >= tLen {
                jpg.warnf("truncated stream: marker %s with no length at offset 0x%x", getJPEGmarkerName(marker), i)
                break markerLoop
            }
            sLen = uint(data[i+2])<<8 | uint(data[i+3])
            jpg.printMarker(marker, sLen, i)
            if i+2+sLen > tLen {
                jpg.warnf("truncated stream: %s length %d overruns input", getJPEGmarkerName(marker), sLen)
                break markerLoop
            }
            jpg.offset = i
            transitionToFrame := true
            var err error

            switch marker {
            case _APP0:
                err = jpg.app0(marker, sLen)
                transitionToFrame = false
            case _APP1:
                err = jpg.app1(marker, sLen)
                transitionToFrame = false
            case _APP2:
                err = jpg.app2(marker, sLen)
                transitionToFrame = false
            case _APP14:
                err = jpg.app14(marker, sLen)
                transitionToFrame = false
            case _APP3, _APP4, _APP5, _APP6, _APP7, _APP8, _APP9,
                _APP10, _APP11, _APP12, _APP13, _APP15:
                transitionToFrame = false

            case _SOF0, _SOF1, _SOF2, _SOF3, _SOF5, _SOF6, _SOF7,
                _SOF9, _SOF10, _SOF11, _SOF13, _SOF14, _SOF15:
                err = jpg.startOfFrame(marker, sLen)

            case _DHT:
                err = jpg.defineHuffmanTable(sLen)
            case _DQT:
                err = jpg.defineQuantizationTable(sLen)
            case _DAC:
                err = jpg.defineArithmeticConditioning(sLen)
            case _DRI:
                err = jpg.defineRestartInterval(sLen)
            case _DNL:
                err = jpg.defineNumberOfLines(sLen)
            case _DHP, _EXP:
                err = fmt.Errorf("%w: %s present: hierarchical progression is not supported", ErrUnsupported, getJPEGmarkerName(marker))
                transitionToFrame = false
            case _SOS:
                err = jpg.processScan(sLen)
                if err != nil {
                    return jpg, jpgForwardError("parse", err)
                }
                i = jpg.offset
                continue markerLoop
            case _COM:
                transitionToFrame = false // comment: consumed, ignored
            default: // _JPG and reserved _RESn
                transitionToFrame = false
            }
            if err != nil {
                return jpg, jpgForwardError("parse", err)
            }
            if jpg.state == _APPLICATION && transitionToFrame {
                jpg.state = _FRAME
            }
            i += sLen + 2
        }
        jpg.offset = i
    }
    return jpg, nil
}

func (jpg *Desc) IsComplete() bool {
    return jpg.state == _FINAL
}

// Orientation reports EXIF-derived display orientation, if any metadata
// segment carried it; nil if the image carries no orientation hint.
func (jpg *Desc) Orientation() *Orientation {
    return jpg.orientation
}

// Thumbnail returns the embedded JFIF/JFXX thumbnail, if any APP0 segment
// carried one; nil otherwise.
func (jpg *Desc) Thumbnail() *Thumbnail {
    return jpg.thumbnail
}

type VisualSide int

const (
    Left VisualSide = iota
    Top
    Right
    Bottom
)

type VisualEffect int

const (
    None VisualEffect = iota
    VerticalMirror
    Rotate90
    VerticalMirrorRotate90
    HorizontalMirror
    Rotate180
    HorizontalMirrorRotate90
    Rotate270
)

type Orientation struct {
    AppSource int
    Row0      VisualSide
    Col0      VisualSide
    Effect    VisualEffect
}
