package jpeg

import "fmt"

// Create implements spec.md §6 "Create": parses headers only (tables,
// frame geometry, retained metadata ranges) and returns a Desc a caller
// can inspect before committing to a full Decode.
func Create(data []byte, opts Options) (*Desc, error) {
    return parse(data, opts)
}

// Width reports the natural image width in samples (0 if no frame has
// been parsed yet).
func (jpg *Desc) Width() int {
    if f := jpg.getCurrentFrame(); f != nil {
        return int(f.resolution.nSamplesLine)
    }
    return 0
}

// Height reports the natural image height in samples.
func (jpg *Desc) Height() int {
    if f := jpg.getCurrentFrame(); f != nil {
        return int(f.resolution.nLines)
    }
    return 0
}

// NaturalFormat reports the pixel format Decode will produce when the
// caller's target differs: L8 for single-component frames, BGRA8
// otherwise (spec.md §6 Create).
func (jpg *Desc) NaturalFormat() PixelFormat {
    if f := jpg.getCurrentFrame(); f != nil && len(f.components) == 1 {
        return FormatY
    }
    return FormatBGRA
}

// ExifRange returns the retained raw EXIF byte range, or (0,0) if absent.
func (jpg *Desc) ExifRange() (int, int) { return jpg.exifRange[0], jpg.exifRange[1] }

// ICCProfile returns the concatenated ICC_PROFILE payload, or nil.
func (jpg *Desc) ICCProfile() []byte { return jpg.iccData }

// Warnings returns the soft-recoverable stream deviations collected while
// parsing headers and decoding scans (spec.md §7 "Truncated stream").
func (jpg *Desc) Warnings() []string { return jpg.warnings }

// Decode implements spec.md §6 "Decode": runs the scan driver (already
// invoked during Create's marker walk, since this core interleaves
// marker parsing and scan decode per ISO/IEC 10918-1 ordering) and the
// MCU scheduler finish pass, writing into target. If target's geometry or
// format differs from the image's natural one, an internal surface is
// allocated, decoded into, and blitted to target (lossless intermediate
// copy, spec.md §6).
func Decode(data []byte, target Surface, opts Options) (*Desc, error) {
    jpg, err := parse(data, opts)
    if err != nil {
        return jpg, err
    }
    frm := jpg.getCurrentFrame()
    if frm == nil {
        return jpg, fmt.Errorf("%w: no frame decoded", ErrBadHeader)
    }

    natural := jpg.NaturalFormat()
    w, h := int(frm.resolution.nSamplesLine), int(frm.resolution.nLines)

    if target.Width() == w && target.Height() == h && target.Format() == natural {
        if err := jpg.finishFrame(frm, target); err != nil {
            return jpg, jpgForwardError("Decode", err)
        }
        return jpg, nil
    }

    interim := newRawSurface(w, h, natural)
    if err := jpg.finishFrame(frm, interim); err != nil {
        return jpg, jpgForwardError("Decode", err)
    }
    if err := target.Blit(0, 0, interim); err != nil {
        return jpg, jpgForwardError("Decode", err)
    }
    return jpg, nil
}
