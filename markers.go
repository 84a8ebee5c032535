package jpeg

import "fmt"

const ( // JPEG marker definitions, ISO/IEC 10918-1 Table B.1
    _TEM = 0xff01 // temporary use in arithmetic coding

    _SOF0  = 0xffc0
    _SOF1  = 0xffc1
    _SOF2  = 0xffc2
    _SOF3  = 0xffc3
    _DHT   = 0xffc4
    _SOF5  = 0xffc5
    _SOF6  = 0xffc6
    _SOF7  = 0xffc7
    _JPG   = 0xffc8
    _SOF9  = 0xffc9
    _SOF10 = 0xffca
    _SOF11 = 0xffcb
    _DAC   = 0xffcc
    _SOF13 = 0xffcd
    _SOF14 = 0xffce
    _SOF15 = 0xffcf

    _RST0 = 0xffd0
    _RST1 = 0xffd1
    _RST2 = 0xffd2
    _RST3 = 0xffd3
    _RST4 = 0xffd4
    _RST5 = 0xffd5
    _RST6 = 0xffd6
    _RST7 = 0xffd7
    _SOI  = 0xffd8
    _EOI  = 0xffd9
    _SOS  = 0xffda
    _DQT  = 0xffdb
    _DNL  = 0xffdc
    _DRI  = 0xffdd
    _DHP  = 0xffde
    _EXP  = 0xffdf

    _APP0  = 0xffe0
    _APP1  = 0xffe1
    _APP2  = 0xffe2
    _APP3  = 0xffe3
    _APP4  = 0xffe4
    _APP5  = 0xffe5
    _APP6  = 0xffe6
    _APP7  = 0xffe7
    _APP8  = 0xffe8
    _APP9  = 0xffe9
    _APP10 = 0xffea
    _APP11 = 0xffeb
    _APP12 = 0xffec
    _APP13 = 0xffed
    _APP14 = 0xffee
    _APP15 = 0xffef

    _RES0  = 0xfff0
    _RES1  = 0xfff1
    _RES2  = 0xfff2
    _RES3  = 0xfff3
    _RES4  = 0xfff4
    _RES5  = 0xfff5
    _RES6  = 0xfff6
    _RES7  = 0xfff7
    _RES8  = 0xfff8
    _RES9  = 0xfff9
    _RES10 = 0xfffa
    _RES11 = 0xfffb
    _RES12 = 0xfffc
    _RES13 = 0xfffd

    _COM = 0xfffe
)

func isSOFnMarker(marker uint) bool {
    if marker < _SOF0 || marker > _SOF15 {
        return false
    }
    return marker != _DHT && marker != _JPG && marker != _DAC
}

// isProgressive, isLossless, isDifferential and isArithmetic classify a
// SOFn marker per spec.md §4.4: SOF2/6/10/14 progressive, SOF3/7/11/15
// lossless, SOF5/6/7/13/14/15 differential, SOF9..15 arithmetic.
func isProgressiveSOF(marker uint) bool {
    switch marker {
    case _SOF2, _SOF6, _SOF10, _SOF14:
        return true
    }
    return false
}

func isLosslessSOF(marker uint) bool {
    switch marker {
    case _SOF3, _SOF7, _SOF11, _SOF15:
        return true
    }
    return false
}

func isDifferentialSOF(marker uint) bool {
    switch marker {
    case _SOF5, _SOF6, _SOF7, _SOF13, _SOF14, _SOF15:
        return true
    }
    return false
}

func isArithmeticSOF(marker uint) bool {
    return marker >= _SOF9
}

func getJPEGmarkerName(marker uint) string {
    if marker == _TEM {
        return "TEM"
    }
    if marker < _SOF0 || marker > _COM {
        return fmt.Sprintf("0x%x", marker)
    }
    if isSOFnMarker(marker) || marker == _DHT || marker == _JPG || marker == _DAC {
        names := map[uint]string{
            _SOF0: "SOF0", _SOF1: "SOF1", _SOF2: "SOF2", _SOF3: "SOF3",
            _DHT: "DHT", _SOF5: "SOF5", _SOF6: "SOF6", _SOF7: "SOF7",
            _JPG: "JPG", _SOF9: "SOF9", _SOF10: "SOF10", _SOF11: "SOF11",
            _DAC: "DAC", _SOF13: "SOF13", _SOF14: "SOF14", _SOF15: "SOF15",
        }
        return names[marker]
    }
    switch {
    case marker >= _RST0 && marker <= _RST7:
        return fmt.Sprintf("RST%d", marker-_RST0)
    case marker >= _APP0 && marker <= _APP15:
        return fmt.Sprintf("APP%d", marker-_APP0)
    case marker >= _RES0 && marker <= _RES13:
        return fmt.Sprintf("RES%d", marker-_RES0)
    }
    switch marker {
    case _SOI:
        return "SOI"
    case _EOI:
        return "EOI"
    case _SOS:
        return "SOS"
    case _DQT:
        return "DQT"
    case _DNL:
        return "DNL"
    case _DRI:
        return "DRI"
    case _DHP:
        return "DHP"
    case _EXP:
        return "EXP"
    case _COM:
        return "COM"
    }
    return fmt.Sprintf("0x%x", marker)
}
