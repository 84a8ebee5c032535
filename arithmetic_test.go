package jpeg

import "testing"

func TestQeTableSize(t *testing.T) {
    if len(qeTable) != 113 {
        t.Fatalf("qeTable has %d entries, want 113 (ITU-T T.81 Table D.3)", len(qeTable))
    }
    if qeTable[0].qe != 0x5a1d {
        t.Fatalf("qeTable[0].qe = 0x%x, want 0x5a1d", qeTable[0].qe)
    }
}

func TestNewAdefDefaults(t *testing.T) {
    a := newAdef()
    if !a.valid || a.l != 0 || a.u != 1 || a.k != 5 {
        t.Fatalf("newAdef() = %+v, want valid l=0 u=1 k=5", a)
    }
}

func TestArithDecoderInit(t *testing.T) {
    d := newArithDecoder([]byte{0x00, 0x00, 0x00})
    if d.a != 0x8000 {
        t.Fatalf("a = 0x%x, want 0x8000", d.a)
    }
    if d.c != 0 {
        t.Fatalf("c = 0x%x, want 0 for all-zero input", d.c)
    }
    if d.ct != 1 {
        t.Fatalf("ct = %d, want 1 after INITDEC on a fresh segment", d.ct)
    }
}

func TestArithDecoderNextByteStopsAtMarker(t *testing.T) {
    d := &arithDecoder{data: []byte{0xff, 0xd0}}
    b := d.nextByte()
    if b != 0xff {
        t.Fatalf("nextByte at a real marker should feed 0xff padding, got 0x%x", b)
    }
    if d.pos != 0 {
        t.Fatalf("pos should not advance past a real marker, got %d", d.pos)
    }
}

func TestArithDecoderNextByteDestuffs(t *testing.T) {
    d := &arithDecoder{data: []byte{0xff, 0x00, 0xaa}}
    b := d.nextByte()
    if b != 0xff {
        t.Fatalf("stuffed 0xff00 should decode to literal 0xff, got 0x%x", b)
    }
    if d.pos != 2 {
        t.Fatalf("pos after destuffing should be 2, got %d", d.pos)
    }
    if b2 := d.nextByte(); b2 != 0xaa {
        t.Fatalf("next byte after destuffing = 0x%x, want 0xaa", b2)
    }
}
