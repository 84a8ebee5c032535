package jpeg

import "testing"

func newSingleCodeTable(value uint8) *hdef {
    return buildHuffmanTable([17]int{1: 1}, []uint8{value})
}

func TestHuffDecodeMCUZeroDiffAllZeroBlock(t *testing.T) {
    frm := &frame{}
    frm.hdefs[0] = *newSingleCodeTable(0) // DC category 0 -> diff 0
    frm.hdefs[4] = *newSingleCodeTable(0) // AC run/size 0x00 -> EOB

    c := &scanComp{dcId: 0, acId: 0}
    blk := make([]int16, 64)
    br := newBitReader([]byte{0x00})

    if err := huffDecodeMCU(br, frm, c, blk); err != nil {
        t.Fatalf("huffDecodeMCU: %v", err)
    }
    for i, v := range blk {
        if v != 0 {
            t.Fatalf("blk[%d] = %d, want 0", i, v)
        }
    }
}

func TestHuffDecodeMCUNonzeroDC(t *testing.T) {
    frm := &frame{}
    frm.hdefs[0] = *newSingleCodeTable(1) // DC category 1
    frm.hdefs[4] = *newSingleCodeTable(0) // AC: immediate EOB

    c := &scanComp{dcId: 0, acId: 0}
    blk := make([]int16, 64)
    // bits: 0 (DC huffman code) 1 (extend bit, selects +1) 0 (AC EOB code)
    br := newBitReader([]byte{0b01000000})

    if err := huffDecodeMCU(br, frm, c, blk); err != nil {
        t.Fatalf("huffDecodeMCU: %v", err)
    }
    if blk[0] != 1 {
        t.Fatalf("blk[0] = %d, want 1", blk[0])
    }
    if c.dcPredictor != 1 {
        t.Fatalf("dcPredictor = %d, want 1", c.dcPredictor)
    }
}

func TestHuffDecodeMCUZRLSkipsSixteen(t *testing.T) {
    frm := &frame{}
    frm.hdefs[0] = *newSingleCodeTable(0) // DC diff 0
    // two-entry AC table: code 0 -> ZRL (0xf0), code 1 -> EOB (0x00)
    var bits [17]int
    bits[1] = 2
    frm.hdefs[4] = *buildHuffmanTable(bits, []uint8{0xf0, 0x00})

    c := &scanComp{dcId: 0, acId: 0}
    blk := make([]int16, 64)
    // DC bit 0, then ZRL bit 0, then EOB bit 1
    br := newBitReader([]byte{0b00100000})

    if err := huffDecodeMCU(br, frm, c, blk); err != nil {
        t.Fatalf("huffDecodeMCU: %v", err)
    }
    for i, v := range blk {
        if v != 0 {
            t.Fatalf("blk[%d] = %d, want 0 (ZRL then EOB leaves block empty)", i, v)
        }
    }
}
