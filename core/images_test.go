package core

import "testing"

func TestImagePushAndMask(t *testing.T) {
	var im Image
	im.Push(5)
	im.Push(0xFFFFFFFF)

	if im.Len() != 2 {
		t.Errorf("expected length 2, got %d", im.Len())
	}
	if im.At(0) != 5 {
		t.Errorf("expected 5, got %#x", im.At(0))
	}
	if im.At(1) != Mask24 {
		t.Errorf("expected the masked word %#x, got %#x", Mask24, im.At(1))
	}
}

func TestImageSet(t *testing.T) {
	var im Image
	im.Push(0)
	im.Push(0)
	im.Set(1, 0x123456)
	if im.At(0) != 0 || im.At(1) != 0x123456 {
		t.Errorf("unexpected words %#x %#x", im.At(0), im.At(1))
	}
}

func TestImageNegativeValues(t *testing.T) {
	var im Image
	dist := int32(-6)
	im.Push(uint32(dist << 3))
	if im.At(0) != 0xFFFFD0 {
		t.Errorf("expected two's complement 0xFFFFD0, got %#x", im.At(0))
	}
}
