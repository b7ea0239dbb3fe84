package core

// Mask24 keeps the low 24 bits of a machine word.
const Mask24 = 0xFFFFFF

// Image is a growable sequence of machine words. Words are stored unmasked;
// the 24-bit truncation happens when a word is read back for emission.
type Image struct {
	words []uint32
}

// Push appends one word to the image.
func (im *Image) Push(w uint32) {
	im.words = append(im.words, w)
}

// Set overwrites slot i, which must already have been pushed.
func (im *Image) Set(i int, w uint32) {
	im.words[i] = w
}

// At returns slot i masked to 24 bits.
func (im *Image) At(i int) uint32 {
	return im.words[i] & Mask24
}

// Len is the number of words pushed so far.
func (im *Image) Len() int { return len(im.words) }
