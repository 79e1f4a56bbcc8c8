package oregontx

// The low nibble of byte 0 is the sync nibble 0xA. It is summed along with
// the rest of the frame but is not part of the checksum.
const checksumBias = 0x0a

// NibbleSum adds up both nibbles of the first count bytes of data.
func NibbleSum(data []byte, count int) uint16 {
	var s uint16
	for i := 0; i < count; i++ {
		s += uint16(data[i]>>4) + uint16(data[i]&0x0f)
	}
	return s
}

func (f Frame) checksum() byte {
	if f.Variant() == TemperatureHumidity {
		return byte((int(NibbleSum(f, 8)) - checksumBias) & 0xff)
	}
	return byte((int(NibbleSum(f, 6)) + int(f[6]&0x0f) - checksumBias) & 0xff)
}

// SetChecksum computes and stores the checksum. All other fields must already
// be set.
//
// A THN132N frame splits the checksum over the high nibble of byte 6 and the
// low nibble of byte 7. A THGR228N frame stores it whole in byte 8.
func (f Frame) SetChecksum() {
	s := f.checksum()
	if f.Variant() == TemperatureHumidity {
		f[8] = s
		return
	}
	f[6] |= (s & 0x0f) << 4
	f[7] = (s & 0xf0) >> 4
}

// VerifyChecksum reports whether the stored checksum matches the frame
// contents.
func (f Frame) VerifyChecksum() bool {
	if f.Variant() == TemperatureHumidity {
		return f[8] == f.checksum()
	}
	s := f.checksum()
	return f[6]>>4 == s&0x0f && f[7] == s>>4
}
