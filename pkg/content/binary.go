package content

const (
	// binarySniffSize is how much of the file head the binary check
	// inspects.
	binarySniffSize = 8 * 1024

	// binaryControlRatio is the share of control characters above
	// which a sample is treated as binary.
	binaryControlRatio = 0.30
)

// isBinaryData reports whether a content sample looks binary. A NUL
// byte is decisive; otherwise the control-character ratio decides.
// Tab, newline and carriage return do not count as control characters.
func isBinaryData(sample []byte) bool {
	if len(sample) == 0 {
		return false
	}
	control := 0
	for _, b := range sample {
		if b == 0x00 {
			return true
		}
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			control++
		}
	}
	return float64(control)/float64(len(sample)) > binaryControlRatio
}
