package util

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// fingerprintTail is how many trailing bytes feed the fingerprint. Export
// files are append-only, so the tail changes whenever content does.
const fingerprintTail = 2048

// CalculateFileFingerprint returns the CRC32 of the file's last 2KB, hex
// encoded.
func CalculateFileFingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", err
	}

	n := int64(fingerprintTail)
	if st.Size() < n {
		n = st.Size()
	}
	buf := make([]byte, n)
	if _, err := f.ReadAt(buf, st.Size()-n); err != nil && err != io.EOF {
		return "", err
	}
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE(buf)), nil
}
