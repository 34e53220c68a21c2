package pac

import (
	"crypto/md5"
	"encoding/hex"
)

// Produce an md5 string from given data (a simple shortcut)
func Md5String(data []byte) string {
	hash := md5.Sum(data)
	return hex.EncodeToString(hash[:])
}
