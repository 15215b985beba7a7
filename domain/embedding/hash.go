package embedding

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
)

// ContentHash returns the SHA-1 digest of the comma-joined decimal
// rendering of the vector values. The rendering is order-sensitive and
// uses the shortest round-trippable decimal form, so the same values
// always produce the same digest across runs and backends.
func ContentHash(values []float64) string {
	var b strings.Builder
	b.Grow(len(values) * 12)
	for i, x := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(x, 'f', -1, 64))
	}
	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
