package sourcemap

import (
	"fmt"
	"strings"
)

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var base64Index = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(base64Alphabet); i++ {
		idx[base64Alphabet[i]] = int8(i)
	}
	return idx
}()

const (
	vlqShift        = 5
	vlqContinuation = 1 << vlqShift
	vlqMask         = vlqContinuation - 1
)

func encodeVLQ(sb *strings.Builder, value int) {
	var v uint64
	if value < 0 {
		v = uint64(-value)<<1 | 1
	} else {
		v = uint64(value) << 1
	}
	for {
		digit := v & vlqMask
		v >>= vlqShift
		if v > 0 {
			digit |= vlqContinuation
		}
		sb.WriteByte(base64Alphabet[digit])
		if v == 0 {
			return
		}
	}
}

func decodeVLQ(s string, i int) (int, int, error) {
	var (
		result uint64
		shift  uint
	)
	for {
		if i >= len(s) {
			return 0, i, fmt.Errorf("unterminated VLQ value")
		}
		digit := base64Index[s[i]]
		if digit < 0 {
			return 0, i, fmt.Errorf("invalid base64 character %q in mappings", s[i])
		}
		i++
		result |= uint64(digit&vlqMask) << shift
		if digit&vlqContinuation == 0 {
			break
		}
		shift += vlqShift
		if shift > 60 {
			return 0, i, fmt.Errorf("VLQ value overflows")
		}
	}
	value := int(result >> 1)
	if result&1 == 1 {
		value = -value
	}
	return value, i, nil
}
