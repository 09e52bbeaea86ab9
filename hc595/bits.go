package hc595

import (
	"strings"
	"unicode"
)

// Bits is a sequence of 0/1 values, first bit first.
type Bits []byte

func (b Bits) String() string {
	var s strings.Builder
	s.Grow(len(b))
	for _, bit := range b {
		s.WriteByte('0' + bit)
	}
	return s.String()
}

// Bools returns one bool per bit.
func (b Bits) Bools() []bool {
	res := make([]bool, len(b))
	for i, bit := range b {
		res[i] = bit == 1
	}
	return res
}

// EncodeBits validates a list of 0/1 integers.
func EncodeBits(values []int) (Bits, error) {
	res := make(Bits, len(values))
	for i, val := range values {
		if val != 0 && val != 1 {
			return nil, argumentErrorf("values must be 1, 0, or boolean (got %v at index %v)", val, i)
		}
		res[i] = byte(val)
	}
	return res, nil
}

func EncodeBools(values []bool) Bits {
	res := make(Bits, len(values))
	for i, val := range values {
		if val {
			res[i] = 1
		}
	}
	return res
}

// EncodeInt returns the binary representation of value, most significant bit
// first and without leading zeros. Zero encodes to a single 0 bit.
func EncodeInt(value int) (Bits, error) {
	if value < 0 {
		return nil, argumentErrorf("integer value cannot be negative (got %v)", value)
	}
	if value == 0 {
		return Bits{0}, nil
	}
	var res Bits
	for v := value; v > 0; v >>= 1 {
		res = append(res, byte(v&1))
	}
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return res, nil
}

func EncodeBool(value bool) Bits {
	if value {
		return Bits{1}
	}
	return Bits{0}
}

// ParseBits reads a string of 0 and 1 characters. Underscores and whitespace
// may be used as separators, e.g. "1010_0000 1111".
func ParseBits(s string) (Bits, error) {
	res := make(Bits, 0, len(s))
	for i, c := range s {
		switch {
		case c == '0' || c == '1':
			res = append(res, byte(c-'0'))
		case c == '_' || unicode.IsSpace(c):
		default:
			return nil, argumentErrorf("unexpected character %q at position %v in bit string %q", c, i, s)
		}
	}
	return res, nil
}
