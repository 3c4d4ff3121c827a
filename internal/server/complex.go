package server

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Complex is a complex amplitude on the wire: either a bare real number or a
// [re, im] pair.
type Complex complex128

func (c Complex) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{real(c), imag(c)})
}

func (c Complex) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode([2]float64{real(c), imag(c)})
}

func (c *Complex) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return c.set(v)
}

func (c *Complex) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, err := dec.DecodeInterface()
	if err != nil {
		return err
	}
	return c.set(v)
}

func (c *Complex) set(v any) error {
	if re, ok := toFloat(v); ok {
		*c = Complex(complex(re, 0))
		return nil
	}
	if pair, ok := v.([]any); ok && len(pair) == 2 {
		re, okRe := toFloat(pair[0])
		im, okIm := toFloat(pair[1])
		if okRe && okIm {
			*c = Complex(complex(re, im))
			return nil
		}
	}
	return fmt.Errorf("amplitude must be a number or a [re, im] pair, got %v", v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func toComplexSlice(in []Complex) []complex128 {
	out := make([]complex128, len(in))
	for i, v := range in {
		out[i] = complex128(v)
	}
	return out
}

func toComplexRows(in [][]Complex) [][]complex128 {
	out := make([][]complex128, len(in))
	for i, row := range in {
		out[i] = toComplexSlice(row)
	}
	return out
}
