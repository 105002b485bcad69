// Package vigenere implements the byte-wise substitution cipher applied to
// embedded payloads: each byte is shifted by the key byte at i mod len(key),
// modulo 256. It hides structure from casual inspection; it is not a secure
// cipher.
package vigenere

// Direction selects between shifting up (encrypt) and down (decrypt).
type Direction int

const (
	Encrypt Direction = iota
	Decrypt
)

// Transform returns a new slice holding data shifted by key in direction dir.
// An empty key is the identity transform.
func Transform(data, key []byte, dir Direction) []byte {
	return TransformAt(data, key, 0, dir)
}

// TransformAt is Transform for a slice that starts offset bytes into the
// stream, so a payload can be decrypted piecewise as it is read.
func TransformAt(data, key []byte, offset int, dir Direction) []byte {
	out := make([]byte, len(data))
	if len(key) == 0 {
		copy(out, data)
		return out
	}
	for i, b := range data {
		k := key[(offset+i)%len(key)]
		if dir == Decrypt {
			out[i] = b - k
		} else {
			out[i] = b + k
		}
	}
	return out
}
