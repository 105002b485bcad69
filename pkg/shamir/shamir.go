// Package shamir splits the scatter sealing key over GF(2^8) so that any
// threshold of the stego images can rebuild it and fewer learn nothing.
package shamir

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
)

// A share is the y values for every key byte followed by one x coordinate.
//
//	[y1 y2 ... yN][x]

// ErrInvalidShares is returned when shares cannot belong to one split.
var ErrInvalidShares = errors.New("invalid shares")

var (
	expTable [255]uint8
	logTable [256]uint8
)

// The tables use generator 3 over the AES field polynomial x^8+x^4+x^3+x+1.
func init() {
	x := uint8(1)
	for i := 0; i < 255; i++ {
		expTable[i] = x
		logTable[x] = uint8(i)
		x ^= xtime(x)
	}
}

func xtime(a uint8) uint8 {
	if a&0x80 != 0 {
		return a<<1 ^ 0x1b
	}
	return a << 1
}

// add combines two numbers in GF(2^8). Symmetric with subtraction.
func add(a, b uint8) uint8 {
	return a ^ b
}

// mult multiplies two numbers in GF(2^8)
func mult(a, b uint8) uint8 {
	ret := expTable[(int(logTable[a])+int(logTable[b]))%255]
	if subtle.ConstantTimeByteEq(a, 0)|subtle.ConstantTimeByteEq(b, 0) == 1 {
		ret = 0
	}
	return ret
}

// div divides two numbers in GF(2^8). b must be non-zero.
func div(a, b uint8) uint8 {
	diff := (int(logTable[a]) - int(logTable[b])) % 255
	if diff < 0 {
		diff += 255
	}
	ret := expTable[diff]
	if subtle.ConstantTimeByteEq(a, 0) == 1 {
		ret = 0
	}
	return ret
}

// polynomial holds coefficients lowest degree first; coefficients[0] is the
// secret byte.
type polynomial []uint8

func randomPolynomial(intercept uint8, degree int) (polynomial, error) {
	p := make(polynomial, degree+1)
	p[0] = intercept
	if _, err := rand.Read(p[1:]); err != nil {
		return nil, fmt.Errorf("failed to draw coefficients: %w", err)
	}
	return p, nil
}

// evaluate uses Horner's rule.
func (p polynomial) evaluate(x uint8) uint8 {
	if x == 0 {
		return p[0]
	}
	out := p[len(p)-1]
	for i := len(p) - 2; i >= 0; i-- {
		out = add(mult(out, x), p[i])
	}
	return out
}

// interpolateAtZero recovers p(0) from sample points by Lagrange interpolation.
func interpolateAtZero(xs, ys []uint8) uint8 {
	var result uint8
	for i := range xs {
		basis := uint8(1)
		for j := range xs {
			if i == j {
				continue
			}
			basis = mult(basis, div(xs[j], add(xs[i], xs[j])))
		}
		result = add(result, mult(ys[i], basis))
	}
	return result
}

// Split divides secret into parts shares, any threshold of which rebuild it.
func Split(secret []byte, parts, threshold int) ([][]byte, error) {
	switch {
	case len(secret) == 0:
		return nil, errors.New("cannot split empty secret")
	case threshold < 2:
		return nil, errors.New("threshold must be at least 2")
	case parts < threshold:
		return nil, errors.New("parts cannot be less than threshold")
	case parts > 255:
		return nil, errors.New("parts cannot exceed 255")
	}

	shares := make([][]byte, parts)
	for i := range shares {
		shares[i] = make([]byte, len(secret)+1)
		shares[i][len(secret)] = uint8(i + 1)
	}

	for idx, b := range secret {
		p, err := randomPolynomial(b, threshold-1)
		if err != nil {
			return nil, err
		}
		for _, share := range shares {
			share[idx] = p.evaluate(share[len(secret)])
		}
		clear(p)
	}
	return shares, nil
}

// Combine rebuilds a secret from shares produced by one Split call. Passing
// fewer shares than the split's threshold yields unrelated bytes.
func Combine(shares [][]byte) ([]byte, error) {
	if len(shares) < 2 {
		return nil, fmt.Errorf("%w: less than two shares cannot reconstruct secret", ErrInvalidShares)
	}
	size := len(shares[0])
	if size < 2 {
		return nil, fmt.Errorf("%w: share too short", ErrInvalidShares)
	}

	xs := make([]uint8, len(shares))
	ys := make([]uint8, len(shares))
	seen := make(map[uint8]bool, len(shares))
	for i, share := range shares {
		if len(share) != size {
			return nil, fmt.Errorf("%w: shares have different lengths", ErrInvalidShares)
		}
		x := share[size-1]
		if x == 0 || seen[x] {
			return nil, fmt.Errorf("%w: duplicate or zero x coordinate %d", ErrInvalidShares, x)
		}
		seen[x] = true
		xs[i] = x
	}

	secret := make([]byte, size-1)
	for idx := range secret {
		for i, share := range shares {
			ys[i] = share[idx]
		}
		secret[idx] = interpolateAtZero(xs, ys)
	}
	return secret, nil
}
