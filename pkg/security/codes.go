package security

import (
	"crypto/rand"
	"fmt"
	"io"
)

// codeAlphabet omits 0/O and 1/I so codes survive being read over the phone.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeGenerator issues short random codes (booking references, verification codes).
type CodeGenerator interface {
	Generate() (string, error)
}

type randomCodeGenerator struct {
	src    io.Reader
	length int
}

// NewCodeGenerator returns a generator reading entropy from src.
// A nil src means crypto/rand.
func NewCodeGenerator(src io.Reader, length int) CodeGenerator {
	if src == nil {
		src = rand.Reader
	}
	if length <= 0 {
		length = 8
	}
	return &randomCodeGenerator{src: src, length: length}
}

func (g *randomCodeGenerator) Generate() (string, error) {
	code := make([]byte, 0, g.length)
	buf := make([]byte, g.length)
	// 256 is a multiple of len(codeAlphabet), so byte % 32 is unbiased.
	for len(code) < g.length {
		if _, err := io.ReadFull(g.src, buf); err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		for _, b := range buf {
			if len(code) == g.length {
				break
			}
			code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
		}
	}
	return string(code), nil
}
