package coursecode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// Length - длина кода вместе с дефисами: XXX-XXX-XXX
	Length      = 11
	groupSize   = 3
	groupCount  = 3
	symbolCount = groupSize * groupCount

	// MaxAttempts - предохранитель на случай сломанной проверки существования
	MaxAttempts = 20

	// Байты >= unbiasedLimit отбрасываются, чтобы не было перекоса по модулю
	unbiasedLimit = 256 - 256%len(Alphabet)
	maxReadRounds = 16
)

var (
	ErrExhaustedRetries = errors.New("course code generation exhausted retries")
	ErrRandomSource     = errors.New("random source did not produce enough symbols")
)

// ExistsFunc проверяет, занят ли код
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Generator выдаёт коды курсов вида AAA-BBB-CCC
type Generator struct {
	random      io.Reader
	maxAttempts int
}

// NewGenerator создаёт генератор. nil означает crypto/rand.
func NewGenerator(random io.Reader) *Generator {
	if random == nil {
		random = rand.Reader
	}
	return &Generator{
		random:      random,
		maxAttempts: MaxAttempts,
	}
}

// Generate подбирает свободный код.
// Между проверкой и вставкой есть гонка, окончательную уникальность гарантирует индекс в БД.
func (g *Generator) Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		code, err := g.newCode()
		if err != nil {
			return "", err
		}

		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check course code exists: %w", err)
		}

		if !taken {
			return code, nil
		}
	}

	return "", fmt.Errorf("%w: %d attempts", ErrExhaustedRetries, g.maxAttempts)
}

func (g *Generator) newCode() (string, error) {
	symbols, err := g.randomSymbols(symbolCount)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(Length)
	for i, symbol := range symbols {
		if i > 0 && i%groupSize == 0 {
			sb.WriteByte('-')
		}
		sb.WriteByte(symbol)
	}
	return sb.String(), nil
}

func (g *Generator) randomSymbols(n int) ([]byte, error) {
	symbols := make([]byte, 0, n)
	buf := make([]byte, n*2)

	for round := 0; round < maxReadRounds && len(symbols) < n; round++ {
		if _, err := io.ReadFull(g.random, buf); err != nil {
			return nil, fmt.Errorf("read random bytes: %w", err)
		}

		for _, b := range buf {
			if int(b) >= unbiasedLimit {
				continue
			}
			symbols = append(symbols, Alphabet[int(b)%len(Alphabet)])
			if len(symbols) == n {
				break
			}
		}
	}

	if len(symbols) < n {
		return nil, ErrRandomSource
	}
	return symbols, nil
}

// Validate проверяет формат кода. Функция тотальна и не имеет побочных эффектов.
func Validate(code string) bool {
	if len(code) != Length {
		return false
	}

	for i := 0; i < Length; i++ {
		c := code[i]
		if i == groupSize || i == 2*groupSize+1 {
			if c != '-' {
				return false
			}
			continue
		}
		if !isSymbol(c) {
			return false
		}
	}

	return true
}

// Normalize приводит введённый пользователем код к каноническому виду
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func isSymbol(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z')
}
