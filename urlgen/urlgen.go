// Package urlgen generates and validates short IDs.
package urlgen

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// Alphabet defines the character set used for generating short IDs.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	// DefaultLength is the length of generated short IDs.
	DefaultLength = 6
	// MinLength and MaxLength bound user-supplied short IDs.
	MinLength = 1
	MaxLength = 16
	// DefaultMaxAttempts bounds the number of draws in Unique.
	DefaultMaxAttempts = 100
)

var (
	ErrInvalidFormat       = errors.New("invalid short link name")
	ErrDuplicate           = errors.New("the proposed short link already exists")
	ErrGenerationExhausted = errors.New("failed to generate a unique short id")
)

var allowedPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// reserved short IDs collide with application routes.
var reserved = map[string]struct{}{
	"api":    {},
	"files":  {},
	"health": {},
}

// IsReserved reports whether id is taken by an application route.
func IsReserved(id string) bool {
	_, ok := reserved[id]
	return ok
}

// Checker reports whether a short ID is already stored.
type Checker interface {
	ExistsByShort(ctx context.Context, short string) (bool, error)
}

// Generate creates a random string of the given length drawn from Alphabet.
func Generate(length int) (string, error) {
	var sb strings.Builder
	sb.Grow(length)

	alphabetLength := big.NewInt(int64(len(Alphabet)))

	for i := 0; i < length; i++ {
		randomIndex, err := rand.Int(rand.Reader, alphabetLength)
		if err != nil {
			return "", err
		}
		sb.WriteByte(Alphabet[randomIndex.Int64()])
	}
	return sb.String(), nil
}

// Generator allocates short IDs that are not reserved and not yet stored.
type Generator struct {
	checker     Checker
	length      int
	maxAttempts int
}

// NewGenerator returns a Generator. Non-positive length or maxAttempts fall back to the defaults.
func NewGenerator(checker Checker, length, maxAttempts int) *Generator {
	if length <= 0 || length > MaxLength {
		length = DefaultLength
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{checker: checker, length: length, maxAttempts: maxAttempts}
}

// Unique returns a short ID free at the time of the check.
//
// The check and the caller's later insert are not atomic; a concurrent writer
// can still claim the same ID, which the store then reports as a duplicate.
func (g *Generator) Unique(ctx context.Context) (string, error) {
	return g.UniqueExcluding(ctx, nil)
}

// UniqueExcluding is Unique that also rejects IDs present in taken.
func (g *Generator) UniqueExcluding(ctx context.Context, taken map[string]struct{}) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate, err := Generate(g.length)
		if err != nil {
			return "", fmt.Errorf("generate short id: %w", err)
		}
		if IsReserved(candidate) {
			continue
		}
		if _, ok := taken[candidate]; ok {
			continue
		}
		exists, err := g.checker.ExistsByShort(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check short id: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts of length %d", ErrGenerationExhausted, g.maxAttempts, g.length)
}

// ValidateOptions controls Validate.
type ValidateOptions struct {
	// Require makes an empty value an error instead of "no custom ID".
	Require bool
	// CheckUnique consults the store for an existing mapping.
	CheckUnique bool
}

// Validate checks a user-supplied short ID and returns it trimmed.
// An empty result with a nil error means no custom ID was requested.
// Reserved words are reported as ErrDuplicate.
func (g *Generator) Validate(ctx context.Context, value string, opts ValidateOptions) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if opts.Require {
			return "", ErrInvalidFormat
		}
		return "", nil
	}
	if len(trimmed) < MinLength || len(trimmed) > MaxLength {
		return "", ErrInvalidFormat
	}
	if IsReserved(trimmed) {
		return "", ErrDuplicate
	}
	if !allowedPattern.MatchString(trimmed) {
		return "", ErrInvalidFormat
	}
	if opts.CheckUnique {
		exists, err := g.checker.ExistsByShort(ctx, trimmed)
		if err != nil {
			return "", fmt.Errorf("check short id: %w", err)
		}
		if exists {
			return "", ErrDuplicate
		}
	}
	return trimmed, nil
}
