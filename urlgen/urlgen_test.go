package urlgen

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// errorReader is a mock io.Reader that always returns an error
type errorReader struct{}

func (r *errorReader) Read([]byte) (n int, err error) {
	return 0, errors.New("mocked random number generation error")
}

// mapChecker is an in-test Checker backed by a set.
type mapChecker struct {
	mu    sync.Mutex
	ids   map[string]struct{}
	calls int
	err   error
}

func newMapChecker(ids ...string) *mapChecker {
	c := &mapChecker{ids: make(map[string]struct{})}
	for _, id := range ids {
		c.ids[id] = struct{}{}
	}
	return c
}

func (c *mapChecker) ExistsByShort(_ context.Context, short string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return false, c.err
	}
	_, ok := c.ids[short]
	return ok, nil
}

// alwaysTaken reports every candidate as stored.
type alwaysTaken struct{ calls int }

func (a *alwaysTaken) ExistsByShort(context.Context, string) (bool, error) {
	a.calls++
	return true, nil
}

func assertValidShortID(t *testing.T, id string, length int) {
	t.Helper()
	require.Len(t, id, length, "Generated short ID should have the correct length")
	for _, char := range id {
		assert.Contains(t, Alphabet, string(char), "Generated short ID should only contain valid characters")
	}
	assert.False(t, IsReserved(id))
}

func TestGenerate(t *testing.T) {
	t.Run("Basic Generation", func(t *testing.T) {
		id, err := Generate(DefaultLength)
		require.NoError(t, err, "Generate() should not return an error")
		assertValidShortID(t, id, DefaultLength)
	})

	t.Run("Multiple Generations", func(t *testing.T) {
		generated := make(map[string]int)
		total := 100000
		for i := 0; i < total; i++ {
			id, err := Generate(8)
			require.NoError(t, err)
			generated[id]++
		}

		duplicates := make(map[string]int)
		for id, count := range generated {
			if count > 1 {
				duplicates[id] = count
			}
		}
		t.Logf("Total IDs generated: %d, unique: %d", total, len(generated))
		assert.Empty(t, duplicates, "No short IDs should be duplicated. Duplicates: %v", duplicates)
	})

	t.Run("Error Handling", func(t *testing.T) {
		originalReader := rand.Reader
		rand.Reader = &errorReader{}
		defer func() { rand.Reader = originalReader }()

		_, err := Generate(DefaultLength)
		assert.Error(t, err, "Generate() should return an error when random number generation fails")
		assert.Contains(t, err.Error(), "mocked random number generation error")
	})
}

func TestNewGeneratorDefaults(t *testing.T) {
	g := NewGenerator(newMapChecker(), 0, -1)
	assert.Equal(t, DefaultLength, g.length)
	assert.Equal(t, DefaultMaxAttempts, g.maxAttempts)

	g = NewGenerator(newMapChecker(), MaxLength+1, 5)
	assert.Equal(t, DefaultLength, g.length)
	assert.Equal(t, 5, g.maxAttempts)
}

func TestUnique(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns free valid ID", func(t *testing.T) {
		checker := newMapChecker("py")
		g := NewGenerator(checker, DefaultLength, DefaultMaxAttempts)

		for i := 0; i < 1000; i++ {
			id, err := g.Unique(ctx)
			require.NoError(t, err)
			assertValidShortID(t, id, DefaultLength)
			exists, _ := checker.ExistsByShort(ctx, id)
			assert.False(t, exists)
		}
	})

	t.Run("Exhausted", func(t *testing.T) {
		checker := &alwaysTaken{}
		g := NewGenerator(checker, 4, 7)

		_, err := g.Unique(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrGenerationExhausted)
		assert.Equal(t, 7, checker.calls, "every attempt should consult the store once")
	})

	t.Run("Checker error", func(t *testing.T) {
		checker := newMapChecker()
		checker.err = errors.New("db down")
		g := NewGenerator(checker, DefaultLength, DefaultMaxAttempts)

		_, err := g.Unique(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
		assert.NotErrorIs(t, err, ErrGenerationExhausted)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()
		g := NewGenerator(newMapChecker(), DefaultLength, DefaultMaxAttempts)

		_, err := g.Unique(cancelCtx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Excluding taken IDs", func(t *testing.T) {
		g := NewGenerator(newMapChecker(), 1, 10000)
		taken := make(map[string]struct{})
		for _, r := range Alphabet[:61] {
			taken[string(r)] = struct{}{}
		}

		id, err := g.UniqueExcluding(ctx, taken)
		require.NoError(t, err)
		assert.Equal(t, string(Alphabet[61]), id, "only one single-character ID is left")
	})
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	g := NewGenerator(newMapChecker("py"), DefaultLength, DefaultMaxAttempts)

	tests := []struct {
		name    string
		value   string
		opts    ValidateOptions
		want    string
		wantErr error
	}{
		{name: "Absent optional", value: "", want: ""},
		{name: "Whitespace optional", value: "   ", want: ""},
		{name: "Absent required", value: "", opts: ValidateOptions{Require: true}, wantErr: ErrInvalidFormat},
		{name: "Trimmed", value: "  abc123 ", want: "abc123"},
		{name: "Max length", value: strings.Repeat("a", MaxLength), want: strings.Repeat("a", MaxLength)},
		{name: "Too long", value: strings.Repeat("a", MaxLength+1), wantErr: ErrInvalidFormat},
		{name: "Reserved word", value: "files", opts: ValidateOptions{CheckUnique: true}, wantErr: ErrDuplicate},
		{name: "Reserved without unique check", value: "files", wantErr: ErrDuplicate},
		{name: "Health route", value: "health", opts: ValidateOptions{CheckUnique: true}, wantErr: ErrDuplicate},
		{name: "API prefix", value: "api", opts: ValidateOptions{CheckUnique: true}, wantErr: ErrDuplicate},
		{name: "Reserved with padding", value: " health ", wantErr: ErrDuplicate},
		{name: "Reserved is case sensitive", value: "Health", want: "Health"},
		{name: "Bad charset", value: "abc-123", wantErr: ErrInvalidFormat},
		{name: "Non-ASCII letters", value: "ссылка", wantErr: ErrInvalidFormat},
		{name: "Existing without check", value: "py", want: "py"},
		{name: "Existing with check", value: "py", opts: ValidateOptions{CheckUnique: true}, wantErr: ErrDuplicate},
		{name: "Free with check", value: "go", opts: ValidateOptions{CheckUnique: true}, want: "go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Validate(ctx, tt.value, tt.opts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateIdempotent(t *testing.T) {
	ctx := context.Background()
	g := NewGenerator(newMapChecker(), DefaultLength, DefaultMaxAttempts)

	first, err := g.Validate(ctx, " Custom1 ", ValidateOptions{CheckUnique: true})
	require.NoError(t, err)
	second, err := g.Validate(ctx, first, ValidateOptions{CheckUnique: true})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestValidateAfterStore(t *testing.T) {
	ctx := context.Background()
	checker := newMapChecker()
	g := NewGenerator(checker, DefaultLength, DefaultMaxAttempts)

	accepted, err := g.Validate(ctx, "mine", ValidateOptions{CheckUnique: true})
	require.NoError(t, err)

	checker.ids[accepted] = struct{}{}

	_, err = g.Validate(ctx, accepted, ValidateOptions{CheckUnique: true})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestValidateCheckerError(t *testing.T) {
	checker := newMapChecker()
	checker.err = errors.New("db down")
	g := NewGenerator(checker, DefaultLength, DefaultMaxAttempts)

	_, err := g.Validate(context.Background(), "abc", ValidateOptions{CheckUnique: true})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicate)
	assert.NotErrorIs(t, err, ErrInvalidFormat)
}

// BenchmarkGenerate measures the performance of the Generate function.
func BenchmarkGenerate(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, err := Generate(DefaultLength)
		if err != nil {
			b.Fatal(err)
		}
	}
}
