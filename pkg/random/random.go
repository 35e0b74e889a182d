// Randomization primitives for generating test values within bounds
// Degenerate and overflowing ranges are clamped rather than rejected
package random

import (
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxOffsetRange caps the width of an offset-based range.
const maxOffsetRange = math.MaxInt32 - 1

// padChar fills strings shorter than the requested minimum length.
const padChar = "A"

// Rand produces random primitive values. The zero value is not usable; use
// New or NewSeeded.
type Rand struct {
	rng *rand.Rand
}

// New wraps an existing source of randomness.
func New(rng *rand.Rand) *Rand {
	return &Rand{rng: rng}
}

// NewSeeded returns a deterministic Rand for the given seed.
func NewSeeded(seed uint64) *Rand {
	return &Rand{rng: rand.New(rand.NewPCG(seed, 0))} //nolint:gosec // test data, not security sensitive
}

// NewUnseeded returns a Rand seeded from the runtime's entropy source.
func NewUnseeded() *Rand {
	return &Rand{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))} //nolint:gosec // test data
}

// Bool returns a coin flip.
func (r *Rand) Bool() bool {
	return r.rng.IntN(2) == 1
}

// Int returns a value in [minV, maxV). An inverted range is clamped to
// maxV = minV, and an empty range returns minV.
func (r *Rand) Int(minV, maxV int32) int32 {
	if maxV <= minV {
		return minV
	}
	return minV + int32(r.rng.Int64N(int64(maxV)-int64(minV)))
}

// Short returns a value in [minV, maxV) with the same clamping as Int.
func (r *Rand) Short(minV, maxV int16) int16 {
	return int16(r.Int(int32(minV), int32(maxV)))
}

// offset returns an integral offset in [1, width]. Widths beyond the offset
// cap are clamped; non-positive widths are forced to 1.
func (r *Rand) offset(width int64) int64 {
	if width > maxOffsetRange || width < 0 {
		width = maxOffsetRange
	}
	if width <= 0 {
		width = 1
	}
	return 1 + r.rng.Int64N(width)
}

// Long returns minV plus an offset in [1, maxV-minV]. The result is never
// minV itself; a zero width range returns minV+1.
func (r *Rand) Long(minV, maxV int64) int64 {
	off := r.offset(maxV - minV)
	if minV > math.MaxInt64-off {
		return math.MaxInt64
	}
	return minV + off
}

// Double returns minV plus an offset drawn from (0, maxV-minV]. Widths of at
// least one use an integral offset; narrower ranges use a fractional one.
func (r *Rand) Double(minV, maxV float64) float64 {
	width := maxV - minV
	if math.IsInf(width, 0) || math.IsNaN(width) || width < 0 || width > maxOffsetRange {
		width = maxOffsetRange
	}
	if width == 0 {
		width = 1
	}
	if width < 1 {
		return minV + width*(1-r.rng.Float64())
	}
	return minV + float64(r.offset(int64(width)))
}

// Decimal returns minV plus an offset drawn from (0, maxV-minV], with the
// same policy as Double.
func (r *Rand) Decimal(minV, maxV decimal.Decimal) decimal.Decimal {
	limit := decimal.NewFromInt(maxOffsetRange)
	one := decimal.NewFromInt(1)

	width := maxV.Sub(minV)
	if width.IsNegative() || width.GreaterThan(limit) {
		width = limit
	}
	if width.IsZero() {
		width = one
	}
	if width.LessThan(one) {
		frac := decimal.NewFromFloat(1 - r.rng.Float64())
		return minV.Add(width.Mul(frac))
	}
	return minV.Add(decimal.NewFromInt(r.offset(width.IntPart())))
}

// Date returns minV plus a whole number of days in [1, days(maxV-minV)).
// The exact minV is never returned. When maxV is the absolute maximum date
// the range loses a day so the offset cannot overflow.
func (r *Rand) Date(minV, maxV time.Time) time.Time {
	if maxV.Before(minV) {
		maxV = minV
	}
	days := wholeDaysBetween(minV, maxV)
	if maxV.Equal(bo.MaxDate) && days > 1 {
		days--
	}
	if days <= 0 {
		days = 1
	}
	if days > maxOffsetRange {
		days = maxOffsetRange
	}
	n := r.Int(1, int32(days))
	return minV.AddDate(0, 0, int(n))
}

// wholeDaysBetween counts the whole days from a to b without going through
// time.Duration, which saturates for spans beyond about 292 years.
func wholeDaysBetween(a, b time.Time) int64 {
	a, b = a.UTC(), b.UTC()
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := civilDays(db) - civilDays(da)
	if b.Sub(db) < a.Sub(da) {
		days--
	}
	return days
}

// civilDays returns a day number for a midnight UTC date.
func civilDays(t time.Time) int64 {
	y, m, d := int64(t.Year()), int64(t.Month()), int64(t.Day())
	if m <= 2 {
		y--
		m += 12
	}
	return 365*y + y/4 - y/100 + y/400 + (153*(m-3)+2)/5 + d
}

// Text returns a 33 character string: an uppercase letter followed by a
// hyphen-free uuid, so the first character is always alphabetic.
func (r *Rand) Text() string {
	return padChar + strings.ReplaceAll(r.Guid().String(), "-", "")
}

// TextMax returns a random string no longer than maxLength.
func (r *Rand) TextMax(maxLength int) string {
	s := r.Text()
	if maxLength >= 0 && maxLength < len(s) {
		s = s[:maxLength]
	}
	return s
}

// TextBetween returns a random string of length in [minLength, maxLength].
// When minLength exceeds maxLength the result has exactly minLength runes.
func (r *Rand) TextBetween(minLength, maxLength int) string {
	s := r.TextMax(maxLength)
	if len(s) < minLength {
		s += strings.Repeat(padChar, minLength-len(s))
	}
	return s
}

// Guid returns a random version 4 uuid drawn from this Rand so seeded runs
// are reproducible.
func (r *Rand) Guid() uuid.UUID {
	u, err := uuid.NewRandomFromReader(rngReader{r.rng})
	if err != nil {
		return uuid.New()
	}
	return u
}

// rngReader adapts a *rand.Rand to io.Reader for uuid generation.
type rngReader struct {
	rng *rand.Rand
}

func (rr rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(rr.rng.Uint32())
	}
	return len(p), nil
}

// Pick returns a uniform index in [0, n). n must be positive.
func (r *Rand) Pick(n int) int {
	return r.rng.IntN(n)
}

// EnumMember returns a uniformly chosen member, or "" for an empty list.
func (r *Rand) EnumMember(members []string) string {
	if len(members) == 0 {
		return ""
	}
	return members[r.rng.IntN(len(members))]
}

// Uint64 returns a raw random value, used to seed derived generators.
func (r *Rand) Uint64() uint64 {
	return r.rng.Uint64()
}

// DoubleBelow mirrors Double from the top of the range: it returns maxV
// minus an offset drawn from (0, maxV-minV], so the result is strictly below
// maxV.
func (r *Rand) DoubleBelow(minV, maxV float64) float64 {
	width := maxV - minV
	if math.IsInf(width, 0) || math.IsNaN(width) || width < 0 || width > maxOffsetRange {
		width = maxOffsetRange
	}
	if width == 0 {
		width = 1
	}
	if width < 1 {
		return maxV - width*(1-r.rng.Float64())
	}
	return maxV - float64(r.offset(int64(width)))
}

// DecimalBelow mirrors Decimal from the top of the range, returning a value
// strictly below maxV.
func (r *Rand) DecimalBelow(minV, maxV decimal.Decimal) decimal.Decimal {
	limit := decimal.NewFromInt(maxOffsetRange)
	one := decimal.NewFromInt(1)

	width := maxV.Sub(minV)
	if width.IsNegative() || width.GreaterThan(limit) {
		width = limit
	}
	if width.IsZero() {
		width = one
	}
	if width.LessThan(one) {
		frac := decimal.NewFromFloat(1 - r.rng.Float64())
		return maxV.Sub(width.Mul(frac))
	}
	return maxV.Sub(decimal.NewFromInt(r.offset(width.IntPart())))
}
