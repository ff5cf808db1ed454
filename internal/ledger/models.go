package ledger

import (
	"fmt"
	"math/bits"
	"strings"
	"time"

	"github.com/dmitrijs2005/ghosttips/internal/common"
	"github.com/dmitrijs2005/ghosttips/internal/fhe"
)

type Category string

const (
	CategoryCreator   Category = "creator"
	CategoryDeveloper Category = "developer"
	CategoryCharity   Category = "charity"
	CategoryEducation Category = "education"
	CategoryOther     Category = "other"
)

// ParseCategory maps user input to a Category. An empty string is "other".
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CategoryOther, nil
	case CategoryCreator, CategoryDeveloper, CategoryCharity, CategoryEducation, CategoryOther:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown category %q", common.ErrorInvalidInput, s)
	}
}

// TipJar is a named collection point for tips. TipCount is public,
// EncryptedTotal is readable only by the owner.
type TipJar struct {
	ID             uint64
	Owner          string
	Name           string
	Description    string
	Category       Category
	Active         bool
	EncryptedTotal fhe.Value
	TipCount       uint64
	CreatedAt      time.Time
}

// JarSpec carries the user-supplied attributes of a new jar.
type JarSpec struct {
	Name        string
	Description string
	Category    string
}

// Tip is one received tip. Seq numbers tips within a jar starting at 1.
type Tip struct {
	JarID           uint64
	Seq             uint64
	Sender          string
	EncryptedAmount fhe.Value
	Message         string
	CreatedAt       time.Time
}

// Exchange is the public state of the exchange engine. Reserve is held in
// base-currency units, Supply in tokens.
type Exchange struct {
	Rate    uint64
	Reserve uint64
	Supply  uint64
}

// Balanced reports whether Reserve*Rate == Supply.
func (e Exchange) Balanced() bool {
	hi, lo := bits.Mul64(e.Reserve, e.Rate)
	return hi == 0 && lo == e.Supply
}

// Standing is one row of the leaderboard. It deliberately carries no
// encrypted values.
type Standing struct {
	Rank     int
	JarID    uint64
	Name     string
	Category Category
	Owner    string
	TipCount uint64
}

// Limits bounds user-supplied text. Lengths are counted in runes.
type Limits struct {
	MaxNameLength        int
	MaxDescriptionLength int
	MaxMessageLength     int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxNameLength:        64,
		MaxDescriptionLength: 280,
		MaxMessageLength:     280,
	}
}
