package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PaperSpec identifies a paper grade by grammage, burst factor and shade.
// It is the grouping key for planning: a cutting pattern never mixes
// pieces of different specifications.
type PaperSpec struct {
	GSM   int
	BF    decimal.Decimal
	Shade string
}

// NewPaperSpec creates a validated PaperSpec
func NewPaperSpec(gsm int, bf decimal.Decimal, shade string) (PaperSpec, error) {
	if gsm <= 0 {
		return PaperSpec{}, fmt.Errorf("gsm must be positive, got %d", gsm)
	}
	if bf.Sign() <= 0 {
		return PaperSpec{}, fmt.Errorf("bf must be positive, got %s", bf)
	}
	if shade == "" {
		return PaperSpec{}, fmt.Errorf("shade cannot be empty")
	}
	return PaperSpec{GSM: gsm, BF: bf, Shade: shade}, nil
}

// Key returns the canonical grouping key for this specification
func (s PaperSpec) Key() string {
	return fmt.Sprintf("%dgsm|%sbf|%s", s.GSM, s.BF.StringFixed(1), s.Shade)
}

// Equal reports whether two specifications identify the same paper grade
func (s PaperSpec) Equal(other PaperSpec) bool {
	return s.GSM == other.GSM && s.BF.Equal(other.BF) && s.Shade == other.Shade
}

func (s PaperSpec) String() string {
	return fmt.Sprintf("GSM=%d BF=%s Shade=%s", s.GSM, s.BF.StringFixed(1), s.Shade)
}
