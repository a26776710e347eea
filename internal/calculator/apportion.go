package calculator

import (
	"errors"
	"fmt"

	"github.com/mmynk/eventsplit/internal/models"
)

var (
	// ErrInvalidShareCount is returned when asked to split into k <= 0 shares.
	ErrInvalidShareCount = errors.New("share count must be positive")

	// ErrApportionmentViolation means shares no longer sum to the total.
	// It indicates a defect and is never patched over.
	ErrApportionmentViolation = errors.New("apportionment violation")
)

// Apportion splits total into k cent-exact shares.
//
// Every share is floor(total/k); the first total%k shares get one extra cent,
// so callers control who absorbs the leftover cents through the order in
// which they consume the result. The shares always sum to total and differ by
// at most one cent.
func Apportion(total models.Money, k int) ([]models.Money, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShareCount, k)
	}
	if total < 0 {
		return nil, fmt.Errorf("%w: cannot apportion %s", models.ErrInvalidAmount, total)
	}

	base := total / models.Money(k)
	leftover := int(total % models.Money(k))

	shares := make([]models.Money, k)
	for i := range shares {
		shares[i] = base
		if i < leftover {
			shares[i]++
		}
	}
	return shares, nil
}

func sum(shares []models.Money) models.Money {
	var s models.Money
	for _, m := range shares {
		s += m
	}
	return s
}
