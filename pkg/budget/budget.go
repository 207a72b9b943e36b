package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is the single global balance that events reserve money from.
type Budget struct {
	Current   decimal.Decimal
	UpdatedAt time.Time
}
