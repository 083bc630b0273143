package steuerkern

import "fmt"

// WarningCode classifies a Warning for programmatic filtering, so callers
// are not forced to grep free-text messages.
type WarningCode int

const (
	// ClampedOverdraw marks a cash-queue pop that was silently clamped to
	// the queue's total because the shortfall was within the broker
	// rounding tolerance of one unit.
	ClampedOverdraw WarningCode = iota
	// SplitNormalised marks an event whose quoted price/quantity was
	// rewritten because it did not agree with the price oracle's
	// split-adjusted close.
	SplitNormalised
	// RateAdvanced marks an FX lookup that had to advance past the
	// requested date to find a rate.
	RateAdvanced
	// PriceOracleMiss marks a normalisation that treated a quoted price as
	// already historic because the oracle had no data for the symbol.
	PriceOracleMiss
)

func (c WarningCode) String() string {
	switch c {
	case ClampedOverdraw:
		return "ClampedOverdraw"
	case SplitNormalised:
		return "SplitNormalised"
	case RateAdvanced:
		return "RateAdvanced"
	case PriceOracleMiss:
		return "PriceOracleMiss"
	default:
		return "Unknown"
	}
}

// Warning is a non-fatal notice collected by the kernel while processing
// events. The kernel never panics or halts for a Warning; it is returned to
// the caller alongside the report as a plain slice, not raised as an error.
type Warning struct {
	Code    WarningCode
	Event   Event // may be nil for warnings not tied to a single event
	Message string
}

func (w Warning) String() string {
	if w.Event == nil {
		return fmt.Sprintf("[%s] %s", w.Code, w.Message)
	}
	return fmt.Sprintf("[%s] %s on %s: %s", w.Code, w.Event.What(), w.Event.When(), w.Message)
}
