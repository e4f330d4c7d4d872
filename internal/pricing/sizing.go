// Package pricing implements the quote line-item pricing engine: size-bracket
// resolution, discount resolution, service-plan line pricing, and bundle
// pricing. Everything in this package is a pure function of its inputs;
// persistence and request handling live in the quotes module.
package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Settings holds a company's size-bracket configuration for the three
// pricing dimensions. Loaded from company_pricing_settings.
type Settings struct {
	BaseHomeSqFt       float64
	HomeSqFtInterval   float64
	MaxHomeSqFt        float64
	BaseYardAcres      float64
	YardAcresInterval  float64
	MaxYardAcres       float64
	BaseLinearFeet     float64
	LinearFeetInterval float64
	MaxLinearFeet      float64
}

// DimensionPricing is a service plan's per-interval cost for one dimension.
type DimensionPricing struct {
	InitialCostPerInterval   float64
	RecurringCostPerInterval float64
}

// PlanSizing captures which size dimensions a plan prices. A nil entry means
// the plan does not adjust for that dimension and its increases are always 0.
type PlanSizing struct {
	HomeSize   *DimensionPricing
	YardSize   *DimensionPricing
	LinearFeet *DimensionPricing
}

// SizeOption is one generated bracket, annotated with the price increases a
// quote in that bracket pays on top of the plan's base price.
type SizeOption struct {
	Value             string
	Label             string
	IntervalIndex     int
	InitialIncrease   float64
	RecurringIncrease float64
	RangeStart        float64
	RangeEnd          *float64 // nil for the open-ended last bracket
}

// ParseRangeValue extracts the lookup key from a stored size range string.
// "1500-2000" yields 1500, "3000+" yields 3000, empty yields 0.
func ParseRangeValue(rangeString string) float64 {
	trimmed := strings.TrimSpace(rangeString)
	if trimmed == "" {
		return 0
	}

	if strings.Contains(trimmed, "+") {
		value, err := strconv.ParseFloat(strings.TrimSuffix(trimmed, "+"), 64)
		if err != nil {
			return 0
		}
		return value
	}

	start, _, _ := strings.Cut(trimmed, "-")
	value, err := strconv.ParseFloat(start, 64)
	if err != nil {
		return 0
	}
	return value
}

// GenerateHomeSizeOptions builds the ordered home-size brackets for a company.
// The first bracket runs 0..base, subsequent brackets step by the configured
// interval, and the last bracket is open-ended at the configured max.
// planCfg may be nil, in which case all increases are 0.
func GenerateHomeSizeOptions(settings Settings, planCfg *DimensionPricing) []SizeOption {
	return generateOptions(bracketSpec{
		base:     settings.BaseHomeSqFt,
		interval: settings.HomeSqFtInterval,
		max:      settings.MaxHomeSqFt,
		step:     1,
		unit:     "Sq Ft",
	}, planCfg)
}

// GenerateYardSizeOptions builds the ordered yard-size brackets for a company.
// Yard sizes are in acres, so brackets step by hundredths.
func GenerateYardSizeOptions(settings Settings, planCfg *DimensionPricing) []SizeOption {
	return generateOptions(bracketSpec{
		base:     settings.BaseYardAcres,
		interval: settings.YardAcresInterval,
		max:      settings.MaxYardAcres,
		step:     0.01,
		unit:     "Acres",
	}, planCfg)
}

// GenerateLinearFeetOptions builds the ordered linear-feet brackets for a company.
func GenerateLinearFeetOptions(settings Settings, planCfg *DimensionPricing) []SizeOption {
	return generateOptions(bracketSpec{
		base:     settings.BaseLinearFeet,
		interval: settings.LinearFeetInterval,
		max:      settings.MaxLinearFeet,
		step:     1,
		unit:     "Linear Ft",
	}, planCfg)
}

// FindSizeOptionByValue returns the bracket containing value, or nil when no
// bracket matches (e.g., settings are unconfigured and no options exist).
func FindSizeOptionByValue(value float64, options []SizeOption) *SizeOption {
	for i := range options {
		opt := &options[i]
		if opt.RangeEnd == nil {
			if value >= opt.RangeStart {
				return opt
			}
			continue
		}
		if value >= opt.RangeStart && value <= *opt.RangeEnd {
			return opt
		}
	}
	return nil
}

// LinearFeetPrice is the additive price contribution of the linear-feet
// dimension. Unlike home/yard it is exposed as its own calculation because
// callers must skip it entirely when no linear-feet range is present.
type LinearFeetPrice struct {
	InitialPrice   float64
	RecurringPrice float64
}

// CalculateLinearFeetPrice resolves the linear-feet bracket for value and
// returns its price adds. Returns zero prices when value is not positive or
// the plan does not price linear feet.
func CalculateLinearFeetPrice(value float64, settings Settings, planCfg *DimensionPricing) LinearFeetPrice {
	if value <= 0 || planCfg == nil {
		return LinearFeetPrice{}
	}

	options := GenerateLinearFeetOptions(settings, planCfg)
	option := FindSizeOptionByValue(value, options)
	if option == nil {
		return LinearFeetPrice{}
	}

	return LinearFeetPrice{
		InitialPrice:   option.InitialIncrease,
		RecurringPrice: option.RecurringIncrease,
	}
}

// bracketSpec parameterizes bracket generation across the three dimensions.
type bracketSpec struct {
	base     float64
	interval float64
	max      float64
	step     float64 // minimum increment between adjacent brackets
	unit     string
}

func generateOptions(spec bracketSpec, planCfg *DimensionPricing) []SizeOption {
	if spec.base <= 0 || spec.interval <= 0 || spec.max <= spec.base {
		return nil
	}

	var options []SizeOption
	currentSize := 0.0
	intervalIndex := 0

	for currentSize <= spec.max {
		rangeStart := currentSize
		var rangeEnd float64
		if currentSize == 0 {
			rangeEnd = spec.base
		} else {
			rangeEnd = roundStep(math.Min(currentSize+spec.interval, spec.max), spec.step)
		}

		isLast := rangeEnd >= spec.max

		var initialIncrease, recurringIncrease float64
		if planCfg != nil {
			initialIncrease = float64(intervalIndex) * planCfg.InitialCostPerInterval
			recurringIncrease = float64(intervalIndex) * planCfg.RecurringCostPerInterval
		}

		opt := SizeOption{
			IntervalIndex:     intervalIndex,
			InitialIncrease:   initialIncrease,
			RecurringIncrease: recurringIncrease,
			RangeStart:        rangeStart,
		}
		if isLast {
			opt.Value = formatStep(rangeStart, spec.step) + "+"
			opt.Label = fmt.Sprintf("%s+ %s", formatStep(rangeStart, spec.step), spec.unit)
		} else {
			end := rangeEnd
			opt.RangeEnd = &end
			opt.Value = formatStep(rangeStart, spec.step) + "-" + formatStep(rangeEnd, spec.step)
			opt.Label = fmt.Sprintf("%s-%s %s", formatStep(rangeStart, spec.step), formatStep(rangeEnd, spec.step), spec.unit)
		}
		if planCfg != nil && intervalIndex > 0 {
			opt.Label += fmt.Sprintf(" (+$%.2f initial, +$%.2f/month)", initialIncrease, recurringIncrease)
		}
		options = append(options, opt)

		if isLast {
			break
		}

		if currentSize == 0 {
			currentSize = roundStep(spec.base+spec.step, spec.step)
		} else {
			currentSize = roundStep(rangeEnd+spec.step, spec.step)
		}
		intervalIndex++
	}

	return options
}

// roundStep snaps v to avoid float drift when stepping by hundredths of an
// acre. Fractional dimensions round to thousandths.
func roundStep(v, step float64) float64 {
	if step >= 1 {
		return math.Round(v)
	}
	return math.Round(v*1000) / 1000
}

func formatStep(v, step float64) string {
	if step >= 1 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
