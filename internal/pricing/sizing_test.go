package pricing

import "testing"

func TestParseRangeValue(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1500-2000", 1500},
		{"3000+", 3000},
		{"", 0},
		{"  ", 0},
		{"0.26-0.50", 0.26},
		{"2.00+", 2},
		{"garbage", 0},
	}
	for _, tc := range cases {
		if got := ParseRangeValue(tc.in); got != tc.want {
			t.Fatalf("ParseRangeValue(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestGenerateHomeSizeOptions_BracketsAndIncreases(t *testing.T) {
	settings := Settings{BaseHomeSqFt: 1500, HomeSqFtInterval: 1000, MaxHomeSqFt: 3000}
	cfg := &DimensionPricing{InitialCostPerInterval: 50, RecurringCostPerInterval: 10}

	options := GenerateHomeSizeOptions(settings, cfg)
	if len(options) != 3 {
		t.Fatalf("expected 3 brackets, got %d", len(options))
	}

	if options[0].Value != "0-1500" || options[0].InitialIncrease != 0 {
		t.Fatalf("first bracket wrong: %+v", options[0])
	}
	if options[1].Value != "1501-2501" || options[1].InitialIncrease != 50 || options[1].RecurringIncrease != 10 {
		t.Fatalf("second bracket wrong: %+v", options[1])
	}
	last := options[2]
	if last.Value != "2502+" || last.RangeEnd != nil {
		t.Fatalf("last bracket should be open-ended: %+v", last)
	}
	if last.InitialIncrease != 100 || last.RecurringIncrease != 20 {
		t.Fatalf("last bracket increases wrong: %+v", last)
	}
}

func TestGenerateHomeSizeOptions_NoPlanConfigZeroIncreases(t *testing.T) {
	settings := Settings{BaseHomeSqFt: 1500, HomeSqFtInterval: 500, MaxHomeSqFt: 3000}

	for _, opt := range GenerateHomeSizeOptions(settings, nil) {
		if opt.InitialIncrease != 0 || opt.RecurringIncrease != 0 {
			t.Fatalf("expected zero increases without plan config, got %+v", opt)
		}
	}
}

func TestGenerateHomeSizeOptions_UnconfiguredSettings(t *testing.T) {
	if got := GenerateHomeSizeOptions(Settings{}, nil); got != nil {
		t.Fatalf("expected no options for unconfigured settings, got %d", len(got))
	}
}

func TestGenerateYardSizeOptions_HundredthSteps(t *testing.T) {
	settings := Settings{BaseYardAcres: 0.25, YardAcresInterval: 0.25, MaxYardAcres: 1}
	options := GenerateYardSizeOptions(settings, nil)

	if len(options) != 4 {
		t.Fatalf("expected 4 brackets, got %d", len(options))
	}
	if options[0].Value != "0.00-0.25" {
		t.Fatalf("first bracket value = %q", options[0].Value)
	}
	if options[1].Value != "0.26-0.51" {
		t.Fatalf("second bracket value = %q", options[1].Value)
	}
	if options[2].Value != "0.52-0.77" {
		t.Fatalf("third bracket value = %q", options[2].Value)
	}
	if options[3].Value != "0.78+" || options[3].RangeEnd != nil {
		t.Fatalf("last bracket wrong: %+v", options[3])
	}
}

func TestFindSizeOptionByValue(t *testing.T) {
	settings := Settings{BaseHomeSqFt: 1500, HomeSqFtInterval: 1000, MaxHomeSqFt: 3000}
	cfg := &DimensionPricing{InitialCostPerInterval: 50}
	options := GenerateHomeSizeOptions(settings, cfg)

	opt := FindSizeOptionByValue(ParseRangeValue("1800-2200"), options)
	if opt == nil {
		t.Fatal("expected bracket for 1800")
	}
	if opt.InitialIncrease != 50 {
		t.Fatalf("expected +50 initial increase, got %v", opt.InitialIncrease)
	}

	if opt := FindSizeOptionByValue(9999, options); opt == nil || opt.RangeEnd != nil {
		t.Fatalf("expected open-ended bracket for out-of-range value, got %+v", opt)
	}

	if opt := FindSizeOptionByValue(100, nil); opt != nil {
		t.Fatalf("expected nil for empty options, got %+v", opt)
	}
}

func TestCalculateLinearFeetPrice(t *testing.T) {
	settings := Settings{BaseLinearFeet: 100, LinearFeetInterval: 50, MaxLinearFeet: 300}
	cfg := &DimensionPricing{InitialCostPerInterval: 25, RecurringCostPerInterval: 5}

	got := CalculateLinearFeetPrice(120, settings, cfg)
	if got.InitialPrice != 25 || got.RecurringPrice != 5 {
		t.Fatalf("expected +25/+5 for 120 linear ft, got %+v", got)
	}

	if got := CalculateLinearFeetPrice(0, settings, cfg); got != (LinearFeetPrice{}) {
		t.Fatalf("expected zero price for zero value, got %+v", got)
	}
	if got := CalculateLinearFeetPrice(120, settings, nil); got != (LinearFeetPrice{}) {
		t.Fatalf("expected zero price without plan config, got %+v", got)
	}
}
