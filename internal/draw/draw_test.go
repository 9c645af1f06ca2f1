package draw

import (
	"math/rand"
	"testing"

	"github.com/nakawin/casino-backend/pkg/db/models"
)

func testOptions() []models.RewardOption {
	return []models.RewardOption{
		{Name: "Coins", Weight: 70, Value: 50},
		{Name: "Dagger", Weight: 25, Value: 250},
		{Name: "Greatsword", Weight: 5, Value: 1100},
	}
}

func TestPickSelectsByCumulativeWeight(t *testing.T) {
	options := testOptions()

	cases := []struct {
		roll float64
		want string
	}{
		{0, "Coins"},
		{69.9, "Coins"},
		{70, "Coins"}, // exact boundary stays with the current option
		{70.1, "Dagger"},
		{95, "Dagger"},
		{95.1, "Greatsword"},
		{99.9, "Greatsword"},
		{100, "Greatsword"},
	}
	for _, tc := range cases {
		result := pick(options, tc.roll)
		if result.Option.Name != tc.want {
			t.Errorf("roll %.1f: expected %s, got %s", tc.roll, tc.want, result.Option.Name)
		}
		if result.Fallback {
			t.Errorf("roll %.1f: unexpected fallback", tc.roll)
		}
	}
}

func TestPickSkipsNonPositiveWeights(t *testing.T) {
	options := []models.RewardOption{
		{Name: "Broken", Weight: 0},
		{Name: "Coins", Weight: 100},
	}
	result := pick(options, 0)
	if result.Option.Name != "Coins" {
		t.Fatalf("expected zero-weight option skipped, got %s", result.Option.Name)
	}
}

func TestPickFallbackUsesLastOption(t *testing.T) {
	options := testOptions()
	// A roll past the total weight exhausts the scan.
	result := pick(options, 100.5)
	if !result.Fallback {
		t.Fatal("expected fallback to be flagged")
	}
	if result.Option.Name != "Greatsword" {
		t.Fatalf("fallback should return the last option, got %s", result.Option.Name)
	}
	if result.Index != 2 {
		t.Fatalf("fallback index should be last, got %d", result.Index)
	}
}

func TestPickScalesSampleByTotalWeight(t *testing.T) {
	options := testOptions()

	cases := []struct {
		sample float64
		want   string
	}{
		{0, "Coins"},
		{0.5, "Coins"},
		{0.7, "Coins"}, // 0.7 * 100 = 70, the exact boundary
		{0.8, "Dagger"},
		{0.99, "Greatsword"},
	}
	for _, tc := range cases {
		result, err := Pick(options, tc.sample)
		if err != nil {
			t.Fatalf("Pick error: %v", err)
		}
		if result.Option.Name != tc.want {
			t.Errorf("sample %.2f: expected %s, got %s", tc.sample, tc.want, result.Option.Name)
		}
	}
}

func TestDrawValidation(t *testing.T) {
	engine := NewEngine()

	if _, err := engine.Draw(nil); err == nil {
		t.Fatal("expected error for empty options")
	}
	if _, err := engine.Draw([]models.RewardOption{{Name: "Broken", Weight: 0}}); err == nil {
		t.Fatal("expected error when total weight is zero")
	}
}

func TestDrawDistribution(t *testing.T) {
	engine := NewEngineWithSource(rand.NewSource(42))
	options := testOptions()

	counts := map[string]int{}
	const iterations = 20000
	for i := 0; i < iterations; i++ {
		result, err := engine.Draw(options)
		if err != nil {
			t.Fatalf("Draw error: %v", err)
		}
		counts[result.Option.Name]++
	}

	// Expect roughly 70/25/5 with generous tolerance.
	checks := []struct {
		name string
		min  float64
		max  float64
	}{
		{"Coins", 0.65, 0.75},
		{"Dagger", 0.20, 0.30},
		{"Greatsword", 0.03, 0.07},
	}
	for _, check := range checks {
		share := float64(counts[check.name]) / iterations
		if share < check.min || share > check.max {
			t.Errorf("%s share %.3f outside [%.2f, %.2f]", check.name, share, check.min, check.max)
		}
	}
}
