package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"
)

// TestFeatures runs against a live server at LIFEDASH_E2E_URL.
func TestFeatures(t *testing.T) {
	baseURL := os.Getenv("LIFEDASH_E2E_URL")
	if baseURL == "" {
		t.Skip("LIFEDASH_E2E_URL not set")
	}
	tc := NewTestContext(baseURL)

	suite := godog.TestSuite{
		Name: "lifedash",
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
				tc.Reset()
				return ctx, nil
			})
			RegisterSteps(ctx, tc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Tags:     os.Getenv("GODOG_TAGS"),
			TestingT: t,
			Strict:   true,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("feature run failed")
	}
}
