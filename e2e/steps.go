package e2e

import (
	"github.com/cucumber/godog"

	"lifedash/e2e/steps/commands"
	"lifedash/e2e/steps/common"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (background, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register command pipeline steps
	commands.RegisterSteps(ctx, tc)
}
