package commands

import (
	"context"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	SetAccessToken(token string)
}

// RegisterSteps registers command pipeline step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commandSteps{tc: tc}

	ctx.Step(`^I send the command "([^"]*)"$`, steps.sendCommand)
	ctx.Step(`^I send the command "([^"]*)" as user "([^"]*)"$`, steps.sendCommandAs)
	ctx.Step(`^I send the confirmed command "([^"]*)"$`, steps.sendConfirmed)
	ctx.Step(`^I preview the command "([^"]*)"$`, steps.preview)
	ctx.Step(`^I send the command "([^"]*)" at local hour (\d+)$`, steps.sendAtHour)
	ctx.Step(`^I send a command with an unknown field$`, steps.sendUnknownField)
	ctx.Step(`^I use the bearer token "([^"]*)"$`, steps.useToken)
}

type commandSteps struct {
	tc TestContext
}

func (s *commandSteps) sendCommand(ctx context.Context, message string) error {
	return s.tc.POST("/commands", map[string]interface{}{"message": message})
}

func (s *commandSteps) sendCommandAs(ctx context.Context, message, userID string) error {
	return s.tc.POST("/commands", map[string]interface{}{
		"message":     message,
		"userContext": map[string]interface{}{"userId": userID},
	})
}

func (s *commandSteps) sendConfirmed(ctx context.Context, message string) error {
	return s.tc.POST("/commands", map[string]interface{}{"message": message, "confirmed": true})
}

func (s *commandSteps) preview(ctx context.Context, message string) error {
	return s.tc.POST("/commands", map[string]interface{}{"message": message, "dryRun": true})
}

func (s *commandSteps) sendAtHour(ctx context.Context, message string, hour int) error {
	return s.tc.POST("/commands", map[string]interface{}{
		"message":  message,
		"userTime": map[string]interface{}{"localHour": hour},
	})
}

func (s *commandSteps) sendUnknownField(ctx context.Context) error {
	return s.tc.POST("/commands", map[string]interface{}{"message": "weigh 175 pounds", "admin": true})
}

func (s *commandSteps) useToken(ctx context.Context, token string) error {
	s.tc.SetAccessToken(token)
	return nil
}
