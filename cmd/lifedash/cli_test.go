package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifedash/internal/catalog"
	"lifedash/internal/command/handler"
	"lifedash/internal/command/models"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestInterpretCommand(t *testing.T) {
	out := execute(t, "interpret", "weigh", "175", "pounds")

	var resp handler.CommandResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, catalog.Health, resp.Results[0].Domain)
	assert.Equal(t, models.ResultValid, resp.Results[0].Status)
}

func TestDomainsCommand(t *testing.T) {
	out := execute(t, "domains")
	assert.Contains(t, out, "financial")
	assert.Contains(t, out, "health")
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "test-signing-key")
	out := execute(t, "token", "--user", "user-1")
	assert.Regexp(t, `^[\w-]+\.[\w-]+\.[\w-]+\s*$`, out)
}
