package generator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CLIClient drafts items by shelling out to a locally installed claude
// binary instead of the API. Meant for development machines where an API
// key is not configured.
type CLIClient struct {
	binary string
}

func NewCLIClient(binary string) *CLIClient {
	return &CLIClient{binary: binary}
}

func (c *CLIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, c.binary,
		"--print",
		"--output-format", "text",
		"--system-prompt", systemPrompt,
		"--max-turns", "1",
	)
	cmd.Stdin = strings.NewReader(userPrompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("claude CLI: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", fmt.Errorf("claude CLI produced no output")
	}
	return out, nil
}
