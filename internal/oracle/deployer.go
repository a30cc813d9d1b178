package oracle

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Dallionking/casper-risk-oracle/internal/config"
)

// Deployer publishes a score on chain and returns the deploy hash. An empty
// hash with a nil error means the deploy went through but no hash could be
// read from the output.
type Deployer interface {
	Deploy(ctx context.Context, validator string, score int) (string, error)
}

// runFunc executes a command and returns its stdout.
type runFunc func(ctx context.Context, name string, args ...string) (string, error)

// CasperClient wraps casper-client shell commands.
type CasperClient struct {
	push config.PushConfig
	run  runFunc
}

// NewCasperClient creates a CasperClient for the given push settings.
func NewCasperClient(push config.PushConfig) *CasperClient {
	return &CasperClient{push: push, run: execRun}
}

// execRun executes a command and returns stdout. Stderr is folded into the
// error so failures carry the client's message.
func execRun(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return string(out), fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return string(out), err
	}
	return string(out), nil
}

// Binary returns the configured client executable.
func (c *CasperClient) Binary() string {
	if c.push.Client == "" {
		return "casper-client"
	}
	return c.push.Client
}

// Available reports whether the client binary can be found on PATH.
func (c *CasperClient) Available() error {
	if _, err := exec.LookPath(c.Binary()); err != nil {
		return fmt.Errorf("%s not found: %w", c.Binary(), err)
	}
	return nil
}

// Args builds the put-deploy argument list for one score update.
func (c *CasperClient) Args(validator string, score int) []string {
	entry := c.push.EntryPoint
	if entry == "" {
		entry = "update_risk"
	}
	return []string{
		"put-deploy",
		"--node-address", c.push.NodeAddress,
		"--chain-name", c.push.ChainName,
		"--secret-key", c.push.SecretKey,
		"--payment-amount", c.push.PaymentAmount,
		"--session-hash", "hash-" + strings.TrimPrefix(c.push.ContractHash, "hash-"),
		"--session-entry-point", entry,
		"--session-arg", fmt.Sprintf("validator:string='%s'", validator),
		"--session-arg", fmt.Sprintf("score:u8='%d'", score),
	}
}

// Deploy runs put-deploy and parses the deploy hash from its output.
func (c *CasperClient) Deploy(ctx context.Context, validator string, score int) (string, error) {
	if score < 0 || score > 255 {
		return "", fmt.Errorf("score %d does not fit in u8", score)
	}

	if c.push.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.push.Timeout)
		defer cancel()
	}

	out, err := c.run(ctx, c.Binary(), c.Args(validator, score)...)
	if err != nil {
		return "", fmt.Errorf("%s put-deploy: %w", c.Binary(), err)
	}
	return ParseDeployHash(out), nil
}

// ParseDeployHash finds the first line mentioning deploy_hash and returns
// the quoted value after the key, e.g. `"deploy_hash": "abc"` yields abc.
func ParseDeployHash(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "deploy_hash") {
			continue
		}
		parts := strings.Split(line, `"`)
		if len(parts) > 3 && parts[3] != "" {
			return parts[3]
		}
	}
	return ""
}
