package mullvad

import (
	"context"
	"fmt"

	"relayping/internal/execx"
)

// Changer switches the active Mullvad relay through the mullvad CLI.
type Changer struct {
	runner execx.Runner
	binary string
}

func NewChanger(runner execx.Runner) *Changer {
	return &Changer{runner: runner, binary: "mullvad"}
}

// SetRelay points the VPN at hostname. Any failure of the CLI is returned.
func (c *Changer) SetRelay(ctx context.Context, hostname string) error {
	if hostname == "" {
		return fmt.Errorf("relay hostname is required")
	}
	if err := c.runner.Run(ctx, c.binary, "relay", "set", "location", hostname); err != nil {
		return fmt.Errorf("an error occurred while changing the Mullvad relay to %s: %w", hostname, err)
	}
	return nil
}
