package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netforge-io/netforge/pkg/netforge"
)

// newLoginCmd creates and returns a new login command
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Provision an API token from the server",
		Long: `Login to the server to provision an API token.
The token is stored in your configuration file and sent with every
subsequent request.

The login process requires:
- A configured server URL
- A username (provided via --username or stored in config)
- A password (provided via --password or the NETFORGE_PASSWORD environment variable)

Example:
  netforge login --username admin --password secret
  netforge login --username admin  # password from NETFORGE_PASSWORD`,
		RunE: runLogin,
	}

	cmd.Flags().String("username", "", "Username for authentication")
	cmd.Flags().String("password", "", "Password for authentication")
	return cmd
}

// runLogin handles the login command execution
func runLogin(cmd *cobra.Command, args []string) error {
	// Get the current configuration
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("no configuration loaded")
	}

	username, _ := cmd.Flags().GetString("username")
	if username == "" {
		username = cfg.Username
		if username == "" {
			return fmt.Errorf("no username provided. Use --username flag or set username in config file")
		}
	}

	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("NETFORGE_PASSWORD")
		if password == "" {
			return fmt.Errorf("no password provided. Use --password flag or set NETFORGE_PASSWORD")
		}
	}

	// The provisioning call runs without a token
	client, err := netforge.New(cfg.GetServerURL(), "", cfg.clientOptions()...)
	if err != nil {
		return err
	}

	rec, err := client.ProvisionToken(cmd.Context(), username, password)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}

	token := rec.GetString("key")
	if token == "" {
		return fmt.Errorf("server response did not contain a token key")
	}

	cfg.Token = token
	cfg.Username = username

	// Save updated configuration
	if err := cfg.WriteConfig(configFile); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	expires := rec.GetString("expires")
	if expires == "" {
		expires = "never"
	}

	// Print success message
	if jsonOutput {
		kv := map[string]interface{}{
			"status":  "success",
			"message": "Login successful",
			"expires": expires,
		}
		printJSON(kv)
	} else {
		okLabel.Println("✓ Login successful")
		fmt.Printf("Token expires: %s\n", expires)
	}

	return nil
}
