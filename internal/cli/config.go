package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/netforge-io/netforge/pkg/netforge"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// Config represents the configuration for the NetForge CLI
// It contains server connection details and authentication information
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version"`
	// ServerURL is the base URL of the NetBox-compatible server
	ServerURL string `yaml:"server_url" validate:"required,http_url"`
	// Token is the API token sent with every request
	Token string `yaml:"token"`
	// Username is the account used by login (stored for convenience)
	Username string `yaml:"username,omitempty"`
	// InsecureSkipVerify disables TLS certificate verification
	InsecureSkipVerify bool `yaml:"insecure_skip_verify,omitempty"`
	// TimeoutSeconds is the per-request timeout in seconds, 0 for the default
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty" validate:"omitempty,gte=1,lte=600"`
}

var config *Config

var configValidator *validator.Validate

// v returns the package validator, created on first use.
func v() *validator.Validate {
	if configValidator == nil {
		configValidator = validator.New(validator.WithRequiredStructEnabled())
	}
	return configValidator
}

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/netforge on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "netforge", DefaultConfigFile), nil
}

// LoadConfig loads the configuration from the specified file
// If no file is specified, it uses the default config location
func LoadConfig(file string) error {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	yamlStr, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("unable to read config file: %w", err)
	}

	var c Config
	if err = yaml.Unmarshal(yamlStr, &c); err != nil {
		return fmt.Errorf("unable to parse config file: %w", err)
	}

	// Normalize the server URL before validating
	c.ServerURL = NormalizeServerURL(c.ServerURL)

	if err := c.ValidateConfig(); err != nil {
		return err
	}

	config = &c
	return nil
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// WriteConfig writes the current configuration to the specified file
// If no file is specified, it uses the default config location
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), os.ModePerm)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	err = os.WriteFile(file, yamlStr, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// ValidateConfig validates the configuration
// Checks for required fields and proper formatting
func (cfg *Config) ValidateConfig() error {
	if cfg.ServerURL == "" {
		return errors.New("server_url is required")
	}
	err := v().Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("invalid config: field %s failed on %q", verrs[0].Field(), verrs[0].Tag())
	}
	return fmt.Errorf("invalid config: %v", err)
}

// NormalizeServerURL ensures the server URL is properly formatted
// Adds https:// prefix if missing and removes trailing slashes
func NormalizeServerURL(server string) string {
	if server == "" {
		return server
	}

	// Remove any trailing slashes
	server = strings.TrimRight(server, "/")

	// Add https:// if no protocol is specified
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "https://" + server
	}

	return server
}

// GetServerURL returns the properly formatted server URL
func (cfg *Config) GetServerURL() string {
	return NormalizeServerURL(cfg.ServerURL)
}

// GetToken returns the API token from the configuration
func (cfg *Config) GetToken() string {
	return cfg.Token
}

// clientOptions translates config fields into client construction options.
func (cfg *Config) clientOptions() []netforge.Option {
	var opts []netforge.Option
	if cfg.InsecureSkipVerify {
		opts = append(opts, netforge.WithInsecureSkipVerify())
	}
	if cfg.TimeoutSeconds > 0 {
		opts = append(opts, netforge.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second))
	}
	return opts
}

// newAPIClient builds a REST client from the loaded configuration.
func newAPIClient() (*netforge.RESTClient, error) {
	cfg := GetConfig()
	if cfg == nil {
		return nil, errors.New("no configuration loaded")
	}
	return netforge.New(cfg.GetServerURL(), cfg.Token, cfg.clientOptions()...)
}

// maskToken hides the middle of a token for display
func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long:  `Manage CLI configuration settings like server connection and authentication.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Check if --server flag is provided
		serverFlag, _ := cmd.Flags().GetString("server")
		if serverFlag != "" {
			return setServerConfig(serverFlag)
		}

		return runConfigView(cmd, args)
	},
}

// configViewCmd represents the config view command
var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the current configuration",
	Long:  `Show the current configuration. The token is masked in the output.`,
	RunE:  runConfigView,
}

// configSetServerCmd represents the config set-server command
var configSetServerCmd = &cobra.Command{
	Use:   "set-server URL",
	Short: "Set the server URL",
	Long: `Set the server URL. An https:// prefix is added when no protocol is
given. An existing token is kept, so switching between servers that share a
token needs no new login.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setServerConfig(args[0])
	},
}

// configSetTokenCmd represents the config set-token command
var configSetTokenCmd = &cobra.Command{
	Use:   "set-token TOKEN",
	Short: "Set the API token",
	Long:  `Set the API token sent with every request. The server must be configured first.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := LoadConfig(configFile); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Println("NetForge config file not found. Configure netforge with \"netforge config set-server <url>\" first.")
				os.Exit(1)
			}
			fmt.Printf("Unable to load config file: %s\n", err.Error())
			os.Exit(1)
		}
		cfg := GetConfig()
		cfg.Token = args[0]

		if err := cfg.WriteConfig(configFile); err != nil {
			return fmt.Errorf("failed to save config: %v", err)
		}

		if jsonOutput {
			printJSON(map[string]int{"result": 1})
		} else {
			okLabel.Fprintf(os.Stdout, "[OK] ")
			fmt.Println("Token updated")
		}
		return nil
	},
}

// runConfigView loads and prints the current configuration
func runConfigView(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(configFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("NetForge config file not found. Configure netforge with \"netforge config set-server <url>\" first.")
			os.Exit(1)
		}
		fmt.Printf("Unable to load config file: %s\n", err.Error())
		os.Exit(1)
	}
	cfg := GetConfig()

	if jsonOutput {
		printJSON(map[string]any{
			"server":               cfg.GetServerURL(),
			"token":                maskToken(cfg.Token),
			"username":             cfg.Username,
			"insecure_skip_verify": cfg.InsecureSkipVerify,
			"timeout_seconds":      cfg.TimeoutSeconds,
			"config_file":          configFile,
		})
		return nil
	}

	fmt.Printf("Server: %s\n", cfg.GetServerURL())
	fmt.Printf("Token: %s\n", maskToken(cfg.Token))
	if cfg.Username != "" {
		fmt.Printf("Username: %s\n", cfg.Username)
	}
	if cfg.InsecureSkipVerify {
		fmt.Println("TLS verification: disabled")
	}
	if cfg.TimeoutSeconds > 0 {
		fmt.Printf("Timeout: %ds\n", cfg.TimeoutSeconds)
	}
	fmt.Printf("Config file: %s\n", configFile)
	return nil
}

func init() {
	// Add flags to config command
	configCmd.Flags().String("server", "", "Set the server URL (e.g., https://netbox.example.com)")

	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configSetServerCmd)
	configCmd.AddCommand(configSetTokenCmd)
	rootCmd.AddCommand(configCmd)
}

// setServerConfig sets the server configuration in the config file
// An existing config keeps its other fields
func setServerConfig(server string) error {
	configPath := configFile
	if configPath == "" {
		var err error
		configPath, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	cfg := &Config{
		Version: "0.1.0",
	}
	if err := LoadConfig(configPath); err == nil {
		cfg = GetConfig()
	}

	cfg.ServerURL = NormalizeServerURL(server)

	if err := cfg.WriteConfig(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]string{
			"server":      cfg.ServerURL,
			"config_file": configPath,
		})
	} else {
		fmt.Printf("Server configured: %s\n", cfg.ServerURL)
		fmt.Printf("Config file: %s\n", configPath)
	}

	return nil
}
