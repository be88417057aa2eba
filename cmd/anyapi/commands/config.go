package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/anytype-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const masked = "***"

// settableKeys are the keys accepted by "config set".
var settableKeys = []string{
	keyURL, keyOutput, keyDebug, keyNoCache, keyRateLimitRetries,
	keyBackendType, keyBackendTTL, keyRedisAddr, keyRedisPassword, keyRedisDB, keyNATSURL, keyNATSBucket,
}

// Settings is the output of "config show".
type Settings struct {
	ConfigFile       string `json:"config_file"        yaml:"config_file"`
	URL              string `json:"url"                yaml:"url"`
	Key              string `json:"key"                yaml:"key"`
	Output           string `json:"output"             yaml:"output"`
	Debug            bool   `json:"debug"              yaml:"debug"`
	NoCache          bool   `json:"no_cache"           yaml:"no_cache"`
	RateLimitRetries int    `json:"rate_limit_retries" yaml:"rate_limit_retries"`
	Backend          string `json:"backend"            yaml:"backend"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the anyapi configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigSetKeyCommand())
	cmd.AddCommand(newConfigClearKeyCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration; the API key is masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := currentSettings()

			return render(cmd.OutOrStdout(), settings, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Config file", orNA(settings.ConfigFile))
				_ = table.Append("URL", orNA(settings.URL))
				_ = table.Append("Key", orNA(settings.Key))
				_ = table.Append("Output", settings.Output)
				_ = table.Append("Debug", fmt.Sprint(settings.Debug))
				_ = table.Append("Cache disabled", fmt.Sprint(settings.NoCache))
				_ = table.Append("Rate limit retries", fmt.Sprint(settings.RateLimitRetries))
				_ = table.Append("Snapshot backend", orNA(settings.Backend))
			})
		},
	}
}

func currentSettings() Settings {
	settings := Settings{
		ConfigFile:       viper.ConfigFileUsed(),
		URL:              viper.GetString(keyURL),
		Output:           viper.GetString(keyOutput),
		Debug:            viper.GetBool(keyDebug),
		NoCache:          viper.GetBool(keyNoCache),
		RateLimitRetries: viper.GetInt(keyRateLimitRetries),
		Backend:          viper.GetString(keyBackendType),
	}

	if viper.GetString(keyAPIKey) != "" {
		settings.Key = masked
	}

	return settings
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: "Set a configuration value and save it to the config file.\n\nKeys: " +
			strings.Join(settableKeys, ", ") + "\n\nUse 'config set-key' for the API key.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := strings.ToLower(args[0]), args[1]

			if !isSettable(key) {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			if key == keyOutput {
				viper.Set(keyOutput, value)

				_, err := outputFormat()
				if err != nil {
					return err
				}
			}

			viper.Set(key, value)

			path, err := saveConfig()
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", key, path)

			return nil
		},
	}
}

func isSettable(key string) bool {
	for _, k := range settableKeys {
		if k == key {
			return true
		}
	}

	return false
}

func newConfigSetKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key",
		Short: "Store the API key",
		Long: `Prompt for the API key and store it in the config file.

The key is read without echo from a terminal, or as a single line from a
pipe (echo "$KEY" | anyapi config set-key).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := readKey(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			viper.Set(keyAPIKey, key)

			path, err := saveConfig()
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "API key saved to %s\n", path)

			return nil
		},
	}
}

func newConfigClearKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-key",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.Set(keyAPIKey, "")

			path, err := saveConfig()
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "API key removed from %s\n", path)

			return nil
		},
	}
}

// readKey reads the key without echo when in is a terminal.
func readKey(in io.Reader, prompt io.Writer) (string, error) {
	var raw string

	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		_, _ = fmt.Fprint(prompt, "API key: ")

		secret, err := term.ReadPassword(int(file.Fd()))
		_, _ = fmt.Fprintln(prompt)

		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}

		raw = string(secret)
	} else {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}

		raw = line
	}

	key := strings.TrimSpace(raw)
	if key == "" {
		return "", constants.ErrEmptyKeyFromPrompt
	}

	return key, nil
}

// saveConfig writes viper's settings to the file in use, or to
// ~/.anyapi/config.yml, and returns the path.
func saveConfig() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, constants.ConfigDirName)

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return "", fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, constants.ConfigFileName+"."+constants.ConfigFileType)
	}

	err := viper.WriteConfigAs(configFile)
	if err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}

	err = os.Chmod(configFile, constants.ConfigFilePerm)
	if err != nil {
		return "", fmt.Errorf("failed to restrict config permissions: %w", err)
	}

	return configFile, nil
}
