package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/wastewise/internal/common"
	"github.com/ppiankov/wastewise/internal/model"
)

// Version is set at build time
var Version = "0.1.0"

var (
	cfgFile  string
	verbose  bool
	logLevel string

	appConfig *model.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wastewise",
	Short: "Wastewise - classify household waste from a photo",
	Long: `Wastewise identifies household waste items in photos and tells you
how to dispose of them.

Each photo goes through an object detector and an image classifier when
they are configured, and a filename/metadata heuristic when they are not.
Every classification is kept in a local history with reward points and
an estimate of the waste diverted from landfill.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := common.SetupLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wastewise v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.wastewise/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads the .env file, the config file and WASTEWISE_* variables
func initConfig() {
	_ = godotenv.Load()

	registerDefaults("", defaultsMap())
	for _, key := range optionalKeys {
		viper.SetDefault(key, "")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if dir, err := configDir(); err == nil {
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("WASTEWISE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// optionalKeys are omitted from the marshalled defaults when empty
var optionalKeys = []string{
	"classifier.api_key", "classifier.base_url",
	"ledger.redis_url", "ledger.dsn", "ledger.bucket",
	"http.http_proxy", "http.https_proxy", "http.no_proxy",
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Ledger.Cap <= 0 {
		return nil, fmt.Errorf("%w: ledger.cap must be positive", common.ErrInvalidConfig)
	}
	return cfg, nil
}

// defaultsMap flattens DefaultConfig through its yaml tags
func defaultsMap() map[string]any {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return nil
	}
	m := make(map[string]any)
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

// registerDefaults makes every config key known to viper so that
// environment variables override it during Unmarshal
func registerDefaults(prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			registerDefaults(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".wastewise"), nil
}
