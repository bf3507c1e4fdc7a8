package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/ppiankov/vitalscan/internal/model"
	"github.com/ppiankov/vitalscan/internal/observability"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time via -ldflags
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vitalscan",
	Short: "Vitalscan - Health risk report normalizer",
	Long: `Vitalscan turns the output of a health risk scoring service into one
canonical report: an overall score and grade, a composite risk level,
four per-condition risk percentages, and lifestyle recommendations.

Reports may arrive as annotated text, as structured JSON/YAML, or as an
HTML results page. Whatever the shape, the output always has every field
present, and diagnostic signals explain where fallback values were used.

Vitalscan reports numbers; it does not give medical advice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}
		if verbose && cfg.Logging.Level == "info" {
			cfg.Logging.Level = "debug"
		}
		observability.InitializeLogger(cfg.Logging)
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	defer observability.Sync()
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Vitalscan.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vitalscan %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.vitalscan/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// envBindings maps config keys to extra environment variables honoured
// alongside VITALSCAN_*
var envBindings = map[string][]string{
	"llm.api_key":          {"VITALSCAN_LLM_API_KEY", "OPENAI_API_KEY"},
	"llm.base_url":         {"VITALSCAN_LLM_BASE_URL", "OLLAMA_BASE_URL"},
	"upstream.http_proxy":  {"VITALSCAN_UPSTREAM_HTTP_PROXY", "HTTP_PROXY"},
	"upstream.https_proxy": {"VITALSCAN_UPSTREAM_HTTPS_PROXY", "HTTPS_PROXY"},
}

// loadConfig reads the config file and environment into the built-in
// defaults. A missing config file is not an error.
func loadConfig(v *viper.Viper, path string) (*model.Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else if dir, err := configDir(); err == nil {
		v.AddConfigPath(dir)
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("VITALSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v, "", reflect.ValueOf(*model.DefaultConfig()))
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// registerDefaults declares every config leaf to viper so AutomaticEnv can
// resolve VITALSCAN_* variables for keys the config file never mentions.
func registerDefaults(v *viper.Viper, prefix string, rv reflect.Value) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := strings.Split(field.Tag.Get("mapstructure"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if field.Type.Kind() == reflect.Struct {
			registerDefaults(v, key, rv.Field(i))
			continue
		}
		v.SetDefault(key, rv.Field(i).Interface())
	}
}

// currentConfig returns the configuration loaded for this invocation
func currentConfig() (*model.Config, error) {
	return loadConfig(viper.GetViper(), cfgFile)
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error finding home directory: %w", err)
	}
	return filepath.Join(home, ".vitalscan"), nil
}
