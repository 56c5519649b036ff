package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	animateCmd "f1trackrenderer/pkg/cmd/animate"
	cacheCmd "f1trackrenderer/pkg/cmd/cache"
	"f1trackrenderer/pkg/cmd/common"
	dashboardCmd "f1trackrenderer/pkg/cmd/dashboard"
	"f1trackrenderer/pkg/config"
)

const envPrefix = "F1TR"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "f1tr",
	Short: "Animated F1 telemetry traces for selected drivers and laps",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return common.SetupLogger()
	},
	SilenceUsage: true,
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.f1tr.yml)")

	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&config.LogFormat, "log-format",
		"text",
		"controls the log output format (json, text)")
	rootCmd.PersistentFlags().StringVar(&config.LogFile, "log-file",
		"",
		"write logs to this file instead of stderr (rotated)")
	rootCmd.PersistentFlags().StringVar(&config.APIURL, "api-url",
		config.DefaultAPIURL,
		"base URL of the OpenF1 API")
	rootCmd.PersistentFlags().DurationVar(&config.HTTPTimeout, "http-timeout",
		0,
		"timeout for telemetry API requests (0 means none)")
	rootCmd.PersistentFlags().StringVar(&config.CacheDir, "cache-dir",
		config.DefaultCacheDir,
		"directory holding cached sessions")
	rootCmd.PersistentFlags().StringVar(&config.CacheBackend, "cache-backend",
		"file",
		"cache storage backend (file, sqlite, bolt)")

	rootCmd.AddCommand(animateCmd.NewAnimateCmd())
	rootCmd.AddCommand(dashboardCmd.NewDashboardCmd())
	rootCmd.AddCommand(cacheCmd.NewCacheCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".f1tr")
	}

	configureEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindAll(rootCmd, viper.GetViper())
}

// configureEnv makes v read F1TR_ prefixed environment variables.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
}

func bindAll(cmd *cobra.Command, v *viper.Viper) {
	bindFlags(cmd, v)
	for _, c := range cmd.Commands() {
		bindAll(c, v)
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// --cache-dir is read from F1TR_CACHE_DIR
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
