package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/endorses/strsearch/cmd/find"
	"github.com/endorses/strsearch/cmd/multi"
	"github.com/endorses/strsearch/cmd/pcapscan"
	"github.com/endorses/strsearch/internal/pkg/cmdutil"
	"github.com/endorses/strsearch/internal/pkg/logger"
	"github.com/endorses/strsearch/internal/pkg/output"
	"github.com/endorses/strsearch/internal/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	logLevel  string
	outFormat string
	showStats bool
)

var rootCmd = &cobra.Command{
	Use:   "strsearch",
	Short: "strsearch finds strings in text and captures",
	Long: fmt.Sprintf(`strsearch %s - exact string search with KMP, Boyer-Moore, Rabin-Karp and Aho-Corasick

Search files, standard input or the payloads of a PCAP capture for one
pattern or for many at once.`, version.Version),
	Version:       version.Get().String(),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cmdutil.BindFlags(cmd, map[string]string{
			"output":    "output",
			"log_level": "log-level",
		}); err != nil {
			return err
		}
		if level := cmdutil.GetStringConfig("log_level", logLevel); level != "" {
			logger.SetLevel(logger.ParseLevel(level))
		}
		_, err := output.ParseFormat(cmdutil.GetStringConfig("output", outFormat))
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if !showStats {
			return nil
		}
		return printStats(cmd)
	},
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func addSubCommandPalattes() {
	rootCmd.AddCommand(find.FindCmd)
	rootCmd.AddCommand(multi.MultiCmd)
	rootCmd.AddCommand(pcapscan.PcapCmd)
	rootCmd.AddCommand(versionCmd)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Initialize structured logging
	logger.Initialize()

	addSubCommandPalattes()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/strsearch/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outFormat, "output", "o", string(output.FormatText), "output format: text, json or yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (default from LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&showStats, "stats", false, "print search metrics to stderr when done")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Priority order for config files:
		// 1. ~/.config/strsearch/config.yaml
		// 2. ~/.config/strsearch.yaml
		viper.AddConfigPath(home + "/.config/strsearch")
		viper.AddConfigPath(home + "/.config")
		viper.SetConfigType("yaml")

		viper.SetConfigName("config")
		if err := viper.ReadInConfig(); err != nil {
			viper.SetConfigName("strsearch")
		}
	}

	viper.SetEnvPrefix("STRSEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Debug("Using config file", "path", viper.ConfigFileUsed())
	}
}
