package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tableguard",
	Short: "Validate reference tables and atomically archive-and-replace them",
	Long: `Tableguard validates tabular data files against declarative YAML schemas
and, only if every file in a batch passes, archives the previous version of
each target table, installs the new one, and appends an audit entry.

A single failing file blocks the entire batch: the live table store and the
audit log are never touched unless the whole batch validated cleanly.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .tableguard.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug output")

	rootCmd.PersistentFlags().String("tables-dir", "tables", "live table store directory")
	rootCmd.PersistentFlags().String("archive-dir", "archive", "archive directory for replaced tables")
	rootCmd.PersistentFlags().String("schemas-dir", "schemas", "directory of YAML schema documents")
	rootCmd.PersistentFlags().String("log-file", "updates.log", "append-only audit log file")
	rootCmd.PersistentFlags().String("user", defaultUser(), "acting user recorded in the audit log")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "output format (text, json, yaml)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("tables-dir", rootCmd.PersistentFlags().Lookup("tables-dir"))
	_ = viper.BindPFlag("archive-dir", rootCmd.PersistentFlags().Lookup("archive-dir"))
	_ = viper.BindPFlag("schemas-dir", rootCmd.PersistentFlags().Lookup("schemas-dir"))
	_ = viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tableguard")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("debug") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
