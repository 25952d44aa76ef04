// Package cmd wires the bones CLI. Every command prints a single JSON
// document on stdout so referee and verifier agents can drive the engine
// from shell invocations.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "bones",
	Short:         "Competitive multi-agent code review tournaments",
	Long:          "Bones pits AI agents against each other in a code review tournament: they hunt for real issues, a referee validates findings, and agents dispute each other's calls until someone reaches the target score.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Failures become a single-line JSON error on stdout
// and a non-zero exit so agent callers never have to parse free text.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .bones.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "state directory (default ~/.bones)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".bones")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("BONES")
	viper.AutomaticEnv()

	if dataDir, _ := rootCmd.Flags().GetString("data-dir"); dataDir != "" {
		viper.Set("data_dir", dataDir)
	}
	if verbose, _ := rootCmd.Flags().GetBool("verbose"); verbose {
		viper.Set("verbose", true)
	}

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

func printError(err error) {
	out, _ := json.Marshal(map[string]string{"error": err.Error()})
	fmt.Println(string(out))
}
