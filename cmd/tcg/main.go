package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ElGTahur/pokemon-tcg-analysis/internal/util"
)

var (
	// Version is set at build time.
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "tcg",
		Short: "Pokemon TCG card pipeline - clean card listings into a queryable database",
		Long: `tcg ingests raw Pokemon trading card CSV exports, cleans and enriches
each listing (names, card types, prices, rarity tiers, generations),
de-duplicates the batch, and loads the result into a relational store
with precomputed analysis views.`,
		Version: Version,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/tcg.yaml)")
	rootCmd.PersistentFlags().String("driver", "", "storage driver: sqlite or postgres")
	rootCmd.PersistentFlags().String("dsn", "", "database location (file path for sqlite, connection string for postgres)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	viper.BindPFlag("driver", rootCmd.PersistentFlags().Lookup("driver"))
	viper.BindPFlag("dsn", rootCmd.PersistentFlags().Lookup("dsn"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	// A .env next to the binary may carry the postgres DSN; absence is fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("tcg")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TCG")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}

	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
