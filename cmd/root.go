package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/cobra"
	"github.com/sw33tLie/biliguard/internal/utils"
	"github.com/sw33tLie/biliguard/pkg/bilibili"
	"github.com/sw33tLie/biliguard/pkg/settings"
	"github.com/sw33tLie/biliguard/pkg/whttp"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const requestTimeout = 30 * time.Second

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "biliguard",
	Short: "Block controls, keyword filtering and hover details for bilibili pages.",
	Long: `biliguard augments bilibili pages with inline block/unblock controls, hides cards that
match your keyword list and attaches user and video detail popups. It also manages
your blacklist and keyword settings from the command line.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.biliguard.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	settings.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".biliguard")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := filepath.Join(home, ".biliguard.yaml")
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s\n", err)
			}
			viper.SetConfigFile(configPath)
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	if err := utils.SetLogLevel(levelString); err != nil {
		utils.Log.Fatal(err)
	}
}

func store() *settings.Store {
	return settings.New(viper.GetViper())
}

func httpClient(cmd *cobra.Command) (*retryablehttp.Client, error) {
	proxy, _ := cmd.Flags().GetString("proxy")
	return whttp.NewClient(proxy, requestTimeout)
}

// bilibiliClient builds the API client from the stored credentials.
func bilibiliClient(cmd *cobra.Command) (*bilibili.Client, error) {
	hc, err := httpClient(cmd)
	if err != nil {
		return nil, err
	}
	return bilibili.NewClient(store().Bilibili(), hc)
}
