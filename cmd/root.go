package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/internal/iofs"
	"github.com/gnames/sp7tree/internal/iologger"
	app "github.com/gnames/sp7tree/pkg"
	"github.com/gnames/sp7tree/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir   string
	mode      string
	cfg       *config.Config
	logCloser io.Closer
)

// envKeys are configuration keys that can be set by SP7TREE_* variables.
// They match the fields of config.ToOptions.
var envKeys = []string{
	"specify.base_url",
	"specify.username",
	"specify.password",
	"specify.collection",
	"specify.collection_id",
	"specify.verify_tls",
	"specify.timeout_sec",
	"specify.merge_timeout_sec",
	"specify.retries",
	"authority.base_url",
	"authority.kingdom",
	"authority.timeout_sec",
	"tree.storage_tree_def_id",
	"tree.nom_code",
	"dedup.batch_size",
	"dedup.candidate_limit",
	"dedup.min_rank_id",
	"dedup.force_merge_blank_authors",
	"import.data_dir",
	"import.output_dir",
	"import.with_tokens",
	"log.level",
	"log.format",
	"log.destination",
}

func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sp7tree",
		Short: "sp7tree imports and deduplicates Specify 7 trees",
		Long: `sp7tree is a toolbox for taxon, storage and geography trees of a
Specify 7 collection. It works only through the Specify REST API.

Tools:
  - import: create missing tree nodes from rows of CSV or XLSX files
  - dedup: find duplicate taxa and merge them, using GBIF to resolve
    conflicting authors and parents
  - merge-pairs: merge taxa listed as from_id,to_id pairs
  - run: choose a tool and a data file from an interactive menu

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (SP7TREE_*), also read from .env files
  3. Config file (~/.config/sp7tree/config.yaml)
  4. Built-in defaults

A run mode selects another config file, for example
'sp7tree --mode test dedup' reads config.test.yaml.

Environment Variables:
  Nested fields use underscores (specify.base_url → SP7TREE_SPECIFY_BASE_URL).

  Examples:
    SP7TREE_SPECIFY_BASE_URL        Specify 7 root URL
    SP7TREE_SPECIFY_USERNAME        Specify user
    SP7TREE_SPECIFY_PASSWORD        Specify password
    SP7TREE_SPECIFY_COLLECTION      Collection name
    SP7TREE_LOG_LEVEL               Log level (debug/info/warn/error)`,
		Version:            fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		PersistentPreRunE:  bootstrap,
		PersistentPostRunE: shutdown,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Remove the automatic "sp7tree version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Override version flag to use -V (consistent with other gn projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for sp7tree")

	rootCmd.PersistentFlags().StringVarP(
		&mode, "mode", "m", "",
		"configuration mode, reads config.<mode>.yaml",
	)

	rootCmd.AddCommand(
		getImportCmd(),
		getDedupCmd(),
		getMergePairsCmd(),
		getRunCmd(),
		getLegendCmd(),
		getConfigCmd(),
	)
	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	envFile := filepath.Join(config.ConfigDir(homeDir), ".env")
	if _, err = iofs.LoadEnv(".env", envFile); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfgPath, err := iofs.EnsureConfigFile(homeDir, mode)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(cfgPath); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	cfg.Update(cfgViper.ToOptions())
	cfg.Update([]config.Option{
		config.OptHomeDir(homeDir),
		config.OptMode(mode),
	})

	logCloser, err = iologger.Init(config.LogDir(homeDir), cfg.Log, false)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", cfgPath, "mode", mode, "command", cmd.Name())
	return nil
}

func shutdown(cmd *cobra.Command, args []string) error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return err
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	err := getRootCmd().Execute()
	if logCloser != nil {
		_ = logCloser.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

func initConfig(cfgPath string) (*config.Config, error) {
	var err error
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, ReadConfigError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, ReadConfigError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Keys are bound one by one, so the list of allowed variables is
	// explicit.
	v.SetEnvPrefix("SP7TREE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
}
