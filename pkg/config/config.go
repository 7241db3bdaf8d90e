// Package config provides configuration management for sp7tree.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// A run mode (for example "test") selects config.test.yaml instead of
// config.yaml, so several Specify installations can be kept side by side.
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Specify: base_url, username, password, collection, collection_id,
//     verify_tls, timeout_sec, merge_timeout_sec, retries
//   - Authority: base_url, kingdom, timeout_sec
//   - Tree: storage_tree_def_id, nom_code
//   - Dedup: batch_size, candidate_limit, min_rank_id,
//     force_merge_blank_authors
//   - Import: data_dir, output_dir, with_tokens
//   - Log: level, format, destination
//
// Runtime-only fields (CLI flags only):
//   - Mode, HomeDir (set once at startup)
//
// # Environment Variables
//
// Use SP7TREE_ prefix with underscores for nesting:
//
//	SP7TREE_SPECIFY_BASE_URL=https://specify.example.org/
//	SP7TREE_SPECIFY_USERNAME=importer
//	SP7TREE_SPECIFY_PASSWORD=secret
//	SP7TREE_LOG_LEVEL=debug
package config

// Config represents the complete sp7tree configuration.
type Config struct {
	// Specify contains connection settings for the Specify 7 REST API.
	Specify SpecifyConfig `mapstructure:"specify" yaml:"specify"`

	// Authority contains settings of the taxonomic name authority (GBIF).
	Authority AuthorityConfig `mapstructure:"authority" yaml:"authority"`

	// Tree contains settings shared by all tree tools.
	Tree TreeConfig `mapstructure:"tree" yaml:"tree"`

	// Dedup contains settings of the duplicate scan.
	Dedup DedupConfig `mapstructure:"dedup" yaml:"dedup"`

	// Import contains settings of the row-driven import tools.
	Import ImportConfig `mapstructure:"import" yaml:"import"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Mode selects a configuration variant (config.<mode>.yaml).
	// Empty mode means the default config.yaml.
	Mode string `yaml:"-"`

	// HomeDir determines where config, output and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string `yaml:"-"`
}

// SpecifyConfig contains Specify 7 API connection parameters.
type SpecifyConfig struct {
	// BaseURL is the root of the Specify 7 installation, it must end
	// with a slash, for example "https://specify.example.org/".
	BaseURL string `mapstructure:"base_url" yaml:"base_url" validate:"required,url"`

	// Username of the Specify account.
	Username string `mapstructure:"username" yaml:"username" validate:"required"`

	// Password of the Specify account.
	Password string `mapstructure:"password" yaml:"password" validate:"required"`

	// Collection is the name of the collection to log into.
	Collection string `mapstructure:"collection" yaml:"collection"`

	// CollectionID overrides the lookup of the collection by its name.
	CollectionID int `mapstructure:"collection_id" yaml:"collection_id"`

	// VerifyTLS switches verification of the server certificate.
	VerifyTLS *bool `mapstructure:"verify_tls" yaml:"verify_tls"`

	// TimeoutSec bounds ordinary API calls.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// MergeTimeoutSec bounds tree merge and move calls. The server
	// re-parents every descendant of a merged node, so these calls can take
	// several minutes.
	MergeTimeoutSec int `mapstructure:"merge_timeout_sec" yaml:"merge_timeout_sec"`

	// Retries is the number of retries on 429 and 5xx responses.
	// Zero disables retries.
	Retries int `mapstructure:"retries" yaml:"retries"`
}

// AuthorityConfig contains settings of the name-authority service.
type AuthorityConfig struct {
	// BaseURL of the GBIF API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Kingdom is the taxonomic group hint sent with every name match.
	Kingdom string `mapstructure:"kingdom" yaml:"kingdom"`

	// TimeoutSec bounds name-match calls.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// TreeConfig contains settings shared by tree tools.
type TreeConfig struct {
	// StorageTreeDefID is the tree definition of the storage tree. Specify
	// keeps one storage tree per institution, so it is not looked up.
	StorageTreeDefID int `mapstructure:"storage_tree_def_id" yaml:"storage_tree_def_id"`

	// NomCode is the nomenclatural code used to parse names,
	// "botanical" or "zoological".
	NomCode string `mapstructure:"nom_code" yaml:"nom_code"`
}

// DedupConfig contains settings of the duplicate scan.
type DedupConfig struct {
	// BatchSize is the page size used when scanning a rank.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`

	// CandidateLimit is the page size of the lookup of nodes sharing a full
	// name. It has to be large enough to return all candidates at once.
	CandidateLimit int `mapstructure:"candidate_limit" yaml:"candidate_limit"`

	// MinRankID is the most inclusive rank that is scanned (Genus = 180).
	MinRankID int `mapstructure:"min_rank_id" yaml:"min_rank_id"`

	// ForceMergeBlankAuthors merges duplicates that both lack an author
	// even when the name authority cannot confirm authorship.
	ForceMergeBlankAuthors *bool `mapstructure:"force_merge_blank_authors" yaml:"force_merge_blank_authors"`
}

// ImportConfig contains settings of the row-driven tools.
type ImportConfig struct {
	// DataDir is the directory offered by the interactive menu.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`

	// OutputDir receives ambivalent-case exports.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// WithTokens prints a status token per row instead of a progress bar.
	WithTokens *bool `mapstructure:"with_tokens" yaml:"with_tokens"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	force := true
	tokens := false
	verify := true
	res := &Config{
		Specify: SpecifyConfig{
			VerifyTLS:       &verify,
			TimeoutSec:      60,
			MergeTimeoutSec: 960,
		},
		Authority: AuthorityConfig{
			BaseURL:    "https://api.gbif.org/v1/",
			Kingdom:    "Plantae",
			TimeoutSec: 30,
		},
		Tree: TreeConfig{
			StorageTreeDefID: 1,
			NomCode:          "botanical",
		},
		Dedup: DedupConfig{
			BatchSize:              1000,
			CandidateLimit:         100_000,
			MinRankID:              180,
			ForceMergeBlankAuthors: &force,
		},
		Import: ImportConfig{
			DataDir:    "data",
			OutputDir:  "output",
			WithTokens: &tokens,
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
	}

	return res
}
