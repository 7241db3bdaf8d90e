package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptSpecifyBaseURL sets the root URL of the Specify 7 installation.
// A trailing slash is added when missing.
func OptSpecifyBaseURL(s string) Option {
	s = strings.TrimSpace(s)
	if s != "" && !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return func(c *Config) {
		if isValidString("Specify Base URL", s) {
			c.Specify.BaseURL = s
		}
	}
}

// OptSpecifyUsername sets the Specify account name.
func OptSpecifyUsername(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Specify Username", s) {
			c.Specify.Username = s
		}
	}
}

// OptSpecifyPassword sets the Specify account password.
func OptSpecifyPassword(s string) Option {
	return func(c *Config) {
		if isValidString("Specify Password", s) {
			c.Specify.Password = s
		}
	}
}

// OptSpecifyCollection sets the name of the collection to log into.
func OptSpecifyCollection(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Specify Collection", s) {
			c.Specify.Collection = s
		}
	}
}

// OptSpecifyCollectionID sets the collection primary key directly.
func OptSpecifyCollectionID(i int) Option {
	return func(c *Config) {
		if isValidInt("Specify Collection ID", i) {
			c.Specify.CollectionID = i
		}
	}
}

// OptSpecifyVerifyTLS switches verification of the server certificate.
// Uses pointer to distinguish between unset (nil) and false.
func OptSpecifyVerifyTLS(b *bool) Option {
	return func(c *Config) {
		if b != nil {
			c.Specify.VerifyTLS = b
		}
	}
}

// OptSpecifyTimeoutSec sets the timeout of ordinary API calls.
func OptSpecifyTimeoutSec(i int) Option {
	return func(c *Config) {
		if isValidInt("Specify Timeout", i) {
			c.Specify.TimeoutSec = i
		}
	}
}

// OptSpecifyMergeTimeoutSec sets the timeout of merge and move calls.
func OptSpecifyMergeTimeoutSec(i int) Option {
	return func(c *Config) {
		if isValidInt("Specify Merge Timeout", i) {
			c.Specify.MergeTimeoutSec = i
		}
	}
}

// OptSpecifyRetries sets how many times a throttled or failed request is
// repeated. Zero is allowed and disables retries.
func OptSpecifyRetries(i int) Option {
	return func(c *Config) {
		if isValidNonNegative("Specify Retries", i) {
			c.Specify.Retries = i
		}
	}
}

// OptAuthorityBaseURL sets the root URL of the GBIF API.
func OptAuthorityBaseURL(s string) Option {
	s = strings.TrimSpace(s)
	if s != "" && !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return func(c *Config) {
		if isValidString("Authority Base URL", s) {
			c.Authority.BaseURL = s
		}
	}
}

// OptAuthorityKingdom sets the kingdom hint of name matching.
func OptAuthorityKingdom(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Authority Kingdom", s) {
			c.Authority.Kingdom = s
		}
	}
}

// OptAuthorityTimeoutSec sets the timeout of name-match calls.
func OptAuthorityTimeoutSec(i int) Option {
	return func(c *Config) {
		if isValidInt("Authority Timeout", i) {
			c.Authority.TimeoutSec = i
		}
	}
}

// OptTreeStorageTreeDefID sets the tree definition of the storage tree.
func OptTreeStorageTreeDefID(i int) Option {
	return func(c *Config) {
		if isValidInt("Storage Tree Definition ID", i) {
			c.Tree.StorageTreeDefID = i
		}
	}
}

// OptTreeNomCode sets the nomenclatural code used for parsing names.
// Valid values: "botanical", "zoological".
func OptTreeNomCode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Tree.NomCode", s) {
			c.Tree.NomCode = s
		}
	}
}

// OptDedupBatchSize sets the page size of the rank scan.
func OptDedupBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Dedup Batch Size", i) {
			c.Dedup.BatchSize = i
		}
	}
}

// OptDedupCandidateLimit sets the page size of the duplicate lookup.
func OptDedupCandidateLimit(i int) Option {
	return func(c *Config) {
		if isValidInt("Dedup Candidate Limit", i) {
			c.Dedup.CandidateLimit = i
		}
	}
}

// OptDedupMinRankID sets the most inclusive rank included in the scan.
func OptDedupMinRankID(i int) Option {
	return func(c *Config) {
		if isValidInt("Dedup Min Rank ID", i) {
			c.Dedup.MinRankID = i
		}
	}
}

// OptDedupForceMergeBlankAuthors sets whether duplicates without authors
// on both sides are merged without authority confirmation.
func OptDedupForceMergeBlankAuthors(b *bool) Option {
	return func(c *Config) {
		if b != nil {
			c.Dedup.ForceMergeBlankAuthors = b
		}
	}
}

// OptImportDataDir sets the directory with input data files.
func OptImportDataDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Import Data Dir", s) {
			c.Import.DataDir = s
		}
	}
}

// OptImportOutputDir sets the directory for exported files.
func OptImportOutputDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Import Output Dir", s) {
			c.Import.OutputDir = s
		}
	}
}

// OptImportWithTokens switches per-row status tokens on or off.
func OptImportWithTokens(b *bool) Option {
	return func(c *Config) {
		if b != nil {
			c.Import.WithTokens = b
		}
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stdout", "stderr".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptMode sets the configuration variant.
// Runtime-only field - not in ToOptions().
func OptMode(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		c.Mode = s
	}
}

// OptHomeDir sets the home directory for config, output and logs.
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Dir", s) {
			c.HomeDir = s
		}
	}
}
