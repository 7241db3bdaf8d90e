package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (Mode, HomeDir).
// Used for round-tripping config.yaml ↔ Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string
	var i int

	s = c.Specify.BaseURL
	if s != "" {
		res = append(res, OptSpecifyBaseURL(s))
	}
	s = c.Specify.Username
	if s != "" {
		res = append(res, OptSpecifyUsername(s))
	}
	s = c.Specify.Password
	if s != "" {
		res = append(res, OptSpecifyPassword(s))
	}
	s = c.Specify.Collection
	if s != "" {
		res = append(res, OptSpecifyCollection(s))
	}
	i = c.Specify.CollectionID
	if i > 0 {
		res = append(res, OptSpecifyCollectionID(i))
	}
	if c.Specify.VerifyTLS != nil {
		res = append(res, OptSpecifyVerifyTLS(c.Specify.VerifyTLS))
	}
	i = c.Specify.TimeoutSec
	if i > 0 {
		res = append(res, OptSpecifyTimeoutSec(i))
	}
	i = c.Specify.MergeTimeoutSec
	if i > 0 {
		res = append(res, OptSpecifyMergeTimeoutSec(i))
	}
	i = c.Specify.Retries
	if i > 0 {
		res = append(res, OptSpecifyRetries(i))
	}

	s = c.Authority.BaseURL
	if s != "" {
		res = append(res, OptAuthorityBaseURL(s))
	}
	s = c.Authority.Kingdom
	if s != "" {
		res = append(res, OptAuthorityKingdom(s))
	}
	i = c.Authority.TimeoutSec
	if i > 0 {
		res = append(res, OptAuthorityTimeoutSec(i))
	}

	i = c.Tree.StorageTreeDefID
	if i > 0 {
		res = append(res, OptTreeStorageTreeDefID(i))
	}
	s = c.Tree.NomCode
	if s != "" {
		res = append(res, OptTreeNomCode(s))
	}

	i = c.Dedup.BatchSize
	if i > 0 {
		res = append(res, OptDedupBatchSize(i))
	}
	i = c.Dedup.CandidateLimit
	if i > 0 {
		res = append(res, OptDedupCandidateLimit(i))
	}
	i = c.Dedup.MinRankID
	if i > 0 {
		res = append(res, OptDedupMinRankID(i))
	}
	if c.Dedup.ForceMergeBlankAuthors != nil {
		res = append(res,
			OptDedupForceMergeBlankAuthors(c.Dedup.ForceMergeBlankAuthors))
	}

	s = c.Import.DataDir
	if s != "" {
		res = append(res, OptImportDataDir(s))
	}
	s = c.Import.OutputDir
	if s != "" {
		res = append(res, OptImportOutputDir(s))
	}
	if c.Import.WithTokens != nil {
		res = append(res, OptImportWithTokens(c.Import.WithTokens))
	}

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}
	return res
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidNonNegative(name string, i int) bool {
	res := i >= 0
	if !res {
		gn.Warn("<em>%s</em> cannot be negative, ignoring %d", name, i)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Tree.NomCode":    {"botanical": s, "zoological": s},
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s, "tint": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	if _, ok := data[name][val]; ok {
		return true
	}
	gn.Warn(
		"<em>%s</em> does not support '%s' as a value. "+
			"Valid values are: \n%s\nIgnoring...",
		name, val, strings.Join(lines, "\n"),
	)
	return false
}
