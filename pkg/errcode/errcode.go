package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	WriteFileError

	// Logging errors
	CreateLogFileError

	// Configuration errors
	ConfigCredentialsError
	ConfigTreeTypeError
	ConfigEncodeError

	// Remote API errors
	APIRequestError
	APIStatusError
	APIDecodeError
	APILoginError
	APICollectionNotFoundError
	APINotLoggedInError

	// Name authority errors
	AuthorityRequestError

	// Schema errors
	SchemaHeaderError
	SchemaNoRankColumnsError
	RankNotFoundError
	TreeDefNotFoundError
	TreeRootNotFoundError

	// Row errors
	RowAnchorError
	RowIsAcceptedValueError
	RowNoAcceptedNameError
	RowSelfSynonymError
	RowSynonymChainError
	RowNodeCreateError

	// Duplicate scan errors
	DedupMergeError
	DedupMoveError
	DedupIDFileError
	DedupPairRowError
	DedupExportError

	// Command line errors
	MenuInputError
	NoDataFilesError
)
