package dedup

import (
	"bufio"
	"context"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gnames/sp7tree/pkg/specify"
	"github.com/gnames/sp7tree/pkg/tree"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PairHeaders are the only headers accepted by a merge pairs file.
var PairHeaders = []string{"from_id", "to_id"}

// PairRow is an explicit merge request read from a data file.
type PairRow struct {
	FromID string `validate:"required,number"`
	ToID   string `validate:"required,number"`
}

// PairResult is the outcome of a merge request.
type PairResult struct {
	FromID   int
	ToID     int
	Status   int
	Duration time.Duration
	Err      error
}

// CheckPairHeaders makes sure a file has exactly the from_id and to_id
// columns.
func CheckPairHeaders(headers []string) error {
	hs := make([]string, len(headers))
	for i := range headers {
		hs[i] = strings.TrimSpace(headers[i])
	}
	if !slices.Equal(hs, PairHeaders) {
		return PairHeaderError(headers)
	}
	return nil
}

// NewPairRow validates a row of a merge pairs file.
func NewPairRow(row tree.Row) (PairRow, error) {
	from, _ := row.Value(PairHeaders[0])
	to, _ := row.Value(PairHeaders[1])
	res := PairRow{FromID: from, ToID: to}
	if err := validate.Struct(res); err != nil {
		return PairRow{}, PairRowError(from, to, err)
	}
	return res, nil
}

// MergePair merges one explicit pair. The status of the server is returned
// as is, only transport failures end up in Err.
func (e *Engine) MergePair(ctx context.Context, p PairRow) PairResult {
	from, _ := strconv.Atoi(p.FromID)
	to, _ := strconv.Atoi(p.ToID)
	res := PairResult{FromID: from, ToID: to}

	start := time.Now()
	res.Status, res.Err = e.client.MergeNodes(ctx, e.kind(), from, to)
	res.Duration = time.Since(start)
	if res.Err == nil && !specify.MergeSucceeded(res.Status) {
		res.Err = MergeError(from, to, res.Status, nil)
	}
	if res.Err == nil {
		e.stats.Merged++
	}
	return res
}

// ParseIDs reads node ids, one per line. Blank lines and lines starting
// with '#' are ignored.
func ParseIDs(r io.Reader) ([]int, error) {
	var res []int
	sc := bufio.NewScanner(r)
	var line int
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		id, err := strconv.Atoi(s)
		if err != nil || id <= 0 {
			return nil, IDFileError(line, s)
		}
		res = append(res, id)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
