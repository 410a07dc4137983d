package loader

import (
	"io"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"ridepooling/internal/graph"
	"ridepooling/internal/request"
)

// requestRow is the gocsv-tagged row shape for the replay requests table.
// The "passangers" spelling is the source table's literal column name and
// is preserved for replay compatibility (SPEC_FULL.md §6.2).
type requestRow struct {
	ID            string `csv:"id"`
	Time          string `csv:"time"`
	StartTime     string `csv:"start_time"`
	StartID       string `csv:"start_id"`
	DestinationID string `csv:"destination_id"`
	Passangers    int    `csv:"passangers"`
}

// TimeLayout is the timestamp format used by every replay/export table.
const TimeLayout = "2006-01-02 15:04:05"

// LoadRequests reads the replay requests table, resolves each row's
// direct_travel from g, and sorts the result by "time" ascending per
// SPEC_FULL.md §6.2. maxDelay is the scenario's global weights.delay_max,
// assigned to every request per the original producer's convention. In
// strict mode (lenient=false) the first invalid row
// aborts the load; in lenient mode an invalid row is dropped and a
// warning is logged through logger (per SPEC_FULL.md §7's validation
// error handling). logger may be nil in strict mode.
func LoadRequests(r io.Reader, g *graph.Graph, maxDelay int, lenient bool, logger *zap.Logger) ([]request.Request, error) {
	var rows []requestRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.Wrap(err, "loader: unmarshalling requests csv")
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Time < rows[j].Time })

	out := make([]request.Request, 0, len(rows))
	for _, row := range rows {
		req, err := buildRequest(row, g, maxDelay)
		if err != nil {
			if !lenient {
				return nil, err
			}
			if logger != nil {
				logger.Warn("loader: dropping invalid request row", zap.String("id", row.ID), zap.Error(err))
			}
			continue
		}
		out = append(out, req)
	}

	return out, nil
}

func buildRequest(row requestRow, g *graph.Graph, maxDelay int) (request.Request, error) {
	created, err := time.Parse(TimeLayout, row.Time)
	if err != nil {
		return request.Request{}, errors.Wrapf(err, "loader: parsing created time for request %s", row.ID)
	}
	promised, err := time.Parse(TimeLayout, row.StartTime)
	if err != nil {
		return request.Request{}, errors.Wrapf(err, "loader: parsing promised time for request %s", row.ID)
	}

	origin := graph.StationID(row.StartID)
	dest := graph.StationID(row.DestinationID)
	if !g.HasStation(origin) {
		return request.Request{}, errors.Wrapf(graph.ErrUnknownStation, "request %s origin %s", row.ID, origin)
	}
	if !g.HasStation(dest) {
		return request.Request{}, errors.Wrapf(graph.ErrUnknownStation, "request %s destination %s", row.ID, dest)
	}

	direct, err := g.TravelTime(origin, dest)
	if err != nil {
		return request.Request{}, err
	}

	req, err := request.New(request.ID(row.ID), origin, dest, row.Passangers, promised, created, maxDelay, direct)
	if err != nil {
		return request.Request{}, errors.Wrapf(err, "loader: request %s", row.ID)
	}
	return req, nil
}
