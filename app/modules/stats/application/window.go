package statsservice

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var sinceParser = newSinceParser()

func newSinceParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// historyFloor turns the window options of a request into the oldest timestamp
// a backward crawl reads. Zero or absent history-days with no since text means
// the configured default floor.
func (s *StatsService) historyFloor(req StatsRequest, now time.Time) (time.Time, error) {
	if req.HistoryDays != nil && *req.HistoryDays < 0 {
		return time.Time{}, ErrInvalidHistoryWindow
	}

	since := strings.TrimSpace(req.Since)
	if since != "" {
		if req.HistoryDays != nil && *req.HistoryDays > 0 {
			return time.Time{}, ErrConflictingWindow
		}
		r, err := sinceParser.Parse(since, now)
		if err != nil || r == nil || !r.Time.Before(now) {
			return time.Time{}, ErrInvalidSince
		}
		return r.Time, nil
	}

	if req.HistoryDays != nil && *req.HistoryDays > 0 {
		return now.Add(-time.Duration(*req.HistoryDays) * 24 * time.Hour), nil
	}
	return s.cfg.DefaultHistoryFloor, nil
}
