package rtspgateway

import (
	"strconv"
	"strings"
	"time"

	"github.com/rtspgateway/rtspgateway/pkg/base"
	"github.com/rtspgateway/rtspgateway/pkg/headers"
)

// PlayRange is the normalized, unit-independent interpretation of a Range
// header: Start/End are seconds relative to the media's own timeline, or
// nil when open-ended. Start is nil only for the "npt=now-" form, meaning
// "start wherever the source is right now".
type PlayRange struct {
	Start *float64
	End   *float64
}

// parseRange interprets the Range header of a PLAY request. Unlike
// RangeNPTTime.Read, it special-cases "npt=now-...", which is not a valid
// float and must be handled before delegating to headers.Range.
func parseRange(v base.HeaderValue) (*PlayRange, error) {
	if len(v) == 0 {
		return nil, nil
	}

	if len(v) == 1 && strings.HasPrefix(v[0], "npt=now-") {
		pr := &PlayRange{}
		rest := strings.TrimPrefix(v[0], "npt=now-")
		if rest != "" {
			end, err := parseNPTSeconds(rest)
			if err != nil {
				return nil, err
			}
			pr.End = &end
		}
		return pr, nil
	}

	var h headers.Range
	if err := h.Read(v); err != nil {
		return nil, err
	}

	switch val := h.Value.(type) {
	case *headers.RangeNPT:
		start := time.Duration(val.Start).Seconds()
		pr := &PlayRange{Start: &start}
		if val.End != nil {
			end := time.Duration(*val.End).Seconds()
			pr.End = &end
		}
		return pr, nil

	case *headers.RangeSMPTE:
		start := val.Start.Time.Seconds()
		pr := &PlayRange{Start: &start}
		if val.End != nil {
			end := val.End.Time.Seconds()
			pr.End = &end
		}
		return pr, nil

	case *headers.RangeUTC:
		now := time.Now()
		start := time.Time(val.Start).Sub(now).Seconds()
		pr := &PlayRange{Start: &start}
		if val.End != nil {
			// computed independently from "now", not chained off Start:
			// a clock range names two absolute instants, not an offset pair.
			end := time.Time(*val.End).Sub(now).Seconds()
			pr.End = &end
		}
		return pr, nil
	}

	return nil, nil
}

// parseNPTSeconds parses a bare NPT time string ("12.5" or "1:02:03.4")
// into seconds by wrapping it as a one-sided NPT range.
func parseNPTSeconds(s string) (float64, error) {
	var h headers.Range
	if err := h.Read(base.HeaderValue{"npt=" + s + "-"}); err != nil {
		return 0, err
	}
	val := h.Value.(*headers.RangeNPT)
	return time.Duration(val.Start).Seconds(), nil
}

// writeRangeHeader renders a PlayRange back out as an npt Range header,
// the normalised form echoed on a PLAY response regardless of the unit the
// client originally sent.
func writeRangeHeader(pr *PlayRange) base.HeaderValue {
	start := "now"
	if pr.Start != nil {
		start = strconv.FormatFloat(*pr.Start, 'f', -1, 64)
	}

	v := "npt=" + start + "-"
	if pr.End != nil {
		v += strconv.FormatFloat(*pr.End, 'f', -1, 64)
	}

	return base.HeaderValue{v}
}
