package community

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/nutriverse/nutribot/internal/segment"
)

// TopN is how many complaints and recommendations an insight keeps.
const TopN = 3

// ErrNoSegmentData is returned by Summarize when a segment has no members.
var ErrNoSegmentData = errors.New("no community data")

// Insight summarizes a segment's members.
type Insight struct {
	Segment            string   `json:"segment"`
	ProblemType        string   `json:"problem_type,omitempty"`
	Members            int      `json:"total_users_in_segment"`
	TopComplaints      []string `json:"common_complaints"`
	TopRecommendations []string `json:"successful_solutions"`
	Description        string   `json:"segment_description"`
}

// String renders the insight for a prompt.
func (in Insight) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d users)", in.Description, in.Members)
	fmt.Fprintf(&b, "; common complaints: %s", renderList(in.TopComplaints))
	fmt.Fprintf(&b, "; what helped others: %s", renderList(in.TopRecommendations))
	return b.String()
}

// NoDataMessage is the user-facing text for a segment without members.
func NoDataMessage(segmentName string) string {
	return fmt.Sprintf("No community data available for %s segment", segmentName)
}

// Aggregator builds per-segment insights from the profile store.
type Aggregator struct {
	dir    Directory
	logger *slog.Logger
}

// NewAggregator creates an Aggregator over dir.
func NewAggregator(dir Directory, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Aggregator{dir: dir, logger: logger.With("component", "community_insights")}
}

// Summarize tabulates the complaints and recommendations of every member of
// segmentName. problemType is carried through to the result unchanged. A
// segment with no members yields an error wrapping ErrNoSegmentData.
func (a *Aggregator) Summarize(segmentName, problemType string) (Insight, error) {
	members := a.dir.Members(segmentName)
	if len(members) == 0 {
		return Insight{}, fmt.Errorf("%w: %s", ErrNoSegmentData, NoDataMessage(segmentName))
	}

	complaints := newTally()
	recommendations := newTally()
	for _, m := range members {
		for _, c := range m.Complaints {
			complaints.add(c)
		}
		for _, r := range m.SuccessfulRecommendations {
			recommendations.add(r.Text)
		}
	}

	in := Insight{
		Segment:            segmentName,
		ProblemType:        problemType,
		Members:            len(members),
		TopComplaints:      complaints.top(TopN),
		TopRecommendations: recommendations.top(TopN),
		Description:        segment.Description(segmentName),
	}
	a.logger.Debug("Summarized segment", "segment", segmentName, "members", in.Members)
	return in, nil
}

// tally counts strings and remembers the order they were first seen in.
type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(s string) {
	if _, ok := t.counts[s]; !ok {
		t.order = append(t.order, s)
	}
	t.counts[s]++
}

// top returns up to n values by descending count; ties keep first-seen order.
func (t *tally) top(n int) []string {
	out := slices.Clone(t.order)
	slices.SortStableFunc(out, func(a, b string) int {
		return t.counts[b] - t.counts[a]
	})
	if len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func renderList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	return strings.Join(items, ", ")
}
