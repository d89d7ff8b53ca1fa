// Package results computes vote distributions for display. Percentages are
// derived on read from the raw counts, never stored.
package results

import (
	"math"

	"pollboard/domain/core/aggregates"
)

// OptionResult is one option's share of the vote.
type OptionResult struct {
	Index      int    `json:"index"`
	Text       string `json:"text"`
	Votes      int    `json:"votes"`
	Percentage int    `json:"percentage"`
}

// Distribution is the full result view of a poll at one instant.
type Distribution struct {
	Options      []OptionResult `json:"options"`
	TotalVotes   int            `json:"totalVotes"`
	Participants int            `json:"participants"`
}

// Percentage returns votes as a whole-number share of total, rounded half
// away from zero. A zero total yields 0 for every option rather than a
// division error.
func Percentage(votes, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(votes) / float64(total) * 100))
}

// Compute builds the result distribution for a poll. Option order is
// preserved so indices line up with ballots.
func Compute(poll *aggregates.Poll) Distribution {
	options := poll.Options()
	total := poll.TotalVotes()

	out := make([]OptionResult, len(options))
	for i, opt := range options {
		out[i] = OptionResult{
			Index:      i,
			Text:       opt.Text,
			Votes:      opt.Votes,
			Percentage: Percentage(opt.Votes, total),
		}
	}

	return Distribution{
		Options:      out,
		TotalVotes:   total,
		Participants: poll.ParticipantCount(),
	}
}
