// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package statistics

import (
	"sort"

	"github.com/tomtom215/jetlog/internal/models"
)

// counter is a frequency table that remembers first-seen key order.
type counter struct {
	index   map[string]int
	entries models.Ranking
}

func newCounter() *counter {
	return &counter{index: make(map[string]int)}
}

func (c *counter) add(key string, n int) {
	if i, ok := c.index[key]; ok {
		c.entries[i].Count += n
		return
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, models.RankEntry{Key: key, Count: n})
}

// ranked returns the entries by descending count, equal counts in
// first-seen order. limit <= 0 returns every entry.
func (c *counter) ranked(limit int) models.Ranking {
	out := make(models.Ranking, len(c.entries))
	copy(out, c.entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
