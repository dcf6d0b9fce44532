// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package models

// ProgressType is the kind of a progress frame.
type ProgressType string

const (
	ProgressStart ProgressType = "start"
	ProgressStep  ProgressType = "progress"
	ProgressDone  ProgressType = "done"
	ProgressError ProgressType = "error"
)

// Terminal reports whether t ends a stream.
func (t ProgressType) Terminal() bool {
	return t == ProgressDone || t == ProgressError
}

// Step statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// ProgressEvent is one frame of a long-running pass. Updated and Skipped are
// only set on done frames.
type ProgressEvent struct {
	Type    ProgressType `json:"type"`
	Total   int          `json:"total"`
	Current int          `json:"current,omitempty"`
	Item    string       `json:"item,omitempty"`
	Status  string       `json:"status,omitempty"`
	Error   string       `json:"error,omitempty"`
	Updated *int         `json:"updated,omitempty"`
	Skipped *int         `json:"skipped,omitempty"`
}
