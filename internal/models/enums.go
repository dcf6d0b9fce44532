// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package models

// SeatType is the seat position in the row.
type SeatType string

const (
	SeatWindow SeatType = "window"
	SeatMiddle SeatType = "middle"
	SeatAisle  SeatType = "aisle"
)

// Valid reports whether s is a known seat type.
func (s SeatType) Valid() bool {
	switch s {
	case SeatWindow, SeatMiddle, SeatAisle:
		return true
	}
	return false
}

// AircraftSide is the side of the cabin the seat is on.
type AircraftSide string

const (
	SideLeft   AircraftSide = "left"
	SideRight  AircraftSide = "right"
	SideCenter AircraftSide = "center"
)

// Valid reports whether s is a known aircraft side.
func (s AircraftSide) Valid() bool {
	switch s {
	case SideLeft, SideRight, SideCenter:
		return true
	}
	return false
}

// ClassType is the ticket class.
type ClassType string

const (
	ClassEconomy     ClassType = "economy"
	ClassEconomyPlus ClassType = "economy+"
	ClassBusiness    ClassType = "business"
	ClassFirst       ClassType = "first"
	ClassPrivate     ClassType = "private"
)

// Valid reports whether c is a known ticket class.
func (c ClassType) Valid() bool {
	switch c {
	case ClassEconomy, ClassEconomyPlus, ClassBusiness, ClassFirst, ClassPrivate:
		return true
	}
	return false
}

// FlightPurpose is the reason for travelling.
type FlightPurpose string

const (
	PurposeLeisure  FlightPurpose = "leisure"
	PurposeBusiness FlightPurpose = "business"
	PurposeCrew     FlightPurpose = "crew"
	PurposeOther    FlightPurpose = "other"
)

// Valid reports whether p is a known purpose.
func (p FlightPurpose) Valid() bool {
	switch p {
	case PurposeLeisure, PurposeBusiness, PurposeCrew, PurposeOther:
		return true
	}
	return false
}
