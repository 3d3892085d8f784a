// Copyright (c) 2026 Breez MCP Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package format converts raw satoshi/millisatoshi integers into the amount
// representation returned by the tool handlers.  Pure functions, no I/O.
package format

import (
	"errors"

	"github.com/dustin/go-humanize"
)

// ErrNegativeAmount is returned when a negative raw value is passed in.
var ErrNegativeAmount = errors.New("amount must not be negative")

// Amount is the dual human/machine readable rendering of a raw amount.  It is
// recomputed per response and never persisted.
type Amount struct {
	Sats      int64  `json:"sats"`
	Msats     int64  `json:"msats"`
	Formatted string `json:"formatted"`
}

// Msat renders a raw millisatoshi value.  Satoshis are the floor of
// msats/1000; the formatted string is locale-free with a thousands separator
// and a unit suffix, e.g. "1,234 sats".
func Msat(msats int64) (Amount, error) {
	if msats < 0 {
		return Amount{}, ErrNegativeAmount
	}
	sats := msats / 1000
	return Amount{
		Sats:      sats,
		Msats:     msats,
		Formatted: humanize.Comma(sats) + " sats",
	}, nil
}

// Sat renders a whole-satoshi value.
func Sat(sats int64) (Amount, error) {
	if sats < 0 {
		return Amount{}, ErrNegativeAmount
	}
	return Msat(sats * 1000)
}
