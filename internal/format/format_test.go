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

package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMsat(t *testing.T) {
	tests := []struct {
		name    string
		msats   int64
		want    Amount
		wantErr error
	}{
		{
			name:  "zero",
			msats: 0,
			want:  Amount{Sats: 0, Msats: 0, Formatted: "0 sats"},
		},
		{
			name:  "floors sub-satoshi remainder",
			msats: 1999,
			want:  Amount{Sats: 1, Msats: 1999, Formatted: "1 sats"},
		},
		{
			name:  "exact satoshi",
			msats: 21_000,
			want:  Amount{Sats: 21, Msats: 21_000, Formatted: "21 sats"},
		},
		{
			name:  "thousands separator",
			msats: 1_234_567_000,
			want:  Amount{Sats: 1_234_567, Msats: 1_234_567_000, Formatted: "1,234,567 sats"},
		},
		{
			name:    "negative rejected",
			msats:   -1,
			wantErr: ErrNegativeAmount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Msat(tt.msats)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// floor invariant: sats == msats/1000 for a spread of non-negative inputs.
func TestMsat_floorInvariant(t *testing.T) {
	for _, msats := range []int64{0, 1, 999, 1000, 1001, 123_456_789, 1 << 40} {
		got, err := Msat(msats)
		require.NoError(t, err)
		assert.Equal(t, msats/1000, got.Sats, "msats=%d", msats)
		assert.Equal(t, msats, got.Msats)
	}
}

func TestSat(t *testing.T) {
	got, err := Sat(1500)
	require.NoError(t, err)
	assert.Equal(t, Amount{Sats: 1500, Msats: 1_500_000, Formatted: "1,500 sats"}, got)

	_, err = Sat(-5)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}
