// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-gameid.
//
// go-gameid is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-gameid is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-gameid.  If not, see <https://www.gnu.org/licenses/>.

package datfile

import (
	"strings"
	"testing"
)

const sampleLogiqx = `<?xml version="1.0"?>
<datafile>
  <header>
    <name>Test DAT</name>
    <version>1.0</version>
  </header>
  <game name="Super Game (USA)">
    <description>Super Game (USA)</description>
    <rom name="Super Game (USA).sfc" size="524288" crc="7c92d5c1" md5="abcd" sha1="ef01" serial="SHVC-AB" />
  </game>
  <machine name="Other Game (Japan)">
    <rom name="Other Game (Japan).sfc" size="1048576" crc="11223344" />
  </machine>
</datafile>`

func TestParseLogiqxReader(t *testing.T) {
	file, err := ParseLogiqxReader(strings.NewReader(sampleLogiqx))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.Header.Name != "Test DAT" {
		t.Errorf("expected header name %q, got %q", "Test DAT", file.Header.Name)
	}
	if len(file.Games) != 2 {
		t.Fatalf("expected 2 games (game + machine), got %d", len(file.Games))
	}
	if file.Games[0].ROMs[0].CRC32 != "7c92d5c1" {
		t.Errorf("expected crc 7c92d5c1, got %q", file.Games[0].ROMs[0].CRC32)
	}
	if file.Games[0].ROMs[0].Serial != "SHVC-AB" {
		t.Errorf("expected serial SHVC-AB, got %q", file.Games[0].ROMs[0].Serial)
	}
	if file.Games[1].Name != "Other Game (Japan)" {
		t.Errorf("expected machine element parsed as game, got %q", file.Games[1].Name)
	}
}

func TestIndex_MergeAndLookup(t *testing.T) {
	file, err := ParseLogiqxReader(strings.NewReader(sampleLogiqx))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	idx := NewIndex()
	idx.Merge(file)

	hits := idx.LookupByCRC32("7C92D5C1")
	if len(hits) != 1 || hits[0].GameName != "Super Game (USA)" {
		t.Fatalf("expected exactly one CRC32 hit, got %+v", hits)
	}

	serialHits := idx.LookupBySerial("shvc-ab")
	if len(serialHits) != 1 {
		t.Fatalf("expected exactly one serial hit, got %+v", serialHits)
	}

	if got := idx.LookupBySHA1("nonexistent"); len(got) != 0 {
		t.Errorf("expected no hits for unknown sha1, got %+v", got)
	}
}
