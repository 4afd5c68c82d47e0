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

import "testing"

func TestIndex_HashKeysAreUppercase(t *testing.T) {
	idx := NewIndex()
	idx.Merge(&Datafile{
		Games: []Game{
			{Name: "Game", ROMs: []ROM{{CRC32: "deadbeef", MD5: "abcdef00", SHA1: "0011aabb"}}},
		},
	})

	for key := range idx.ByCRC32 {
		if key != "DEADBEEF" {
			t.Errorf("expected uppercase CRC32 key, got %q", key)
		}
	}
	for key := range idx.ByMD5 {
		if key != "ABCDEF00" {
			t.Errorf("expected uppercase MD5 key, got %q", key)
		}
	}
	for key := range idx.BySHA1 {
		if key != "0011AABB" {
			t.Errorf("expected uppercase SHA1 key, got %q", key)
		}
	}
}

func TestIndex_LookupIsCaseInsensitive(t *testing.T) {
	idx := NewIndex()
	idx.Merge(&Datafile{
		Games: []Game{{Name: "Game", ROMs: []ROM{{CRC32: "DeAdBeEf"}}}},
	})

	if hits := idx.LookupByCRC32("deadbeef"); len(hits) != 1 {
		t.Fatalf("expected lowercase lookup to find the entry, got %d hits", len(hits))
	}
	if hits := idx.LookupByCRC32("DEADBEEF"); len(hits) != 1 {
		t.Fatalf("expected uppercase lookup to find the entry, got %d hits", len(hits))
	}
}

func TestIndex_MergeRetainsCollisionsAndCountsThem(t *testing.T) {
	idx := NewIndex()
	idx.Merge(&Datafile{
		Header: Header{Name: "Base"},
		Games: []Game{
			{Name: "Original", ROMs: []ROM{{CRC32: "cafebabe"}}},
		},
	})
	idx.Merge(&Datafile{
		Header: Header{Name: "Hacks"},
		Games: []Game{
			{Name: "Hack of Original", ROMs: []ROM{{CRC32: "cafebabe"}}},
		},
	})

	hits := idx.LookupByCRC32("CAFEBABE")
	if len(hits) != 2 {
		t.Fatalf("expected both entries retained under the shared CRC32, got %d", len(hits))
	}
	if idx.Collisions.CRC32 != 1 {
		t.Errorf("expected one recorded CRC32 collision, got %d", idx.Collisions.CRC32)
	}
	if idx.Collisions.Total() != 1 {
		t.Errorf("expected total collisions of 1, got %d", idx.Collisions.Total())
	}
}
