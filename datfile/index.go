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

import "strings"

// Entry is one hashable catalog record, flattened out of a Game/ROM (or Game/Disk)
// pair so the matching engine can look entries up by any of the three digests or a
// serial without caring which DAT format they came from.
type Entry struct {
	GameName string
	DatName  string // the source DAT's Header.Name, for provenance
	CRC32    string
	MD5      string
	SHA1     string
	Serial   string
	Status   DumpStatus
}

// Index is a merged, hash-indexed view over one or more Datafiles belonging to the
// same console. Game/ROM ordering from the source files is not preserved; lookups are
// by digest or serial only.
//
// All three hash-keyed maps are keyed by uppercase hex. The LookupBy* methods uppercase
// their argument, so the lowercase hex digests match.Hash produces can be passed
// without a case-normalization step at the call site.
type Index struct {
	ByCRC32  map[string][]Entry
	ByMD5    map[string][]Entry
	BySHA1   map[string][]Entry
	BySerial map[string][]Entry

	// Collisions counts, per hash kind, how many add calls landed on a key that
	// already held at least one entry — the running total of same-hash conflicts
	// merged into this Index, independent of any one lookup's result.
	Collisions CollisionCounts
}

// CollisionCounts tallies same-key conflicts observed while merging entries into an
// Index, broken down by which digest the conflict occurred on.
type CollisionCounts struct {
	CRC32 int
	MD5   int
	SHA1  int
}

// Total returns the sum of all three per-digest collision counts.
func (c CollisionCounts) Total() int { return c.CRC32 + c.MD5 + c.SHA1 }

// NewIndex builds an empty Index.
func NewIndex() *Index {
	return &Index{
		ByCRC32:  map[string][]Entry{},
		ByMD5:    map[string][]Entry{},
		BySHA1:   map[string][]Entry{},
		BySerial: map[string][]Entry{},
	}
}

// Merge folds every game entry from the given Datafiles into the Index. Multiple DATs
// for the same console (e.g. a base No-Intro set plus a supplemental BIOS DAT) are
// merged by calling Merge repeatedly or passing all of them at once; entries are
// additive, so a hash appearing in more than one DAT accumulates multiple Entry values
// rather than overwriting — the matching engine's ambiguity handling relies on this.
func (idx *Index) Merge(files ...*Datafile) {
	for _, f := range files {
		if f == nil {
			continue
		}
		for _, g := range f.Games {
			for _, rom := range g.ROMs {
				idx.add(Entry{
					GameName: g.Name,
					DatName:  f.Header.Name,
					CRC32:    rom.CRC32,
					MD5:      rom.MD5,
					SHA1:     rom.SHA1,
					Serial:   rom.Serial,
					Status:   rom.Status,
				})
			}
			for _, disk := range g.Disks {
				idx.add(Entry{
					GameName: g.Name,
					DatName:  f.Header.Name,
					MD5:      disk.MD5,
					SHA1:     disk.SHA1,
					Status:   disk.Status,
				})
			}
		}
	}
}

func (idx *Index) add(e Entry) {
	if e.CRC32 != "" {
		key := strings.ToUpper(e.CRC32)
		if len(idx.ByCRC32[key]) > 0 {
			idx.Collisions.CRC32++
		}
		idx.ByCRC32[key] = append(idx.ByCRC32[key], e)
	}
	if e.MD5 != "" {
		key := strings.ToUpper(e.MD5)
		if len(idx.ByMD5[key]) > 0 {
			idx.Collisions.MD5++
		}
		idx.ByMD5[key] = append(idx.ByMD5[key], e)
	}
	if e.SHA1 != "" {
		key := strings.ToUpper(e.SHA1)
		if len(idx.BySHA1[key]) > 0 {
			idx.Collisions.SHA1++
		}
		idx.BySHA1[key] = append(idx.BySHA1[key], e)
	}
	if e.Serial != "" {
		key := strings.ToUpper(e.Serial)
		idx.BySerial[key] = append(idx.BySerial[key], e)
	}
}

// LookupByCRC32, LookupByMD5, and LookupBySHA1 return every catalog entry whose digest
// matches, case-insensitively (the index itself keys on uppercase hex). More than one
// result means the digest is ambiguous within this Index (e.g. a ROM hack sharing a
// CRC32 with the original, or — per the recorded design decision on cross-disc PS1
// serial collisions — entries that only disambiguate by a different hash). Callers
// that need the matching policy's first-entry-plus-collision-count behavior should use
// match.Lookup rather than inspecting len() themselves.
func (idx *Index) LookupByCRC32(crc32 string) []Entry { return idx.ByCRC32[strings.ToUpper(crc32)] }
func (idx *Index) LookupByMD5(md5 string) []Entry     { return idx.ByMD5[strings.ToUpper(md5)] }
func (idx *Index) LookupBySHA1(sha1 string) []Entry   { return idx.BySHA1[strings.ToUpper(sha1)] }

// LookupBySerial returns every entry recorded under the given serial, case-insensitive.
func (idx *Index) LookupBySerial(serial string) []Entry {
	return idx.BySerial[strings.ToUpper(serial)]
}
