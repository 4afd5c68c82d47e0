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

package match

import (
	"errors"

	"github.com/retrovault/romid"
	"github.com/retrovault/romid/datfile"
)

// VerdictKind is the closed set of outcomes Lookup can produce.
type VerdictKind int

const (
	Unmatched VerdictKind = iota
	Matched
	Ambiguous
	Unanalyzable
)

func (k VerdictKind) String() string {
	switch k {
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	case Unanalyzable:
		return "unanalyzable"
	default:
		return "unmatched"
	}
}

// Verdict is the external-facing result of matching an Identification against a DAT
// Index: exactly one field set is meaningful, selected by Kind.
type Verdict struct {
	Kind VerdictKind

	// Matched
	CanonicalName string
	DatEntry      datfile.Entry
	// CollisionCount is how many other catalog entries shared DatEntry's matching
	// digest, i.e. len(candidates)-1 at the key that resolved the match. Zero means
	// the digest was unambiguous within the Index.
	CollisionCount int

	// Ambiguous
	Candidates []datfile.Entry

	// Unanalyzable
	Err error
}

// Lookup implements spec's matching policy: prefer a unique serial match, fall back to
// hash lookup (SHA-1, then MD5, then CRC32), and use hashes to break a tie among several
// serial candidates (the normal case for a multi-disc release sharing one serial across
// regions). analyzer is consulted only for ExtractDatGameCode; it may be nil if id has
// no serial.
func Lookup(id *romid.Identification, analyzer romid.Analyzer, idx *datfile.Index, digests Digests) Verdict {
	if id == nil {
		return Verdict{Kind: Unanalyzable, Err: errors.New("no identification to match")}
	}

	var serialCandidates []datfile.Entry
	if id.SerialNumber != "" && analyzer != nil {
		gameCode := analyzer.ExtractDatGameCode(id.SerialNumber)
		if gameCode != "" {
			serialCandidates = idx.LookupBySerial(gameCode)
		}
	}

	if len(serialCandidates) == 1 {
		return Verdict{Kind: Matched, CanonicalName: serialCandidates[0].GameName, DatEntry: serialCandidates[0]}
	}

	if len(serialCandidates) > 1 {
		if hit, ok := disambiguateByHash(serialCandidates, digests); ok {
			return Verdict{Kind: Matched, CanonicalName: hit.GameName, DatEntry: hit}
		}
		return Verdict{Kind: Ambiguous, Candidates: serialCandidates}
	}

	if hit, collisions, ok := lookupByHashes(idx, digests); ok {
		return Verdict{Kind: Matched, CanonicalName: hit.GameName, DatEntry: hit, CollisionCount: collisions}
	}

	return Verdict{Kind: Unmatched}
}

// lookupByHashes tries SHA-1, then MD5, then CRC32, using the first digest that has any
// entry in the Index at all. A digest resolving to more than one entry is not treated as
// a miss: per the Index's merge policy, same-hash conflicts are retained rather than
// deduplicated, so lookup returns the first entry for that key and reports how many
// other entries shared it as the collision count, rather than silently falling through
// to a weaker digest.
func lookupByHashes(idx *datfile.Index, digests Digests) (datfile.Entry, int, bool) {
	if digests.SHA1 != "" {
		if hits := idx.LookupBySHA1(digests.SHA1); len(hits) > 0 {
			return hits[0], len(hits) - 1, true
		}
	}
	if digests.MD5 != "" {
		if hits := idx.LookupByMD5(digests.MD5); len(hits) > 0 {
			return hits[0], len(hits) - 1, true
		}
	}
	if digests.CRC32 != "" {
		if hits := idx.LookupByCRC32(digests.CRC32); len(hits) > 0 {
			return hits[0], len(hits) - 1, true
		}
	}
	return datfile.Entry{}, 0, false
}

func disambiguateByHash(candidates []datfile.Entry, digests Digests) (datfile.Entry, bool) {
	for _, c := range candidates {
		if digests.SHA1 != "" && c.SHA1 == digests.SHA1 {
			return c, true
		}
	}
	for _, c := range candidates {
		if digests.MD5 != "" && c.MD5 == digests.MD5 {
			return c, true
		}
	}
	for _, c := range candidates {
		if digests.CRC32 != "" && c.CRC32 == digests.CRC32 {
			return c, true
		}
	}
	return datfile.Entry{}, false
}
