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

package romid

// Identification is the result record produced by every analyzer.
type Identification struct {
	// Platform is a free-form display name, e.g. "Game Boy Color".
	Platform string

	// SerialNumber is the full serial as embedded in the ROM, e.g. "NUS-NSME-USA". May
	// be empty when the format doesn't carry one.
	SerialNumber string

	// InternalName is the printable title from the header.
	InternalName string

	// Regions is the set of regions derivable from serial suffix, region byte, or
	// bitmask, depending on console.
	Regions *RegionSet

	// FileSize is the actual size of the analyzed file on disk.
	FileSize int64

	// ExpectedSize is the size computed from header fields. Nil when the format does
	// not declare a computable size.
	ExpectedSize *int64

	// Extra holds small console-specific facts: mapper, mirroring, cartridge-type
	// code, ROM/RAM size codes, checksum verdicts (key form
	// "checksum_status:<name>" -> "valid"|"invalid"|"unknown"), disc track counts,
	// format variant, etc.
	Extra map[string]string
}

// NewIdentification creates an Identification with initialized collections.
func NewIdentification(platform string, fileSize int64) *Identification {
	return &Identification{
		Platform: platform,
		Regions:  NewRegionSet(),
		FileSize: fileSize,
		Extra:    make(map[string]string),
	}
}

// SetExtra records a console-specific fact, skipping empty values so Extra never
// accumulates noise.
func (id *Identification) SetExtra(key, value string) {
	if value == "" {
		return
	}
	id.Extra[key] = value
}

// SetExpectedSize records the header-computed size.
func (id *Identification) SetExpectedSize(size int64) {
	id.ExpectedSize = &size
}

// SetChecksumStatus records a named checksum's verification verdict. status must be
// "valid", "invalid", or "unknown".
func (id *Identification) SetChecksumStatus(name, status string) {
	id.Extra["checksum_status:"+name] = status
}

// reconcileRegions finalizes the region-disagreement flag into Extra. Registry.Identify
// calls this once on the Identification a successful analyzer returns.
func (id *Identification) reconcileRegions() {
	if id.Regions.HasConflict() {
		id.Extra["region_source_disagreement"] = "true"
	}
}

// AnalysisOptions configures an analyze call.
type AnalysisOptions struct {
	// Quick, when true, bounds analyzers to a short prefix read (typically <= 64KiB)
	// and skips whole-body checksum/save-type/secure-area verification.
	Quick bool

	// FilePath is the absolute path to the file being analyzed, used by analyzers
	// that must walk sibling files (the PS1 CUE analyzer locating its BIN track).
	FilePath string

	// ComputeHashes, when true, asks the hashing orchestrator to also compute
	// CRC32/MD5/SHA1 for DAT matching. Orthogonal to analyzer parsing.
	ComputeHashes bool
}
