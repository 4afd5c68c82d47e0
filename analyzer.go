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

import "strings"

// DatSource identifies which curated catalog an analyzer's DAT names belong to.
type DatSource int

const (
	DatSourceNoIntro DatSource = iota
	DatSourceRedump
)

func (s DatSource) String() string {
	if s == DatSourceRedump {
		return "Redump"
	}
	return "No-Intro"
}

// ChunkNormalizer rewrites a hashing chunk before it is fed to the running hashers.
// chunkOffset is the chunk's offset within the post-header-skip stream. The identity
// normalizer (nil) is used by every console except N64, which must byteswap v64/n64
// dumps to big-endian before hashing so all three dump orders hash identically.
type ChunkNormalizer func(chunk []byte, chunkOffset int64) []byte

// Analyzer is the capability every per-console implementation exposes. There is no
// inheritance hierarchy: analyzers that don't need a DAT-related override embed
// DefaultCapability to pick up the documented defaults.
type Analyzer interface {
	// PlatformName is the human-facing display name, e.g. "Game Boy Color".
	PlatformName() string
	// ShortName is a compact identifier, e.g. "gbc".
	ShortName() string
	// Manufacturer is the console's maker, e.g. "Nintendo".
	Manufacturer() string
	// FolderNames lists the directory names front-ends conventionally use for this
	// platform's ROMs.
	FolderNames() []string
	// FileExtensions lists the file extensions this analyzer's files commonly use.
	FileExtensions() []string

	// CanHandle peeks the reader's magic bytes and restores the read position
	// before returning. An I/O error is treated as "cannot handle", never as a
	// panic or propagated error.
	CanHandle(r Reader) bool

	// Analyze is the primary operation: parse the header (and, unless options.Quick
	// is set, verify whole-body checksums) and produce an Identification.
	Analyze(r Reader, options AnalysisOptions) (*Identification, error)

	// AnalyzeWithProgress is Analyze for formats whose full parse can read
	// substantially more than a bounded prefix. progress may be nil.
	AnalyzeWithProgress(r Reader, options AnalysisOptions, progress ProgressFunc) (*Identification, error)

	// DatSource is the catalog this console's DATs come from.
	DatSource() DatSource
	// DatNames lists the DAT display names that should be merged into one index for
	// this console.
	DatNames() []string
	// DatDownloadIDs lists identifiers a cache layer could use to construct
	// download URLs for this console's DATs.
	DatDownloadIDs() []string
	// DatHeaderSize is the number of bytes to skip at the front of the file before
	// hashing (e.g. 16 for iNES).
	DatHeaderSize() int64
	// DatChunkNormalizer is the optional per-chunk rewrite applied during hashing.
	// Nil means identity.
	DatChunkNormalizer() ChunkNormalizer
	// ExtractDatGameCode maps an analyzer-emitted serial (e.g. "NUS-NSME-USA") to
	// the DAT-stored game code ("NSME").
	ExtractDatGameCode(fullSerial string) string
	// ExtractScraperSerial maps an analyzer-emitted serial to the serial form a
	// media scraper expects. Defaults to ExtractDatGameCode.
	ExtractScraperSerial(fullSerial string) string
}

// PathAnalyzer is the extended capability for disc-based consoles whose analysis needs
// to walk sibling files (PS1's .cue referencing a .bin on disk).
type PathAnalyzer interface {
	Analyzer
	AnalyzeFromPath(path string, options AnalysisOptions) (*Identification, error)
}

// datHeaderPrefixes is the set of console serial prefixes DefaultCapability's
// ExtractDatGameCode rule recognizes.
var datHeaderPrefixes = map[string]bool{
	"NUS": true, "AGB": true, "NTR": true, "DMG": true, "CGB": true, "CTR": true, "TWL": true,
}

// DefaultCapability implements every DAT-related Analyzer method with the documented
// default. Concrete analyzers embed it and override only the methods that differ,
// following spec's "flat interface, defaults everywhere" design.
type DefaultCapability struct{}

func (DefaultCapability) DatSource() DatSource                { return DatSourceNoIntro }
func (DefaultCapability) DatNames() []string                  { return nil }
func (DefaultCapability) DatDownloadIDs() []string             { return nil }
func (DefaultCapability) DatHeaderSize() int64                 { return 0 }
func (DefaultCapability) DatChunkNormalizer() ChunkNormalizer  { return nil }

// ExtractDatGameCode applies the default rule: if the serial has >= 2 hyphens and its
// first segment is a recognized console prefix, return the second segment; otherwise
// return the serial unchanged.
func (DefaultCapability) ExtractDatGameCode(fullSerial string) string {
	parts := strings.Split(fullSerial, "-")
	if len(parts) >= 3 && datHeaderPrefixes[parts[0]] {
		return parts[1]
	}
	return fullSerial
}

// ExtractScraperSerial delegates to ExtractDatGameCode by default.
func (d DefaultCapability) ExtractScraperSerial(fullSerial string) string {
	return d.ExtractDatGameCode(fullSerial)
}
