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

package analyzer

import (
	"fmt"

	"github.com/retrovault/romid"
	"github.com/retrovault/romid/internal/romio"
)

const (
	n64HeaderSize         = 0x40
	n64InternalNameOffset = 0x20
	n64InternalNameSize   = 20
	n64CartridgeIDOffset  = 0x3C
	n64CartridgeIDSize    = 2
	n64CountryCodeOffset  = 0x3E
	n64VersionOffset      = 0x3F
)

// n64FirstWordBigEndian is the first four bytes of every N64 ROM once normalized to
// big-endian (.z64) order.
var n64FirstWordBigEndian = []byte{0x80, 0x37, 0x12, 0x40}

// N64Analyzer identifies Nintendo 64 ROM images in big-endian (z64), byte-swapped (v64),
// or word-swapped (n64) dump order.
type N64Analyzer struct {
	romid.DefaultCapability
}

func NewN64Analyzer() *N64Analyzer { return &N64Analyzer{} }

func (*N64Analyzer) PlatformName() string     { return "Nintendo 64" }
func (*N64Analyzer) ShortName() string        { return "n64" }
func (*N64Analyzer) Manufacturer() string     { return "Nintendo" }
func (*N64Analyzer) FolderNames() []string    { return []string{"N64", "Nintendo 64"} }
func (*N64Analyzer) FileExtensions() []string { return []string{".z64", ".v64", ".n64"} }

// DatChunkNormalizer byteswaps v64/n64 dumps to big-endian so all three dump orders hash
// identically against a z64-sourced DAT. The returned closure detects the dump's byte
// order from the first chunk (offset 0, which always carries the magic word) and applies
// the matching swap to every subsequent chunk — the hashing orchestrator always delivers
// chunks in ascending, gap-free offset order, so this stays correct without re-probing.
func (*N64Analyzer) DatChunkNormalizer() romid.ChunkNormalizer {
	var order n64ByteOrder
	return func(chunk []byte, chunkOffset int64) []byte {
		if chunkOffset == 0 && len(chunk) >= 4 {
			order = n64DetectOrder(chunk[0:4])
		}
		switch order {
		case n64OrderByteSwapped:
			return n64ByteSwap(chunk)
		case n64OrderWordSwapped:
			return n64WordSwap(chunk)
		default:
			return chunk
		}
	}
}

func (a *N64Analyzer) CanHandle(r romid.Reader) bool {
	firstWord, ok, err := romio.ReadBytesAt(r, 0, 4)
	if err != nil || !ok {
		return false
	}
	return n64DetectOrder(firstWord) != n64OrderUnknown
}

type n64ByteOrder int

const (
	n64OrderUnknown n64ByteOrder = iota
	n64OrderBigEndian
	n64OrderByteSwapped
	n64OrderWordSwapped
)

func n64DetectOrder(firstWord []byte) n64ByteOrder {
	if romio.BytesEqual(firstWord, n64FirstWordBigEndian) {
		return n64OrderBigEndian
	}
	if romio.BytesEqual(n64ByteSwap(firstWord), n64FirstWordBigEndian) {
		return n64OrderByteSwapped
	}
	wordSwapped := []byte{firstWord[3], firstWord[2], firstWord[1], firstWord[0]}
	if romio.BytesEqual(wordSwapped, n64FirstWordBigEndian) {
		return n64OrderWordSwapped
	}
	return n64OrderUnknown
}

// n64ByteSwap swaps every pair of bytes, converting between big-endian (z64) and
// byte-swapped (v64) order in either direction.
func n64ByteSwap(data []byte) []byte {
	if len(data)%2 != 0 {
		return data
	}
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += 2 {
		out[i], out[i+1] = data[i+1], data[i]
	}
	return out
}

// n64WordSwap reverses every group of 4 bytes, converting between big-endian (z64) and
// word-swapped/little-endian (n64) order in either direction.
func n64WordSwap(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	for i := 0; i+3 < len(out); i += 4 {
		out[i], out[i+1], out[i+2], out[i+3] = out[i+3], out[i+2], out[i+1], out[i]
	}
	return out
}

func (a *N64Analyzer) AnalyzeWithProgress(r romid.Reader, options romid.AnalysisOptions, progress romid.ProgressFunc) (*romid.Identification, error) {
	return a.Analyze(r, options)
}

func (a *N64Analyzer) Analyze(r romid.Reader, options romid.AnalysisOptions) (*romid.Identification, error) {
	size, err := romio.FileSize(r)
	if err != nil {
		return nil, romid.IOFailure("N64", err)
	}
	if size < n64HeaderSize {
		return nil, romid.TooSmall("N64", "file shorter than 64-byte header")
	}

	raw, ok, err := romio.ReadBytesAt(r, 0, n64HeaderSize)
	if err != nil {
		return nil, romid.IOFailure("N64", err)
	}
	if !ok {
		return nil, romid.TooSmall("N64", "could not read 64-byte header")
	}

	order := n64DetectOrder(raw[0:4])
	if order == n64OrderUnknown {
		return nil, romid.InvalidFormat("N64", "first word does not match any known dump order")
	}

	header := raw
	switch order {
	case n64OrderByteSwapped:
		header = n64ByteSwap(raw)
	case n64OrderWordSwapped:
		header = n64WordSwap(raw)
	}

	cartridgeID := header[n64CartridgeIDOffset : n64CartridgeIDOffset+n64CartridgeIDSize]
	countryCode := header[n64CountryCodeOffset]
	version := header[n64VersionOffset]
	gameCode := fmt.Sprintf("N%c%c%c", cartridgeID[0], cartridgeID[1], countryCode)
	region := n64CountryRegionToken(countryCode)
	if region == "" {
		region = string(countryCode)
	}
	serial := fmt.Sprintf("NUS-%s-%s", gameCode, region)
	internalName := romio.CleanString(header[n64InternalNameOffset : n64InternalNameOffset+n64InternalNameSize])

	id := romid.NewIdentification("Nintendo 64", size)
	id.SerialNumber = serial
	id.InternalName = internalName
	id.SetExtra("endianness", n64OrderName(order))
	id.SetExtra("version", fmt.Sprintf("%d", version))
	id.Regions.Add(romid.RegionFromSerialSuffix(n64CountryRegionToken(countryCode)), "country_code")
	id.SetChecksumStatus("header_crc", "unknown") // existence-only per spec; CRC not recomputed

	return id, nil
}

func n64OrderName(order n64ByteOrder) string {
	switch order {
	case n64OrderBigEndian:
		return "z64"
	case n64OrderByteSwapped:
		return "v64"
	case n64OrderWordSwapped:
		return "n64"
	default:
		return "unknown"
	}
}

func n64CountryRegionToken(countryCode byte) string {
	switch countryCode {
	case 'E':
		return "USA"
	case 'J':
		return "JPN"
	case 'P':
		return "EUR"
	case 'D':
		return "EUR"
	default:
		return ""
	}
}
