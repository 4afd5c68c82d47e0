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
	nesMagicOffset     = 0
	nesHeaderSize      = 16
	nesTrainerSize     = 512
	nesPRGBankSize     = 16384
	nesCHRBankSize     = 8192
	nesPRGBankSizeNES2 = 16384
)

var nesMagic = []byte{'N', 'E', 'S', 0x1A}

// NESAnalyzer identifies iNES and NES 2.0 ROM images.
type NESAnalyzer struct {
	romid.DefaultCapability
}

// NewNESAnalyzer creates a new NES analyzer.
func NewNESAnalyzer() *NESAnalyzer { return &NESAnalyzer{} }

func (*NESAnalyzer) PlatformName() string     { return "Nintendo Entertainment System" }
func (*NESAnalyzer) ShortName() string        { return "nes" }
func (*NESAnalyzer) Manufacturer() string     { return "Nintendo" }
func (*NESAnalyzer) FolderNames() []string    { return []string{"NES", "Famicom"} }
func (*NESAnalyzer) FileExtensions() []string { return []string{".nes"} }

func (*NESAnalyzer) DatHeaderSize() int64 { return nesHeaderSize }

func (a *NESAnalyzer) CanHandle(r romid.Reader) bool {
	magic, ok, err := romio.ReadBytesAt(r, nesMagicOffset, len(nesMagic))
	if err != nil || !ok {
		return false
	}
	return romio.BytesEqual(magic, nesMagic)
}

func (a *NESAnalyzer) AnalyzeWithProgress(r romid.Reader, options romid.AnalysisOptions, progress romid.ProgressFunc) (*romid.Identification, error) {
	return a.Analyze(r, options)
}

// Analyze parses the 16-byte iNES header, disambiguating NES 2.0 by bits 2-3 of byte 7
// (== 10b). The iNES format is never checksum-verified by any known tool, so this
// analyzer only validates header structure, matching spec's "not verified; header validity
// check only".
func (a *NESAnalyzer) Analyze(r romid.Reader, options romid.AnalysisOptions) (*romid.Identification, error) {
	size, err := romio.FileSize(r)
	if err != nil {
		return nil, romid.IOFailure("NES", err)
	}
	if size < nesHeaderSize {
		return nil, romid.TooSmall("NES", "file shorter than 16-byte iNES header")
	}

	header, ok, err := romio.ReadBytesAt(r, 0, nesHeaderSize)
	if err != nil {
		return nil, romid.IOFailure("NES", err)
	}
	if !ok {
		return nil, romid.TooSmall("NES", "could not read 16-byte iNES header")
	}
	if !romio.BytesEqual(header[0:4], nesMagic) {
		return nil, romid.InvalidFormat("NES", "missing NES\\x1A magic")
	}

	prgBanks := int(header[4])
	chrBanks := int(header[5])
	flags6 := header[6]
	flags7 := header[7]

	isNES2 := (flags7>>2)&0x03 == 0x02

	id := romid.NewIdentification("Nintendo Entertainment System", size)

	hasTrainer := flags6&0x04 != 0
	mirroring := "Horizontal"
	if flags6&0x01 != 0 {
		mirroring = "Vertical"
	}
	if flags6&0x08 != 0 {
		mirroring = "Four-screen"
	}
	id.SetExtra("mirroring", mirroring)

	var mapper int
	var prgSize, chrSize int64
	var format string

	if isNES2 {
		format = "NES 2.0"
		flags8 := header[8]
		flags9 := header[9]

		mapper = int(flags6>>4) | int(flags7&0xF0) | (int(flags8&0x0F) << 8)

		prgSize = nes2RomSize(prgBanks, int(flags9&0x0F), nesPRGBankSizeNES2)
		chrSize = nes2RomSize(chrBanks, int(flags9>>4), nesCHRBankSize)
	} else {
		format = "iNES"
		mapper = int(flags6>>4) | int(flags7&0xF0)

		prgSize = int64(prgBanks) * nesPRGBankSize
		chrSize = int64(chrBanks) * nesCHRBankSize
	}

	id.SetExtra("format", format)
	id.SetExtra("mapper", fmt.Sprintf("%d", mapper))

	expected := int64(nesHeaderSize) + prgSize + chrSize
	if hasTrainer {
		expected += nesTrainerSize
	}
	id.SetExpectedSize(expected)
	id.SetChecksumStatus("ines_header", "unknown")

	return id, nil
}

// nes2RomSize applies NES 2.0's exponent-multiplier encoding when the size-MSB nibble is
// 0xF: size = 2^(exponent) * (multiplier*2 + 1), where exponent is bits 2-7 and multiplier
// is bits 0-1 of the low byte. Otherwise the byte combination is a plain bank count.
func nes2RomSize(lowBanks int, msbNibble int, bankSize int64) int64 {
	if msbNibble == 0x0F {
		exponent := uint(lowBanks >> 2)
		multiplier := int64(lowBanks&0x03)*2 + 1
		return (int64(1) << exponent) * multiplier
	}
	banks := lowBanks | (msbNibble << 8)
	return int64(banks) * bankSize
}
