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
	"bytes"
	"fmt"

	"github.com/retrovault/romid"
	"github.com/retrovault/romid/internal/romio"
)

const (
	gbaHeaderSize          = 192
	gbaNintendoLogoOffset  = 0x04
	gbaNintendoLogoSize    = 156
	gbaTitleOffset         = 0xA0
	gbaTitleSize           = 12
	gbaGameCodeOffset      = 0xAC
	gbaGameCodeSize        = 4
	gbaMakerCodeOffset     = 0xB0
	gbaMakerCodeSize       = 2
	gbaFixedValueOffset    = 0xB2
	gbaMainUnitCodeOffset  = 0xB3
	gbaDeviceTypeOffset    = 0xB4
	gbaSoftwareVerOffset   = 0xBC
	gbaComplementOffset    = 0xBD
	gbaChecksumRangeStart  = 0xA0
	gbaChecksumRangeEnd    = 0xBC // inclusive
)

var gbaNintendoLogo = []byte{
	0x24, 0xFF, 0xAE, 0x51, 0x69, 0x9A, 0xA2, 0x21, 0x3D, 0x84, 0x82, 0x0A,
	0x84, 0xE4, 0x09, 0xAD, 0x11, 0x24, 0x8B, 0x98, 0xC0, 0x81, 0x7F, 0x21,
	0xA3, 0x52, 0xBE, 0x19, 0x93, 0x09, 0xCE, 0x20, 0x10, 0x46, 0x4A, 0x4A,
	0xF8, 0x27, 0x31, 0xEC, 0x58, 0xC7, 0xE8, 0x33, 0x82, 0xE3, 0xCE, 0xBF,
	0x85, 0xF4, 0xDF, 0x94, 0xCE, 0x4B, 0x09, 0xC1, 0x94, 0x56, 0x8A, 0xC0,
	0x13, 0x72, 0xA7, 0xFC, 0x9F, 0x84, 0x4D, 0x73, 0xA3, 0xCA, 0x9A, 0x61,
	0x58, 0x97, 0xA3, 0x27, 0xFC, 0x03, 0x98, 0x76, 0x23, 0x1D, 0xC7, 0x61,
	0x03, 0x04, 0xAE, 0x56, 0xBF, 0x38, 0x84, 0x00, 0x40, 0xA7, 0x0E, 0xFD,
	0xFF, 0x52, 0xFE, 0x03, 0x6F, 0x95, 0x30, 0xF1, 0x97, 0xFB, 0xC0, 0x85,
	0x60, 0xD6, 0x80, 0x25, 0xA9, 0x63, 0xBE, 0x03, 0x01, 0x4E, 0x38, 0xE2,
	0xF9, 0xA2, 0x34, 0xFF, 0xBB, 0x3E, 0x03, 0x44, 0x78, 0x00, 0x90, 0xCB,
	0x88, 0x11, 0x3A, 0x94, 0x65, 0xC0, 0x7C, 0x63, 0x87, 0xF0, 0x3C, 0xAF,
	0xD6, 0x25, 0xE4, 0x8B, 0x38, 0x0A, 0xAC, 0x72, 0x21, 0xD4, 0xF8, 0x07,
}

var gbaSaveTypeMagics = []string{"EEPROM_V", "SRAM_V", "FLASH_V", "FLASH512_V", "FLASH1M_V"}

// GBAAnalyzer identifies Game Boy Advance ROM images.
type GBAAnalyzer struct {
	romid.DefaultCapability
}

func NewGBAAnalyzer() *GBAAnalyzer { return &GBAAnalyzer{} }

func (*GBAAnalyzer) PlatformName() string     { return "Game Boy Advance" }
func (*GBAAnalyzer) ShortName() string        { return "gba" }
func (*GBAAnalyzer) Manufacturer() string     { return "Nintendo" }
func (*GBAAnalyzer) FolderNames() []string    { return []string{"Game Boy Advance"} }
func (*GBAAnalyzer) FileExtensions() []string { return []string{".gba"} }

func (a *GBAAnalyzer) CanHandle(r romid.Reader) bool {
	logo, ok, err := romio.ReadBytesAt(r, gbaNintendoLogoOffset, gbaNintendoLogoSize)
	if err != nil || !ok {
		return false
	}
	if !romio.BytesEqual(logo, gbaNintendoLogo) {
		return false
	}
	fixed, ok, err := romio.ReadUint8At(r, gbaFixedValueOffset)
	if err != nil || !ok {
		return false
	}
	return fixed == 0x96
}

// AnalyzeWithProgress is Analyze plus real progress ticks during the full-ROM save-type
// scan: the save-type scan is the one genuinely long-running step in GBA analysis, so
// this is where AnalyzeWithProgress's callback actually fires.
func (a *GBAAnalyzer) AnalyzeWithProgress(r romid.Reader, options romid.AnalysisOptions, progress romid.ProgressFunc) (*romid.Identification, error) {
	return a.analyze(r, options, progress)
}

// Analyze parses the GBA header and, unless options.Quick, scans the whole ROM body for
// save-type magic strings — an operation spec explicitly calls out as quick-mode-skipped
// because it is full-ROM.
func (a *GBAAnalyzer) Analyze(r romid.Reader, options romid.AnalysisOptions) (*romid.Identification, error) {
	return a.analyze(r, options, nil)
}

func (a *GBAAnalyzer) analyze(r romid.Reader, options romid.AnalysisOptions, progress romid.ProgressFunc) (*romid.Identification, error) {
	size, err := romio.FileSize(r)
	if err != nil {
		return nil, romid.IOFailure("GBA", err)
	}
	if size < gbaHeaderSize {
		return nil, romid.TooSmall("GBA", "file shorter than 192-byte header")
	}

	header, ok, err := romio.ReadBytesAt(r, 0, gbaHeaderSize)
	if err != nil {
		return nil, romid.IOFailure("GBA", err)
	}
	if !ok {
		return nil, romid.TooSmall("GBA", "could not read header")
	}

	logo := header[gbaNintendoLogoOffset : gbaNintendoLogoOffset+gbaNintendoLogoSize]
	if !romio.BytesEqual(logo, gbaNintendoLogo) {
		return nil, romid.InvalidFormat("GBA", "Nintendo logo mismatch")
	}
	if header[gbaFixedValueOffset] != 0x96 {
		return nil, romid.InvalidFormat("GBA", "fixed value at 0xB2 is not 0x96")
	}

	title := romio.PrintableASCII(header[gbaTitleOffset : gbaTitleOffset+gbaTitleSize])
	gameCode := romio.PrintableASCII(header[gbaGameCodeOffset : gbaGameCodeOffset+gbaGameCodeSize])
	makerCode := romio.PrintableASCII(header[gbaMakerCodeOffset : gbaMakerCodeOffset+gbaMakerCodeSize])

	id := romid.NewIdentification("Game Boy Advance", size)
	id.InternalName = title
	id.SerialNumber = gameCode
	id.SetExtra("maker_code", makerCode)
	id.SetExtra("main_unit_code", fmt.Sprintf("0x%02x", header[gbaMainUnitCodeOffset]))
	id.SetExtra("device_type", fmt.Sprintf("0x%02x", header[gbaDeviceTypeOffset]))
	id.SetExtra("software_version", fmt.Sprintf("%d", header[gbaSoftwareVerOffset]))

	if len(gameCode) == 4 {
		if region := gbaRegionFromCode(gameCode[3]); region != "" {
			id.Regions.Add(region, "game_code")
		}
	}

	var sum byte
	for i := gbaChecksumRangeStart; i <= gbaChecksumRangeEnd; i++ {
		sum += header[i]
	}
	expectedComplement := byte(-int16(sum) - 0x19)
	if header[gbaComplementOffset] == expectedComplement {
		id.SetChecksumStatus("header_complement", "valid")
	} else {
		id.SetChecksumStatus("header_complement", "invalid")
	}

	if options.Quick {
		id.SetExtra("save_type", "unknown")
	} else {
		body, ok, err := romio.ReadBytesAt(r, 0, int(size))
		if err != nil {
			return nil, romid.IOFailure("GBA", err)
		}
		if ok {
			id.SetExtra("save_type", gbaScanSaveTypeWithProgress(body, progress))
		}
	}

	return id, nil
}

// gbaSaveTypeScanChunk bounds how much of the body is searched between progress ticks;
// chunks overlap by the longest magic string's length minus one byte so a match
// straddling a chunk boundary is never missed.
const gbaSaveTypeScanChunk = 64 * 1024

// gbaScanSaveTypeWithProgress walks body in fixed-size, overlapping windows looking for
// any of the known GBA save-type magic strings, reporting a Progress tick after each
// window. progress may be nil.
func gbaScanSaveTypeWithProgress(body []byte, progress romid.ProgressFunc) string {
	overlap := 0
	for _, magic := range gbaSaveTypeMagics {
		if len(magic)-1 > overlap {
			overlap = len(magic) - 1
		}
	}

	total := int64(len(body))
	var offset int
	for offset < len(body) {
		end := offset + gbaSaveTypeScanChunk + overlap
		if end > len(body) {
			end = len(body)
		}
		window := body[offset:end]
		for _, magic := range gbaSaveTypeMagics {
			if bytes.Contains(window, []byte(magic)) {
				if progress != nil {
					progress(romid.Progress{BytesDone: total, BytesTotal: total})
				}
				return magic
			}
		}

		offset += gbaSaveTypeScanChunk
		if progress != nil {
			done := int64(offset)
			if done > total {
				done = total
			}
			progress(romid.Progress{BytesDone: done, BytesTotal: total})
		}
	}
	return "None"
}

func gbaRegionFromCode(c byte) romid.Region {
	switch c {
	case 'J':
		return romid.RegionJapan
	case 'E':
		return romid.RegionUSA
	case 'P':
		return romid.RegionEurope
	case 'D':
		return romid.RegionEurope
	case 'F':
		return romid.RegionEurope
	case 'I':
		return romid.RegionEurope
	case 'S':
		return romid.RegionEurope
	case 'K':
		return romid.RegionKorea
	case 'C':
		return romid.RegionChina
	default:
		return ""
	}
}
