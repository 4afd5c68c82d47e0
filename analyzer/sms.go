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
	"encoding/binary"
	"fmt"

	"github.com/retrovault/romid"
	"github.com/retrovault/romid/internal/romio"
)

// smsTMRHeaderOffsets lists the candidate offsets for the "TMR SEGA" signature, tried in
// descending order since the canonical, full-size placement is 0x7FF0.
var smsTMRHeaderOffsets = []int64{0x7FF0, 0x3FF0, 0x1FF0}

const (
	smsTMRMagic        = "TMR SEGA"
	smsHeaderSize      = 16
	smsChecksumOffset  = 0x0A // relative to header start
	smsProductOffset   = 0x0C // relative to header start, 2.5 bytes BCD + region/size nibble
	smsRegionSizeByte  = 0x0F // relative to header start
)

// SMSAnalyzer identifies Sega Master System (and Game Gear) ROM images.
type SMSAnalyzer struct {
	romid.DefaultCapability
}

func NewSMSAnalyzer() *SMSAnalyzer { return &SMSAnalyzer{} }

func (*SMSAnalyzer) PlatformName() string     { return "Sega Master System" }
func (*SMSAnalyzer) ShortName() string        { return "sms" }
func (*SMSAnalyzer) Manufacturer() string     { return "Sega" }
func (*SMSAnalyzer) FolderNames() []string    { return []string{"Master System", "Sega Master System"} }
func (*SMSAnalyzer) FileExtensions() []string { return []string{".sms"} }

func (a *SMSAnalyzer) CanHandle(r romid.Reader) bool {
	_, ok := smsFindHeader(r)
	return ok
}

// smsFindHeader tries each candidate offset in turn and returns the first whose 8-byte
// signature reads "TMR SEGA".
func smsFindHeader(r romid.Reader) (headerStart int64, ok bool) {
	for _, offset := range smsTMRHeaderOffsets {
		magic, ok, err := romio.ReadBytesAt(r, offset, len(smsTMRMagic))
		if err != nil {
			continue
		}
		if ok && string(magic) == smsTMRMagic {
			return offset, true
		}
	}
	return 0, false
}

func (a *SMSAnalyzer) AnalyzeWithProgress(r romid.Reader, options romid.AnalysisOptions, progress romid.ProgressFunc) (*romid.Identification, error) {
	return a.Analyze(r, options)
}

func (a *SMSAnalyzer) Analyze(r romid.Reader, options romid.AnalysisOptions) (*romid.Identification, error) {
	size, err := romio.FileSize(r)
	if err != nil {
		return nil, romid.IOFailure("SMS", err)
	}

	headerStart, ok := smsFindHeader(r)
	if !ok {
		return nil, romid.InvalidFormat("SMS", "TMR SEGA signature not found at any candidate offset")
	}

	header, ok, err := romio.ReadBytesAt(r, headerStart, smsHeaderSize)
	if err != nil {
		return nil, romid.IOFailure("SMS", err)
	}
	if !ok {
		return nil, romid.TooSmall("SMS", "could not read 16-byte header")
	}

	checksum := binary.LittleEndian.Uint16(header[smsChecksumOffset : smsChecksumOffset+2])
	regionSizeByte := header[smsRegionSizeByte]
	regionNibble := regionSizeByte >> 4
	romSizeNibble := regionSizeByte & 0x0F

	id := romid.NewIdentification("Sega Master System", size)
	id.SetExtra("checksum", fmt.Sprintf("0x%04x", checksum))
	id.SetExtra("header_offset", fmt.Sprintf("0x%04x", headerStart))
	id.SetExtra("rom_size_code", fmt.Sprintf("0x%x", romSizeNibble))

	switch regionNibble {
	case 0x3:
		id.Regions.Add(romid.RegionJapan, "region_nibble")
	case 0x4:
		id.Regions.Add(romid.RegionUSA, "region_nibble")
	case 0x5:
		id.Regions.Add(romid.RegionEurope, "region_nibble")
	case 0x6, 0x7:
		id.Regions.Add(romid.RegionJapan, "region_nibble") // Game Gear JP/export variants
	default:
	}

	upperBound := smsROMSizeUpperBound(romSizeNibble, size)
	if options.Quick || upperBound <= 0 {
		id.SetChecksumStatus("body_checksum", "unknown")
	} else {
		body, ok, err := romio.ReadBytesAt(r, 0, int(upperBound))
		if err != nil {
			return nil, romid.IOFailure("SMS", err)
		}
		if ok && smsVerifyChecksum(body, headerStart, checksum) {
			id.SetChecksumStatus("body_checksum", "valid")
		} else if ok {
			id.SetChecksumStatus("body_checksum", "invalid")
		} else {
			id.SetChecksumStatus("body_checksum", "unknown")
		}
	}

	return id, nil
}

// smsROMSizeUpperBound maps the ROM-size nibble to the byte range the checksum covers,
// per spec's "a range whose upper bound depends on ROM-size code in the header". Unknown
// codes fall back to the whole file.
func smsROMSizeUpperBound(sizeNibble byte, fileSize int64) int64 {
	sizes := map[byte]int64{
		0xA: 8 * 1024, 0xB: 16 * 1024, 0xC: 32 * 1024, 0xD: 48 * 1024,
		0xE: 64 * 1024, 0xF: 128 * 1024, 0x0: 256 * 1024, 0x1: 512 * 1024, 0x2: 1024 * 1024,
	}
	if bound, ok := sizes[sizeNibble]; ok && bound <= fileSize {
		return bound
	}
	return fileSize
}

// smsVerifyChecksum sums every byte in [0, headerStart) and [headerStart+16, upperBound)
// — the whole 16-byte header, checksum field included, is excluded, as the header itself
// isn't part of the checksummed body on any known SMS mastering tool.
func smsVerifyChecksum(body []byte, headerStart int64, expected uint16) bool {
	var sum uint16
	for i, b := range body {
		if int64(i) >= headerStart && int64(i) < headerStart+smsHeaderSize {
			continue
		}
		sum += uint16(b)
	}
	return sum == expected
}
