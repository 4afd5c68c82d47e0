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

// SNES header candidate offsets, relative to the start of the copier-header-stripped
// stream. LoROM, LoROM-extended (ExLoROM), HiROM, and ExHiROM.
const (
	snesLoROMHeaderStart   = 0x7FC0
	snesExLoROMHeaderStart = 0x81C0
	snesHiROMHeaderStart   = 0xFFC0
	snesExHiROMHeaderStart = 0x101C0
	snesHeaderSize         = 32
	snesCopierHeaderSize   = 512

	snesInternalNameOffset       = 0x00
	snesInternalNameSize         = 21
	snesMapModeOffset            = 0x15
	snesROMTypeOffset            = 0x16
	snesROMSizeOffset            = 0x17
	snesDestinationOffset        = 0x19
	snesDeveloperIDOffset        = 0x1A
	snesROMVersionOffset         = 0x1B
	snesChecksumComplementOffset = 0x1C
	snesChecksumOffset           = 0x1E
)

var snesHeaderOffsets = []int{
	snesLoROMHeaderStart, snesExLoROMHeaderStart, snesHiROMHeaderStart, snesExHiROMHeaderStart,
}

// SNESAnalyzer identifies Super Nintendo ROM images in LoROM, HiROM, and ExHiROM layouts.
type SNESAnalyzer struct {
	romid.DefaultCapability
}

func NewSNESAnalyzer() *SNESAnalyzer { return &SNESAnalyzer{} }

func (*SNESAnalyzer) PlatformName() string     { return "Super Nintendo Entertainment System" }
func (*SNESAnalyzer) ShortName() string        { return "snes" }
func (*SNESAnalyzer) Manufacturer() string     { return "Nintendo" }
func (*SNESAnalyzer) FolderNames() []string    { return []string{"SNES", "Super Famicom"} }
func (*SNESAnalyzer) FileExtensions() []string { return []string{".sfc", ".smc"} }

func (a *SNESAnalyzer) DatHeaderSize() int64 {
	return 0 // always 0: a 512-byte copier header is not skipped before hashing.
}

func (a *SNESAnalyzer) CanHandle(r romid.Reader) bool {
	size, err := romio.FileSize(r)
	if err != nil {
		return false
	}
	copierOffset := int64(0)
	if size%1024 == snesCopierHeaderSize {
		copierOffset = snesCopierHeaderSize
	}
	for _, start := range snesHeaderOffsets {
		if ok := snesProbeHeader(r, copierOffset, start); ok {
			return true
		}
	}
	return false
}

// snesProbeHeader reads the 32-byte candidate header at copierOffset+start and checks the
// checksum+complement invariant without mutating caller state beyond the temporary reads.
func snesProbeHeader(r romid.Reader, copierOffset int64, start int) bool {
	header, ok, err := romio.ReadBytesAt(r, copierOffset+int64(start), snesHeaderSize)
	if err != nil || !ok {
		return false
	}
	return snesChecksumValid(header)
}

func snesChecksumValid(header []byte) bool {
	cs := uint16(header[snesChecksumOffset]) | uint16(header[snesChecksumOffset+1])<<8
	csc := uint16(header[snesChecksumComplementOffset]) | uint16(header[snesChecksumComplementOffset+1])<<8
	return cs+csc == 0xFFFF
}

func (a *SNESAnalyzer) AnalyzeWithProgress(r romid.Reader, options romid.AnalysisOptions, progress romid.ProgressFunc) (*romid.Identification, error) {
	return a.Analyze(r, options)
}

// Analyze locates the header at the first of the four candidate offsets whose
// checksum/complement pair is valid and which passes snesHeaderSane below.
func (a *SNESAnalyzer) Analyze(r romid.Reader, options romid.AnalysisOptions) (*romid.Identification, error) {
	size, err := romio.FileSize(r)
	if err != nil {
		return nil, romid.IOFailure("SNES", err)
	}
	if size < snesLoROMHeaderStart+snesHeaderSize {
		return nil, romid.TooSmall("SNES", "file shorter than shortest candidate header")
	}

	copierOffset := int64(0)
	hasCopier := size%1024 == snesCopierHeaderSize
	if hasCopier {
		copierOffset = snesCopierHeaderSize
	}

	var header []byte
	var headerStart int
	found := false
	for _, start := range snesHeaderOffsets {
		if copierOffset+int64(start)+snesHeaderSize > size {
			continue
		}
		candidate, ok, err := romio.ReadBytesAt(r, copierOffset+int64(start), snesHeaderSize)
		if err != nil {
			return nil, romid.IOFailure("SNES", err)
		}
		if !ok {
			continue
		}
		if snesChecksumValid(candidate) && snesHeaderSane(candidate) {
			header, headerStart, found = candidate, start, true
			break
		}
	}
	if !found {
		return nil, romid.CorruptedHeader("SNES", "no candidate offset produced a valid checksum/complement pair")
	}

	internalNameBytes := header[snesInternalNameOffset : snesInternalNameOffset+snesInternalNameSize]
	mapMode := header[snesMapModeOffset]
	romType := header[snesROMTypeOffset]
	romSizeCode := header[snesROMSizeOffset]
	destination := header[snesDestinationOffset]
	developerID := header[snesDeveloperIDOffset]
	romVersion := header[snesROMVersionOffset]
	checksum := uint16(header[snesChecksumOffset]) | uint16(header[snesChecksumOffset+1])<<8

	id := romid.NewIdentification("Super Nintendo Entertainment System", size)
	id.InternalName = romio.PrintableASCII(internalNameBytes)
	id.SetExtra("rom_type", snesROMTypeString(mapMode))
	id.SetExtra("fast_slow_rom", snesSpeedString(mapMode))
	id.SetExtra("hardware", snesHardwareString(romType, mapMode, header, headerStart))
	id.SetExtra("developer_id", fmt.Sprintf("0x%02x", developerID))
	id.SetExtra("rom_version", fmt.Sprintf("%d", romVersion))
	id.SetExtra("checksum", fmt.Sprintf("0x%04x", checksum))
	if hasCopier {
		id.SetExtra("format", "copier-headered")
	}

	romSize := int64(1) << romSizeCode * 1024
	id.SetExpectedSize(romSize)

	switch destination {
	case 0x00:
		id.Regions.Add(romid.RegionJapan, "destination_byte")
	case 0x01:
		id.Regions.Add(romid.RegionUSA, "destination_byte")
	default:
		id.Regions.Add(romid.RegionEurope, "destination_byte")
	}

	if options.Quick {
		id.SetChecksumStatus("body_checksum", "unknown")
	} else {
		body, ok, err := romio.ReadBytesAt(r, copierOffset, int(size-copierOffset))
		if err != nil {
			return nil, romid.IOFailure("SNES", err)
		}
		if ok && snesVerifyBodyChecksum(body, checksum) {
			id.SetChecksumStatus("body_checksum", "valid")
		} else if ok {
			id.SetChecksumStatus("body_checksum", "invalid")
		} else {
			id.SetChecksumStatus("body_checksum", "unknown")
		}
	}

	return id, nil
}

// snesHeaderSane checks one field beyond the checksum pair: map-mode bit 0x20 must be
// set. The fixed 0x33 byte, the fixed 0x00 bytes and the reset vector are not checked.
func snesHeaderSane(header []byte) bool {
	mapMode := header[snesMapModeOffset]
	if mapMode&0x20 == 0 {
		return false
	}
	return true
}

func snesSpeedString(mapMode byte) string {
	if mapMode&0x10 != 0 {
		return "FastROM"
	}
	return "SlowROM"
}

func snesROMTypeString(mapMode byte) string {
	romTypeStr := "LoROM"
	if mapMode&0x01 != 0 {
		romTypeStr = "HiROM"
	}
	if mapMode&0x04 != 0 {
		romTypeStr = "Ex" + romTypeStr
	}
	return romTypeStr
}

func snesHardwareString(romType, mapMode byte, data []byte, headerStart int) string {
	var hardware string
	switch {
	case romType == 0:
		hardware = "ROM"
	case romType == 1:
		hardware = "ROM + RAM"
	case romType == 2:
		hardware = "ROM + RAM + Battery"
	case romType >= 3 && romType <= 6:
		hardware = []string{
			"ROM + Coprocessor",
			"ROM + Coprocessor + RAM",
			"ROM + Coprocessor + RAM + Battery",
			"ROM + Coprocessor + Battery",
		}[romType-3]
	}
	if romType >= 3 && hardware != "" {
		if coprocessor := snesCoprocessor(mapMode, data, headerStart); coprocessor != "" {
			hardware = hardware[:len(hardware)-1] + " (" + coprocessor + ")"
		}
	}
	return hardware
}

func snesCoprocessor(mapMode byte, data []byte, headerStart int) string {
	switch (mapMode & 0xF0) >> 4 {
	case 0:
		return "DSP"
	case 1:
		return "Super FX"
	case 2:
		return "OBC1"
	case 3:
		return "SA-1"
	case 4:
		return "S-DD1"
	case 5:
		return "S-RTC"
	case 0xE:
		return "Super Game Boy / Satellaview"
	case 0xF:
		return snesExtendedCoprocessor(data, headerStart)
	default:
		return ""
	}
}

func snesExtendedCoprocessor(data []byte, headerStart int) string {
	if headerStart <= 0 {
		return ""
	}
	switch data[headerStart-1] & 0x0F {
	case 0:
		return "SPC7110"
	case 1:
		return "ST010 / ST011"
	case 2:
		return "ST018"
	case 3:
		return "CX4"
	default:
		return ""
	}
}

// snesVerifyBodyChecksum reproduces spec's whole-ROM 16-bit sum, mirroring the short tail
// of a non-power-of-2 body so the sum matches what was computed at mastering time.
func snesVerifyBodyChecksum(body []byte, expected uint16) bool {
	size := len(body)
	pow2 := 1
	for pow2*2 <= size {
		pow2 *= 2
	}

	var sum uint32
	for i := 0; i < pow2; i++ {
		sum += uint32(body[i])
	}

	remainder := size - pow2
	if remainder > 0 {
		tail := body[pow2:]
		repeats := pow2 / remainder
		for i := 0; i < repeats; i++ {
			for _, b := range tail {
				sum += uint32(b)
			}
		}
	}

	return uint16(sum) == expected
}
