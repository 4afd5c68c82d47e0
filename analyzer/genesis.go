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
	"strings"

	"github.com/retrovault/romid"
	"github.com/retrovault/romid/internal/romio"
)

const (
	genesisHeaderBase       = 0x100
	genesisSystemTypeSize   = 0x10
	genesisPublisherOffset  = 0x013
	genesisPublisherSize    = 0x004
	genesisTitleDomOffset   = 0x020
	genesisTitleOverOffset  = 0x050
	genesisTitleSize        = 0x030
	genesisSoftwareTypeOff  = 0x080
	genesisSoftwareTypeSize = 0x002
	genesisSerialOffset     = 0x080
	genesisSerialSize       = 14
	genesisRevisionOffset   = 0x08C
	genesisChecksumOffset   = 0x08E
	genesisDeviceSupportOff = 0x090
	genesisDeviceSupportLen = 0x010
	genesisRegionOffset     = 0x0F0
	genesisRegionSize       = 0x003
	genesisHeaderTotalSize  = 0x100 // bytes from genesisHeaderBase to end of header
)

var genesisDeviceSupport = map[byte]string{
	'J': "3-button Controller", '6': "6-button Controller", '0': "Master System Controller",
	'A': "Analog Joystick", '4': "Multitap", 'G': "Lightgun", 'L': "Activator",
	'M': "Mouse", 'B': "Trackball", 'T': "Tablet", 'V': "Paddle",
	'K': "Keyboard or Keypad", 'R': "RS-232", 'P': "Printer", 'C': "CD-ROM (Sega CD)",
	'F': "Floppy Drive", 'D': "Download",
}

var genesisRegionSupport = map[byte]romid.Region{
	'J': romid.RegionJapan, 'U': romid.RegionUSA, 'E': romid.RegionEurope,
}

var genesisSoftwareTypes = map[string]string{
	"GM": "Game", "AI": "Aid", "OS": "Boot ROM (TMSS)", "BR": "Boot ROM (Sega CD)",
}

// GenesisAnalyzer identifies Sega Genesis / Mega Drive ROM images.
type GenesisAnalyzer struct {
	romid.DefaultCapability
}

func NewGenesisAnalyzer() *GenesisAnalyzer { return &GenesisAnalyzer{} }

func (*GenesisAnalyzer) PlatformName() string  { return "Genesis/Mega Drive" }
func (*GenesisAnalyzer) ShortName() string     { return "genesis" }
func (*GenesisAnalyzer) Manufacturer() string  { return "Sega" }
func (*GenesisAnalyzer) FolderNames() []string { return []string{"Genesis", "Mega Drive"} }
func (*GenesisAnalyzer) FileExtensions() []string {
	return []string{".md", ".gen", ".bin", ".smd"}
}

func (a *GenesisAnalyzer) CanHandle(r romid.Reader) bool {
	prefix, ok, err := romio.ReadBytesAt(r, genesisHeaderBase, 4)
	if err != nil || !ok {
		return false
	}
	return romio.BytesEqual(prefix, []byte("SEGA"))
}

func (a *GenesisAnalyzer) AnalyzeWithProgress(r romid.Reader, options romid.AnalysisOptions, progress romid.ProgressFunc) (*romid.Identification, error) {
	return a.Analyze(r, options)
}

func (a *GenesisAnalyzer) Analyze(r romid.Reader, options romid.AnalysisOptions) (*romid.Identification, error) {
	size, err := romio.FileSize(r)
	if err != nil {
		return nil, romid.IOFailure("Genesis", err)
	}
	if size < genesisHeaderBase+genesisHeaderTotalSize {
		return nil, romid.TooSmall("Genesis", "file shorter than header region")
	}

	header, ok, err := romio.ReadBytesAt(r, genesisHeaderBase, genesisHeaderTotalSize)
	if err != nil {
		return nil, romid.IOFailure("Genesis", err)
	}
	if !ok {
		return nil, romid.TooSmall("Genesis", "could not read header region")
	}
	if !romio.BytesEqual(header[0:4], []byte("SEGA")) {
		return nil, romid.InvalidFormat("Genesis", "missing SEGA prefix")
	}

	systemType := romio.CleanString(header[0:genesisSystemTypeSize])
	publisher := romio.CleanString(header[genesisPublisherOffset : genesisPublisherOffset+genesisPublisherSize])
	titleDomestic := romio.CleanString(header[genesisTitleDomOffset : genesisTitleDomOffset+genesisTitleSize])
	titleOverseas := romio.CleanString(header[genesisTitleOverOffset : genesisTitleOverOffset+genesisTitleSize])
	softwareType := romio.CleanString(header[genesisSoftwareTypeOff : genesisSoftwareTypeOff+genesisSoftwareTypeSize])
	serial := romio.CleanString(header[genesisSerialOffset : genesisSerialOffset+genesisSerialSize])
	revision := romio.CleanString(header[genesisRevisionOffset : genesisRevisionOffset+2])
	checksum := binary.BigEndian.Uint16(header[genesisChecksumOffset : genesisChecksumOffset+2])

	title := titleOverseas
	if title == "" {
		title = titleDomestic
	}

	id := romid.NewIdentification("Genesis/Mega Drive", size)
	id.InternalName = title
	id.SerialNumber = strings.TrimSpace(serial)
	id.SetExtra("system_type", systemType)
	id.SetExtra("publisher", publisher)
	id.SetExtra("title_domestic", titleDomestic)
	id.SetExtra("title_overseas", titleOverseas)
	id.SetExtra("revision", revision)
	id.SetExtra("checksum", fmt.Sprintf("0x%04x", checksum))

	if st, ok := genesisSoftwareTypes[softwareType]; ok {
		id.SetExtra("software_type", st)
	} else {
		id.SetExtra("software_type", softwareType)
	}

	var devices []string
	for _, b := range header[genesisDeviceSupportOff : genesisDeviceSupportOff+genesisDeviceSupportLen] {
		if b == 0 || b == ' ' {
			continue
		}
		if dev, ok := genesisDeviceSupport[b]; ok {
			devices = append(devices, dev)
		}
	}
	if len(devices) > 0 {
		id.SetExtra("device_support", strings.Join(devices, " / "))
	}

	for _, b := range header[genesisRegionOffset : genesisRegionOffset+genesisRegionSize] {
		if region, ok := genesisRegionSupport[b]; ok {
			id.Regions.Add(region, "region_support")
		}
	}

	if options.Quick {
		id.SetChecksumStatus("body_checksum", "unknown")
	} else {
		body, ok, err := romio.ReadBytesAt(r, 0, int(size))
		if err != nil {
			return nil, romid.IOFailure("Genesis", err)
		}
		if ok && genesisVerifyChecksum(body, checksum) {
			id.SetChecksumStatus("body_checksum", "valid")
		} else if ok {
			id.SetChecksumStatus("body_checksum", "invalid")
		} else {
			id.SetChecksumStatus("body_checksum", "unknown")
		}
	}

	return id, nil
}

// genesisVerifyChecksum reproduces spec's 16-bit sum of big-endian words from 0x200 to the
// end of the file, a whole-body verification the teacher never performed.
func genesisVerifyChecksum(body []byte, expected uint16) bool {
	const start = 0x200
	if len(body) <= start {
		return false
	}
	region := body[start:]
	var sum uint16
	for i := 0; i+1 < len(region); i += 2 {
		sum += binary.BigEndian.Uint16(region[i : i+2])
	}
	if len(region)%2 == 1 {
		sum += uint16(region[len(region)-1]) << 8
	}
	return sum == expected
}
