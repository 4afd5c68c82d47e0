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
	gbHeaderSize           = 0x0150
	gbNintendoLogoOffset   = 0x0104
	gbNintendoLogoSize     = 48
	gbTitleOffset          = 0x0134
	gbTitleSizeShort       = 11
	gbTitleSizeLong        = 16
	gbManufacturerOffset   = 0x013F
	gbManufacturerSize     = 4
	gbCGBFlagOffset        = 0x0143
	gbNewLicenseeOffset    = 0x0144
	gbNewLicenseeSize      = 2
	gbSGBFlagOffset        = 0x0146
	gbCartridgeTypeOffset  = 0x0147
	gbROMSizeOffset        = 0x0148
	gbRAMSizeOffset        = 0x0149
	gbDestinationOffset    = 0x014A
	gbOldLicenseeOffset    = 0x014B
	gbROMVersionOffset     = 0x014C
	gbHeaderChecksumOffset = 0x014D
	gbGlobalChecksumOffset = 0x014E
)

var gbNintendoLogo = []byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B,
	0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E,
	0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC,
	0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

var gbCartridgeTypes = map[byte]string{
	0x00: "ROM", 0x01: "MBC1", 0x02: "MBC1 + RAM", 0x03: "MBC1 + RAM + Battery",
	0x05: "MBC2", 0x06: "MBC2 + Battery", 0x08: "ROM + RAM", 0x09: "ROM + RAM + Battery",
	0x0B: "MMM01", 0x0C: "MMM01 + RAM", 0x0D: "MMM01 + RAM + Battery",
	0x0F: "MBC3 + Timer + Battery", 0x10: "MBC3 + Timer + RAM + Battery", 0x11: "MBC3",
	0x12: "MBC3 + RAM", 0x13: "MBC3 + RAM + Battery", 0x19: "MBC5", 0x1A: "MBC5 + RAM",
	0x1B: "MBC5 + RAM + Battery", 0x1C: "MBC5 + Rumble", 0x1D: "MBC5 + Rumble + RAM",
	0x1E: "MBC5 + Rumble + RAM + Battery", 0x20: "MBC6",
	0x22: "MBC7 + Sensor + Rumble + RAM + Battery", 0xFC: "Pocket Camera",
	0xFD: "Bandai TAMA5", 0xFE: "HuC3", 0xFF: "HuC1 + RAM + Battery",
}

var gbROMSizeBanks = map[byte]struct {
	size  int
	banks int
}{
	0x00: {32768, 2}, 0x01: {65536, 4}, 0x02: {131072, 8}, 0x03: {262144, 16},
	0x04: {524288, 32}, 0x05: {1048576, 64}, 0x06: {2097152, 128}, 0x07: {4194304, 256},
	0x08: {8388608, 512}, 0x52: {1179648, 72}, 0x53: {1310720, 80}, 0x54: {1572864, 96},
}

var gbRAMSizeBanks = map[byte]struct {
	size  int
	banks int
}{
	0x00: {0, 0}, 0x01: {2048, 1}, 0x02: {8192, 1}, 0x03: {32768, 4},
	0x04: {131072, 16}, 0x05: {65536, 8},
}

var gbLicenseeNewCodes = map[string]string{
	"00": "None", "01": "Nintendo R&D1", "08": "Capcom", "13": "Electronic Arts",
	"18": "Hudson Soft", "19": "b-ai", "20": "kss", "22": "pow", "24": "PCM Complete",
	"25": "san-x", "28": "Kemco Japan", "29": "seta", "30": "Viacom", "31": "Nintendo",
	"32": "Bandai", "33": "Ocean/Acclaim", "34": "Konami", "35": "Hector", "37": "Taito",
	"38": "Hudson", "39": "Banpresto", "41": "Ubi Soft", "42": "Atlus", "44": "Malibu",
	"46": "angel", "47": "Bullet-Proof", "49": "irem", "50": "Absolute", "51": "Acclaim",
	"52": "Activision", "53": "American sammy", "54": "Konami",
	"55": "Hi tech entertainment", "56": "LJN", "57": "Matchbox", "58": "Mattel",
	"59": "Milton Bradley", "60": "Titus", "61": "Virgin", "64": "LucasArts", "67": "Ocean",
	"69": "Electronic Arts", "70": "Infogrames", "71": "Interplay", "72": "Broderbund",
	"73": "sculptured", "75": "sci", "78": "THQ", "79": "Accolade", "80": "misawa",
	"83": "lozc", "86": "Tokuma Shoten Intermedia", "87": "Tsukuda Original",
	"91": "Chunsoft", "92": "Video system", "93": "Ocean/Acclaim", "95": "Varie",
	"96": "Yonezawa/s'pal", "97": "Kaneko", "99": "Pack in soft", "A4": "Konami (Yu-Gi-Oh!)",
}

var gbLicenseeOldCodes = map[byte]string{
	0x00: "None", 0x01: "Nintendo", 0x08: "Capcom", 0x09: "Hot-B", 0x0A: "Jaleco",
	0x0B: "Coconuts Japan", 0x0C: "Elite Systems", 0x13: "EA (Electronic Arts)",
	0x18: "Hudsonsoft", 0x19: "ITC Entertainment", 0x1A: "Yanoman", 0x1D: "Japan Clary",
	0x1F: "Virgin Interactive", 0x24: "PCM Complete", 0x25: "San-X",
	0x28: "Kotobuki Systems", 0x29: "Seta", 0x30: "Infogrames", 0x31: "Nintendo",
	0x32: "Bandai", 0x34: "Konami", 0x35: "HectorSoft", 0x38: "Capcom",
	0x39: "Banpresto", 0x41: "Ubisoft", 0x42: "Atlus", 0x44: "Malibu", 0x46: "Angel",
	0x49: "Irem", 0x4F: "U.S. Gold", 0x50: "Absolute", 0x51: "Acclaim",
	0x52: "Activision", 0x53: "American Sammy", 0x54: "GameTek", 0x56: "LJN",
	0x60: "Titus", 0x67: "Ocean Interactive", 0x69: "EA (Electronic Arts)",
	0x70: "Infogrames", 0x71: "Interplay", 0x72: "Broderbund", 0x78: "t.hq",
	0x79: "Accolade", 0x7F: "Kemco", 0x83: "Lozc", 0x91: "Chunsoft Co.",
	0x92: "Video System", 0x99: "Arc", 0x9A: "Nihon Bussan", 0x9B: "Tecmo",
	0x9C: "Imagineer", 0x9D: "Banpresto", 0xA1: "Hori Electric", 0xA2: "Bandai",
	0xA4: "Konami", 0xA7: "Takara", 0xAF: "Namco", 0xB0: "acclaim", 0xB2: "Bandai",
	0xB4: "Square Enix", 0xB6: "HAL Laboratory", 0xB7: "SNK", 0xBB: "Sunsoft",
	0xBD: "Sony Imagesoft", 0xBF: "Sammy", 0xC0: "Taito", 0xC2: "Kemco",
	0xC3: "Squaresoft", 0xC5: "Data East", 0xC8: "Koei", 0xCA: "Ultra", 0xCB: "Vap",
	0xCD: "Meldac", 0xCF: "Angel", 0xD1: "Sofel", 0xD2: "Quest", 0xD6: "Naxat Soft",
	0xD9: "Banpresto", 0xDA: "Tomy", 0xDB: "LJN", 0xE0: "Jaleco", 0xE7: "Athena",
	0xE9: "Natsume", 0xEA: "King Records", 0xEB: "Atlus", 0xFF: "LJN",
}

// GBAnalyzer identifies Game Boy and Game Boy Color ROM images.
type GBAnalyzer struct {
	romid.DefaultCapability
}

func NewGBAnalyzer() *GBAnalyzer { return &GBAnalyzer{} }

func (*GBAnalyzer) PlatformName() string  { return "Game Boy" }
func (*GBAnalyzer) ShortName() string     { return "gb" }
func (*GBAnalyzer) Manufacturer() string  { return "Nintendo" }
func (*GBAnalyzer) FolderNames() []string { return []string{"Game Boy", "Game Boy Color"} }
func (*GBAnalyzer) FileExtensions() []string {
	return []string{".gb", ".gbc", ".sgb"}
}

func (a *GBAnalyzer) CanHandle(r romid.Reader) bool {
	logo, ok, err := romio.ReadBytesAt(r, gbNintendoLogoOffset, gbNintendoLogoSize)
	if err != nil || !ok {
		return false
	}
	return romio.BytesEqual(logo, gbNintendoLogo)
}

func (a *GBAnalyzer) AnalyzeWithProgress(r romid.Reader, options romid.AnalysisOptions, progress romid.ProgressFunc) (*romid.Identification, error) {
	return a.Analyze(r, options)
}

func (a *GBAnalyzer) Analyze(r romid.Reader, options romid.AnalysisOptions) (*romid.Identification, error) {
	size, err := romio.FileSize(r)
	if err != nil {
		return nil, romid.IOFailure("GB", err)
	}
	if size < gbHeaderSize {
		return nil, romid.TooSmall("GB", "file shorter than 0x0150-byte header")
	}

	header, ok, err := romio.ReadBytesAt(r, 0, gbHeaderSize)
	if err != nil {
		return nil, romid.IOFailure("GB", err)
	}
	if !ok {
		return nil, romid.TooSmall("GB", "could not read header")
	}
	logo := header[gbNintendoLogoOffset : gbNintendoLogoOffset+gbNintendoLogoSize]
	if !romio.BytesEqual(logo, gbNintendoLogo) {
		return nil, romid.InvalidFormat("GB", "Nintendo logo mismatch")
	}

	cgbFlag := header[gbCGBFlagOffset]
	platform := "Game Boy"
	var titleSize int
	switch cgbFlag {
	case 0x80, 0xC0:
		platform = "Game Boy Color"
		titleSize = gbTitleSizeShort
	default:
		titleSize = gbTitleSizeLong
	}

	var title, manufacturerCode string
	if titleSize == gbTitleSizeShort {
		title = romio.PrintableASCII(header[gbTitleOffset : gbTitleOffset+gbTitleSizeShort])
		manufacturerCode = romio.PrintableASCII(header[gbManufacturerOffset : gbManufacturerOffset+gbManufacturerSize])
	} else {
		title = romio.PrintableASCII(header[gbTitleOffset : gbTitleOffset+gbTitleSizeLong])
	}

	id := romid.NewIdentification(platform, size)
	id.InternalName = title
	id.SetExtra("manufacturer_code", manufacturerCode)
	id.SetExtra("sgb_support", fmt.Sprintf("%t", header[gbSGBFlagOffset] == 0x03))

	cartridgeType := "Unknown"
	if ct, ok := gbCartridgeTypes[header[gbCartridgeTypeOffset]]; ok {
		cartridgeType = ct
	}
	id.SetExtra("cartridge_type", cartridgeType)

	if rs, ok := gbROMSizeBanks[header[gbROMSizeOffset]]; ok {
		id.SetExpectedSize(int64(rs.size))
		id.SetExtra("rom_banks", fmt.Sprintf("%d", rs.banks))
	}
	if rs, ok := gbRAMSizeBanks[header[gbRAMSizeOffset]]; ok {
		id.SetExtra("ram_size", fmt.Sprintf("%d", rs.size))
	}

	licensee := "Unknown"
	if header[gbOldLicenseeOffset] == 0x33 {
		code := string(header[gbNewLicenseeOffset : gbNewLicenseeOffset+gbNewLicenseeSize])
		if l, ok := gbLicenseeNewCodes[code]; ok {
			licensee = l
		}
	} else if l, ok := gbLicenseeOldCodes[header[gbOldLicenseeOffset]]; ok {
		licensee = l
	}
	id.SetExtra("licensee", licensee)
	id.SetExtra("rom_version", fmt.Sprintf("%d", header[gbROMVersionOffset]))

	switch header[gbDestinationOffset] {
	case 0x00:
		id.Regions.Add(romid.RegionJapan, "destination_byte")
	default:
		id.Regions.Add(romid.RegionWorld, "destination_byte")
	}

	headerChecksumExpected := header[gbHeaderChecksumOffset]
	var headerChecksumActual uint8
	for i := 0x0134; i < 0x014D; i++ {
		headerChecksumActual = headerChecksumActual - header[i] - 1
	}
	if headerChecksumActual == headerChecksumExpected {
		id.SetChecksumStatus("header_checksum", "valid")
	} else {
		id.SetChecksumStatus("header_checksum", "invalid")
	}

	if options.Quick {
		id.SetChecksumStatus("global_checksum", "unknown")
	} else {
		body, ok, err := romio.ReadBytesAt(r, 0, int(size))
		if err != nil {
			return nil, romid.IOFailure("GB", err)
		}
		if ok {
			globalExpected := uint16(body[gbGlobalChecksumOffset])<<8 | uint16(body[gbGlobalChecksumOffset+1])
			var globalActual uint16
			for i, b := range body {
				if i == gbGlobalChecksumOffset || i == gbGlobalChecksumOffset+1 {
					continue
				}
				globalActual += uint16(b)
			}
			if globalActual == globalExpected {
				id.SetChecksumStatus("global_checksum", "valid")
			} else {
				id.SetChecksumStatus("global_checksum", "invalid")
			}
		} else {
			id.SetChecksumStatus("global_checksum", "unknown")
		}
	}

	return id, nil
}
