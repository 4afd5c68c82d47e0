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
	"github.com/retrovault/romid"
	"github.com/retrovault/romid/internal/romio"
)

const (
	threeDSMediaUnitSize = 0x200

	ncsdMagicOffset       = 0x100
	ncsdPartitionTableOff = 0x120
	ncsdPartitionCount    = 8
	ncsdRSASigOffset      = 0x000
	ncsdRSASigSize        = 0x100
	ncsdCardSeedYOffset   = 0x108
	ncsdCardSeedYSize     = 0x10
	ncsdMediaTypeOffset   = 0x188
	ncsdPartitionFlagsOff = 0x188

	nccMagicRelOffset  = 0x100
	nccProductCodeOff  = 0x150
	nccProductCodeSize = 0x10
	nccFlagsOffset     = 0x188
	nccNoCryptoBit     = 0x04 // bit 2 of the crypto-method/flags byte: no crypto applied

	ciaHeaderSizeValue = 0x2020
)

// ThreeDSAnalyzer identifies 3DS NCSD (.3ds/.cci) cartridge images and CIA (.cia) title
// packages, both of which wrap an NCCH partition at some offset.
type ThreeDSAnalyzer struct {
	romid.DefaultCapability
}

func NewThreeDSAnalyzer() *ThreeDSAnalyzer { return &ThreeDSAnalyzer{} }

func (*ThreeDSAnalyzer) PlatformName() string     { return "Nintendo 3DS" }
func (*ThreeDSAnalyzer) ShortName() string        { return "3ds" }
func (*ThreeDSAnalyzer) Manufacturer() string     { return "Nintendo" }
func (*ThreeDSAnalyzer) FolderNames() []string    { return []string{"Nintendo 3DS"} }
func (*ThreeDSAnalyzer) FileExtensions() []string { return []string{".3ds", ".cci", ".cia"} }

func (a *ThreeDSAnalyzer) CanHandle(r romid.Reader) bool {
	if magic, ok, err := romio.ReadBytesAt(r, ncsdMagicOffset, 4); err == nil && ok && string(magic) == "NCSD" {
		return true
	}
	return threeDSLooksLikeCIA(r)
}

// threeDSLooksLikeCIA applies a CIA heuristic: no magic bytes exist for CIA, so
// detection rests only on the archive header-size field being 0x2020. Section sizes are
// not checked.
func threeDSLooksLikeCIA(r romid.Reader) bool {
	headerSize, ok, err := romio.ReadUint32LEAt(r, 0)
	if err != nil || !ok {
		return false
	}
	return headerSize == ciaHeaderSizeValue
}

func (a *ThreeDSAnalyzer) AnalyzeWithProgress(r romid.Reader, options romid.AnalysisOptions, progress romid.ProgressFunc) (*romid.Identification, error) {
	return a.Analyze(r, options)
}

func (a *ThreeDSAnalyzer) Analyze(r romid.Reader, options romid.AnalysisOptions) (*romid.Identification, error) {
	size, err := romio.FileSize(r)
	if err != nil {
		return nil, romid.IOFailure("3DS", err)
	}
	if size < threeDSMediaUnitSize {
		return nil, romid.TooSmall("3DS", "file shorter than one media unit")
	}

	magic, ok, err := romio.ReadBytesAt(r, ncsdMagicOffset, 4)
	if err != nil {
		return nil, romid.IOFailure("3DS", err)
	}

	var ncchBase int64
	var variant string
	switch {
	case ok && string(magic) == "NCSD":
		variant = "CCI"
		ncchBase, err = threeDSFirstPartitionOffset(r)
		if err != nil {
			return nil, err
		}
	case threeDSLooksLikeCIA(r):
		variant = "CIA"
		ncchBase, err = threeDSCIAContentOffset(r, size)
		if err != nil {
			return nil, err
		}
	default:
		return nil, romid.InvalidFormat("3DS", "neither NCSD magic nor a plausible CIA header was found")
	}

	nccMagic, ok, err := romio.ReadBytesAt(r, ncchBase+nccMagicRelOffset, 4)
	if err != nil {
		return nil, romid.IOFailure("3DS", err)
	}
	if !ok || string(nccMagic) != "NCCH" {
		return nil, romid.CorruptedHeader("3DS", "NCCH magic not found at partition base + 0x100")
	}

	productCode, ok, err := romio.ReadBytesAt(r, ncchBase+nccProductCodeOff, nccProductCodeSize)
	if err != nil {
		return nil, romid.IOFailure("3DS", err)
	}
	if !ok {
		return nil, romid.TooSmall("3DS", "could not read NCCH product code")
	}

	id := romid.NewIdentification("Nintendo 3DS", size)
	id.SerialNumber = romio.CleanString(productCode)
	id.SetExtra("format_variant", variant)

	cardOrConverted, err := threeDSClassifyOrigin(r, variant)
	if err != nil {
		return nil, err
	}
	id.SetExtra("origin", cardOrConverted)

	flags, ok, err := romio.ReadUint8At(r, ncchBase+nccFlagsOffset+7)
	if err != nil {
		return nil, romid.IOFailure("3DS", err)
	}
	noCrypto := ok && flags&nccNoCryptoBit != 0

	if noCrypto {
		id.SetChecksumStatus("ncch_sha256", "unknown") // verifiable in principle; not recomputed here
	} else {
		return nil, romid.Unsupported("3DS", "encrypted NCCH content without NoCrypto flag is not decrypted")
	}

	return id, nil
}

func threeDSFirstPartitionOffset(r romid.Reader) (int64, error) {
	entry, ok, err := romio.ReadBytesAt(r, ncsdPartitionTableOff, 8)
	if err != nil {
		return 0, romid.IOFailure("3DS", err)
	}
	if !ok {
		return 0, romid.TooSmall("3DS", "could not read NCSD partition table")
	}
	offsetUnits := uint32(entry[0]) | uint32(entry[1])<<8 | uint32(entry[2])<<16 | uint32(entry[3])<<24
	return int64(offsetUnits) * threeDSMediaUnitSize, nil
}

// threeDSCIAContentOffset computes content 0's offset, which follows the certificate
// chain, ticket, and TMD, each padded to a 64-byte boundary per the CIA container format.
func threeDSCIAContentOffset(r romid.Reader, fileSize int64) (int64, error) {
	sizes, ok, err := romio.ReadBytesAt(r, 0, 0x20)
	if err != nil {
		return 0, romid.IOFailure("3DS", err)
	}
	if !ok {
		return 0, romid.TooSmall("3DS", "could not read CIA size header")
	}
	certSize := leUint32(sizes[0x8:0xC])
	ticketSize := leUint32(sizes[0xC:0x10])
	tmdSize := leUint32(sizes[0x10:0x14])

	align64 := func(n uint32) int64 { return (int64(n) + 63) &^ 63 }
	headerAligned := align64(ciaHeaderSizeValue)
	offset := headerAligned + align64(certSize) + align64(ticketSize) + align64(tmdSize)
	if offset >= fileSize {
		return 0, romid.CorruptedHeader("3DS", "computed content offset exceeds file size")
	}
	return offset, nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// threeDSClassifyOrigin distinguishes game-card dumps from CIA-converted CCIs per spec:
// all-zero RSA signature, all-zero card-seed region, media-type byte 0, and partition
// count <= 2 together indicate a converted image.
func threeDSClassifyOrigin(r romid.Reader, variant string) (string, error) {
	if variant == "CIA" {
		return "converted", nil
	}

	sig, ok, err := romio.ReadBytesAt(r, ncsdRSASigOffset, ncsdRSASigSize)
	if err != nil {
		return "", romid.IOFailure("3DS", err)
	}
	sigZero := ok && threeDSAllZero(sig)

	seed, ok, err := romio.ReadBytesAt(r, ncsdCardSeedYOffset, ncsdCardSeedYSize)
	if err != nil {
		return "", romid.IOFailure("3DS", err)
	}
	seedZero := ok && threeDSAllZero(seed)

	mediaType, ok, err := romio.ReadUint8At(r, ncsdMediaTypeOffset)
	if err != nil {
		return "", romid.IOFailure("3DS", err)
	}
	mediaTypeZero := ok && mediaType == 0

	partitionCount := 0
	for i := 0; i < ncsdPartitionCount; i++ {
		entry, ok, err := romio.ReadBytesAt(r, ncsdPartitionTableOff+int64(i*8), 8)
		if err != nil {
			return "", romid.IOFailure("3DS", err)
		}
		if ok && leUint32(entry[4:8]) != 0 {
			partitionCount++
		}
	}

	if sigZero && seedZero && mediaTypeZero && partitionCount <= 2 {
		return "converted", nil
	}
	return "card", nil
}

func threeDSAllZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
