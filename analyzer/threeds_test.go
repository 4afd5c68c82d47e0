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
	"encoding/binary"
	"errors"
	"testing"

	"github.com/retrovault/romid"
)

// buildNCSD builds a minimal NCSD cartridge image with a single NCCH partition at media
// unit 1, and three nonzero partition-size entries so origin classification reads "card"
// (a converted CIA->CCI would show <= 2 partitions and all-zero RSA signature/card seed).
func buildNCSD(noCrypto bool) []byte {
	const ncchBase = 1 * threeDSMediaUnitSize
	rom := make([]byte, ncchBase+0x400)
	copy(rom[ncsdMagicOffset:], []byte("NCSD"))

	binary.LittleEndian.PutUint32(rom[ncsdPartitionTableOff:], 1) // partition 0 offset (media units)
	binary.LittleEndian.PutUint32(rom[ncsdPartitionTableOff+4:], 1)
	binary.LittleEndian.PutUint32(rom[ncsdPartitionTableOff+8+4:], 1)
	binary.LittleEndian.PutUint32(rom[ncsdPartitionTableOff+16+4:], 1)

	copy(rom[ncchBase+nccMagicRelOffset:], []byte("NCCH"))
	copy(rom[ncchBase+nccProductCodeOff:], []byte("CTR-P-AAAE"))
	if noCrypto {
		rom[ncchBase+nccFlagsOffset+7] = nccNoCryptoBit
	}
	return rom
}

func TestThreeDSAnalyzer_CanHandle(t *testing.T) {
	a := NewThreeDSAnalyzer()
	if !a.CanHandle(bytes.NewReader(buildNCSD(true))) {
		t.Fatal("expected CanHandle to accept a valid NCSD magic")
	}
	if a.CanHandle(bytes.NewReader(make([]byte, threeDSMediaUnitSize))) {
		t.Fatal("expected CanHandle to reject data without NCSD magic or a plausible CIA header")
	}
}

func TestThreeDSAnalyzer_Analyze_NoCrypto(t *testing.T) {
	a := NewThreeDSAnalyzer()
	id, err := a.Analyze(bytes.NewReader(buildNCSD(true)), romid.AnalysisOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.SerialNumber != "CTR-P-AAAE" {
		t.Errorf("expected product code CTR-P-AAAE, got %q", id.SerialNumber)
	}
	if id.Extra["format_variant"] != "CCI" {
		t.Errorf("expected CCI format variant, got %q", id.Extra["format_variant"])
	}
	if id.Extra["origin"] != "card" {
		t.Errorf("expected card origin given 3 nonzero partitions, got %q", id.Extra["origin"])
	}
}

func TestThreeDSAnalyzer_Analyze_EncryptedNCCHUnsupported(t *testing.T) {
	a := NewThreeDSAnalyzer()
	_, err := a.Analyze(bytes.NewReader(buildNCSD(false)), romid.AnalysisOptions{})
	if err == nil {
		t.Fatal("expected an error for encrypted NCCH content")
	}
	var ae *romid.AnalyzerError
	if !errors.As(err, &ae) || ae.Kind != romid.ErrorUnsupported {
		t.Errorf("expected ErrorUnsupported, got %v", err)
	}
}
