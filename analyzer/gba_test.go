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
	"testing"

	"github.com/retrovault/romid"
)

func buildGBA() []byte {
	rom := make([]byte, gbaHeaderSize)
	copy(rom[gbaNintendoLogoOffset:], gbaNintendoLogo)
	rom[gbaFixedValueOffset] = 0x96
	copy(rom[gbaGameCodeOffset:], []byte("ABCJ"))

	var sum byte
	for i := gbaChecksumRangeStart; i <= gbaChecksumRangeEnd; i++ {
		sum += rom[i]
	}
	rom[gbaComplementOffset] = byte(-int16(sum) - 0x19)
	return rom
}

func TestGBAAnalyzer_CanHandle(t *testing.T) {
	a := NewGBAAnalyzer()
	if !a.CanHandle(bytes.NewReader(buildGBA())) {
		t.Fatal("expected CanHandle to accept a valid logo + fixed byte")
	}
	if a.CanHandle(bytes.NewReader(make([]byte, gbaHeaderSize))) {
		t.Fatal("expected CanHandle to reject an all-zero header")
	}
}

func TestGBAAnalyzer_Analyze(t *testing.T) {
	a := NewGBAAnalyzer()
	rom := buildGBA()

	id, err := a.Analyze(bytes.NewReader(rom), romid.AnalysisOptions{Quick: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.SerialNumber != "ABCJ" {
		t.Errorf("expected serial ABCJ, got %q", id.SerialNumber)
	}
	if id.Extra["checksum_status:header_complement"] != "valid" {
		t.Errorf("expected valid header complement, got %q", id.Extra["checksum_status:header_complement"])
	}
	if !id.Regions.Contains(romid.RegionJapan) {
		t.Errorf("expected Japan region from game code suffix J, got %+v", id.Regions)
	}
	if id.Extra["save_type"] != "unknown" {
		t.Errorf("expected save_type unknown in quick mode, got %q", id.Extra["save_type"])
	}
}

func TestGBAAnalyzer_Analyze_SaveTypeScan(t *testing.T) {
	a := NewGBAAnalyzer()
	rom := append(buildGBA(), []byte("junkFLASH512_Vjunk")...)

	id, err := a.Analyze(bytes.NewReader(rom), romid.AnalysisOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Extra["save_type"] != "FLASH512_V" {
		t.Errorf("expected FLASH512_V save type, got %q", id.Extra["save_type"])
	}
}

func TestGBAAnalyzer_Analyze_BadFixedValue(t *testing.T) {
	a := NewGBAAnalyzer()
	rom := buildGBA()
	rom[gbaFixedValueOffset] = 0x00

	_, err := a.Analyze(bytes.NewReader(rom), romid.AnalysisOptions{})
	if err == nil {
		t.Fatal("expected error for invalid fixed value byte")
	}
}
