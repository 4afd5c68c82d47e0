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

func buildLoROM() []byte {
	rom := make([]byte, snesLoROMHeaderStart+snesHeaderSize)
	h := rom[snesLoROMHeaderStart:]
	copy(h[snesInternalNameOffset:], []byte("TEST GAME                "))
	h[snesMapModeOffset] = 0x20 // LoROM, SlowROM, sane bit set
	h[snesROMTypeOffset] = 0x00
	h[snesROMSizeOffset] = 0x00
	h[snesDestinationOffset] = 0x01 // USA
	h[snesChecksumComplementOffset] = 0x00
	h[snesChecksumComplementOffset+1] = 0x00
	h[snesChecksumOffset] = 0xFF
	h[snesChecksumOffset+1] = 0xFF
	return rom
}

func TestSNESAnalyzer_CanHandle(t *testing.T) {
	a := NewSNESAnalyzer()
	if !a.CanHandle(bytes.NewReader(buildLoROM())) {
		t.Fatal("expected CanHandle to accept a valid LoROM checksum pair")
	}
	if a.CanHandle(bytes.NewReader(make([]byte, snesLoROMHeaderStart+snesHeaderSize))) {
		t.Fatal("expected CanHandle to reject an all-zero checksum pair (0+0 != 0xFFFF)")
	}
}

func TestSNESAnalyzer_Analyze(t *testing.T) {
	a := NewSNESAnalyzer()
	rom := buildLoROM()

	id, err := a.Analyze(bytes.NewReader(rom), romid.AnalysisOptions{Quick: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Extra["rom_type"] != "LoROM" {
		t.Errorf("expected LoROM, got %q", id.Extra["rom_type"])
	}
	if id.Extra["fast_slow_rom"] != "SlowROM" {
		t.Errorf("expected SlowROM, got %q", id.Extra["fast_slow_rom"])
	}
	if !id.Regions.Contains(romid.RegionUSA) {
		t.Errorf("expected USA region from destination byte, got %+v", id.Regions)
	}
}

func TestSNESAnalyzer_Analyze_TooSmall(t *testing.T) {
	a := NewSNESAnalyzer()
	_, err := a.Analyze(bytes.NewReader([]byte{0x00}), romid.AnalysisOptions{})
	if err == nil {
		t.Fatal("expected error for undersized input")
	}
}
