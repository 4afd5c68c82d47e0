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

func buildGenesis() []byte {
	rom := make([]byte, genesisHeaderBase+genesisHeaderTotalSize)
	header := rom[genesisHeaderBase:]
	copy(header[0:], []byte("SEGA GENESIS    "))
	copy(header[genesisTitleOverOffset:], []byte("TEST GAME OVERSEAS"))
	copy(header[genesisSerialOffset:], []byte("GM 00000000-00"))
	header[genesisRegionOffset] = 'U'
	header[genesisDeviceSupportOff] = 'J'
	return rom
}

func TestGenesisAnalyzer_CanHandle(t *testing.T) {
	a := NewGenesisAnalyzer()
	if !a.CanHandle(bytes.NewReader(buildGenesis())) {
		t.Fatal("expected CanHandle to accept a SEGA-prefixed header")
	}
	if a.CanHandle(bytes.NewReader(make([]byte, genesisHeaderBase+genesisHeaderTotalSize))) {
		t.Fatal("expected CanHandle to reject an all-zero header")
	}
}

func TestGenesisAnalyzer_Analyze(t *testing.T) {
	a := NewGenesisAnalyzer()
	rom := buildGenesis()

	id, err := a.Analyze(bytes.NewReader(rom), romid.AnalysisOptions{Quick: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.InternalName != "TEST GAME OVERSEAS" {
		t.Errorf("expected overseas title to win when present, got %q", id.InternalName)
	}
	if !id.Regions.Contains(romid.RegionUSA) {
		t.Errorf("expected USA region from region-support byte U, got %+v", id.Regions)
	}
	if id.Extra["device_support"] != "3-button Controller" {
		t.Errorf("expected 3-button Controller device support, got %q", id.Extra["device_support"])
	}
}

func TestGenesisAnalyzer_Analyze_TooSmall(t *testing.T) {
	a := NewGenesisAnalyzer()
	_, err := a.Analyze(bytes.NewReader([]byte{0x00}), romid.AnalysisOptions{})
	if err == nil {
		t.Fatal("expected error for undersized input")
	}
}
