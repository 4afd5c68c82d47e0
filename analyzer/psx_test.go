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
	"errors"
	"testing"

	"github.com/retrovault/romid"
)

func TestPSXAnalyzer_CanHandle_CHD(t *testing.T) {
	a := NewPSXAnalyzer()
	data := append([]byte("MComprHD"), make([]byte, 64)...)
	if !a.CanHandle(bytes.NewReader(data)) {
		t.Fatal("expected CanHandle to accept CHD magic")
	}
}

func TestPSXAnalyzer_CanHandle_Cue(t *testing.T) {
	a := NewPSXAnalyzer()
	cue := []byte(`FILE "game.bin" BINARY
  TRACK 01 MODE2/2352
    INDEX 01 00:00:00
`)
	if !a.CanHandle(bytes.NewReader(cue)) {
		t.Fatal("expected CanHandle to accept CUE-sheet text heuristic")
	}
}

func TestPSXAnalyzer_CanHandle_PVD(t *testing.T) {
	a := NewPSXAnalyzer()
	data := make([]byte, 2048*20)
	copy(data[2048*16:], psxPVDMagic)
	if !a.CanHandle(bytes.NewReader(data)) {
		t.Fatal("expected CanHandle to accept a raw ISO9660 PVD magic at sector 16")
	}
}

func TestPSXAnalyzer_CanHandle_RejectsUnrelatedData(t *testing.T) {
	a := NewPSXAnalyzer()
	if a.CanHandle(bytes.NewReader(make([]byte, 4096))) {
		t.Fatal("expected CanHandle to reject all-zero data with no CHD/CUE/PVD signature")
	}
}

func TestPSXAnalyzer_Analyze_AlwaysUnsupported(t *testing.T) {
	a := NewPSXAnalyzer()
	_, err := a.Analyze(bytes.NewReader(make([]byte, 4096)), romid.AnalysisOptions{})
	if err == nil {
		t.Fatal("expected Analyze (no path) to always return an error")
	}
	var ae *romid.AnalyzerError
	if !errors.As(err, &ae) || ae.Kind != romid.ErrorUnsupported {
		t.Errorf("expected ErrorUnsupported, got %v", err)
	}
}

func TestPsxNormalizeSerial(t *testing.T) {
	cases := map[string]string{
		"SLUS_012.34;1": "SLUS_01234",
		"slus_000.67":   "SLUS_00067",
		"SCES_123.45":   "SCES_12345",
		"RANDOMFILE":    "",
		"SLUS":          "",
	}
	for in, want := range cases {
		if got := psxNormalizeSerial(in); got != want {
			t.Errorf("psxNormalizeSerial(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPsxSerialFromVolumeID(t *testing.T) {
	cases := map[string]string{
		"SLUS_012.34":    "SLUS_012.34",
		"SLUS-01234":     "SLUS_01234",
		"SLUS_01234_REV": "SLUS_01234",
		"":                "",
	}
	for in, want := range cases {
		if got := psxSerialFromVolumeID(in); got != want {
			t.Errorf("psxSerialFromVolumeID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPsxSerialFromRootFiles(t *testing.T) {
	files := []string{"SYSTEM.CNF", "SLUS_012.34", "README.TXT"}
	if got := psxSerialFromRootFiles(files); got != "SLUS_01234" {
		t.Errorf("expected SLUS_01234, got %q", got)
	}
	if got := psxSerialFromRootFiles([]string{"README.TXT"}); got != "" {
		t.Errorf("expected no serial from an unrecognized file list, got %q", got)
	}
}
