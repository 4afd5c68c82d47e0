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

// Package analyzer implements the per-console Analyzer capability: one file per
// platform, each parsing that platform's native header/disc format and producing a
// romid.Identification.
package analyzer

import "github.com/retrovault/romid"

// DefaultRegistry builds the registry this module ships, ordered per spec: analyzers
// with a long, fixed, low-collision magic run first; logo/checksum-only analyzers that
// could plausibly false-positive on unrelated data run later; the broadest, most
// permissive probe (PSX, which accepts anything that merely looks like an ISO9660
// volume or disc container) runs last.
func DefaultRegistry() *romid.Registry {
	return romid.NewRegistry(
		NewNESAnalyzer(),
		NewThreeDSAnalyzer(),
		NewNDSAnalyzer(),
		NewGBAAnalyzer(),
		NewGBAnalyzer(),
		NewN64Analyzer(),
		NewSMSAnalyzer(),
		NewGenesisAnalyzer(),
		NewSNESAnalyzer(),
		NewPSXAnalyzer(),
	)
}
