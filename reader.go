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

// Package romid provides game identification for retro-console ROM files and disc
// images. It detects the originating console from magic bytes, extracts header-embedded
// metadata, and cross-references the result against No-Intro/Redump DAT catalogs.
package romid

import "io"

// Reader is the one capability every analyzer accepts: sequential read plus absolute
// seek. It is intentionally not io.ReaderAt — analyzers read a header, decide whether to
// keep going, and only then read a body; a seek-based reader lets quick mode bail out
// after the header without the caller having to know the file's size up front.
//
// A Reader is non-owning with respect to any underlying buffer. can_handle
// implementations must restore the read position to where they found it.
type Reader interface {
	io.Reader
	io.Seeker
}

// Progress is a single tick of analyze-with-progress: bytes processed out of an expected
// total. Total may be 0 when the total size isn't known in advance (e.g. a CHD whose
// logical size is discovered mid-walk).
type Progress struct {
	BytesDone  int64
	BytesTotal int64
}

// ProgressFunc receives periodic progress ticks during a long analysis (PS1 CHD walk,
// GBA save-type scan, NDS secure-area check). Implementations must not block.
type ProgressFunc func(Progress)
