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

package iso9660

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CueTrack is one TRACK record within a CUE sheet's FILE block.
type CueTrack struct {
	Number   int
	Mode     string // e.g. "MODE1/2352", "MODE2/2352", "AUDIO"
	FilePath string // absolute path of the FILE this track belongs to
}

// IsData reports whether the track carries ISO9660 data rather than CD-DA audio.
func (t CueTrack) IsData() bool {
	return !strings.EqualFold(t.Mode, "AUDIO")
}

// CueSheet represents a parsed CUE sheet file.
type CueSheet struct {
	Path     string     // Path to the CUE file
	BinFiles []string   // Paths to BIN files (absolute), in FILE-statement order
	Tracks   []CueTrack // TRACK records, in sheet order
}

// FirstDataTrack returns the first non-audio track's file, or an error if the sheet has
// none — every valid PS1 disc has at least one MODE2 data track.
func (c *CueSheet) FirstDataTrack() (CueTrack, error) {
	for _, t := range c.Tracks {
		if t.IsData() {
			return t, nil
		}
	}
	return CueTrack{}, fmt.Errorf("cue sheet %s has no data track", c.Path)
}

// DataTrackCount and AudioTrackCount report the track-type split a Redump-style image
// records in its cue sheet (spec's extra["total_tracks"]/["data_tracks"]/["audio_tracks"]).
func (c *CueSheet) DataTrackCount() int  { return c.countTracks(true) }
func (c *CueSheet) AudioTrackCount() int { return c.countTracks(false) }

func (c *CueSheet) countTracks(data bool) int {
	n := 0
	for _, t := range c.Tracks {
		if t.IsData() == data {
			n++
		}
	}
	return n
}

// ParseCue parses a CUE sheet file, recording each FILE's BIN path and each TRACK's mode.
func ParseCue(cuePath string) (*CueSheet, error) {
	cueFile, err := os.Open(cuePath) //nolint:gosec // Path from user input is expected
	if err != nil {
		return nil, fmt.Errorf("open CUE file: %w", err)
	}
	defer func() { _ = cueFile.Close() }()

	cueDir := filepath.Dir(cuePath)
	cue := &CueSheet{
		Path: cuePath,
	}

	currentFile := ""
	scanner := bufio.NewScanner(cueFile)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineLower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(lineLower, "file"):
			parts := strings.Split(line, "\"")
			if len(parts) < 2 {
				continue
			}
			binFile := strings.TrimSpace(parts[1])
			if !filepath.IsAbs(binFile) {
				binFile = filepath.Join(cueDir, binFile)
			}
			currentFile = binFile
			cue.BinFiles = append(cue.BinFiles, binFile)

		case strings.HasPrefix(lineLower, "track"):
			fields := strings.Fields(line)
			if len(fields) < 3 {
				continue
			}
			var num int
			_, _ = fmt.Sscanf(fields[1], "%d", &num)
			cue.Tracks = append(cue.Tracks, CueTrack{
				Number:   num,
				Mode:     strings.ToUpper(fields[2]),
				FilePath: currentFile,
			})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return cue, nil
}

// OpenCue opens an ISO9660 disc image from a CUE sheet, using the first data track's
// file rather than unconditionally the first FILE statement, since a CD-DA audio track
// can legally be listed first in some authoring tools' output.
func OpenCue(cuePath string) (*ISO9660, error) {
	cue, err := ParseCue(cuePath)
	if err != nil {
		return nil, err
	}

	if len(cue.BinFiles) == 0 {
		return nil, ErrInvalidISO
	}

	dataTrackFile := cue.BinFiles[0]
	if track, err := cue.FirstDataTrack(); err == nil && track.FilePath != "" {
		dataTrackFile = track.FilePath
	}

	return Open(dataTrackFile)
}

// IsCueFile checks if the given path is a CUE file.
func IsCueFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".cue"
}
