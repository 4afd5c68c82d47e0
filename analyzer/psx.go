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
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/retrovault/romid"
	"github.com/retrovault/romid/internal/romio"
	"github.com/retrovault/romid/iso9660"
)

var psxPVDMagic = []byte{0x01, 'C', 'D', '0', '0', '1'}

const psxPVDSearchWindow = 1_000_000

// PSXIdentifier-equivalent recognized serial prefixes, used to decide whether a root
// file name looks like a game serial worth normalizing.
var psxSerialPrefixes = []string{
	"SLUS", "SLES", "SLPS", "SLPM", "SCUS", "SCES", "SCPS", "SCAJ", "SLKA", "PAPX", "PBPX",
}

// PSXAnalyzer identifies Sony PlayStation (PS1) disc images: raw ISO/BIN dumps, CUE+BIN
// pairs, and CHD-compressed discs. Identification is disc-based, so Analyze requires a
// file path (via AnalyzeFromPath); a bare reader carries no sibling-file information and
// is rejected.
type PSXAnalyzer struct {
	romid.DefaultCapability
}

func NewPSXAnalyzer() *PSXAnalyzer { return &PSXAnalyzer{} }

func (*PSXAnalyzer) PlatformName() string       { return "Sony PlayStation" }
func (*PSXAnalyzer) ShortName() string          { return "psx" }
func (*PSXAnalyzer) Manufacturer() string       { return "Sony" }
func (*PSXAnalyzer) FolderNames() []string      { return []string{"PS1", "PSX", "Sony PlayStation"} }
func (*PSXAnalyzer) FileExtensions() []string   { return []string{".cue", ".bin", ".iso", ".chd"} }
func (*PSXAnalyzer) DatSource() romid.DatSource { return romid.DatSourceRedump }

func (a *PSXAnalyzer) CanHandle(r romid.Reader) bool {
	if psxLooksLikeCHD(r) {
		return true
	}
	if psxLooksLikeCue(r) {
		return true
	}
	return psxFindPVD(r) >= 0
}

// psxLooksLikeCHD checks for the "MComprHD" magic word CHD files carry at offset 0.
func psxLooksLikeCHD(r romid.Reader) bool {
	magic, ok, err := romio.ReadBytesAt(r, 0, 8)
	return err == nil && ok && string(magic) == "MComprHD"
}

// psxLooksLikeCue applies a content heuristic since CUE sheets are plain text with no
// magic bytes: the first few KiB should contain both a FILE statement and a TRACK mode
// keyword recognizable from Redump/ISOBuster-authored sheets.
func psxLooksLikeCue(r romid.Reader) bool {
	size, err := romio.FileSize(r)
	if err != nil || size == 0 {
		return false
	}
	n := int64(4096)
	if size < n {
		n = size
	}
	prefix, ok, err := romio.ReadBytesAt(r, 0, int(n))
	if err != nil || !ok {
		return false
	}
	text := strings.ToUpper(string(prefix))
	return strings.Contains(text, "FILE \"") && strings.Contains(text, "TRACK") &&
		(strings.Contains(text, "MODE1") || strings.Contains(text, "MODE2") || strings.Contains(text, "AUDIO"))
}

// psxFindPVD scans for the ISO9660 primary volume descriptor magic word, searching
// within the first megabyte so both 2048-byte (ISO) and 2352-byte (raw BIN) sector
// layouts are found regardless of which sector size sector 16 lands on.
func psxFindPVD(r romid.Reader) int64 {
	size, err := romio.FileSize(r)
	if err != nil {
		return -1
	}
	window := int64(psxPVDSearchWindow)
	if window > size {
		window = size
	}
	buf, ok, err := romio.ReadBytesAt(r, 0, int(window))
	if err != nil || !ok {
		return -1
	}
	return int64(romio.FindBytes(buf, psxPVDMagic))
}

// AnalyzeWithProgress delegates to Analyze, which always fails for PSX: the disc walk
// that would warrant progress ticks happens in AnalyzeFromPath, not here, since bare
// readers carry no sibling-file information for CUE/CHD discs.
func (a *PSXAnalyzer) AnalyzeWithProgress(r romid.Reader, options romid.AnalysisOptions, progress romid.ProgressFunc) (*romid.Identification, error) {
	return a.Analyze(r, options)
}

// Analyze always fails for PSX: disc identification needs sibling-file access (a CUE's
// referenced BIN, or a CHD's own container) that a bare reader cannot provide.
func (a *PSXAnalyzer) Analyze(r romid.Reader, options romid.AnalysisOptions) (*romid.Identification, error) {
	return nil, romid.Unsupported("PSX", "PlayStation discs require path-based analysis (AnalyzeFromPath)")
}

// psxDisc is the subset of disc-backed ISO9660 access PSX identification needs; it is
// satisfied by *iso9660.ISO9660 regardless of whether the backing image is a raw ISO, a
// CUE-referenced BIN, or a CHD.
type psxDisc interface {
	GetUUID() string
	GetVolumeID() string
	IterFiles(onlyRootDir bool) ([]iso9660.FileInfo, error)
	ReadFileByPath(path string) ([]byte, error)
	FileExists(path string) bool
	Close() error
}

func psxOpenDisc(path string) (psxDisc, *iso9660.CueSheet, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".cue":
		cue, err := iso9660.ParseCue(path)
		if err != nil {
			return nil, nil, romid.InvalidFormat("PSX", "could not parse CUE sheet: "+err.Error())
		}
		iso, err := iso9660.OpenCue(path)
		if err != nil {
			return nil, nil, romid.CorruptedHeader("PSX", "could not open CUE's referenced BIN: "+err.Error())
		}
		return iso, cue, nil

	case ".chd":
		iso, err := iso9660.OpenCHD(path)
		if err != nil {
			return nil, nil, romid.CorruptedHeader("PSX", "could not open CHD: "+err.Error())
		}
		return iso, nil, nil

	default:
		iso, err := iso9660.Open(path)
		if err != nil {
			return nil, nil, romid.CorruptedHeader("PSX", "could not parse ISO9660 volume: "+err.Error())
		}
		return iso, nil, nil
	}
}

// AnalyzeFromPath opens the disc image (ISO, CUE+BIN, or CHD), reads SYSTEM.CNF for the
// boot executable's serial, and falls back to a root-file-prefix scan and then the
// volume ID when SYSTEM.CNF is absent or unreadable.
func (a *PSXAnalyzer) AnalyzeFromPath(path string, options romid.AnalysisOptions) (*romid.Identification, error) {
	disc, cue, err := psxOpenDisc(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = disc.Close() }()

	files, err := disc.IterFiles(true)
	if err != nil {
		return nil, romid.IOFailure("PSX", err)
	}

	rootFiles := make([]string, 0, len(files))
	for _, f := range files {
		name := strings.TrimPrefix(f.Path, "/")
		if idx := strings.Index(name, ";"); idx != -1 {
			name = name[:idx]
		}
		rootFiles = append(rootFiles, name)
	}

	serial := psxSerialFromSystemCNF(disc)
	if serial == "" {
		serial = psxSerialFromRootFiles(rootFiles)
	}
	if serial == "" {
		serial = psxSerialFromVolumeID(disc.GetVolumeID())
	}
	if serial == "" {
		serial = psxSerialFromFilename(path)
	}

	id := romid.NewIdentification("Sony PlayStation", psxDiscSize(path, cue))
	id.SerialNumber = strings.ReplaceAll(serial, "_", "-")
	id.SetExtra("volume_id", disc.GetVolumeID())
	id.SetExtra("uuid", disc.GetUUID())
	id.SetExtra("root_files", strings.Join(rootFiles, " / "))
	id.SetChecksumStatus("disc_image", "unknown")

	if cue != nil {
		id.SetExtra("total_tracks", strconv.Itoa(len(cue.Tracks)))
		id.SetExtra("data_tracks", strconv.Itoa(cue.DataTrackCount()))
		id.SetExtra("audio_tracks", strconv.Itoa(cue.AudioTrackCount()))
	}

	return id, nil
}

// psxSerialFromSystemCNF reads the disc's boot configuration file and extracts the
// serial embedded in its BOOT= (or BOOT2=, on PS2-branded SYSTEM.CNF reuse) line, e.g.
// "BOOT = cdrom:\SLUS_012.34;1" -> "SLUS_01234".
func psxSerialFromSystemCNF(disc psxDisc) string {
	if !disc.FileExists("SYSTEM.CNF") {
		return ""
	}
	data, err := disc.ReadFileByPath("SYSTEM.CNF")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)
		if !strings.HasPrefix(upper, "BOOT") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx == -1 {
			continue
		}
		value := strings.TrimSpace(line[idx+1:])
		base := filepath.Base(strings.ReplaceAll(value, "\\", "/"))
		if semi := strings.Index(base, ";"); semi != -1 {
			base = base[:semi]
		}
		if serial := psxNormalizeSerial(base); serial != "" {
			return serial
		}
	}
	return ""
}

// psxNormalizeSerial turns a boot-executable filename like "SLUS_012.34" into the
// canonical "SLUS_01234" form: a 4-letter prefix, an underscore, and the remaining
// digits concatenated with any interior punctuation stripped.
func psxNormalizeSerial(name string) string {
	name = strings.ToUpper(name)
	if semi := strings.Index(name, ";"); semi != -1 {
		name = name[:semi]
	}
	for _, prefix := range psxSerialPrefixes {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := name[len(prefix):]
		var digits strings.Builder
		for _, c := range rest {
			if c >= '0' && c <= '9' {
				digits.WriteRune(c)
			}
		}
		if digits.Len() == 0 {
			continue
		}
		return prefix + "_" + digits.String()
	}
	return ""
}

// psxSerialFromRootFiles scans root directory entries for a recognized serial prefix,
// the fallback Redump-style discs use when SYSTEM.CNF is missing or nonstandard.
func psxSerialFromRootFiles(rootFiles []string) string {
	for _, name := range rootFiles {
		if serial := psxNormalizeSerial(name); serial != "" {
			return serial
		}
	}
	return ""
}

// psxSerialFromVolumeID collapses a volume identifier like "SLUS_012.34" down to its
// first two underscore-delimited parts, discarding any trailing disc/revision marker.
func psxSerialFromVolumeID(volumeID string) string {
	if volumeID == "" {
		return ""
	}
	serial := strings.ReplaceAll(volumeID, "-", "_")
	parts := strings.Split(serial, "_")
	if len(parts) > 2 {
		serial = strings.Join(parts[:2], "_")
	}
	return serial
}

// psxDiscSize reports the total bytes backing the disc image: the sum of a CUE sheet's
// referenced BIN files, or the size of the image file itself for a raw ISO/BIN/CHD.
func psxDiscSize(path string, cue *iso9660.CueSheet) int64 {
	if cue != nil {
		var total int64
		for _, bin := range cue.BinFiles {
			if info, err := os.Stat(bin); err == nil {
				total += info.Size()
			}
		}
		return total
	}
	if info, err := os.Stat(path); err == nil {
		return info.Size()
	}
	return 0
}

func psxSerialFromFilename(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.TrimSuffix(name, ".gz")
}
