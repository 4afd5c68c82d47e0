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

package romid

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retrovault/romid/archive"
)

// Registry holds a set of analyzers and selects the one matching a given stream by
// content, never by file extension.
//
// Analyzers are tried in registration order. Callers building a Registry by hand should
// register longer/more-specific-magic analyzers first, then logo-only analyzers, then
// sum-check-only analyzers, per the ordering rule DefaultRegistry follows.
type Registry struct {
	analyzers []Analyzer
}

// NewRegistry builds a Registry from an explicit, ordered analyzer list.
func NewRegistry(analyzers ...Analyzer) *Registry {
	return &Registry{analyzers: append([]Analyzer(nil), analyzers...)}
}

// Analyzers returns the registered analyzers in dispatch order.
func (reg *Registry) Analyzers() []Analyzer {
	return append([]Analyzer(nil), reg.analyzers...)
}

// Identify probes r against every registered analyzer in order and returns the first
// one whose CanHandle accepts it and whose Analyze succeeds.
//
// Dispatch rules (spec §4.4): if Analyze returns InvalidFormat or CorruptedHeader, the
// registry continues to the next analyzer — a format's CanHandle may admit false
// positives that the full parse rejects. TooSmall and Unsupported are returned
// immediately: no later analyzer will accept a truncated file, and an unsupported
// variant is final. Any other error (IOFailure, or a non-AnalyzerError from a
// misbehaving analyzer) is also returned immediately — it is not retried.
func (reg *Registry) Identify(r Reader, options AnalysisOptions) (Analyzer, *Identification, error) {
	for _, a := range reg.analyzers {
		if !a.CanHandle(r) {
			continue
		}

		id, err := reg.analyze(a, r, options)
		if err == nil {
			if id != nil && id.Regions != nil {
				id.reconcileRegions()
			}
			return a, id, nil
		}

		var ae *AnalyzerError
		if errors.As(err, &ae) {
			switch ae.Kind {
			case ErrorInvalidFormat, ErrorCorruptedHeader:
				continue
			default:
				return nil, nil, err
			}
		}
		return nil, nil, err
	}
	return nil, nil, InvalidFormat("", "no registered analyzer recognized this stream")
}

// analyze dispatches to AnalyzeFromPath when the analyzer needs sibling-file access
// (PS1's .cue referencing a .bin) and a path is available, otherwise to Analyze.
func (reg *Registry) analyze(a Analyzer, r Reader, options AnalysisOptions) (*Identification, error) {
	if pa, ok := a.(PathAnalyzer); ok && options.FilePath != "" {
		id, err := pa.AnalyzeFromPath(options.FilePath, options)
		if err != nil {
			return nil, err
		}
		return id, nil
	}
	return a.Analyze(r, options)
}

// IdentifyPath opens path and runs Identify against it, transparently unwrapping a ZIP,
// 7z, or RAR container first when path names one (either directly, or via a
// MiSTer-style "archive.zip/game.gba" internal reference).
//
// options.FilePath is left untouched for archive members: a PathAnalyzer's sibling-file
// access (PS1's CUE referencing a BIN) assumes a real path on disk, which an archive
// member does not have.
func (reg *Registry) IdentifyPath(path string, options AnalysisOptions) (Analyzer, *Identification, error) {
	r, closer, err := OpenPath(path, &options)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = closer.Close() }()
	return reg.Identify(r, options)
}

// OpenPath resolves path to a Reader, transparently unwrapping a ZIP, 7z, or RAR
// container first when path names one (either directly, or via a MiSTer-style
// "archive.zip/game.gba" internal reference), auto-detecting the first recognized game
// file inside the archive when the path doesn't name a member explicitly. Archive
// members are buffered into memory via archive.Archive.OpenReaderAt and exposed through
// an io.SectionReader, which satisfies Reader directly.
//
// When options is non-nil and its FilePath is empty, OpenPath fills it in for a plain
// (non-archive) path so a PathAnalyzer can use it for sibling-file access; archive
// members never get a FilePath, since they have no path of their own on disk.
//
// The returned io.Closer releases every resource OpenPath opened (the underlying
// archive as well as the buffered member, where applicable) and must be closed exactly
// once regardless of the returned error.
func OpenPath(path string, options *AnalysisOptions) (Reader, io.Closer, error) {
	if archive.IsArchivePath(path) {
		return openArchivePath(path)
	}

	f, err := os.Open(path) //nolint:gosec // path is caller-controlled, not derived from untrusted input here
	if err != nil {
		return nil, nil, IOFailure("", err)
	}
	if options != nil && options.FilePath == "" {
		options.FilePath = path
	}
	return f, f, nil
}

// archiveMemberCloser releases both the buffered member reader and the archive it came
// from; Close on either alone would leak the other.
type archiveMemberCloser struct {
	member  io.Closer
	archive archive.Archive
}

func (c archiveMemberCloser) Close() error {
	memberErr := c.member.Close()
	archiveErr := c.archive.Close()
	if memberErr != nil {
		return memberErr
	}
	return archiveErr
}

func openArchivePath(path string) (Reader, io.Closer, error) {
	parsed, err := archive.ParsePath(path)
	if err != nil {
		return nil, nil, IOFailure("", err)
	}
	if parsed == nil {
		return nil, nil, InvalidFormat("", "path does not reference a supported archive")
	}

	arc, err := archive.Open(parsed.ArchivePath)
	if err != nil {
		return nil, nil, IOFailure("", err)
	}

	internalPath := parsed.InternalPath
	if internalPath == "" {
		internalPath, err = archive.DetectGameFile(arc)
		if err != nil {
			_ = arc.Close()
			return nil, nil, InvalidFormat("", "no recognized game file in archive: "+err.Error())
		}
	}

	ra, size, memberCloser, err := arc.OpenReaderAt(internalPath)
	if err != nil {
		_ = arc.Close()
		return nil, nil, IOFailure("", err)
	}

	return io.NewSectionReader(ra, 0, size), archiveMemberCloser{member: memberCloser, archive: arc}, nil
}

// ByShortName returns the registered analyzer with the given ShortName, or nil.
func (reg *Registry) ByShortName(shortName string) Analyzer {
	for _, a := range reg.analyzers {
		if a.ShortName() == shortName {
			return a
		}
	}
	return nil
}

// IdentifyWithAnalyzer runs a single, caller-chosen analyzer rather than probing the
// whole registry — useful when the console is already known.
func (reg *Registry) IdentifyWithAnalyzer(shortName string, r Reader, options AnalysisOptions) (*Identification, error) {
	a := reg.ByShortName(shortName)
	if a == nil {
		return nil, fmt.Errorf("no analyzer registered for %q", shortName)
	}
	return reg.analyze(a, r, options)
}
