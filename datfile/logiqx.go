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

// Package datfile parses No-Intro and Redump catalog files (Logiqx XML and ClrMamePro
// text) into a console-agnostic Datafile, and merges Datafiles into a lookup Index.
package datfile

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DumpStatus mirrors the Logiqx "status" attribute on a rom/disk entry.
type DumpStatus string

const (
	DumpStatusGood     DumpStatus = "good"
	DumpStatusBadDump  DumpStatus = "baddump"
	DumpStatusNoDump   DumpStatus = "nodump"
	DumpStatusVerified DumpStatus = "verified"
)

// Datafile is a parsed catalog: one header plus every game it lists.
type Datafile struct {
	Header Header
	Games  []Game
}

// Header carries the catalog's own identifying metadata (name, version, author), used
// to attribute a match to the DAT it came from.
type Header struct {
	Name        string
	Description string
	Version     string
	Date        string
	Author      string
	Homepage    string
	URL         string
}

func (h *Header) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type rawHeader struct {
		Name        string `xml:"name"`
		Description string `xml:"description"`
		Version     string `xml:"version"`
		Date        string `xml:"date"`
		Author      string `xml:"author"`
		Homepage    string `xml:"homepage"`
		URL         string `xml:"url"`
	}
	var raw rawHeader
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	h.Name = raw.Name
	h.Description = raw.Description
	h.Version = raw.Version
	h.Date = raw.Date
	h.Author = raw.Author
	h.Homepage = raw.Homepage
	h.URL = raw.URL
	return nil
}

// Game is a single catalog entry (called "machine" in some MAME-derived DATs).
type Game struct {
	Name        string
	Description string
	Year        string
	Manufacturer string

	ROMs  []ROM
	Disks []Disk
}

func (g *Game) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type rawGame struct {
		Name         string `xml:"name,attr"`
		Description  string `xml:"description"`
		Year         string `xml:"year"`
		Manufacturer string `xml:"manufacturer"`
		ROMs         []ROM  `xml:"rom"`
		Disks        []Disk `xml:"disk"`
	}
	var raw rawGame
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	g.Name = raw.Name
	g.Description = raw.Description
	g.Year = raw.Year
	g.Manufacturer = raw.Manufacturer
	g.ROMs = raw.ROMs
	g.Disks = raw.Disks
	return nil
}

// ROM is a single file entry within a Game: the unit the matching engine compares
// computed hashes against.
type ROM struct {
	Name   string
	Size   int64
	CRC32  string
	MD5    string
	SHA1   string
	Serial string // No-Intro records a cartridge serial on some consoles
	Status DumpStatus
}

func (r *ROM) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type rawROM struct {
		Name   string `xml:"name,attr"`
		Size   string `xml:"size,attr"`
		CRC    string `xml:"crc,attr"`
		MD5    string `xml:"md5,attr"`
		SHA1   string `xml:"sha1,attr"`
		Serial string `xml:"serial,attr"`
		Status string `xml:"status,attr"`
	}
	var raw rawROM
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	r.Name = raw.Name
	r.Size, _ = strconv.ParseInt(raw.Size, 10, 64)
	r.CRC32 = strings.ToLower(raw.CRC)
	r.MD5 = strings.ToLower(raw.MD5)
	r.SHA1 = strings.ToLower(raw.SHA1)
	r.Serial = raw.Serial
	r.Status = DumpStatus(raw.Status)
	return nil
}

// Disk is a CD-track entry, the form Redump DATs use for multi-track PS1 discs.
type Disk struct {
	Name   string     `xml:"name,attr"`
	MD5    string     `xml:"md5,attr"`
	SHA1   string     `xml:"sha1,attr"`
	Status DumpStatus `xml:"status,attr"`
}

// ParseLogiqx reads a Logiqx-schema DAT file (the format No-Intro and Redump publish).
func ParseLogiqx(path string) (*Datafile, error) {
	f, err := os.Open(path) //nolint:gosec // Path from user-supplied DAT directory
	if err != nil {
		return nil, fmt.Errorf("open DAT file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseLogiqxReader(f)
}

// ParseLogiqxReader parses a Logiqx DAT from an arbitrary reader, accepting both
// <game> and <machine> top-level elements since both appear across the ecosystem.
func ParseLogiqxReader(r io.Reader) (*Datafile, error) {
	type xmlDatafile struct {
		XMLName  xml.Name `xml:"datafile"`
		Header   Header   `xml:"header"`
		Games    []Game   `xml:"game"`
		Machines []Game   `xml:"machine"`
	}

	var xmlFile xmlDatafile
	if err := xml.NewDecoder(r).Decode(&xmlFile); err != nil {
		return nil, fmt.Errorf("parse Logiqx DAT: %w", err)
	}

	file := &Datafile{
		Header: xmlFile.Header,
		Games:  make([]Game, 0, len(xmlFile.Games)+len(xmlFile.Machines)),
	}
	file.Games = append(file.Games, xmlFile.Games...)
	file.Games = append(file.Games, xmlFile.Machines...)
	return file, nil
}
