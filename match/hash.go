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

// Package match implements the hashing orchestrator and the serial/hash lookup policy
// that turns an Identification plus a DAT index into a Verdict.
package match

import (
	"crypto/md5"  //nolint:gosec // digest used for catalog matching, not security
	"crypto/sha1" //nolint:gosec // digest used for catalog matching, not security
	"encoding/hex"
	"hash"
	"hash/crc32"
	"io"

	"github.com/retrovault/romid"
)

// hashChunkSize is the bounded-size read the orchestrator uses for every chunk; large
// enough to amortize read overhead, small enough to keep peak memory flat regardless of
// file size (spec's resource policy: one fixed-size chunk buffer per call).
const hashChunkSize = 64 * 1024

// Digests holds the three running-hash results the matching policy consults, each as a
// lowercase hex string so they compare directly against DAT-file digest text.
type Digests struct {
	CRC32 string
	MD5   string
	SHA1  string
}

// Hash seeks past the analyzer's dat_header_size and feeds the remainder of r, chunk by
// chunk, through CRC32/MD5/SHA-1, applying normalize (nil means identity) to each chunk
// before hashing. progress, if non-nil, is called after every chunk with cumulative
// bytes processed and the stream's total length.
func Hash(r romid.Reader, headerSize int64, normalize romid.ChunkNormalizer, progress romid.ProgressFunc) (Digests, error) {
	if _, err := r.Seek(headerSize, io.SeekStart); err != nil {
		return Digests{}, romid.IOFailure("", err)
	}

	total := int64(0)
	if end, err := r.Seek(0, io.SeekEnd); err == nil {
		total = end - headerSize
		if _, err := r.Seek(headerSize, io.SeekStart); err != nil {
			return Digests{}, romid.IOFailure("", err)
		}
	}

	crcHasher := crc32.NewIEEE()
	md5Hasher := md5.New()   //nolint:gosec // catalog digest, not a security boundary
	sha1Hasher := sha1.New() //nolint:gosec // catalog digest, not a security boundary

	buf := make([]byte, hashChunkSize)
	var processed int64
	var chunkOffset int64

	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			chunk := buf[:n]
			if normalize != nil {
				chunk = normalize(chunk, chunkOffset)
			}
			writeAll(crcHasher, chunk)
			writeAll(md5Hasher, chunk)
			writeAll(sha1Hasher, chunk)

			processed += int64(n)
			chunkOffset += int64(n)
			if progress != nil {
				progress(romid.Progress{BytesDone: processed, BytesTotal: total})
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return Digests{}, romid.IOFailure("", err)
		}
	}

	return Digests{
		CRC32: hex.EncodeToString(crcHasher.Sum(nil)),
		MD5:   hex.EncodeToString(md5Hasher.Sum(nil)),
		SHA1:  hex.EncodeToString(sha1Hasher.Sum(nil)),
	}, nil
}

func writeAll(h hash.Hash, p []byte) {
	_, _ = h.Write(p) // hash.Hash.Write never returns an error
}
