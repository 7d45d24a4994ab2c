// Package cos provides common low-level types and utilities shared by
// cpscan's classpath and archive packages.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"strconv"
	"sync"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/teris-io/shortid"
)

// idABC mirrors aistore's cos.uuidABC alphabet choice: dash and underscore
// included, all of which are safe inside a path segment as is (the
// temp-file-name sanitizer is applied only to the leaf, not the prefix).
const idABC = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

var (
	sidOnce sync.Once
	sid     *shortid.Shortid
)

func shortID() *shortid.Shortid {
	sidOnce.Do(func() {
		sid = shortid.MustNew(4 /*worker*/, idABC, uint64(time.Now().UnixNano()))
	})
	return sid
}

// GenTempPrefix generates the random-prefix half of a temp file name
// (see archive's "<prefix>---<sanitized-leaf>" naming contract).
func GenTempPrefix() string { return shortID().MustGenerate() }

// Checksum64 is a fast non-cryptographic (xxhash) digest of b. The archive
// extraction paths do not call it; extracted temp files are not checksummed.
func Checksum64(b []byte) uint64 { return xxhash.Checksum64(b) }

// ChecksumString renders a Checksum64 result for logging/diagnostics.
func ChecksumString(sum uint64) string { return strconv.FormatUint(sum, 36) }
