// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// =============================================================================
// FINGERPRINT
// =============================================================================

// MessagePart is one conversation turn as it contributes to a fingerprint.
type MessagePart struct {
	Role    string
	Content string
}

// FingerprintInput captures everything that can change a completion. Two
// inputs that differ in any field produce different fingerprints.
type FingerprintInput struct {
	RoleName     string
	SystemPrompt string
	Messages     []MessagePart
	Model        string
	Temperature  float64
	TopP         float64
}

// Fingerprint returns a hex SHA-256 digest over a length-prefixed encoding
// of the input. Length prefixes keep field boundaries unambiguous, so
// ("ab","c") and ("a","bc") never collide.
func Fingerprint(in FingerprintInput) string {
	h := sha256.New()

	writeString := func(s string) {
		var lenBuf [8]byte
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(s)))
		h.Write(lenBuf[:])
		h.Write([]byte(s))
	}
	writeFloat := func(f float64) {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}

	writeString(in.RoleName)
	writeString(in.SystemPrompt)

	var countBuf [8]byte
	binary.BigEndian.PutUint64(countBuf[:], uint64(len(in.Messages)))
	h.Write(countBuf[:])
	for _, m := range in.Messages {
		writeString(m.Role)
		writeString(m.Content)
	}

	writeString(in.Model)
	writeFloat(in.Temperature)
	writeFloat(in.TopP)

	return hex.EncodeToString(h.Sum(nil))
}
