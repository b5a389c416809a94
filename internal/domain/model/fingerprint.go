package model

import (
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// ComputeVerificationHash derives the tamper-detection fingerprint of a
// credential from its immutable fields. Status and the stored hash itself are
// not part of the input. Skill order does not affect the result.
func ComputeVerificationHash(c Credential) string {
	// blake2b.New256 only fails for keys longer than 64 bytes.
	h, _ := blake2b.New256(nil)

	expiry := ""
	if c.ExpiryDate != nil {
		expiry = c.ExpiryDate.UTC().Format(time.RFC3339Nano)
	}
	level := ""
	if c.NSQFLevel != nil {
		level = strconv.Itoa(*c.NSQFLevel)
	}

	skills := make([]string, 0, len(c.Skills))
	for _, s := range c.Skills {
		skills = append(skills, strings.TrimSpace(s))
	}
	sort.Strings(skills)

	fields := []string{
		c.ID,
		c.Title,
		c.Description,
		c.IssuerID,
		c.IssuerName,
		c.RecipientID,
		c.RecipientName,
		c.IssueDate.UTC().Format(time.RFC3339Nano),
		expiry,
		c.VerificationCode,
		strconv.Itoa(len(skills)),
	}
	fields = append(fields, skills...)
	fields = append(fields, level)

	// Length-prefix every field so adjacent values cannot be shifted into one another.
	var lenBuf [8]byte
	for _, f := range fields {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(f)))
		h.Write(lenBuf[:])
		h.Write([]byte(f))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// HashMatches reports whether the stored VerificationHash equals the hash
// recomputed from c's current fields.
func (c Credential) HashMatches() bool {
	want := ComputeVerificationHash(c)
	got := strings.ToLower(strings.TrimSpace(c.VerificationHash))
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}
