// Package slugify builds the public URL identifiers of companies and profiles.
package slugify

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/gosimple/slug"
)

// MaxLength matches the slug column size.
const MaxLength = 100

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Make lowercases s and replaces everything but letters and digits with
// hyphens, truncated to MaxLength.
func Make(s string) string {
	out := slug.Make(s)
	if len(out) > MaxLength {
		out = trimHyphen(out[:MaxLength])
	}
	return out
}

// WithSuffix returns the slug of base followed by n random characters.
// base is shortened so the suffix always survives.
func WithSuffix(base string, n int) string {
	return join(Make(base), RandomSuffix(n))
}

// Company slug for a company account, with a random suffix so equal names
// still get distinct slugs.
func Company(companyName string) string {
	return WithSuffix("Company-"+companyName, 5)
}

// Profile slug for an HR, Manager or Employee profile. Long names are cut
// before the employee id, which is unique within the company.
func Profile(companyName, role, fullName, employeeID string) string {
	return join(Make(fmt.Sprintf("Company:%s-%s-%s", companyName, role, fullName)), Make(employeeID))
}

// ProfileWithSuffix is Profile with n random characters after the employee id.
func ProfileWithSuffix(companyName, role, fullName, employeeID string, n int) string {
	return Profile(companyName, role, fullName, employeeID+"-"+RandomSuffix(n))
}

// RandomSuffix returns n random lowercase letters and digits.
func RandomSuffix(n int) string {
	b := make([]byte, n)
	limit := big.NewInt(int64(len(suffixAlphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			b[i] = suffixAlphabet[i%len(suffixAlphabet)]
			continue
		}
		b[i] = suffixAlphabet[idx.Int64()]
	}
	return string(b)
}

// join glues head and tail with a hyphen, cutting head to fit MaxLength.
func join(head, tail string) string {
	if tail == "" {
		return head
	}
	if keep := MaxLength - len(tail) - 1; len(head) > keep {
		if keep < 0 {
			keep = 0
		}
		head = trimHyphen(head[:keep])
	}
	if head == "" {
		return tail
	}
	return head + "-" + tail
}

func trimHyphen(s string) string {
	for len(s) > 0 && s[len(s)-1] == '-' {
		s = s[:len(s)-1]
	}
	return s
}
