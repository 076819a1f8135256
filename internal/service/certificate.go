package service

import (
	"fmt"
	"time"
)

// certTimeLayout renders a timestamp at millisecond precision in UTC, the
// granularity the certificate hash folds in.
const certTimeLayout = "2006-01-02T15:04:05.000Z"

// CertificateTimestamp formats a completion time for hashing and display.
func CertificateTimestamp(t time.Time) string {
	return t.UTC().Format(certTimeLayout)
}

// CertificateHash derives the eco certificate for a completed transaction
// from its identity fields. The four fields are joined with "-" and folded
// with a wrapping 32-bit signed accumulator (acc = acc*31 + charCode); the
// absolute value is rendered as lowercase hex, left-padded to 8 characters.
// This must stay bit-exact: certificates are independently verifiable from
// their inputs. Known vector: ("1","b","s","0") -> "725694cf".
func CertificateHash(productID, buyerID, sellerID, completedAt string) string {
	data := productID + "-" + buyerID + "-" + sellerID + "-" + completedAt

	var acc int32
	for _, r := range data {
		acc = acc*31 + int32(r)
	}

	v := int64(acc)
	if v < 0 {
		v = -v
	}
	return fmt.Sprintf("%08x", v)
}

// CertificateID is the human-shown form of a certificate hash.
func CertificateID(hash string) string {
	return "ECO-" + hash
}
