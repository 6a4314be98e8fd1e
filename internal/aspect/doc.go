// Package aspect resolves one authoritative aspect ratio per attachment
// before any media bytes have been fetched.
//
// Resolution walks a fixed precedence order and the first usable value wins:
//
//  1. a previously measured Snapshot for the attachment, if its ratio is > 0
//  2. the declared width/height of the attachment, if both are > 0
//  3. dimensions embedded in the attachment URL (filename, query or path)
//  4. DefaultRatio (3:2)
//
// Resolve is pure: identical inputs always yield an identical Ratio, and it
// never fails. Absence of data degrades to DefaultRatio.
package aspect
