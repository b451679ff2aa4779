// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ton

import (
	"crypto/sha256"
	"hash"
	"io"
	"sync"
)

// NewSha256 returns the hash used for cell representation hashes.
func NewSha256() hash.Hash {
	return sha256.New()
}

// Sha256 computes sha256 checksum for given data.
func Sha256(data ...[]byte) Bytes32 {
	if len(data) == 1 {
		// the quick version
		return sha256.Sum256(data[0])
	}
	return Sha256Fn(func(w io.Writer) {
		for _, b := range data {
			w.Write(b)
		}
	})
}

// Sha256Fn computes sha256 checksum for the provided writer.
func Sha256Fn(fn func(w io.Writer)) (h Bytes32) {
	w := sha256StatePool.Get().(*sha256State)
	fn(w)
	w.Sum(w.b32[:0])
	h = w.b32 // to avoid 1 alloc
	w.Reset()
	sha256StatePool.Put(w)
	return
}

type sha256State struct {
	hash.Hash
	b32 Bytes32
}

var sha256StatePool = sync.Pool{
	New: func() any {
		return &sha256State{
			Hash: NewSha256(),
		}
	},
}
