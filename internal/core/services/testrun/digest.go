package testrun

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"gitlab.com/equivcheck-2025.net/internal/domain"
)

// Digest fingerprints the inputs of a case. Equal digests across two runs mean
// the generator replayed the same inputs.
func Digest(gc domain.GeneratedCase) string {
	payload, err := json.Marshal(struct {
		Complexity int   `json:"c"`
		Receiver   any   `json:"r,omitempty"`
		Args       []any `json:"a"`
	}{gc.Complexity, gc.Receiver, gc.Args})
	if err != nil {
		payload = []byte(fmt.Sprintf("%d|%+v|%+v", gc.Complexity, gc.Receiver, gc.Args))
	}
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:16])
}
