package ledger

import (
	"strings"

	"github.com/pkg/errors"
)

// AccountId names an account's event stream. Key is the account's base58
// address, or the signature for transaction records.
type AccountId struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

func (id AccountId) Encode() EncodedAccountId {
	return EncodedAccountId(strings.Join([]string{id.Type, id.Key}, "."))
}

func (id AccountId) String() string {
	return id.Encode().String()
}

type EncodedAccountId string

func (id EncodedAccountId) String() string {
	return string(id)
}

func (id EncodedAccountId) Decode() (AccountId, error) {
	separated := strings.SplitN(string(id), ".", 2)
	if len(separated) < 2 {
		return AccountId{}, errors.Errorf("expected . delimiter in account id %q", id)
	}

	return AccountId{Type: separated[0], Key: separated[1]}, nil
}
