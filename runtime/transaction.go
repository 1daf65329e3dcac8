package runtime

import (
	"github.com/pkg/errors"

	"github.com/weegigs/wee-greetings/chain"
)

// Transaction carries one signature per Message.Signers entry, in order.
type Transaction struct {
	Signatures []chain.Signature `json:"signatures"`
	Message    Message           `json:"message"`
}

func NewTransaction(nonce string, instructions ...Instruction) *Transaction {
	return &Transaction{
		Message: Message{Nonce: nonce, Instructions: instructions},
	}
}

// Sign signs the message with every required signer found in keypairs.
func (tx *Transaction) Sign(keypairs ...chain.Keypair) error {
	byKey := make(map[chain.PublicKey]chain.Keypair, len(keypairs))
	for _, keypair := range keypairs {
		byKey[keypair.PublicKey()] = keypair
	}

	message := tx.Message.Serialize()
	signers := tx.Message.Signers()
	signatures := make([]chain.Signature, len(signers))

	for i, signer := range signers {
		keypair, ok := byKey[signer]
		if !ok {
			return errors.Wrapf(ErrUnauthorized, "no keypair for signer %s", signer)
		}
		signatures[i] = keypair.Sign(message)
	}

	tx.Signatures = signatures
	return nil
}

// Signature identifies the transaction: its first signature.
func (tx *Transaction) Signature() chain.Signature {
	if len(tx.Signatures) == 0 {
		return chain.Signature{}
	}

	return tx.Signatures[0]
}

func (tx *Transaction) Verify() error {
	if len(tx.Message.Instructions) == 0 {
		return errors.Wrap(ErrInvalidTransaction, "no instructions")
	}

	signers := tx.Message.Signers()
	if len(signers) == 0 {
		return errors.Wrap(ErrUnauthorized, "transaction has no signers")
	}
	if len(tx.Signatures) != len(signers) {
		return errors.Wrapf(ErrUnauthorized, "expected %d signatures, got %d", len(signers), len(tx.Signatures))
	}

	message := tx.Message.Serialize()
	for i, signer := range signers {
		if !tx.Signatures[i].Verify(signer, message) {
			return errors.Wrapf(ErrUnauthorized, "invalid signature for %s", signer)
		}
	}

	return nil
}
