package runtime

import (
	"bytes"
	"encoding/binary"

	"github.com/weegigs/wee-greetings/chain"
)

// Message is the signed part of a transaction. Nonce makes otherwise identical
// messages produce distinct signatures.
type Message struct {
	Nonce        string        `json:"nonce"`
	Instructions []Instruction `json:"instructions"`
}

// Serialize writes the canonical bytes that signers sign: every variable
// length field is prefixed by its uint32 little-endian length.
func (m Message) Serialize() []byte {
	var buf bytes.Buffer

	writeBytes(&buf, []byte(m.Nonce))
	writeLength(&buf, len(m.Instructions))

	for _, ix := range m.Instructions {
		buf.Write(ix.ProgramID[:])
		writeLength(&buf, len(ix.Accounts))
		for _, meta := range ix.Accounts {
			buf.Write(meta.PublicKey[:])
			buf.WriteByte(flag(meta.IsSigner))
			buf.WriteByte(flag(meta.IsWritable))
		}
		writeBytes(&buf, ix.Data)
	}

	return buf.Bytes()
}

// Signers lists the keys flagged as signers, in first-seen order.
func (m Message) Signers() []chain.PublicKey {
	seen := make(map[chain.PublicKey]bool)
	var signers []chain.PublicKey

	for _, ix := range m.Instructions {
		for _, meta := range ix.Accounts {
			if meta.IsSigner && !seen[meta.PublicKey] {
				seen[meta.PublicKey] = true
				signers = append(signers, meta.PublicKey)
			}
		}
	}

	return signers
}

func writeLength(buf *bytes.Buffer, n int) {
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(n))
	buf.Write(length[:])
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeLength(buf, len(b))
	buf.Write(b)
}

func flag(b bool) byte {
	if b {
		return 1
	}

	return 0
}
