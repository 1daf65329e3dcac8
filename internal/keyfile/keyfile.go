// Package keyfile reads and writes keypair files. A plain file is the JSON
// array of the 64 keypair bytes that Solana tooling uses; an encrypted file
// seals those bytes with AES-GCM under an argon2id key.
package keyfile

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"os"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"

	"github.com/weegigs/wee-greetings/chain"
)

const (
	kdf        = "argon2id"
	saltSize   = 16
	keySize    = 32
	version    = 1
	permission = 0o600
)

var ErrWrongPassphrase = errors.New("wrong passphrase")

// Passphrase supplies the passphrase of an encrypted file when one is read.
type Passphrase func() ([]byte, error)

type encrypted struct {
	Version    int    `json:"version"`
	KDF        string `json:"kdf"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

func deriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, keySize)
}

func Encode(keypair chain.Keypair) ([]byte, error) {
	return json.Marshal(ints(keypair.Bytes()))
}

func Encrypt(keypair chain.Keypair, passphrase []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	aead, err := newAEAD(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return json.MarshalIndent(encrypted{
		Version:    version,
		KDF:        kdf,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, keypair.Bytes(), nil),
	}, "", "  ")
}

// Decode reads either file format. passphrase is only called for encrypted
// files.
func Decode(data []byte, passphrase Passphrase) (chain.Keypair, error) {
	var values []int
	if err := json.Unmarshal(data, &values); err == nil {
		b := make([]byte, len(values))
		for i, v := range values {
			if v < 0 || v > 255 {
				return chain.Keypair{}, errors.Errorf("invalid keypair byte %d", v)
			}
			b[i] = byte(v)
		}
		return chain.KeypairFromBytes(b)
	}

	var sealed encrypted
	if err := json.Unmarshal(data, &sealed); err != nil {
		return chain.Keypair{}, errors.Wrap(err, "unrecognised keypair file")
	}
	if sealed.Version != version || sealed.KDF != kdf {
		return chain.Keypair{}, errors.Errorf("unsupported keypair file version %d (%s)", sealed.Version, sealed.KDF)
	}
	if passphrase == nil {
		return chain.Keypair{}, errors.New("keypair file is encrypted")
	}

	secret, err := passphrase()
	if err != nil {
		return chain.Keypair{}, err
	}

	aead, err := newAEAD(deriveKey(secret, sealed.Salt))
	if err != nil {
		return chain.Keypair{}, err
	}
	if len(sealed.Nonce) != aead.NonceSize() {
		return chain.Keypair{}, errors.New("invalid nonce")
	}

	plain, err := aead.Open(nil, sealed.Nonce, sealed.Ciphertext, nil)
	if err != nil {
		return chain.Keypair{}, ErrWrongPassphrase
	}

	return chain.KeypairFromBytes(plain)
}

// Write stores keypair at path, encrypted when passphrase is not empty.
func Write(path string, keypair chain.Keypair, passphrase []byte) error {
	var (
		data []byte
		err  error
	)

	if len(passphrase) == 0 {
		data, err = Encode(keypair)
	} else {
		data, err = Encrypt(keypair, passphrase)
	}
	if err != nil {
		return err
	}

	return errors.Wrapf(os.WriteFile(path, data, permission), "failed to write %s", path)
}

func Read(path string, passphrase Passphrase) (chain.Keypair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return chain.Keypair{}, errors.Wrapf(err, "failed to read %s", path)
	}

	return Decode(data, passphrase)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}

func ints(b []byte) []int {
	values := make([]int, len(b))
	for i, v := range b {
		values[i] = int(v)
	}

	return values
}
