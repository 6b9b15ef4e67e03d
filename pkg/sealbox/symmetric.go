// Package sealbox implements the authenticated symmetric encryption used to
// protect session capsules. Ciphertexts are AES-256-GCM, bound to an
// additional-authenticated-data context, and packed into a single byte slice
// for transport.
package sealbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

const ivSize = 12
const tagSize = aes.BlockSize
const versionMagic = byte('C')

// KeySize is the required key length in bytes (AES-256).
const KeySize = 32

// SymmetricCipher seals and opens byte slices bound to an AAD context.
type SymmetricCipher interface {
	Decrypt(aad, packedText []byte) ([]byte, error)
	Encrypt(aad, plainText []byte) ([]byte, error)
}

type Symmetric struct {
	aesgcm cipher.AEAD
}

// NewSymmetric builds a cipher from a 32-byte key.
func NewSymmetric(key []byte) (SymmetricCipher, error) {
	if len(key) != KeySize {
		return nil, errors.New("sealbox: key must be exactly 32 bytes")
	}

	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesgcm, err := cipher.NewGCM(c)
	if err != nil {
		return nil, err
	}

	return &Symmetric{aesgcm: aesgcm}, nil
}

func (s Symmetric) Decrypt(aad, packedText []byte) ([]byte, error) {
	if len(packedText) < 1+tagSize+ivSize {
		return nil, errors.New("sealbox: ciphertext is too short")
	}
	if packedText[0] != versionMagic {
		return nil, errors.New("sealbox: unknown ciphertext version")
	}

	cipherText, iv := unpackCipherData(packedText)

	return s.aesgcm.Open(nil, iv, cipherText, aad)
}

func (s Symmetric) Encrypt(aad, plainText []byte) ([]byte, error) {
	nonce, err := RandomNonce()
	if err != nil {
		return nil, err
	}

	return s.encrypt(aad, plainText, nonce)
}

func (s Symmetric) encrypt(aad, plainText, nonce []byte) ([]byte, error) {
	if len(nonce) < ivSize {
		return nil, errors.New("sealbox: nonce size is too short")
	}

	cipherTextWithTag := s.aesgcm.Seal(nil, nonce, plainText, aad)

	return packCipherData(cipherTextWithTag, nonce), nil
}

// RandomNonce returns a fresh GCM nonce.
// Never use more than 2^32 random nonces with a given key because of
// the risk of a repeat.
func RandomNonce() ([]byte, error) {
	return RandomBytes(ivSize)
}

// RandomBytes returns size bytes from the system CSPRNG.
func RandomBytes(size int) ([]byte, error) {
	value := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, value); err != nil {
		return nil, err
	}

	return value, nil
}

// Packed layout: version | tag | iv | ctext
func packCipherData(cipherTextWithTag []byte, iv []byte) []byte {
	iv = iv[:ivSize]

	tagStartIndex := len(cipherTextWithTag) - tagSize
	tag := cipherTextWithTag[tagStartIndex:]
	cipherText := cipherTextWithTag[:tagStartIndex]

	data := make([]byte, 1+tagSize+ivSize+len(cipherText))
	data[0] = versionMagic
	index := 1

	copy(data[index:], tag)
	index += tagSize

	copy(data[index:], iv)
	index += ivSize

	copy(data[index:], cipherText)

	return data
}

func unpackCipherData(packedText []byte) ([]byte, []byte) {
	index := 1

	nextIndex := index + tagSize
	tag := packedText[index:nextIndex]
	index = nextIndex

	nextIndex = index + ivSize
	iv := packedText[index:nextIndex]
	index = nextIndex

	cipherText := append(append([]byte{}, packedText[index:]...), tag...)

	return cipherText, iv
}
