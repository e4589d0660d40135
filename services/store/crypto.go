// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/awnumar/memguard"

	"github.com/AleutianAI/AleutianCreate/pkg/config"
)

// Cipher seals credential values with AES-256-GCM. The master key lives
// in a memguard enclave between uses, so it is encrypted in memory except
// during the brief window a seal or open needs it.
type Cipher struct {
	enclave *memguard.Enclave
}

// NewCipher derives the cipher from the master key in CREATE_MASTER_KEY
// or the mounted create_master_key secret. Any key material is accepted;
// it is stretched to 32 bytes with SHA-256.
func NewCipher() (*Cipher, error) {
	raw := config.ResolveSecret("CREATE_MASTER_KEY", "create_master_key")
	if raw == "" {
		return nil, errors.New("CREATE_MASTER_KEY is not set")
	}
	return NewCipherFromKey([]byte(raw)), nil
}

// NewCipherFromKey builds a Cipher from explicit key material.
func NewCipherFromKey(material []byte) *Cipher {
	key := sha256.Sum256(material)
	enclave := memguard.NewEnclave(key[:])
	return &Cipher{enclave: enclave}
}

// Encrypt seals plaintext. Output layout: nonce || ciphertext.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	gcm, release, err := c.open()
	if err != nil {
		return nil, err
	}
	defer release()

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a sealed value.
func (c *Cipher) Decrypt(sealed []byte) ([]byte, error) {
	gcm, release, err := c.open()
	if err != nil {
		return nil, err
	}
	defer release()

	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("sealed value too short")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.New("decryption failed")
	}
	return plain, nil
}

// open materializes the key from the enclave and builds the AEAD. The
// returned release func destroys the locked buffer.
func (c *Cipher) open() (cipher.AEAD, func(), error) {
	buf, err := c.enclave.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open key enclave: %w", err)
	}
	block, err := aes.NewCipher(buf.Bytes())
	if err != nil {
		buf.Destroy()
		return nil, nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		buf.Destroy()
		return nil, nil, err
	}
	return gcm, func() { buf.Destroy() }, nil
}
