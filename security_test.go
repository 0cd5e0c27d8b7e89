// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPadPassword_PadsShortPasswordToThirtyTwoBytes(t *testing.T) {
	out := padPassword([]byte("abc"))
	require.Len(t, out, 32)
	assert.Equal(t, []byte("abc"), out[:3])
	assert.Equal(t, passwordPad[:29], out[3:])
}

func TestAuthenticateR234_RoundTripsWithCorrectUserPassword(t *testing.T) {
	e := encryptInfo{
		R:      3,
		Length: 128,
		P:      -44,
		ID0:    []byte("0123456789ABCDEF"),
		O:      bytes.Repeat([]byte{0x42}, 32),
	}
	key := computeEncryptionKeyR234([]byte("pw1"), e)
	e.U = computeUR234(key, e)

	gotKey, ok := authenticateR234("pw1", e)
	require.True(t, ok)
	assert.Equal(t, key, gotKey)
}

func TestAuthenticateR234_WrongPasswordFails(t *testing.T) {
	e := encryptInfo{
		R:      3,
		Length: 128,
		P:      -44,
		ID0:    []byte("0123456789ABCDEF"),
		O:      bytes.Repeat([]byte{0x42}, 32),
	}
	key := computeEncryptionKeyR234([]byte("pw1"), e)
	e.U = computeUR234(key, e)

	_, ok := authenticateR234("wrong password", e)
	assert.False(t, ok)
}

func TestAuthenticateR234_EmptyPasswordTriedFirstForUnprotectedDocs(t *testing.T) {
	e := encryptInfo{
		R:      2,
		Length: 40,
		P:      -4,
		ID0:    []byte("anotheridbytes12"),
		O:      bytes.Repeat([]byte{0x11}, 32),
	}
	key := computeEncryptionKeyR234(nil, e)
	e.U = computeUR234(key, e)

	gotKey, ok := authenticateR234("", e)
	require.True(t, ok)
	assert.Equal(t, key, gotKey)
}

func TestAuthenticateR56_RoundTripsWithUserPasswordRevision5(t *testing.T) {
	pw := []byte("letmein")
	validationSalt := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	keySalt := []byte{9, 10, 11, 12, 13, 14, 15, 16}

	h := sha256Sum(append(append([]byte{}, pw...), validationSalt...))
	stored := h
	ik := sha256Sum(append(append([]byte{}, pw...), keySalt...))

	fileKey := make([]byte, 32)
	for i := range fileKey {
		fileKey[i] = byte(i)
	}
	ue, err := aesCBCNoPadEncrypt(ik, make([]byte, 16), fileKey)
	require.NoError(t, err)

	e := encryptInfo{
		R:  5,
		U:  append(append([]byte{}, stored...), append(validationSalt, keySalt...)...),
		UE: ue,
	}

	gotKey, ok := authenticateR56(string(pw), e)
	require.True(t, ok)
	assert.Equal(t, fileKey, gotKey)
}

func TestObjectKey_VariesByObjectNumber(t *testing.T) {
	fileKey := bytes.Repeat([]byte{0xAB}, 5)
	k1 := objectKey(fileKey, objptr{id: 1, gen: 0}, false, 2)
	k2 := objectKey(fileKey, objptr{id: 2, gen: 0}, false, 2)
	assert.NotEqual(t, k1, k2)
	assert.Len(t, k1, 10) // len(fileKey)+5, capped at 16
}

func TestObjectKey_V5UsesFileKeyDirectly(t *testing.T) {
	fileKey := bytes.Repeat([]byte{0x01}, 32)
	got := objectKey(fileKey, objptr{id: 7, gen: 0}, false, 5)
	assert.Equal(t, fileKey, got)
}

func TestDecryptBytes_RC4IsSelfInverse(t *testing.T) {
	fileKey := []byte("0123456789")
	ptr := objptr{id: 5, gen: 0}
	plain := []byte("hello, this is plaintext")

	enc, err := decryptBytes(fileKey, false, 2, ptr, plain)
	require.NoError(t, err)
	dec, err := decryptBytes(fileKey, false, 2, ptr, enc)
	require.NoError(t, err)
	assert.Equal(t, plain, dec)
}

func TestDecryptBytes_AESRoundTripStripsPKCS7Padding(t *testing.T) {
	fileKey := []byte("0123456789")
	ptr := objptr{id: 9, gen: 0}
	key := objectKey(fileKey, ptr, true, 2)

	plain := "hello"
	pad := 16 - len(plain)
	padded := append([]byte(plain), bytes.Repeat([]byte{byte(pad)}, pad)...)

	iv := bytes.Repeat([]byte{0x07}, 16)
	ct, err := aesCBCNoPadEncrypt(key, iv, padded)
	require.NoError(t, err)

	data := append(append([]byte{}, iv...), ct...)
	out, err := decryptBytes(fileKey, true, 2, ptr, data)
	require.NoError(t, err)
	assert.Equal(t, plain, string(out))
}

func TestUnpadPKCS7_StripsTrailingPadBytes(t *testing.T) {
	data := append([]byte("abcd"), 4, 4, 4, 4)
	assert.Equal(t, []byte("abcd"), unpadPKCS7(data))
}

func TestUnpadPKCS7_LeavesDataUnchangedWhenPadLooksInvalid(t *testing.T) {
	data := []byte("abcd")
	assert.Equal(t, data, unpadPKCS7(data))
}
