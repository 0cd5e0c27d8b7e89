// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffPDF_RejectsNonPDFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just a plain text file, not a PDF"), 0o644))

	err := sniffPDF(path)
	assert.True(t, errors.Is(err, ErrNotPDF))
}

func TestSniffPDF_AcceptsFileWithPDFMagicBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	content := "%PDF-1.7\n%\xE2\xE3\xCF\xD3\n1 0 obj\n<< >>\nendobj\n%%EOF\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	assert.NoError(t, sniffPDF(path))
}

func TestSniffPDF_MissingFileReturnsError(t *testing.T) {
	err := sniffPDF(filepath.Join(t.TempDir(), "does-not-exist.pdf"))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotPDF))
}
