// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package services

import (
	"encoding/base64"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetclinic/vet-session/internal/domain/entities"
)

func TestDecodeSegment(t *testing.T) {
	tests := []struct {
		name    string
		segment string
		want    string
	}{
		{name: "remainder_two_adds_two_pads", segment: "YQ", want: "a"},
		{name: "remainder_three_adds_one_pad", segment: "YWI", want: "ab"},
		{name: "remainder_zero_unchanged", segment: "YWJj", want: "abc"},
		{name: "already_padded", segment: "YQ==", want: "a"},
		{name: "url_safe_alphabet", segment: "-_8", want: string([]byte{0xfb, 0xff})},
		{name: "json_payload", segment: "eyJzdWIiOiIxMjMifQ", want: `{"sub":"123"}`},
		{name: "empty", segment: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSegment(tt.segment)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestDecodeSegment_Errors(t *testing.T) {
	tests := []struct {
		name    string
		segment string
	}{
		{name: "remainder_one", segment: "A"},
		{name: "remainder_one_long", segment: "YWJjZ"},
		{name: "invalid_characters", segment: "!!!!"},
		{name: "standard_alphabet_rejected", segment: "+/8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSegment(tt.segment)
			require.Error(t, err)
			assert.Nil(t, got)

			var decodeErr *entities.DecodeError
			require.True(t, errors.As(err, &decodeErr))

			var corrupt base64.CorruptInputError
			assert.True(t, errors.As(err, &corrupt))
		})
	}
}

func TestDecodeSegment_PaddingLaw(t *testing.T) {
	for n := 0; n < 32; n++ {
		segment := make([]byte, n)
		for i := range segment {
			segment[i] = 'A'
		}
		_, err := DecodeSegment(string(segment))
		if n%4 == 1 {
			assert.Error(t, err, "length %d", n)
		} else {
			assert.NoError(t, err, "length %d", n)
		}
	}
}

func TestDecodeSegment_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 200; n++ {
		data := make([]byte, n)
		rng.Read(data)

		decoded, err := DecodeSegment(base64.RawURLEncoding.EncodeToString(data))
		require.NoError(t, err)
		assert.Equal(t, data, append([]byte{}, decoded...))
	}
}
