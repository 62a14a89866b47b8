package grpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/metadata"
)

func TestMetadataTokenExtractor(t *testing.T) {
	const token = "eyJhbGciOiJSUzI1NiJ9.eyJzdWIiOiIxMjMifQ.c2ln"

	testCases := []struct {
		name      string
		md        metadata.MD // nil leaves the context without metadata
		wantToken string
		wantErr   error
	}{
		{
			name:      "it extracts a Bearer token",
			md:        metadata.Pairs("authorization", "Bearer "+token),
			wantToken: token,
		},
		{
			name: "it treats missing metadata as no token",
		},
		{
			name: "it treats absent authorization metadata as no token",
			md:   metadata.Pairs("content-type", "application/grpc"),
		},
		{
			name:      "it accepts any capitalization of the scheme",
			md:        metadata.Pairs("authorization", "BEARER "+token),
			wantToken: token,
		},
		{
			name:      "it tolerates extra whitespace after the scheme",
			md:        metadata.Pairs("authorization", "Bearer   "+token),
			wantToken: token,
		},
		{
			name:    "it rejects duplicated authorization metadata",
			md:      metadata.Pairs("authorization", "Bearer one", "authorization", "Bearer two"),
			wantErr: ErrMultipleAuthHeaders,
		},
		{
			name:    "it rejects a value without a scheme",
			md:      metadata.Pairs("authorization", token),
			wantErr: ErrInvalidAuthFormat,
		},
		{
			name:    "it rejects a bare scheme",
			md:      metadata.Pairs("authorization", "Bearer"),
			wantErr: ErrInvalidAuthFormat,
		},
		{
			name:    "it rejects a value with too many parts",
			md:      metadata.Pairs("authorization", "Bearer token extra"),
			wantErr: ErrInvalidAuthFormat,
		},
		{
			name:    "it rejects a non-Bearer scheme",
			md:      metadata.Pairs("authorization", "Basic dXNlcjpwYXNz"),
			wantErr: ErrUnsupportedScheme,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := context.Background()
			if testCase.md != nil {
				ctx = metadata.NewIncomingContext(ctx, testCase.md)
			}

			got, err := MetadataTokenExtractor(ctx)

			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, testCase.wantToken, got)
		})
	}
}
