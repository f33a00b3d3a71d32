package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddr(t *testing.T) {
	cases := map[string]string{
		"":             ":8000",
		"  ":           ":8000",
		"8080":         ":8080",
		":8080":        ":8080",
		"0.0.0.0:9000": "0.0.0.0:9000",
		"[::1]:9000":   "[::1]:9000",
	}
	for in, want := range cases {
		assert.Equal(t, want, Addr(in), "Addr(%q)", in)
	}
}

func TestShutdown_BeforeRun(t *testing.T) {
	var s Server
	require.NoError(t, s.Shutdown(context.Background()))
}
