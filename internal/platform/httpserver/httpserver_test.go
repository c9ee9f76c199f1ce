package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewAppliesTimeouts(t *testing.T) {
	srv := New(":9090", http.NewServeMux(), 3*time.Second)
	require.Equal(t, ":9090", srv.Addr)
	require.Equal(t, 3*time.Second, srv.ReadHeaderTimeout)
	require.Equal(t, idleTimeout, srv.IdleTimeout)
	require.NotNil(t, srv.Handler)
}
