package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/singnet/snet-marketplace-service-sub002/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIpfsClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ipfs/QmOrgHash", r.URL.Path)
		w.Write([]byte(`{"org_name":"Example Org","org_id":"snet"}`))
	}))
	defer server.Close()

	client := NewIpfsClient(config.IpfsConfig{GatewayUrl: server.URL, TimeoutSec: 5})

	var doc OrgMetadata
	require.NoError(t, client.GetJSON(context.Background(), "QmOrgHash", &doc))
	assert.Equal(t, "Example Org", doc.OrgName)
	assert.Equal(t, "snet", doc.OrgId)
}

func TestIpfsClient_NonOKStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewIpfsClient(config.IpfsConfig{GatewayUrl: server.URL, TimeoutSec: 5})

	_, err := client.GetRaw(context.Background(), "QmMissing")
	assert.Error(t, err)
}

func TestIpfsClient_BadJSONIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewIpfsClient(config.IpfsConfig{GatewayUrl: server.URL, TimeoutSec: 5})

	var doc OrgMetadata
	assert.Error(t, client.GetJSON(context.Background(), "QmOrgHash", &doc))
}
