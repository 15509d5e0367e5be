package issuer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"url-shortener-service/models"
)

func TestISGdClient_Issue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("logstats"))
		assert.Equal(t, "http://example.com", r.URL.Query().Get("url"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"shorturl":"https://is.gd/abc123"}`))
	}))
	defer srv.Close()

	client := NewISGdClient(srv.URL, time.Second)
	shortURL, err := client.Issue(context.Background(), "http://example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://is.gd/abc123", shortURL)
}

func TestISGdClient_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errorcode":1,"errormessage":"Please enter a valid URL."}`))
	}))
	defer srv.Close()

	client := NewISGdClient(srv.URL, time.Second)
	_, err := client.Issue(context.Background(), "nonsense")
	require.Error(t, err)

	var issuerErr *models.IssuerError
	require.ErrorAs(t, err, &issuerErr)
	assert.Equal(t, 1, issuerErr.Code)
	assert.Equal(t, "Please enter a valid URL.", issuerErr.Message)
}

func TestISGdClient_ErrorWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errorcode":3}`))
	}))
	defer srv.Close()

	client := NewISGdClient(srv.URL, time.Second)
	_, err := client.Issue(context.Background(), "http://example.com")

	var issuerErr *models.IssuerError
	require.ErrorAs(t, err, &issuerErr)
	assert.Equal(t, "Error from issuer service", issuerErr.Message)
}

func TestISGdClient_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewISGdClient(srv.URL, time.Second)
	_, err := client.Issue(context.Background(), "http://example.com")

	var issuerErr *models.IssuerError
	require.ErrorAs(t, err, &issuerErr)
	assert.Zero(t, issuerErr.Code)
}

func TestISGdClient_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewISGdClient(srv.URL, time.Second)
	_, err := client.Issue(context.Background(), "http://example.com")

	var issuerErr *models.IssuerError
	require.ErrorAs(t, err, &issuerErr)
}

func TestISGdClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"shorturl":"https://is.gd/late"}`))
	}))
	defer srv.Close()

	client := NewISGdClient(srv.URL, 20*time.Millisecond)
	_, err := client.Issue(context.Background(), "http://example.com")

	// A slow issuer surfaces as IssuerError, never a hang.
	var issuerErr *models.IssuerError
	require.ErrorAs(t, err, &issuerErr)
}

func TestISGdClient_MissingShortURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewISGdClient(srv.URL, time.Second)
	_, err := client.Issue(context.Background(), "http://example.com")

	var issuerErr *models.IssuerError
	require.ErrorAs(t, err, &issuerErr)
}
