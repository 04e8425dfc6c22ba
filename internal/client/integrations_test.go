package client_test

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/base44-client/pkg/base44"
)

func TestIntegrationInvokeCore(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, nethttp.MethodPost, r.Method)
		assert.Equal(t, "/api/apps/app1/integration-endpoints/Core/SendEmail", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"to":"a@b.c","subject":"Hi"}`, string(body))

		_, _ = w.Write([]byte(`{"sent":true}`))
	}))
	defer server.Close()

	c := newTestClient(t, server, nil)

	result, err := c.Integrations().Package("Core").Invoke(context.Background(), "SendEmail",
		base44.Payload{"to": "a@b.c", "subject": "Hi"})
	require.NoError(t, err)

	var decoded map[string]bool
	require.NoError(t, json.Unmarshal(result, &decoded))
	assert.True(t, decoded["sent"])
}

func TestIntegrationInvokeInstallablePackage(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t,
			"/api/apps/app1/integration-endpoints/installable/stripe/integration-endpoints/CreateCharge",
			r.URL.Path)

		_, _ = w.Write([]byte(`{"id":"ch_1"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server, nil)

	_, err := c.Integrations().Package("stripe").Invoke(context.Background(), "CreateCharge",
		base44.Payload{"amount": 100})
	require.NoError(t, err)
}

func TestIntegrationEndpointCallable(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "/api/apps/app1/integration-endpoints/Core/InvokeLLM", r.URL.Path)
		_, _ = w.Write([]byte(`{"answer":"42"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server, nil)

	invokeLLM := c.Integrations().Package("Core").Endpoint("InvokeLLM")

	result, err := invokeLLM(context.Background(), base44.Payload{"prompt": "meaning of life"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":"42"}`, string(result))
}

func TestIntegrationInvokeNilPayload(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{}`, string(body))

		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server, nil)

	_, err := c.Integrations().Package("Core").Invoke(context.Background(), "Ping", nil)
	require.NoError(t, err)
}

func TestIntegrationInvokeRejectsNonObjectPayload(t *testing.T) {
	// No server: the rejection happens before any request is made.
	c := newTestClient(t, nil, nil)

	_, err := c.Integrations().Package("Core").Invoke(context.Background(), "SendEmail", "just a string")
	require.Error(t, err)
	assert.True(t, base44.IsValidation(err))
	assert.ErrorIs(t, err, base44.ErrNamedParametersRequired)
	assert.Contains(t, err.Error(), "named parameters")
	assert.Contains(t, err.Error(), "string")
}

func TestIntegrationInvokeRequiresNames(t *testing.T) {
	c := newTestClient(t, nil, nil)

	_, err := c.Integrations().Package("").Invoke(context.Background(), "SendEmail", nil)
	require.ErrorIs(t, err, base44.ErrPackageNameRequired)

	_, err = c.Integrations().Package("Core").Invoke(context.Background(), "", nil)
	require.ErrorIs(t, err, base44.ErrEndpointNameRequired)
}

func TestIntegrationInvokeWithFileUsesMultipart(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "/api/apps/app1/integration-endpoints/Core/UploadFile", r.URL.Path)

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		require.Equal(t, "multipart/form-data", mediaType)

		reader := multipart.NewReader(r.Body, params["boundary"])
		fields := map[string]string{}

		var fileName, fileContent string

		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}

			require.NoError(t, err)

			data, _ := io.ReadAll(part)
			if part.FileName() != "" {
				fileName = part.FileName()
				fileContent = string(data)
			} else {
				fields[part.FormName()] = string(data)
			}
		}

		assert.Equal(t, "photo.png", fileName)
		assert.Equal(t, "binary-bytes", fileContent)

		// Object-valued fields are JSON-stringified alongside the file.
		assert.JSONEq(t, `{"width":100}`, fields["options"])
		assert.Equal(t, "photos", fields["folder"])

		_, _ = w.Write([]byte(`{"file_url":"https://cdn.example.com/photo.png"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server, nil)

	result, err := c.Integrations().Package("Core").Invoke(context.Background(), "UploadFile",
		base44.Payload{
			"file":    base44.NewFileUpload("photo.png", strings.NewReader("binary-bytes")),
			"folder":  "photos",
			"options": map[string]interface{}{"width": 100},
		})
	require.NoError(t, err)
	assert.Contains(t, string(result), "file_url")
}

func TestIntegrationEndpointEscaping(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "/api/apps/app1/integration-endpoints/Core/Send%20Email", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server, nil)

	_, err := c.Integrations().Package("Core").Invoke(context.Background(), "Send Email", nil)
	require.NoError(t, err)
}

func TestIntegrationServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"integration not enabled"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server, nil)

	_, err := c.Integrations().Package("Core").Invoke(context.Background(), "SendEmail", nil)
	require.Error(t, err)
	assert.True(t, base44.IsAuthorization(err))
	assert.Contains(t, err.Error(), "invoking Core.SendEmail")
}
