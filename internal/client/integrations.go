package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/base44-client/internal/http"
	"github.com/fivetwenty-io/base44-client/pkg/base44"
)

// IntegrationsClient implements base44.IntegrationsClient. Like entities,
// packages and endpoints need no pre-declaration; bad names are the
// server's 404 to report.
type IntegrationsClient struct {
	httpClient *http.Client
	appID      string
}

func newIntegrationsClient(httpClient *http.Client, appID string) *IntegrationsClient {
	return &IntegrationsClient{httpClient: httpClient, appID: appID}
}

// Package implements base44.IntegrationsClient.Package.
func (i *IntegrationsClient) Package(name string) base44.IntegrationPackage {
	return &integrationPackage{httpClient: i.httpClient, appID: i.appID, name: name}
}

type integrationPackage struct {
	httpClient *http.Client
	appID      string
	name       string
}

// Endpoint returns a callable bound to one endpoint of the package.
func (p *integrationPackage) Endpoint(name string) base44.IntegrationEndpoint {
	return func(ctx context.Context, payload interface{}) (json.RawMessage, error) {
		return p.Invoke(ctx, name, payload)
	}
}

// endpointPath routes the built-in Core package separately from installable
// packages.
func (p *integrationPackage) endpointPath(endpoint string) string {
	if p.name == "Core" {
		return appPath(p.appID, "/integration-endpoints/Core/"+url.PathEscape(endpoint))
	}

	return appPath(p.appID, fmt.Sprintf("/integration-endpoints/installable/%s/integration-endpoints/%s",
		url.PathEscape(p.name), url.PathEscape(endpoint)))
}

// Invoke implements base44.IntegrationPackage.Invoke. The payload must be a
// named-parameter mapping; payloads carrying FileUpload values are re-encoded
// as multipart form data with object-valued fields JSON-stringified.
func (p *integrationPackage) Invoke(ctx context.Context, endpoint string, payload interface{}) (json.RawMessage, error) {
	if p.name == "" {
		validationErr := base44.NewValidationError("integration package name is required")
		validationErr.Err = base44.ErrPackageNameRequired

		return nil, validationErr
	}

	if endpoint == "" {
		validationErr := base44.NewValidationError("integration endpoint name is required")
		validationErr.Err = base44.ErrEndpointNameRequired

		return nil, validationErr
	}

	fields, err := namedParameters(endpoint, payload)
	if err != nil {
		return nil, err
	}

	var resp *http.Response

	if hasFileValue(fields) {
		resp, err = p.httpClient.PostMultipart(ctx, p.endpointPath(endpoint), fields)
	} else {
		resp, err = p.httpClient.Post(ctx, p.endpointPath(endpoint), fields)
	}

	if err != nil {
		return nil, fmt.Errorf("invoking %s.%s: %w", p.name, endpoint, err)
	}

	return json.RawMessage(resp.Body), nil
}

// namedParameters coerces the payload into a field mapping, rejecting
// anything else (notably raw strings) before a request is made.
func namedParameters(endpoint string, payload interface{}) (map[string]interface{}, error) {
	switch fields := payload.(type) {
	case nil:
		return map[string]interface{}{}, nil
	case base44.Payload:
		return fields, nil
	case map[string]interface{}:
		return fields, nil
	default:
		validationErr := base44.NewValidationError(
			fmt.Sprintf("integration %s must receive an object with named parameters, received: %T", endpoint, payload))
		validationErr.Err = base44.ErrNamedParametersRequired

		return nil, validationErr
	}
}

func hasFileValue(fields map[string]interface{}) bool {
	for _, value := range fields {
		if _, ok := value.(base44.FileUpload); ok {
			return true
		}
	}

	return false
}
