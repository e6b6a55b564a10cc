package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/oauth2"

	"github.com/bear-san/openshift-config-server/internal/config"
)

// ConfigVariable is the global the front-end reads its configuration from.
const ConfigVariable = "window.OPENSHIFT_CONFIG"

// FullUserScope grants the front-end full access on behalf of the user.
const FullUserScope = "user:full"

// MockService is one entry of the mock-mode service list.
type MockService struct {
	Name        string
	Description string
	link        func(config.ServiceLinks) string
}

var mockServices = []MockService{
	{
		Name:        "Red Hat OpenShift",
		Description: "An enterprise-ready container platform. Everything you build will be hosted on the same OpenShift cluster.",
		link:        func(l config.ServiceLinks) string { return l.OpenShift },
	},
	{
		Name:        "Red Hat 3scale API Management Platform",
		Description: "A portal that allows you to define desired authenthication methods, set rate limits, get analytics on the user of your APIs, and create a developer portal for API consumers.",
		link:        func(l config.ServiceLinks) string { return l.Fuse },
	},
	{
		Name:        "Red Hat AMQ",
		Description: "Managed self-service messaing on Kubernetes, AMQ Online (Tech Preview) and Red Hat AMQ Broker are available in this environment.",
		link:        func(l config.ServiceLinks) string { return l.Enmasse },
	},
	{
		Name:        "Red Hat Fuse",
		Description: "An integration platform-as-a-serviceBoth low-code environment and developer-focused features are available in this environment.",
		link:        func(l config.ServiceLinks) string { return l.Fuse },
	},
	{
		Name:        "Red Hat OpenShift Application Runtimes",
		Description: "A collection of cloud-native runtimes for developing Java &trade; or JavaScript applications on OpenShift.",
		link:        func(l config.ServiceLinks) string { return l.Launcher },
	},
	{
		Name:        "Eclipse Che",
		Description: "A developer workspace server and cloud IDE.",
		link:        func(l config.ServiceLinks) string { return l.Che },
	},
}

type mockEntry struct {
	Name        string
	Description string
	Link        string
}

var mockTemplate = template.Must(template.New("mock").Funcs(sprig.TxtFuncMap()).Parse(
	ConfigVariable + ` = {
  mockData: {
    listProvisionedServices: [
{{- range $i, $s := . }}{{ if $i }},{{ end }}
      {
        appName: {{ squote $s.Name }},
        appDescription: {{ squote $s.Description }},
        appLink: {{ squote $s.Link }}
      }
{{- end }}
    ]
  }
};`))

type liveData struct {
	OAuth     *oauth2.Config
	MasterURI string
}

var liveTemplate = template.Must(template.New("live").Funcs(sprig.TxtFuncMap()).Parse(
	ConfigVariable + ` = {
  clientId: {{ squote .OAuth.ClientID }},
  accessTokenUri: {{ squote .OAuth.Endpoint.TokenURL }},
  authorizationUri: {{ squote .OAuth.Endpoint.AuthURL }},
  redirectUri: {{ squote .OAuth.RedirectURL }},
  scopes: [{{ range $i, $s := .OAuth.Scopes }}{{ if $i }}, {{ end }}{{ squote $s }}{{ end }}],
  masterUri: {{ squote .MasterURI }}
};`))

// OAuthConfig describes the OAuth client the front-end runs against the issuer.
func OAuthConfig(issuerHost, clientID, redirectHost string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Endpoint: oauth2.Endpoint{
			AuthURL:  fmt.Sprintf("https://%s/oauth/authorize", issuerHost),
			TokenURL: fmt.Sprintf("https://%s/oauth/token", issuerHost),
		},
		RedirectURL: redirectHost + "/oauth/callback",
		Scopes:      []string{FullUserScope},
	}
}

// MasterURI returns the cluster API URL for the issuer host.
func MasterURI(issuerHost string) string {
	return "https://" + issuerHost
}

// RedirectHost derives the public origin of the request. Forwarded headers
// are used only when both are present.
func RedirectHost(r *http.Request) string {
	proto := r.Header.Get("X-Forwarded-Proto")
	host := r.Header.Get("X-Forwarded-Host")

	if proto != "" && host != "" {
		return proto + "://" + host
	}

	return "https://" + r.Host
}

// RenderMockConfig renders the mock-mode script for the given service links.
func RenderMockConfig(links config.ServiceLinks) (string, error) {
	entries := make([]mockEntry, 0, len(mockServices))
	for _, s := range mockServices {
		entries = append(entries, mockEntry{
			Name:        s.Name,
			Description: s.Description,
			Link:        s.link(links),
		})
	}

	var buf bytes.Buffer
	if err := mockTemplate.Execute(&buf, entries); err != nil {
		return "", fmt.Errorf("failed to render mock config: %w", err)
	}

	return buf.String(), nil
}

// RenderLiveConfig renders the live-mode script for the given OAuth client.
func RenderLiveConfig(oauthConfig *oauth2.Config, masterURI string) (string, error) {
	var buf bytes.Buffer
	if err := liveTemplate.Execute(&buf, liveData{OAuth: oauthConfig, MasterURI: masterURI}); err != nil {
		return "", fmt.Errorf("failed to render live config: %w", err)
	}

	return buf.String(), nil
}
