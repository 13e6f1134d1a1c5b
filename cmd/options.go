package cmd

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"

	"github.com/jetstack/dsc-keys/internal/dsc"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputJWKS = "jwks"
	outputYAML = "yaml"
)

// keySourceOptions select where verification keys are fetched from.
type keySourceOptions struct {
	URL string
}

func (o *keySourceOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.URL, "url", dsc.DefaultEndpoint, "URL of the public key directory.")
}

func (o *keySourceOptions) Validate() error {
	var result *multierror.Error

	u, err := url.Parse(o.URL)
	switch {
	case err != nil:
		result = multierror.Append(result, fmt.Errorf("--url is invalid: %w", err))
	case u.Scheme != "https":
		result = multierror.Append(result, fmt.Errorf("--url must be an https URL, got %q", o.URL))
	case u.Host == "":
		result = multierror.Append(result, fmt.Errorf("--url has no host: %q", o.URL))
	}

	return result.ErrorOrNil()
}

// outputOptions select how results are printed.
type outputOptions struct {
	Output string

	allowed []string
}

func (o *outputOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Output, "output", "o", outputText, fmt.Sprintf("Output format. One of: %s.", strings.Join(o.allowed, ", ")))
}

func (o *outputOptions) Validate() error {
	if !slices.Contains(o.allowed, o.Output) {
		return fmt.Errorf("--output must be one of %s, got %q", strings.Join(o.allowed, ", "), o.Output)
	}
	return nil
}

// validateAll reports every invalid option at once.
func validateAll(validators ...interface{ Validate() error }) error {
	var result *multierror.Error
	for _, v := range validators {
		result = multierror.Append(result, v.Validate())
	}
	return result.ErrorOrNil()
}

// newKeyFetcher is replaced in tests.
var newKeyFetcher = func(endpoint string) dsc.KeyFetcher {
	return dsc.NewClient(nil, endpoint)
}
