package cmd

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/jetstack/dsc-keys/internal/dsc"
)

var (
	fetchKeySource = keySourceOptions{}
	fetchOutput    = outputOptions{allowed: []string{outputText, outputJSON, outputYAML, outputJWKS}}
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and print the trusted verification keys",
	Long: `Fetch the public key directory, decode every signing certificate and
print the verification keys that could be constructed from them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateAll(&fetchKeySource, &fetchOutput); err != nil {
			return err
		}
		return runFetch(cmd.Context(), cmd.OutOrStdout(), newKeyFetcher(fetchKeySource.URL), fetchOutput.Output)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchKeySource.AddFlags(fetchCmd.Flags())
	fetchOutput.AddFlags(fetchCmd.Flags())
}

// keyOutput is the JSON representation of a verification key.
type keyOutput struct {
	KeyID     string `json:"kid"`
	Algorithm string `json:"alg"`
	KeyType   string `json:"kty"`
	// PublicKey is the base64 DER of the PKIX public key.
	PublicKey string `json:"publicKey"`
}

func runFetch(ctx context.Context, w io.Writer, fetcher dsc.KeyFetcher, output string) error {
	keys, err := fetcher.FetchVerificationKeys(ctx)
	if err != nil {
		return err
	}

	switch output {
	case outputJSON, outputYAML:
		out := make([]keyOutput, 0, len(keys))
		for _, key := range keys {
			der, err := x509.MarshalPKIXPublicKey(key.Key)
			if err != nil {
				return fmt.Errorf("failed to marshal key %s: %w", key.KeyID, err)
			}
			out = append(out, keyOutput{
				KeyID:     key.KeyID.String(),
				Algorithm: string(key.Algorithm),
				KeyType:   keyType(key),
				PublicKey: base64.StdEncoding.EncodeToString(der),
			})
		}
		if output == outputYAML {
			return writeYAML(w, out)
		}
		return writeJSON(w, out)
	case outputJWKS:
		set, err := dsc.ToJWKSet(keys)
		if err != nil {
			return err
		}
		return writeJSON(w, set)
	default:
		bold := color.New(color.Bold)
		bold.Fprintf(w, "%-14s %-6s %s\n", "KID", "ALG", "KEY")
		for _, key := range keys {
			fmt.Fprintf(w, "%-14s %-6s %s\n", key.KeyID, key.Algorithm, keyType(key))
		}
		color.New(color.FgGreen).Fprintf(w, "%d verification keys\n", len(keys))
		return nil
	}
}

func keyType(key dsc.VerificationKey) string {
	switch k := key.Key.(type) {
	case *ecdsa.PublicKey:
		return "EC " + k.Curve.Params().Name
	case *rsa.PublicKey:
		return fmt.Sprintf("RSA %d", k.N.BitLen())
	default:
		return fmt.Sprintf("%T", k)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML renders v through its JSON field names.
func writeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}
