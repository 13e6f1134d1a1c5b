package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/jetstack/dsc-keys/internal/dsc"
	"github.com/jetstack/dsc-keys/internal/hcert"
)

var (
	verifyKeySource = keySourceOptions{}
	verifyOutput    = outputOptions{allowed: []string{outputText, outputJSON, outputYAML}}
)

var verifyCmd = &cobra.Command{
	Use:   "verify QR|-",
	Short: "Verify the signature of a health certificate QR code",
	Long: `Decode an "HC1:" health certificate QR code payload and verify its
signature against the trusted verification keys. Use "-" to read the payload
from stdin. Exits with a non-zero status when the signature does not verify.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateAll(&verifyKeySource, &verifyOutput); err != nil {
			return err
		}

		qr := args[0]
		if qr == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read QR payload from stdin: %w", err)
			}
			qr = string(data)
		}

		return runVerify(cmd.Context(), cmd.OutOrStdout(), newKeyFetcher(verifyKeySource.URL), strings.TrimSpace(qr), verifyOutput.Output, time.Now())
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyKeySource.AddFlags(verifyCmd.Flags())
	verifyOutput.AddFlags(verifyCmd.Flags())
}

// verifyResult is the JSON representation of a verified certificate.
type verifyResult struct {
	Valid     bool      `json:"valid"`
	Reason    string    `json:"reason,omitempty"`
	KeyID     string    `json:"kid"`
	Issuer    string    `json:"issuer"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Expired   bool      `json:"expired"`
	DGC       hcert.DGC `json:"dgc"`
}

var errNotValidated = errors.New("health certificate signature was not validated")

func runVerify(ctx context.Context, w io.Writer, fetcher dsc.KeyFetcher, qr string, output string, now time.Time) error {
	log := klog.FromContext(ctx).WithName("verify")

	cert, err := hcert.Decode(qr)
	if err != nil {
		return fmt.Errorf("could not read QR code: %w", err)
	}

	keys, err := fetcher.FetchVerificationKeys(ctx)
	if err != nil {
		return err
	}

	result := verifyResult{
		Valid:     true,
		KeyID:     cert.KeyID.String(),
		Issuer:    cert.Issuer,
		IssuedAt:  cert.IssuedAt,
		ExpiresAt: cert.ExpiresAt,
		Expired:   cert.Expired(now),
		DGC:       cert.DGC,
	}

	if verifyErr := cert.Verify(keys); verifyErr != nil {
		log.Info("signature was not validated", "kid", cert.KeyID.String(), "reason", verifyErr)
		result.Valid = false
		result.Reason = verifyErr.Error()
	}

	switch output {
	case outputJSON:
		if err := writeJSON(w, result); err != nil {
			return err
		}
	case outputYAML:
		if err := writeYAML(w, result); err != nil {
			return err
		}
	default:
		printCertificate(w, result)
	}

	if !result.Valid {
		return errNotValidated
	}
	return nil
}

func printCertificate(w io.Writer, r verifyResult) {
	section := color.New(color.Bold)
	field := func(name string, value any) {
		fmt.Fprintf(w, "  %-21s %v\n", name, value)
	}

	section.Fprintln(w, "Health Certificate")
	if r.Valid {
		field("Signature", color.GreenString("Validated"))
	} else {
		field("Signature", color.RedString("Not Validated"))
	}
	field("Key ID", r.KeyID)
	field("Issued by", hcert.CountryName(r.Issuer))
	field("Issue Date", formatDate(r.IssuedAt))
	expiry := color.GreenString("OK")
	if r.Expired {
		expiry = color.RedString("Expired")
	}
	field("Expiration", formatDate(r.ExpiresAt)+" "+expiry)
	field("Certificate Version", r.DGC.Version)

	section.Fprintln(w, "Personal Information")
	field("Name", r.DGC.Name.GivenName+" "+r.DGC.Name.FamilyName)
	field("Date of Birth", dateOnly(r.DGC.DateOfBirth))

	for _, v := range r.DGC.Vaccinations {
		section.Fprintln(w, "Vaccination Record")
		field("Disease", hcert.DiseaseName(v.Disease))
		field("Vaccine Type", hcert.VaccineTypeName(v.VaccineType))
		field("Product", hcert.VaccineProductName(v.Product))
		field("Manufacturer", hcert.VaccineManufacturerName(v.Manufacturer))
		field("Dose", fmt.Sprintf("%d of %d", v.DoseNumber, v.TotalDoses))
		field("Date Given", dateOnly(v.Date))
		field("Country", hcert.CountryName(v.Country))
		field("Issuer", v.Issuer)
		field("Certificate ID", v.CertificateID)
	}

	for _, t := range r.DGC.Tests {
		section.Fprintln(w, "Test Record")
		field("Disease", hcert.DiseaseName(t.Disease))
		field("Test Type", hcert.TestTypeName(t.TestType))
		field("Test Name", t.Name)
		field("Test Manufacturer", hcert.TestManufacturerName(t.Manufacturer))
		field("Test Date", testDate(t.SampleCollected))
		field("Test Result", hcert.TestResultName(t.Result))
		field("Test Centre", t.Centre)
		field("Country", hcert.CountryName(t.Country))
		field("Issuer", t.Issuer)
		field("Certificate ID", t.CertificateID)
	}

	for _, rec := range r.DGC.Recoveries {
		section.Fprintln(w, "Recovery Record")
		field("Disease", hcert.DiseaseName(rec.Disease))
		field("First Positive Test", dateOnly(rec.FirstPositiveTest))
		field("Country", hcert.CountryName(rec.Country))
		field("Issuer", rec.Issuer)
		field("Valid From", dateOnly(rec.ValidFrom))
		field("Valid Until", dateOnly(rec.ValidUntil))
		field("Certificate ID", rec.CertificateID)
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}

// dateOnly drops the time part of an ISO 8601 timestamp.
func dateOnly(s string) string {
	date, _, _ := strings.Cut(s, "T")
	return date
}

// testDate renders a sample collection timestamp such as
// 2021-05-01T10:30:00Z as 2021-05-01 10:30:00+00.
func testDate(s string) string {
	return strings.Replace(strings.Replace(s, "T", " ", 1), "Z", "+00", 1)
}
