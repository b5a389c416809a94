package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

// verifyOutput is the --json shape of a verification result.
type verifyOutput struct {
	IsValid         bool   `json:"is_valid"`
	Reason          string `json:"reason,omitempty"`
	Method          string `json:"method"`
	EffectiveStatus string `json:"effective_status,omitempty"`
	CredentialID    string `json:"credential_id,omitempty"`
	Title           string `json:"title,omitempty"`
	RecipientName   string `json:"recipient_name,omitempty"`
	VerifiedAt      string `json:"verified_at"`
}

func newVerifyCommand(opts *options) *cobra.Command {
	var (
		method string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "verify <code|url|hash>",
		Short: "Verify a credential",
		Long:  "Verify a credential by code, verification URL, or hash. Exits non-zero unless the credential verifies.",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			input, err := model.NewVerificationInput(method, args[0])
			if err != nil {
				return err
			}

			res, err := s.verifier.Verify(cmd.Context(), input)
			if err != nil {
				return err
			}

			if asJSON {
				if err := writeVerifyJSON(cmd, res); err != nil {
					return err
				}
			} else {
				writeVerifyText(cmd, res)
			}

			if !res.IsValid {
				return fmt.Errorf("%w: %s", ErrNotVerified, res.Reason)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&method, "method", string(model.VerificationMethodCode), "lookup method: code, url, or hash")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func writeVerifyJSON(cmd *cobra.Command, res model.VerificationResult) error {
	out := verifyOutput{
		IsValid:         res.IsValid,
		Reason:          string(res.Reason),
		Method:          string(res.Method),
		EffectiveStatus: string(res.EffectiveStatus),
		VerifiedAt:      res.VerifiedAt.UTC().Format(time.RFC3339),
	}
	if c := res.Credential; c != nil {
		out.CredentialID = c.ID
		out.Title = c.Title
		out.RecipientName = c.RecipientName
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeVerifyText(cmd *cobra.Command, res model.VerificationResult) {
	out := cmd.OutOrStdout()
	switch {
	case res.IsValid && res.EffectiveStatus == model.CredentialStatusExpired:
		fmt.Fprintln(out, "VALID (expired)")
	case res.IsValid:
		fmt.Fprintln(out, "VALID")
	default:
		fmt.Fprintf(out, "NOT VALID: %s\n", res.Reason)
	}

	if c := res.Credential; c != nil {
		fmt.Fprintf(out, "  %s\n", c.Title)
		fmt.Fprintf(out, "  awarded to %s by %s on %s\n", c.RecipientName, c.IssuerName, c.IssueDate.UTC().Format(time.DateOnly))
		if len(c.Skills) > 0 {
			fmt.Fprintf(out, "  skills: %s\n", strings.Join(c.Skills, ", "))
		}
	}
}
