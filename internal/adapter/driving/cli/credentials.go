package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/credtrust/internal/application"
	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

func newIssueCommand(opts *options) *cobra.Command {
	var (
		req     application.IssueRequest
		expires string
		level   int
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a new credential",
		Long:  "Issue a credential to a learner. The verification code and hash are generated and printed.",
		Args:  cobra.NoArgs,
		RunE: withSession(opts, func(cmd *cobra.Command, _ []string, s *session) error {
			if expires != "" {
				t, err := parseDate(expires)
				if err != nil {
					return fmt.Errorf("invalid --expires %q: expected YYYY-MM-DD or RFC 3339", expires)
				}
				req.ExpiryDate = &t
			}
			if cmd.Flags().Changed("level") {
				req.NSQFLevel = &level
			}

			cred, err := s.issuer.Issue(cmd.Context(), req)
			if err != nil {
				return err
			}

			printCredential(cmd, cred, cred.EffectiveStatus(opts.now()))
			return nil
		}),
	}

	f := cmd.Flags()
	f.StringVar(&req.Title, "title", "", "credential title (required)")
	f.StringVar(&req.Description, "description", "", "markdown description")
	f.StringVar(&req.IssuerID, "issuer-id", "", "issuer identifier (required)")
	f.StringVar(&req.IssuerName, "issuer-name", "", "issuer display name")
	f.StringVar(&req.RecipientID, "recipient-id", "", "learner identifier (required)")
	f.StringVar(&req.RecipientName, "recipient-name", "", "learner display name")
	f.StringSliceVar(&req.Skills, "skill", nil, "skill certified by the credential (repeatable)")
	f.IntVar(&level, "level", 0, "NSQF level 1-10")
	f.StringVar(&expires, "expires", "", "expiry date (YYYY-MM-DD)")
	return cmd
}

func newRevokeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <credential-id>",
		Short: "Revoke a credential",
		Long:  "Revoke a credential. Revocation is permanent and takes effect on the next verification.",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			cred, err := s.issuer.Revoke(cmd.Context(), args[0])
			switch {
			case errors.Is(err, application.ErrCredentialNotFound):
				return fmt.Errorf("credential %s not found", args[0])
			case err != nil:
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Revoked %s (%s)\n", cred.ID, cred.Title)
			return nil
		}),
	}
}

func newSweepCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mark credentials past their expiry date as expired",
		Args:  cobra.NoArgs,
		RunE: withSession(opts, func(cmd *cobra.Command, _ []string, s *session) error {
			n, err := s.sweeper.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Expired %d credential(s)\n", n)
			return nil
		}),
	}
}

func newStatsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <credential-id>",
		Short: "Show how often a credential has been verified",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			stats, err := s.counts.StatsForCredential(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Verifications: %d\n", stats.Total)
			for _, m := range []model.VerificationMethod{model.VerificationMethodCode, model.VerificationMethodURL, model.VerificationMethodHash} {
				if n := stats.ByMethod[m]; n > 0 {
					fmt.Fprintf(out, "  by %s: %d\n", m, n)
				}
			}
			if stats.LastVerified != nil {
				fmt.Fprintf(out, "Last verified: %s\n", stats.LastVerified.UTC().Format(time.RFC3339))
			}
			return nil
		}),
	}
}

func printCredential(cmd *cobra.Command, c model.Credential, effective model.CredentialStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:        %s\n", c.ID)
	fmt.Fprintf(out, "Title:     %s\n", c.Title)
	fmt.Fprintf(out, "Recipient: %s\n", displayName(c.RecipientName, c.RecipientID))
	fmt.Fprintf(out, "Issuer:    %s\n", displayName(c.IssuerName, c.IssuerID))
	fmt.Fprintf(out, "Issued:    %s\n", c.IssueDate.UTC().Format(time.DateOnly))
	if c.ExpiryDate != nil {
		fmt.Fprintf(out, "Expires:   %s\n", c.ExpiryDate.UTC().Format(time.DateOnly))
	}
	fmt.Fprintf(out, "Status:    %s\n", effective)
	if len(c.Skills) > 0 {
		fmt.Fprintf(out, "Skills:    %s\n", strings.Join(c.Skills, ", "))
	}
	if c.NSQFLevel != nil {
		fmt.Fprintf(out, "NSQF:      %d\n", *c.NSQFLevel)
	}
	fmt.Fprintf(out, "Code:      %s\n", c.VerificationCode)
	fmt.Fprintf(out, "Hash:      %s\n", c.VerificationHash)
}

func displayName(name, id string) string {
	if name == "" {
		return id
	}
	return fmt.Sprintf("%s (%s)", name, id)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, s)
}
