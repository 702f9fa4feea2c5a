package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	apiclient "github.com/alemt19/ats-sub001/pkg/api/client"
)

var buildVersion = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var apiBase string
	root := &cobra.Command{
		Use:           "atsctl",
		Short:         "Command line client for the ATS API",
		Version:       buildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", "", "API base URL (defaults to the saved one)")

	session := func() (*apiclient.Client, cliConfig, error) {
		cfg, err := loadConfig()
		if err != nil {
			return nil, cliConfig{}, err
		}
		if strings.TrimSpace(apiBase) != "" {
			cfg.APIBaseURL = apiBase
		}
		cli, err := apiclient.New(cfg.APIBaseURL)
		return cli, cfg, err
	}

	root.AddCommand(
		loginCommand(session),
		whoamiCommand(session),
		jobsCommand(session),
		candidatesCommand(session),
		applicationsCommand(session),
		summaryCommand(session),
	)
	return root
}

type sessionFunc func() (*apiclient.Client, cliConfig, error)

func loginCommand(session sessionFunc) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, cfg, err := session()
			if err != nil {
				return err
			}
			secret := strings.TrimSpace(password)
			if secret == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				raw, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(cmd.OutOrStdout())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				secret = string(raw)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			resp, err := cli.Login(ctx, email, secret)
			if err != nil {
				return err
			}
			cfg.AccessToken = resp.Tokens.AccessToken
			cfg.RefreshToken = resp.Tokens.RefreshToken
			if err := saveConfig(cfg); err != nil {
				return fmt.Errorf("save credentials: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", resp.User.Email, resp.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func whoamiCommand(session sessionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, cfg, err := authedSession(session)
			if err != nil {
				return err
			}
			user, err := cli.Me(cmd.Context(), cfg.AccessToken)
			if err != nil {
				return err
			}
			verified := "unverified"
			if user.EmailVerifiedAt != nil {
				verified = "verified"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s, %s\n", user.Name, user.Email, user.Role, verified)
			return nil
		},
	}
}

func jobsCommand(session sessionFunc) *cobra.Command {
	cmd := &cobra.Command{Use: "jobs", Short: "Browse and post jobs"}

	var filter apiclient.JobFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, cfg, err := session()
			if err != nil {
				return err
			}
			jobs, page, err := cli.ListJobs(cmd.Context(), cfg.AccessToken, filter)
			if err != nil {
				return err
			}
			tw := newTable(cmd)
			fmt.Fprintln(tw, "ID\tTITLE\tCOMPANY\tMODE\tSTATUS")
			for _, j := range jobs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", j.ID, j.Title, j.CompanyName, j.WorkMode, j.Status)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d\n", len(jobs), page.Total)
			return nil
		},
	}
	list.Flags().StringVar(&filter.Query, "q", "", "search term")
	list.Flags().StringVar(&filter.Status, "status", "", "draft, open or closed")
	list.Flags().StringVar(&filter.CompanyID, "company", "", "company id")
	list.Flags().StringVar(&filter.WorkMode, "mode", "", "onsite, remote or hybrid")
	list.Flags().IntVar(&filter.Limit, "limit", 0, "page size")
	list.Flags().IntVar(&filter.Offset, "offset", 0, "page offset")

	var input apiclient.JobInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a job posting",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, cfg, err := authedSession(session)
			if err != nil {
				return err
			}
			job, err := cli.CreateJob(cmd.Context(), cfg.AccessToken, input)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %s created (%s)\n", job.ID, job.Status)
			return nil
		},
	}
	create.Flags().StringVar(&input.CompanyID, "company", "", "company id")
	create.Flags().StringVar(&input.Title, "title", "", "job title")
	create.Flags().StringVar(&input.Description, "description", "", "job description")
	create.Flags().StringVar(&input.Location, "location", "", "location")
	create.Flags().StringVar(&input.EmploymentType, "type", "full_time", "employment type")
	create.Flags().StringVar(&input.WorkMode, "mode", "onsite", "work mode")
	create.Flags().StringVar(&input.Status, "status", "", "initial status")
	_ = create.MarkFlagRequired("company")
	_ = create.MarkFlagRequired("title")

	var coverLetter string
	apply := &cobra.Command{
		Use:   "apply <job-id>",
		Short: "Apply to a job with your candidate profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, cfg, err := authedSession(session)
			if err != nil {
				return err
			}
			app, err := cli.Apply(cmd.Context(), cfg.AccessToken, args[0], coverLetter)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Application %s submitted\n", app.ID)
			return nil
		},
	}
	apply.Flags().StringVar(&coverLetter, "cover-letter", "", "optional cover letter")

	cmd.AddCommand(list, create, apply)
	return cmd
}

func candidatesCommand(session sessionFunc) *cobra.Command {
	var query string
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "List candidates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, cfg, err := authedSession(session)
			if err != nil {
				return err
			}
			candidates, page, err := cli.ListCandidates(cmd.Context(), cfg.AccessToken, query, limit, offset)
			if err != nil {
				return err
			}
			tw := newTable(cmd)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tSKILLS")
			for _, c := range candidates {
				fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%s\n", c.ID, c.FirstName, c.LastName, c.Email, c.Phone, strings.Join(c.Skills, ","))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d\n", len(candidates), page.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&query, "q", "", "search term")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	return cmd
}

func applicationsCommand(session sessionFunc) *cobra.Command {
	cmd := &cobra.Command{Use: "applications", Short: "Manage applications"}
	var note string
	move := &cobra.Command{
		Use:   "move <application-id> <status>",
		Short: "Move an application to another pipeline stage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, cfg, err := authedSession(session)
			if err != nil {
				return err
			}
			app, err := cli.UpdateApplicationStatus(cmd.Context(), cfg.AccessToken, args[0], args[1], note)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Application %s is now %s\n", app.ID, app.Status)
			return nil
		},
	}
	move.Flags().StringVar(&note, "note", "", "note stored with the transition")
	cmd.AddCommand(move)
	return cmd
}

func summaryCommand(session sessionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show dashboard totals (admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, cfg, err := authedSession(session)
			if err != nil {
				return err
			}
			s, err := cli.DashboardSummary(cmd.Context(), cfg.AccessToken)
			if err != nil {
				return err
			}
			tw := newTable(cmd)
			fmt.Fprintf(tw, "companies\t%d\n", s.Companies)
			fmt.Fprintf(tw, "candidates\t%d\n", s.Candidates)
			for role, n := range s.UsersByRole {
				fmt.Fprintf(tw, "users.%s\t%d\n", role, n)
			}
			for status, n := range s.JobsByStatus {
				fmt.Fprintf(tw, "jobs.%s\t%d\n", status, n)
			}
			for status, n := range s.ApplicationsByStatus {
				fmt.Fprintf(tw, "applications.%s\t%d\n", status, n)
			}
			return tw.Flush()
		},
	}
}

func authedSession(session sessionFunc) (*apiclient.Client, cliConfig, error) {
	cli, cfg, err := session()
	if err != nil {
		return nil, cliConfig{}, err
	}
	if cfg.AccessToken == "" {
		return nil, cliConfig{}, fmt.Errorf("not logged in; run atsctl login first")
	}
	return cli, cfg, nil
}

func explain(err error) error {
	apiErr, ok := err.(apiclient.APIError)
	if !ok || len(apiErr.Fields) == 0 {
		return err
	}
	parts := make([]string, 0, len(apiErr.Fields))
	for _, f := range apiErr.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Errorf("%s (%s)", apiErr.Message, strings.Join(parts, "; "))
}

func newTable(cmd *cobra.Command) *tabwriter.Writer {
	return tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
}
