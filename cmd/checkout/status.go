package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"rayalaseema/internal/checkout"

	"github.com/spf13/cobra"
)

func productsCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List products for sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			products, err := s.client.Products(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tWEIGHT\tPRICE")
			for _, p := range products {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Weight, p.Price.StringFixed(2))
			}
			return tw.Flush()
		},
	}
}

func statusCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last verified payment, if still valid",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			return printConfirmation(cmd, s.machine(checkout.NewCart()))
		},
	}
}

func attemptsCmd(open opener) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "attempts",
		Short: "Show recent payment verification attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			all, err := s.attempts.All(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(all)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tPAYMENT\tRESULT")
			for _, a := range all {
				result := "failed"
				if a.Success {
					result = "verified"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Timestamp.Local().Format(time.DateTime), a.PaymentID, result)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	return cmd
}

func logoutCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored payment confirmation",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			if err := s.machine(checkout.NewCart()).Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
