package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"rayalaseema/internal/catalog"
	"rayalaseema/internal/checkout"
	"rayalaseema/internal/payments"

	"github.com/spf13/cobra"
)

// parseItems reads "productID:quantity" pairs; a bare id means quantity 1.
func parseItems(items []string, products []catalog.Product) (*checkout.Cart, error) {
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	cart := checkout.NewCart()
	for _, item := range items {
		id, qtyStr, found := strings.Cut(item, ":")
		qty := 1
		if found {
			n, err := strconv.Atoi(qtyStr)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid quantity in %q", item)
			}
			qty = n
		}
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown product %q", id)
		}
		cart.Add(p, qty)
	}
	return cart, nil
}

// parseCallback accepts the handler's JSON payload or the redirect's query string.
func parseCallback(line string) (payments.Callback, error) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "{") {
		return checkout.CallbackFromJSON([]byte(line))
	}
	if i := strings.Index(line, "?"); i >= 0 {
		line = line[i+1:]
	}
	v, err := url.ParseQuery(line)
	if err != nil {
		return payments.Callback{}, fmt.Errorf("decode gateway callback: %w", err)
	}
	return checkout.CallbackFromForm(v), nil
}

func payCmd(open opener) *cobra.Command {
	var (
		items []string
		form  checkout.CustomerForm
	)

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Check out a cart and verify the gateway callback",
		Long: `Builds a cart from --item flags, creates a gateway order and waits for the
hosted checkout's callback on stdin (JSON payload or redirect query string).
Type "cancel" to close the checkout and keep the cart.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			products, err := s.client.Products(ctx)
			if err != nil {
				return fmt.Errorf("loading products: %w", err)
			}
			cart, err := parseItems(items, products)
			if err != nil {
				return err
			}

			m := s.machine(cart)
			if err := m.Open(ctx); err != nil {
				return err
			}

			var fe *checkout.FormError
			if err := m.Submit(ctx, form); err != nil {
				if errors.As(err, &fe) {
					return fmt.Errorf("missing shipping details: %s", strings.Join(fe.Fields, ", "))
				}
				return err
			}

			pending, _ := m.Pending()
			order, _ := m.Order()
			fmt.Fprintf(out, "Order %s for %s %s\n", order.OrderID, order.Currency, pending.Total.StringFixed(2))
			for _, line := range pending.Summary().Items {
				fmt.Fprintf(out, "  %s\n", line)
			}
			if s.cfg.KeyID != "" {
				fmt.Fprintf(out, "Open the hosted checkout with key %s and order %s.\n", s.cfg.KeyID, order.OrderID)
			}

			return awaitCallback(cmd, m, bufio.NewReader(cmd.InOrStdin()), out)
		},
	}

	cmd.Flags().StringSliceVarP(&items, "item", "i", nil, "Cart line as productID[:quantity], repeatable")
	cmd.Flags().StringVar(&form.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&form.Address, "address", "", "Street address")
	cmd.Flags().StringVar(&form.City, "city", "", "City")
	cmd.Flags().StringVar(&form.PostalCode, "postal-code", "", "Postal code")

	return cmd
}

func awaitCallback(cmd *cobra.Command, m *checkout.Machine, in *bufio.Reader, out io.Writer) error {
	ctx := cmd.Context()
	for {
		fmt.Fprint(out, "Gateway callback> ")
		line, err := in.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
			_ = m.Cancel()
			return errors.New("checkout closed before payment")
		}

		if strings.EqualFold(strings.TrimSpace(line), "cancel") {
			if err := m.Cancel(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Payment cancelled. Your cart is unchanged.")
			return nil
		}

		cb, err := parseCallback(line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}

		err = m.HandleCallback(ctx, cb)
		switch {
		case err == nil:
			return printConfirmation(cmd, m)
		case errors.Is(err, checkout.ErrPaymentNotVerified):
			fmt.Fprintln(out, err)
			fmt.Fprint(out, "Retry? [y/N] ")
			answer, _ := in.ReadString('\n')
			if !strings.EqualFold(strings.TrimSpace(answer), "y") {
				return err
			}
			if err := m.Retry(); err != nil {
				return err
			}
		default:
			return err
		}
	}
}

func printConfirmation(cmd *cobra.Command, m *checkout.Machine) error {
	out := cmd.OutOrStdout()
	rec, err := m.Confirmation(cmd.Context())
	if errors.Is(err, checkout.ErrNoConfirmation) {
		fmt.Fprintln(out, "No verified payment found. Returning to the home page.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Payment verified. Thank you for your order!")
	fmt.Fprintf(out, "  Payment:  %s\n", rec.PaymentID)
	fmt.Fprintf(out, "  Order:    %s\n", rec.OrderID)
	fmt.Fprintf(out, "  Amount:   %s %s\n", rec.Currency, rec.Amount.StringFixed(2))
	if rec.CustomerInfo.Name != "" {
		fmt.Fprintf(out, "  Customer: %s\n", rec.CustomerInfo.Name)
	}
	for _, line := range rec.OrderSummary.Items {
		fmt.Fprintf(out, "  %s\n", line)
	}
	if rec.VerificationMethod != payments.MethodTrustedServer {
		fmt.Fprintln(out, "  (verified locally for development only)")
	}
	return nil
}
