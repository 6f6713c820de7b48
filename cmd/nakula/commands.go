package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"nakula/internal/config"
	"nakula/internal/web"
	"nakula/pkg/core"
	"nakula/pkg/exchange"
	"nakula/pkg/order"
)

func cmdBalance(ctx context.Context, client exchange.Client) error {
	snapshot, err := client.GetAccountSnapshot(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WALLET\tMARGIN\tAVAILABLE\tUNREALIZED PNL")
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		snapshot.WalletBalance.Text('f'),
		snapshot.MarginBalance.Text('f'),
		snapshot.AvailableBalance.Text('f'),
		snapshot.UnrealizedPnL.Text('f'))
	if err := w.Flush(); err != nil {
		return err
	}

	if len(snapshot.Assets) > 0 {
		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ASSET\tWALLET\tUNREALIZED PNL")
		for _, a := range snapshot.Assets {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				a.Asset, a.WalletBalance.Text('f'), a.UnrealizedPnL.Text('f'))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func cmdPrice(ctx context.Context, client exchange.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: nakula price SYMBOL")
	}

	quote, err := client.GetPrice(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s\t%s\t%s\n",
		quote.Symbol, quote.Price.Text('f'), quote.Timestamp.Format(time.RFC3339))
	return nil
}

func cmdOrder(ctx context.Context, client exchange.Client, args []string) error {
	fs := flag.NewFlagSet("order", flag.ContinueOnError)
	symbol := fs.String("symbol", "", "contract symbol (e.g. BTCUSDT)")
	side := fs.String("side", "", "BUY or SELL")
	orderType := fs.String("type", "MARKET", "MARKET or LIMIT")
	quantity := fs.String("quantity", "", "order quantity")
	price := fs.String("price", "", "limit price (LIMIT orders only)")
	tif := fs.String("tif", "GTC", "time in force: GTC, IOC, or FOK")
	clientID := fs.String("client-id", "", "optional client order id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	parsedSide, ok := core.ParseOrderSide(*side)
	if !ok {
		return core.NewValidationError("unrecognized side %q", *side)
	}
	parsedType, ok := core.ParseOrderType(*orderType)
	if !ok {
		return core.NewValidationError("unrecognized order type %q", *orderType)
	}
	parsedTIF, err := parseTimeInForce(*tif)
	if err != nil {
		return err
	}

	b := order.NewBuilder(*symbol).
		Side(parsedSide).
		Type(parsedType).
		Quantity(*quantity).
		TimeInForce(parsedTIF).
		ClientOrderID(*clientID)
	if parsedType == core.TypeLimit {
		b = b.Price(*price)
	}

	req, err := b.Build()
	if err != nil {
		return err
	}

	placed, err := client.PlaceOrder(ctx, req)
	if err != nil {
		return err
	}

	return printOrders(placed)
}

func cmdOpenOrders(ctx context.Context, client exchange.Client, args []string) error {
	symbol := ""
	if len(args) > 0 {
		symbol = args[0]
	}

	orders, err := client.ListOpenOrders(ctx, symbol)
	if err != nil {
		return err
	}

	if len(orders) == 0 {
		fmt.Println("no open orders")
		return nil
	}

	return printOrders(ordersToPointers(orders)...)
}

func cmdCancel(ctx context.Context, client exchange.Client, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ContinueOnError)
	symbol := fs.String("symbol", "", "contract symbol (e.g. BTCUSDT)")
	id := fs.String("id", "", "exchange order id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *symbol == "" || *id == "" {
		return fmt.Errorf("usage: nakula cancel -symbol SYMBOL -id ORDER_ID")
	}

	canceled, err := client.CancelOrder(ctx, *symbol, *id)
	if err != nil {
		// An order that was already filled or canceled is a normal outcome.
		if core.IsNotFound(err) {
			fmt.Printf("order %s no longer exists\n", *id)
			return nil
		}
		return err
	}

	return printOrders(canceled)
}

func cmdServe(ctx context.Context, client exchange.Client, cfg *config.Config, logger zerolog.Logger) error {
	srv, err := web.NewServer(web.Config{
		Addr:    cfg.Web.ListenAddr,
		Client:  client,
		Logger:  logger,
		Sandbox: cfg.Binance.Sandbox,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func parseTimeInForce(s string) (core.TimeInForce, error) {
	switch s {
	case "GTC", "gtc", "":
		return core.GTC, nil
	case "IOC", "ioc":
		return core.IOC, nil
	case "FOK", "fok":
		return core.FOK, nil
	}
	return core.GTC, core.NewValidationError("unrecognized time in force %q", s)
}

func printOrders(orders ...*core.Order) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYMBOL\tSIDE\tTYPE\tPRICE\tQUANTITY\tFILLED\tSTATUS\tTIF\tCREATED")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			o.ID, o.Symbol, o.Side, o.Type,
			o.Price.Text('f'), o.Quantity.Text('f'), o.FilledQuantity.Text('f'),
			o.Status, o.TimeInForce, o.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func ordersToPointers(orders []core.Order) []*core.Order {
	out := make([]*core.Order, len(orders))
	for i := range orders {
		out[i] = &orders[i]
	}
	return out
}
