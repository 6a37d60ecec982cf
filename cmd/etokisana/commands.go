package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/jrsteele09/etokisana-client/cart"
	"github.com/jrsteele09/etokisana-client/catalog"
	"github.com/jrsteele09/etokisana-client/transport"
	"github.com/jrsteele09/etokisana-client/users"
	"github.com/spf13/cobra"
)

func rootCmd(a *app) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "etokisana",
		Short:         "Command line client for the Etokisana marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context(), opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppname(a.cfg.GetAppName())
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Config file path (YAML), defaults to $CONFIG_FILE")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "api", "", "API base URL, defaults to $API_BASE_URL")
	cmd.PersistentFlags().StringVar(&opts.metricsFile, "metrics-file", "", "Write transport metrics to this file on exit")

	cmd.AddCommand(
		loginCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		productsCmd(a),
		cartCmd(a),
		sitesCmd(a),
		stocksCmd(a),
		cpcCmd(a),
		usersCmd(a),
	)
	return cmd
}

func loginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			claims, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if claims == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", email)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", firstNonEmpty(claims.Email, email), claims.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return err
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(""); err != nil {
				return err
			}
			p, err := a.session.Profile(cmd.Context())
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintf(w, "ID\t%s\n", p.Identifier())
			fmt.Fprintf(w, "Name\t%s\n", p.DisplayName())
			fmt.Fprintf(w, "Email\t%s\n", p.Email)
			fmt.Fprintf(w, "Type\t%s\n", firstNonEmpty(string(p.Role), p.Type))
			return w.Flush()
		},
	}
}

func listFlags(cmd *cobra.Command, params *transport.ListParams) {
	cmd.Flags().StringVarP(&params.Search, "search", "s", "", "Search term")
	cmd.Flags().IntVar(&params.Limit, "limit", 20, "Page size")
	cmd.Flags().IntVar(&params.Page, "page", 1, "Page number")
}

func productsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "products", Short: "Browse products"}

	var filter catalog.ProductFilter
	var stocker, mine bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("stocker") {
				filter.IsStocker = &stocker
			}
			var page *transport.Page[catalog.Product]
			var err error
			if mine {
				page, err = a.catalog.Products.Mine(cmd.Context(), filter)
			} else {
				page, err = a.catalog.Products.List(cmd.Context(), filter)
			}
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK\tCPC\tVALIDATED")
			for _, p := range page.Data {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%t\n", p.ID, p.Name, p.Price, p.Stock, p.CodeCPC, p.Validated)
			}
			return w.Flush()
		},
	}
	listFlags(list, &filter.ListParams)
	list.Flags().BoolVar(&stocker, "stocker", false, "Only products held by a stocker")
	list.Flags().BoolVar(&mine, "mine", false, "Only my products")

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.catalog.Products.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintf(w, "ID\t%s\nName\t%s\nDescription\t%s\nPrice\t%d\nStock\t%d\nCPC\t%s\nState\t%s\n",
				p.ID, p.Name, p.Description, p.Price, p.Stock, p.CodeCPC, p.State)
			return w.Flush()
		},
	}

	validate := &cobra.Command{
		Use:   "toggle-validation ID",
		Short: "Validate or unvalidate a product (Admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(string(users.RoleAdmin)); err != nil {
				return err
			}
			p, err := a.catalog.Products.ToggleValidation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s validated: %t\n", p.Name, p.Validated)
			return nil
		},
	}

	toggleStock := &cobra.Command{
		Use:   "toggle-stock ID",
		Short: "Mark a product as held by a stocker or not",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.catalog.Products.ToggleStock(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s stocker: %t\n", p.Name, p.IsStocker)
			return nil
		},
	}

	cmd.AddCommand(list, show, validate, toggleStock)
	return cmd
}

func cartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the signed in user's cart",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			_, err := a.requireSession("")
			return err
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCart(cmd.OutOrStdout(), a.cart)
		},
	}

	add := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.catalog.Products.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			outcome, err := a.cart.AddItem(p.CartProduct())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", p.Name, outcome)
			return nil
		},
	}

	update := &cobra.Command{
		Use:   "update PRODUCT_ID QUANTITY",
		Short: "Set the quantity of a line, 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q: %w", args[1], err)
			}
			outcome, err := a.cart.UpdateQuantity(args[0], quantity)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], outcome)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove PRODUCT_ID",
		Short: "Remove a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := a.cart.RemoveItem(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], outcome)
			return nil
		},
	}

	clearCart := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cart.Clear()
		},
	}

	cmd.AddCommand(list, add, update, remove, clearCart)
	return cmd
}

func printCart(out io.Writer, c *cart.Cart) error {
	w := table(out)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tQTY\tSUBTOTAL")
	for _, item := range c.Items() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d\t%d\n", item.ID, item.Name, item.Price, item.Quantity, item.Stock, item.Subtotal())
	}
	fmt.Fprintf(w, "\t\t\t%d\t%d\n", c.TotalItems(), c.TotalPrice())
	return w.Flush()
}

func sitesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "sites", Short: "Storage sites"}

	var params transport.ListParams
	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List my sites",
		RunE: func(cmd *cobra.Command, args []string) error {
			var page *transport.Page[catalog.Site]
			var err error
			if all {
				page, err = a.catalog.Sites.All(cmd.Context(), params)
			} else {
				page, err = a.catalog.Sites.Mine(cmd.Context(), params)
			}
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNAME\tADDRESS\tLAT\tLNG")
			for _, s := range page.Data {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.5f\t%.5f\n", s.ID, s.Name, s.Address, s.Lat, s.Lng)
			}
			return w.Flush()
		},
	}
	listFlags(list, &params)
	list.Flags().BoolVar(&all, "all", false, "List every site")

	var site catalog.Site
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a site",
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := a.catalog.Sites.Create(cmd.Context(), site)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created site %s\n", created.ID)
			return nil
		},
	}
	create.Flags().StringVar(&site.Name, "name", "", "Site name")
	create.Flags().StringVar(&site.Address, "address", "", "Site address")
	create.Flags().Float64Var(&site.Lat, "lat", 0, "Latitude")
	create.Flags().Float64Var(&site.Lng, "lng", 0, "Longitude")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.catalog.Sites.Delete(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(list, create, del)
	return cmd
}

func stocksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "stocks", Short: "Stock movements"}

	var params transport.ListParams
	printMoves := func(out io.Writer, page *transport.Page[catalog.StockMove]) error {
		w := table(out)
		fmt.Fprintln(w, "ID\tPRODUCT\tFROM\tTO\tQTY\tAMOUNT\tDATE")
		for _, m := range page.Data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
				m.ID, productName(m.Product), siteName(m.Origin), siteName(m.Destination), m.Quantity, m.Total(), m.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	}

	actifs := &cobra.Command{
		Use:   "actifs",
		Short: "Stock held for me",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.catalog.Stocks.MyActifs(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printMoves(cmd.OutOrStdout(), page)
		},
	}
	passifs := &cobra.Command{
		Use:   "passifs",
		Short: "Stock I hold for others",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.catalog.Stocks.MyPassifs(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printMoves(cmd.OutOrStdout(), page)
		},
	}
	listFlags(actifs, &params)
	listFlags(passifs, &params)

	var m catalog.Movement
	var withdraw bool
	move := &cobra.Command{
		Use:   "move",
		Short: "Record a deposit, or a withdrawal with --withdraw",
		RunE: func(cmd *cobra.Command, args []string) error {
			var created *catalog.StockMove
			var err error
			if withdraw {
				created, err = a.catalog.Stocks.Withdraw(cmd.Context(), m)
			} else {
				created, err = a.catalog.Stocks.Deposit(cmd.Context(), m)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded movement %s worth %d\n", created.ID, created.Total())
			return nil
		},
	}
	move.Flags().StringVar(&m.ProductID, "product", "", "Product id")
	move.Flags().StringVar(&m.SiteOrigineID, "from", "", "Origin site id")
	move.Flags().StringVar(&m.SiteDestinationID, "to", "", "Destination site id")
	move.Flags().IntVar(&m.Quantity, "quantity", 1, "Quantity")
	move.Flags().Int64Var(&m.UnitPrice, "unit-price", 0, "Unit price")
	move.Flags().StringVar(&m.Observations, "note", "", "Observations")
	move.Flags().BoolVar(&withdraw, "withdraw", false, "Record a withdrawal")

	cmd.AddCommand(actifs, passifs, move)
	return cmd
}

func cpcCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "cpc", Short: "Central Product Classification"}

	var params transport.ListParams
	var level int
	list := &cobra.Command{
		Use:   "list",
		Short: "Search classification codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.catalog.CPC.List(cmd.Context(), params, level)
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "CODE\tLEVEL\tNAME\tPARENT")
			for _, c := range page.Data {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", c.Code, c.Level, c.Name, c.ParentCode)
			}
			return w.Flush()
		},
	}
	listFlags(list, &params)
	list.Flags().IntVar(&level, "level", 0, "Only this level")

	show := &cobra.Command{
		Use:   "show CODE",
		Short: "Show one classification code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog.CPC.GetByCode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (level %d, ancestors %v)\n", c.Code, c.Name, c.Level, c.Ancestors)
			return nil
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func usersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Administer user accounts (Admin)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			_, err := a.requireSession(string(users.RoleAdmin))
			return err
		},
	}

	var params transport.ListParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.users.List(cmd.Context(), params)
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tTYPE\tVALIDATED")
			for _, u := range page.Data {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", u.Identifier(), u.DisplayName(), u.Email, firstNonEmpty(string(u.Role), u.Type), u.Validated)
			}
			return w.Flush()
		},
	}
	listFlags(list, &params)

	activate := &cobra.Command{
		Use:   "activate ID",
		Short: "Toggle the activation of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.users.Activate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s validated: %t\n", p.Email, p.Validated)
			return nil
		},
	}

	cmd.AddCommand(list, activate)
	return cmd
}

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func productName(ref catalog.Ref[catalog.Product]) string {
	if ref.Value != nil && ref.Value.Name != "" {
		return ref.Value.Name
	}
	return ref.ID
}

func siteName(ref catalog.Ref[catalog.Site]) string {
	if ref.Value != nil && ref.Value.Name != "" {
		return ref.Value.Name
	}
	return ref.ID
}
