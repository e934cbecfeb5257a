package shell

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/nikolayk812/storefront/internal/auth"
	"github.com/nikolayk812/storefront/internal/cartview"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/orders"
	"github.com/nikolayk812/storefront/internal/pricing"
)

func (s *Shell) registerCommands() {
	r := s.registry

	r.Register(&Command{Name: "help", Description: "List commands or describe one", Usage: "help [command]", Run: s.help})
	r.Register(&Command{
		Name:        "products",
		Description: "Browse the catalog",
		Usage:       "products [-category c] [-brand b] [-search q] [-price min-max] [-sort newest|price-low|price-high|name] [-page n] [-facets]",
		Examples:    []string{"products -category electronics -sort price-low", "products -price 10-50 -page 2", "products -facets"},
		Run:         s.listProducts,
	})
	r.Register(&Command{Name: "show", Description: "Show one product", Usage: "show <product-id>", Run: s.showProduct})
	r.Register(&Command{Name: "add", Description: "Add a product to the cart", Usage: "add <product-id>", Run: s.add})
	r.Register(&Command{Name: "inc", Description: "Increase a cart line by one", Usage: "inc <product-id>", Run: s.increase})
	r.Register(&Command{Name: "dec", Description: "Decrease a cart line by one, never below one", Usage: "dec <product-id>", Run: s.decrease})
	r.Register(&Command{Name: "rm", Description: "Remove a line from the cart", Usage: "rm <product-id>", Run: s.remove})
	r.Register(&Command{Name: "cart", Description: "Show the cart with totals", Usage: "cart", Run: s.showCart})
	r.Register(&Command{Name: "clear", Description: "Empty the cart", Usage: "clear", Run: s.clearCart})
	r.Register(&Command{Name: "lang", Description: "Show or switch the display language", Usage: "lang [en|vi]", Run: s.lang})
	r.Register(&Command{Name: "signin", Description: "Sign in", Usage: "signin <email> <password>", Run: s.signIn})
	r.Register(&Command{
		Name:        "signup",
		Description: "Create an account",
		Usage:       "signup <email> <password> <full name>",
		Examples:    []string{"signup ann@example.com secret1 Ann Lee"},
		Run:         s.signUp,
	})
	r.Register(&Command{Name: "signout", Description: "Sign out", Usage: "signout", Run: s.signOut})
	r.Register(&Command{Name: "whoami", Description: "Show the signed-in user", Usage: "whoami", Run: s.whoami})
	r.Register(&Command{
		Name:        "orders",
		Description: "List your orders",
		Usage:       "orders [-sort date|amount|status]",
		Examples:    []string{"orders -sort amount", "orders -sort amount   # again for descending"},
		Run:         s.listOrders,
	})
	r.Register(&Command{Name: "reorder", Description: "Put the items of a past order back in the cart", Usage: "reorder <order-id>", Run: s.reorder})
	r.Register(&Command{Name: "checkout", Description: "Start paying for an order", Usage: "checkout <order-id>", Run: s.checkout})
	r.Register(&Command{Name: "pay", Description: "Pay the current checkout by card", Usage: "pay", Run: s.payByCard})
	r.Register(&Command{Name: "cod", Description: "Pay the current checkout cash on delivery", Usage: "cod", Run: s.cashOnDelivery})
	r.Register(&Command{Name: "cancel", Description: "Leave card payment and pick another method", Usage: "cancel", Run: s.cancel})
	r.Register(&Command{Name: "quit", Description: "Leave the shell", Usage: "quit", Run: func(context.Context, []string) error { return ErrQuit }})
}

func (s *Shell) help(_ context.Context, args []string) error {
	if len(args) == 0 {
		s.registry.PrintHelp(s.out)
		return nil
	}
	cmd, ok := s.registry.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown command: %s", args[0])
	}
	cmd.PrintUsage(s.out)
	return nil
}

func oneArg(args []string, what string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("expected exactly one %s", what)
	}
	return args[0], nil
}

func (s *Shell) loadProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.app.Backend.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	s.products = products
	return products, nil
}

// product finds id in the last listing, or asks the backend for it.
func (s *Shell) product(ctx context.Context, id string) (domain.Product, error) {
	if i := slices.IndexFunc(s.products, func(p domain.Product) bool { return p.ID == id }); i >= 0 {
		return s.products[i], nil
	}
	return s.app.Backend.GetProduct(ctx, id)
}

func (s *Shell) listProducts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	fs.SetOutput(s.out)
	var q catalog.Query
	var sortKey string
	fs.StringVar(&q.Category, "category", "", "category substring")
	fs.StringVar(&q.Brand, "brand", "", "brand substring")
	fs.StringVar(&q.Search, "search", "", "name or description substring")
	fs.StringVar(&q.PriceRange, "price", "", "price range min-max")
	fs.StringVar(&sortKey, "sort", "newest", "sort order")
	fs.IntVar(&q.Page, "page", 1, "page number")
	facets := fs.Bool("facets", false, "list categories and brands instead of products")
	if err := fs.Parse(args); err != nil {
		return helpIsNotAnError(err)
	}

	key, err := catalog.ParseSortKey(sortKey)
	if err != nil {
		return err
	}
	q.Sort = key
	q.PageSize = s.app.Config.PageSize
	q.Lang = s.app.Formatter.Resolve(s.app.Session.Lang()).Tag

	products, err := s.loadProducts(ctx)
	if err != nil {
		return err
	}

	if *facets {
		f := catalog.FacetsOf(products)
		fmt.Fprintf(s.out, "Categories: %s\n", dash(strings.Join(f.Categories, ", ")))
		fmt.Fprintf(s.out, "Brands: %s\n", dash(strings.Join(f.Brands, ", ")))
		return nil
	}

	page := catalog.Apply(products, q)
	if page.Total == 0 {
		fmt.Fprintln(s.out, "No products found.")
		return nil
	}

	view := s.app.CartView.Refresh()
	tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tPRICE\tIN CART")
	for _, p := range page.Items {
		inCart := ""
		if line, ok := view.Lookup(p.ID); ok {
			inCart = strconv.Itoa(line.Quantity)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Brand, s.quote(pricing.QuoteFor(p, nil)), inCart)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Showing %d-%d of %d results (page %d/%d)\n",
		page.From(q.PageSize), page.To(q.PageSize), page.Total, page.Page, page.Pages)
	return nil
}

func (s *Shell) showProduct(ctx context.Context, args []string) error {
	id, err := oneArg(args, "product id")
	if err != nil {
		return err
	}
	p, err := s.app.Backend.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	view := s.app.CartView.Refresh()
	q := view.Quote(p)

	fmt.Fprintf(s.out, "%s (%s)\n", p.Name, p.ID)
	if p.Brand != "" || p.Category != "" {
		fmt.Fprintf(s.out, "  %s / %s\n", p.Brand, p.Category)
	}
	if p.Description != "" {
		fmt.Fprintf(s.out, "  %s\n", p.Description)
	}
	fmt.Fprintf(s.out, "  price: %s\n", s.quote(q))
	if p.HasDiscount() {
		fmt.Fprintf(s.out, "  save %s%%\n", p.DiscountPercentage.String())
	}
	if view.InCart(p.ID) {
		fmt.Fprintf(s.out, "  in cart: %d\n", q.Quantity)
	}
	return nil
}

func (s *Shell) add(ctx context.Context, args []string) error {
	id, err := oneArg(args, "product id")
	if err != nil {
		return err
	}
	p, err := s.product(ctx, id)
	if err != nil {
		return err
	}
	if !s.app.Cart.AddToCart(p) {
		fmt.Fprintf(s.out, "%s is already in the cart, use 'inc %s'\n", p.Name, p.ID)
	}
	return nil
}

func (s *Shell) increase(_ context.Context, args []string) error {
	id, err := oneArg(args, "product id")
	if err != nil {
		return err
	}
	if !s.app.Cart.IncreaseQuantity(id) {
		return fmt.Errorf("%s is not in the cart", id)
	}
	return nil
}

func (s *Shell) decrease(_ context.Context, args []string) error {
	id, err := oneArg(args, "product id")
	if err != nil {
		return err
	}
	view := s.app.CartView.Refresh()
	if !view.InCart(id) {
		return fmt.Errorf("%s is not in the cart", id)
	}
	if !view.CanDecrease(id) {
		fmt.Fprintln(s.out, "Quantity is already 1, use 'rm' to remove the item")
		return nil
	}
	s.app.Cart.DecreaseQuantity(id)
	return nil
}

func (s *Shell) remove(_ context.Context, args []string) error {
	id, err := oneArg(args, "product id")
	if err != nil {
		return err
	}
	if !s.app.Cart.DeleteItem(id) {
		return fmt.Errorf("%s is not in the cart", id)
	}
	return nil
}

func (s *Shell) showCart(context.Context, []string) error {
	view := s.app.CartView.Refresh()
	if view.Badge() == 0 {
		fmt.Fprintln(s.out, "Your cart is empty.")
		return nil
	}

	tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tTOTAL")
	for _, line := range view.Lines() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", line.ProductID, line.Snapshot.Name, stepper(view, line), s.quote(pricing.LineQuote(line)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "%d %s, %d %s\n", view.Badge(), plural(view.Badge(), "line"), view.Units(), plural(view.Units(), "unit"))

	fmt.Fprintf(s.out, "Subtotal: %s\n", s.price(view.Subtotal()))
	if savings := view.Savings(); savings.IsPositive() {
		fmt.Fprintf(s.out, "You save: %s\n", s.price(savings))
	}
	return nil
}

// stepper renders the quantity control; the minus side is blank when it is disabled.
func stepper(view cartview.View, line domain.CartLine) string {
	minus := " "
	if view.CanDecrease(line.ProductID) {
		minus = "-"
	}
	return fmt.Sprintf("[%s] %d [+]", minus, line.Quantity)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func (s *Shell) clearCart(context.Context, []string) error {
	s.app.Cart.ClearCart()
	fmt.Fprintln(s.out, "Cart cleared.")
	return nil
}

func (s *Shell) lang(_ context.Context, args []string) error {
	if len(args) == 0 {
		langs := s.app.Formatter.Languages()
		slices.Sort(langs)
		fmt.Fprintf(s.out, "%s (available: %s)\n", s.app.Session.Lang(), strings.Join(langs, ", "))
		return nil
	}

	l, ok := s.app.Formatter.Lookup(args[0])
	if !ok {
		return fmt.Errorf("language %q is not supported", args[0])
	}
	s.app.Session.SetLang(l.Lang)
	return nil
}

func (s *Shell) signIn(ctx context.Context, args []string) error {
	if len(args) > 2 {
		return fmt.Errorf("usage: signin <email> <password>")
	}
	var req auth.SignInRequest
	if len(args) > 0 {
		req.Email = args[0]
	}
	if len(args) > 1 {
		req.Password = args[1]
	}

	_, err := s.app.Auth.SignIn(ctx, req)
	return quiet(err)
}

func (s *Shell) signUp(ctx context.Context, args []string) error {
	var req auth.SignUpRequest
	if len(args) > 0 {
		req.Email = args[0]
	}
	if len(args) > 1 {
		req.Password = args[1]
	}
	if len(args) > 2 {
		req.Name = strings.Join(args[2:], " ")
	}

	return quiet(s.app.Auth.SignUp(ctx, req))
}

func (s *Shell) signOut(context.Context, []string) error {
	s.app.Auth.SignOut()
	return nil
}

func (s *Shell) whoami(context.Context, []string) error {
	user, ok := s.app.Session.User()
	if !ok {
		fmt.Fprintln(s.out, "Not signed in.")
		return nil
	}
	fmt.Fprintf(s.out, "%s <%s>", displayName(user), user.Email)
	if user.Role != "" {
		fmt.Fprintf(s.out, " [%s]", user.Role)
	}
	fmt.Fprintln(s.out)
	return nil
}

func (s *Shell) listOrders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	fs.SetOutput(s.out)
	sortKey := fs.String("sort", "", "date, amount or status")
	if err := fs.Parse(args); err != nil {
		return helpIsNotAnError(err)
	}

	list, err := s.app.Orders.Load(ctx)
	if err != nil {
		return quiet(err)
	}
	if len(list) == 0 {
		fmt.Fprintln(s.out, "You haven't placed any orders yet.")
		return nil
	}

	if *sortKey != "" {
		key, err := orders.ParseSortKey(*sortKey)
		if err != nil {
			return err
		}
		s.orderDir = orders.Toggle(s.orderSort, s.orderDir, key)
		s.orderSort = key
	}
	if s.orderSort != "" {
		list = orders.Sort(list, s.orderSort, s.orderDir)
	}

	tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tITEMS\tAMOUNT\tSTATUS\tPAYMENT")
	for _, o := range list {
		date := "-"
		if !o.CreatedAt.IsZero() {
			date = o.CreatedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			o.ID, date, len(o.Items), s.price(o.Amount), dash(o.Status), dash(strings.TrimSpace(o.PaymentMethod+" "+o.PaymentStatus)))
	}
	return tw.Flush()
}

func (s *Shell) reorder(ctx context.Context, args []string) error {
	id, err := oneArg(args, "order id")
	if err != nil {
		return err
	}

	order, ok := s.app.Orders.Find(id)
	if !ok {
		if err := s.app.Orders.Refresh(ctx); err != nil {
			return err
		}
		if order, ok = s.app.Orders.Find(id); !ok {
			return fmt.Errorf("order %s not found", id)
		}
	}
	s.app.Orders.Reorder(order)
	return nil
}

func (s *Shell) checkout(ctx context.Context, args []string) error {
	id, err := oneArg(args, "order id")
	if err != nil {
		return err
	}
	order, err := s.app.Checkout.Load(ctx, id)
	if err != nil {
		return quiet(err)
	}

	fmt.Fprintf(s.out, "Order %s: %d items, total %s\n", order.ID, len(order.Items), s.price(s.app.Checkout.Amount()))
	fmt.Fprintln(s.out, "Choose 'pay' for card or 'cod' for cash on delivery.")
	return nil
}

func (s *Shell) payByCard(ctx context.Context, _ []string) error {
	if s.app.Checkout.Step() == checkout.StepSelection {
		if err := s.app.Checkout.Choose(checkout.MethodStripe); err != nil {
			return err
		}
	}
	order, err := s.app.Checkout.PayByCard(ctx)
	if err != nil {
		return quiet(err)
	}
	fmt.Fprintf(s.out, "Order %s is %s.\n", order.ID, dash(order.PaymentStatus))
	return nil
}

func (s *Shell) cashOnDelivery(context.Context, []string) error {
	return s.app.Checkout.Choose(checkout.MethodCOD)
}

func (s *Shell) cancel(context.Context, []string) error {
	return s.app.Checkout.Cancel()
}

// errReported marks failures already shown to the user as a notice.
var errReported = errors.New("reported")

// quiet keeps usage and programming errors visible but drops the ones the
// services already turned into notices.
func quiet(err error) error {
	if err == nil {
		return nil
	}
	var verr *auth.ValidationError
	if errors.As(err, &verr) || errors.Is(err, checkout.ErrInvalidStep) || errors.Is(err, checkout.ErrNoOrder) {
		return err
	}
	return errReported
}

func helpIsNotAnError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
