// Package main is the CampEase command-line client.
// Its sole responsibility is wiring dependencies together and dispatching
// subcommands. No business logic belongs here.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/campease/client/internal/api"
	"github.com/campease/client/internal/booking"
	"github.com/campease/client/internal/config"
	"github.com/campease/client/internal/domain"
	"github.com/campease/client/internal/notify"
	"github.com/campease/client/internal/session"
	"github.com/campease/client/internal/store"
)

const usage = `usage: campease <command> [flags]

commands:
  login          -email E -password P [-admin]
  register       -name N -email E -password P [-phone PH]
  logout
  bookings       [-csv]
  cancel         -id ID
  notifications  [-page N] [-limit N] [-unread] [-mark-read ID] [-mark-all-read] [-delete ID]
  watch
`

// app holds the wired dependency graph shared by all subcommands.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	client  *api.Client
	session *session.Store
	agg     *booking.Aggregator
	poller  *notify.Poller
	feed    *notify.Feed
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON logs go to stderr; stdout is reserved for command output.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Wiring -----------------------------------------------------------
	// The client needs the session's token and the session needs the client,
	// so the token lookup is late-bound through TokenFunc.
	var sess *session.Store
	client := api.New(cfg.APIBaseURL, &http.Client{Timeout: cfg.HTTPTimeout}, api.TokenFunc(func() string {
		if sess == nil {
			return ""
		}
		return sess.Token()
	}), logger)

	sess = session.NewStore(client, store.NewFileStore(cfg.StateDir), logger,
		session.WithNotice(func(msg string) {
			fmt.Fprintln(os.Stderr, msg)
		}))

	agg := booking.NewAggregator(client, logger)
	sess.SetRefresher(agg)

	poller := notify.NewPoller(client, logger)
	feed := notify.NewFeed(poller, client, cfg.PollInterval, logger)

	ctx := context.Background()
	sess.OnChange(func(authenticated bool) {
		feed.HandleSessionChange(ctx, authenticated)
	})
	sess.Restore(ctx)

	a := &app{cfg: cfg, log: logger, client: client, session: sess, agg: agg, poller: poller, feed: feed}

	ok := true
	switch os.Args[1] {
	case "login":
		ok = a.cmdLogin(ctx, os.Args[2:])
	case "register":
		ok = a.cmdRegister(ctx, os.Args[2:])
	case "logout":
		a.session.Logout()
		fmt.Println("logged out")
	case "bookings":
		ok = a.cmdBookings(ctx, os.Args[2:])
	case "cancel":
		ok = a.cmdCancel(ctx, os.Args[2:])
	case "notifications":
		ok = a.cmdNotifications(ctx, os.Args[2:])
	case "watch":
		ok = a.cmdWatch(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	a.feed.Close()
	if !ok {
		os.Exit(1)
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) bool {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	admin := fs.Bool("admin", false, "require the admin role")
	fs.Parse(args)

	var ok bool
	if *admin {
		ok = a.session.AdminLogin(ctx, *email, *password)
	} else {
		ok = a.session.Login(ctx, *email, *password)
	}
	if ok {
		cur, _ := a.session.Current()
		fmt.Printf("logged in as %s (%s)\n", cur.User.DisplayName, cur.User.Email)
	}
	return ok
}

func (a *app) cmdRegister(ctx context.Context, args []string) bool {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	phone := fs.String("phone", "", "phone number (optional)")
	fs.Parse(args)

	extra := map[string]string{}
	if *phone != "" {
		extra["phone"] = *phone
	}
	ok := a.session.Register(ctx, *name, *email, *password, extra)
	if ok {
		fmt.Printf("registered and logged in as %s\n", *email)
	}
	return ok
}

func (a *app) cmdBookings(ctx context.Context, args []string) bool {
	fs := flag.NewFlagSet("bookings", flag.ExitOnError)
	asCSV := fs.Bool("csv", false, "write CSV to stdout")
	fs.Parse(args)

	if !a.requireSession() {
		return false
	}

	bookings := a.agg.FetchAll(ctx)
	if *asCSV {
		if err := booking.WriteCSV(os.Stdout, bookings); err != nil {
			a.log.Error("csv export failed", "error", err)
			return false
		}
		return true
	}

	if len(bookings) == 0 {
		fmt.Println("no bookings")
		return true
	}
	for _, b := range bookings {
		fmt.Printf("%-10s %-30s %s  %-10s %8.2f  %s\n",
			b.Kind, b.DisplayName, b.PrimaryDate.Format("2006-01-02"), b.Status, b.Price, b.ID)
	}
	return true
}

func (a *app) cmdCancel(ctx context.Context, args []string) bool {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	id := fs.String("id", "", "booking id")
	fs.Parse(args)

	if !a.requireSession() {
		return false
	}
	if *id == "" {
		fmt.Fprintln(os.Stderr, "cancel: -id is required")
		return false
	}
	if err := a.agg.Cancel(ctx, *id); err != nil {
		a.log.Error("cancel failed", "id", *id, "error", err)
		fmt.Fprintln(os.Stderr, "could not cancel booking")
		return false
	}
	fmt.Println("booking cancelled")
	return true
}

func (a *app) cmdNotifications(ctx context.Context, args []string) bool {
	fs := flag.NewFlagSet("notifications", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 10, "items per page")
	unread := fs.Bool("unread", false, "unread only")
	markRead := fs.String("mark-read", "", "mark one notification read")
	markAll := fs.Bool("mark-all-read", false, "mark all notifications read")
	del := fs.String("delete", "", "delete one notification")
	fs.Parse(args)

	if !a.requireSession() {
		return false
	}

	switch {
	case *markRead != "":
		if err := a.feed.MarkAsRead(ctx, *markRead); err != nil {
			a.log.Error("mark read failed", "id", *markRead, "error", err)
			return false
		}
		fmt.Println("marked read")
		return true
	case *markAll:
		if err := a.feed.MarkAllAsRead(ctx); err != nil {
			a.log.Error("mark all read failed", "error", err)
			return false
		}
		fmt.Println("all notifications marked read")
		return true
	case *del != "":
		if err := a.client.DeleteNotification(ctx, *del); err != nil {
			a.log.Error("delete failed", "id", *del, "error", err)
			return false
		}
		fmt.Println("notification deleted")
		return true
	}

	params := domain.NewPaginationParams(*page, *limit, *unread)
	notifications, total, err := a.client.Notifications(ctx, params)
	if err != nil {
		a.log.Error("listing notifications failed", "error", err)
		return false
	}
	fmt.Printf("%d notifications (page %d, %d total)\n", len(notifications), params.Page, total)
	for _, n := range notifications {
		marker := " "
		if !n.IsRead {
			marker = "*"
		}
		fmt.Printf("%s [%s] %s: %s (%s)\n", marker, n.Category, n.Title, n.Message, n.ID)
	}
	return true
}

// cmdWatch runs the notification poller until SIGINT/SIGTERM, printing each
// update as it arrives. Polling itself was started by the session-change
// wiring; this command only attaches a printing listener and waits.
func (a *app) cmdWatch(ctx context.Context) bool {
	if !a.requireSession() {
		return false
	}

	id := a.poller.AddListener(func(u domain.NotificationUpdate) {
		fmt.Printf("unread: %d\n", u.UnreadCount)
		for _, n := range u.Latest {
			fmt.Printf("  [%s] %s: %s\n", n.Category, n.Title, n.Message)
		}
	})
	defer a.poller.RemoveListener(id)

	state := a.feed.State()
	fmt.Printf("watching notifications (unread: %d, interval: %s), Ctrl-C to stop\n",
		state.UnreadCount, a.cfg.PollInterval)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	fmt.Println("stopped watching")
	return true
}

// requireSession prints a friendly message when no session is active.
func (a *app) requireSession() bool {
	if a.session.IsAuthenticated() {
		return true
	}
	fmt.Fprintln(os.Stderr, "not logged in. run: campease login -email ... -password ...")
	return false
}
